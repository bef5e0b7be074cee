package reservations

import "github.com/google/uuid"

type ReservationCreateRequest struct {
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone"`
	Email    string   `json:"email"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Guests   int      `json:"guests"`
	Tables   []string `json:"tables"`
	Agree    bool     `json:"agree"`
}

type ReservationUpdateRequest struct {
	OrderID  uuid.UUID `json:"order_id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Guests   int       `json:"guests"`
	Tables   []string  `json:"tables"`
	Agree    bool      `json:"agree"`
}
