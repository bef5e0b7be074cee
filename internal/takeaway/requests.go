package takeaway

type ItemRequest struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderCreateRequest struct {
	FullName string        `json:"full_name"`
	Phone    string        `json:"phone"`
	Address  string        `json:"address"`
	Items    []ItemRequest `json:"items"`
}
