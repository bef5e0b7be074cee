package accounts

import (
	"fmt"
	"strings"
	"time"

	aqm "github.com/appetiteclub/apt"
	authpkg "github.com/appetiteclub/apt/auth"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// User is the aggregate root for the user account domain.
type User struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash []byte    `json:"-" bson:"pass_hash"`
	PasswordSalt []byte    `json:"-" bson:"pass_salt"`
	Admin        bool      `json:"admin" bson:"admin"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// GetID returns the ID of the User (implements Identifiable interface).
func (u *User) GetID() uuid.UUID {
	return u.ID
}

// ResourceType returns the resource type for URL generation.
func (u *User) ResourceType() string {
	return "user"
}

// SetID sets the ID of the User.
func (u *User) SetID(id uuid.UUID) {
	u.ID = id
}

// NewUser creates a new User with a generated ID.
func NewUser() *User {
	return &User{
		ID: aqm.GenerateNewID(),
	}
}

// EnsureID ensures the aggregate root has a valid ID.
func (u *User) EnsureID() {
	if u.ID == uuid.Nil {
		u.ID = aqm.GenerateNewID()
	}
}

// BeforeCreate sets creation timestamps and normalizes fields.
func (u *User) BeforeCreate() {
	u.EnsureID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	u.Email = authpkg.NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
}

// BeforeUpdate sets update timestamps and normalizes fields.
func (u *User) BeforeUpdate() {
	u.UpdatedAt = time.Now()
	u.Email = authpkg.NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone,omitempty"`
	PasswordHash []byte    `bson:"pass_hash"`
	PasswordSalt []byte    `bson:"pass_salt"`
	Admin        bool      `bson:"admin"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// MarshalBSON custom BSON marshaling for UUID handling. The id is stored as
// a string so repository filters built from uuid.String() match the document.
func (u *User) MarshalBSON() ([]byte, error) {
	return bson.Marshal(userDoc{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		PasswordSalt: u.PasswordSalt,
		Admin:        u.Admin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling.
func (u *User) UnmarshalBSON(data []byte) error {
	var doc userDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid UUID format for _id: %w", err)
	}

	u.ID = id
	u.Name = doc.Name
	u.Email = doc.Email
	u.Phone = doc.Phone
	u.PasswordHash = doc.PasswordHash
	u.PasswordSalt = doc.PasswordSalt
	u.Admin = doc.Admin
	u.CreatedAt = doc.CreatedAt
	u.UpdatedAt = doc.UpdatedAt

	return nil
}
