package user

import (
	"errors"
	"time"
)

const (
	RoleStudent = "student"
	RoleProctor = "proctor"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never expose hash in JSON
	Role           string    `json:"role"`
	ProfilePicture *string   `json:"profilePicture"`
	IsIDVerified   bool      `json:"isIdVerified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")

// Summary is the shape joined into exam and session listings: enough to
// identify the person, never the credential.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
