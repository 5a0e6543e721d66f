package models

import "time"

// User is an account that can sign in and create records.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	// Role is informational ("employee", "admin").
	Role string `json:"role,omitempty"`

	// PasswordHash is the bcrypt hash. Only the billing service sees it.
	PasswordHash string `json:"-"`

	CreatedAt int64 `json:"createdAt,omitempty"`
}

// Ref returns the creator reference embedded in records this user creates.
func (u *User) Ref() CreatorRef {
	return CreatorRef{ID: u.ID, Name: u.Name}
}

// Session is the persisted sign-in state: the bearer token and the cached
// profile of the user it belongs to.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}
