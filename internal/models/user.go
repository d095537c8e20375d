package models

import "time"

// User represents a registered account. It doubles as the resolved identity of
// an authenticated request.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     *string   `json:"last_name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"created_at"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Username  string  `json:"username" validate:"required,max=50"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
}

// Validate checks field constraints before the payload reaches the store.
func (u UserCreate) Validate() error {
	if err := validateStruct(u); err != nil {
		return err
	}
	// bcrypt only looks at the first 72 bytes.
	if len(u.Password) > maxPasswordBytes {
		return bodyIssue("password", "String should have at most 72 bytes", "string_too_long")
	}
	return nil
}

const maxPasswordBytes = 72
