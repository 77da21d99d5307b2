package auth

import "time"

// User represents an authenticated user account.
type User struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the account may sign in.
func (u *User) Active() bool {
	return u.Status == "active"
}
