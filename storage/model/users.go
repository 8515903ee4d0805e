package model

import (
	"time"
)

// User is an administrator that may access the admin API.
// While no users exist the admin API is open; once one exists, every request
// must authenticate as an enabled user.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"size:191;uniqueIndex" json:"username"`
	// PasswordHash is a PHC-formatted argon2id hash
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	Disabled     bool   `json:"disabled"`
}

// UsersStore abstracts CRUD and authentication of admin users.
type UsersStore interface {
	Count() (int64, error)
	// List returns all users without password hashes
	List() ([]User, error)
	Get(username string) (*User, error)
	// Create creates a user; the implementation must hash the password
	Create(username, password, displayName string) (*User, error)
	Update(username string, displayName *string, newPassword *string, disabled *bool) (*User, error)
	Delete(username string) error
	// Authenticate checks a username/password combination
	Authenticate(username, password string) (*User, error)
}
