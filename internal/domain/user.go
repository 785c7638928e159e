package domain

// User represents an authenticated account in the system.
// The email doubles as the identity claim carried in access tokens and
// as the ownership key on books.
type User struct {
	Record
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string `json:"display_name"`
}

// Public returns a copy safe for API responses, with the password hash removed.
func (u *User) Public() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}
