package user

import "time"

// User represents an account in the system. The password hash, avatar bytes
// and session tokens never appear in JSON responses.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Age       int       `json:"age"`
	Avatar    []byte    `json:"-"`
	Tokens    []string  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// HasToken reports whether token is in the user's active session collection.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// RemoveToken deletes exactly the given token from the session collection,
// leaving any other active sessions in place.
func (u *User) RemoveToken(token string) {
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
}
