package user

// RegisterRequest represents the request body for registering a new account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for authenticating
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the request body for updating a user.
// The update is applied only when all four fields are present and non-zero;
// anything less is accepted but changes nothing.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// complete reports whether every field carries a usable value.
func (r *UpdateUserRequest) complete() bool {
	return r.Name != "" && r.Email != "" && r.Password != "" && r.Age != 0
}

// UserResponse represents the public view of a user record
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse carries a user together with a freshly issued session token
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
