package domain

// User is the identity attached to an authenticated session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// DefaultRole is assigned to registrations that do not ask for one.
const DefaultRole = "USER"

// LoginCredentials is the login form payload.
type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// RegisterCredentials is the registration form payload.
type RegisterCredentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,strongpassword"`
	Role     string `json:"role,omitempty"`
}
