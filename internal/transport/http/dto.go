package http

import "github.com/rackatlas/inventory-api/internal/auth/domain"

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login and refresh.
type LoginResponse struct {
	Token     string             `json:"token"`
	User      domain.UserSummary `json:"user"`
	ExpiresIn string             `json:"expiresIn"`
}

// RefreshRequest is the POST /auth/refresh body.
type RefreshRequest struct {
	Token string `json:"token"`
}

// CreateUserRequest is the POST /users body (manage:users only).
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse is the admin-facing account projection.
type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email,omitempty"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	LastLogin string      `json:"last_login,omitempty"`
}

// GenericErrorResponse is the uniform JSON error envelope.
type GenericErrorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	if u.LastLogin != nil {
		resp.LastLogin = u.LastLogin.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
