// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegisterRequest represents the registration form data
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName string  `json:"full_name" validate:"required,max=255"`
	JobTitle *string `json:"job_title,omitempty" validate:"omitempty,max=128"`
}

// LoginRequest represents the login form data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// UserDTO represents user data for API responses
type UserDTO struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	JobTitle       *string `json:"job_title,omitempty"`
	OrganizationID *uint   `json:"organization_id,omitempty"`
	IsActive       bool    `json:"is_active"`
	LastLoginAt    *string `json:"last_login_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// TokenPairDTO represents the issued token pair
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// AuthResponse represents the response after a successful register or login
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserDTO      `json:"user"`
	Tokens  TokenPairDTO `json:"tokens"`
}
