package auth

import (
	"github.com/giftlypk/giftly-backend/internal/users"
)

// RegisterRequest contains the payload for creating a password account.
type RegisterRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest contains the payload for a password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleSignInRequest carries the ID token minted by Google on the client.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// AuthResponse is the common shape returned by every sign-in path.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
