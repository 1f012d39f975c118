package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
)

// UserDTO is the account read shape exposed to clients.
type UserDTO struct {
	ID        uuid.UUID          `json:"id"`
	Email     string             `json:"email"`
	FullName  string             `json:"full_name"`
	Phone     *string            `json:"phone,omitempty"`
	PhotoURL  *string            `json:"photo_url,omitempty"`
	Provider  enums.AuthProvider `json:"provider"`
	CreatedAt time.Time          `json:"created_at"`
}

// FromModel maps a persisted user into its read shape.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		PhotoURL:  user.PhotoURL,
		Provider:  user.Provider,
		CreatedAt: user.CreatedAt,
	}
}

// UpdateProfileInput holds optional account mutations.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
}

// PhotoUpload is a signed PUT target for a profile picture.
type PhotoUpload struct {
	UploadURL string    `json:"upload_url"`
	ObjectKey string    `json:"object_key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
