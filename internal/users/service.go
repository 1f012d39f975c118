package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
)

const photoPrefix = "profile-pics"

var allowedPhotoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Service exposes account profile operations.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	PhotoUploadURL(ctx context.Context, userID uuid.UUID, contentType string) (*PhotoUpload, error)
}

type profileRows interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdatePhotoURL(ctx context.Context, id uuid.UUID, photoURL string) error
}

type uploadSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
}

type service struct {
	rows   profileRows
	signer uploadSigner
	cfg    config.GCSConfig
}

// NewService constructs a users service instance.
func NewService(rows profileRows, signer uploadSigner, cfg config.GCSConfig) (Service, error) {
	if rows == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if signer == nil {
		return nil, fmt.Errorf("storage signer required")
	}
	return &service{rows: rows, signer: signer, cfg: cfg}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// UpdateProfile applies the provided fields and returns the fresh profile.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	updates := map[string]any{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}

	if len(updates) > 0 {
		if err := s.rows.UpdateProfile(ctx, userID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update profile")
		}
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// PhotoUploadURL issues a signed PUT for a new profile picture and records
// where the object will live once uploaded.
func (s *service) PhotoUploadURL(ctx context.Context, userID uuid.UUID, contentType string) (*PhotoUpload, error) {
	ext, ok := allowedPhotoTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image content type")
	}
	if s.cfg.BucketName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "storage bucket not configured")
	}

	object := fmt.Sprintf("%s/%s/%s.%s", photoPrefix, userID, uuid.NewString(), ext)
	uploadURL, err := s.signer.SignedURL(s.cfg.BucketName, object, contentType, s.cfg.UploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.BucketName, object)
	if err := s.rows.UpdatePhotoURL(ctx, userID, publicURL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update photo url")
	}

	return &PhotoUpload{
		UploadURL: uploadURL,
		ObjectKey: object,
		PublicURL: publicURL,
		ExpiresAt: time.Now().UTC().Add(s.cfg.UploadURLExpiry),
	}, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.rows.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}
