package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
)

type stubProfileRows struct {
	user     *models.User
	updates  map[string]any
	photoURL string
}

func (s *stubProfileRows) FindByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return s.user, nil
}

func (s *stubProfileRows) UpdateProfile(_ context.Context, _ uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if name, ok := updates["full_name"].(string); ok {
		s.user.FullName = name
	}
	if phone, ok := updates["phone"].(string); ok {
		s.user.Phone = &phone
	}
	return nil
}

func (s *stubProfileRows) UpdatePhotoURL(_ context.Context, _ uuid.UUID, photoURL string) error {
	s.photoURL = photoURL
	s.user.PhotoURL = &photoURL
	return nil
}

type stubSigner struct {
	bucket      string
	object      string
	contentType string
}

func (s *stubSigner) SignedURL(bucket, object, contentType string, _ time.Duration) (string, error) {
	s.bucket = bucket
	s.object = object
	s.contentType = contentType
	return "https://storage.googleapis.com/upload/" + object, nil
}

func newProfileFixture(t *testing.T) (Service, *stubProfileRows, *stubSigner) {
	t.Helper()
	rows := &stubProfileRows{user: &models.User{
		ID:       uuid.New(),
		Email:    "ayesha@example.com",
		FullName: "Ayesha Khan",
		Provider: enums.AuthProviderPassword,
		IsActive: true,
	}}
	signer := &stubSigner{}
	svc, err := NewService(rows, signer, config.GCSConfig{
		BucketName:      "giftly-media",
		UploadURLExpiry: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc, rows, signer
}

func TestUpdateProfileTrimsAndApplies(t *testing.T) {
	svc, rows, _ := newProfileFixture(t)
	name := "  Ayesha K.  "
	phone := "03001234567"

	dto, err := svc.UpdateProfile(context.Background(), rows.user.ID, UpdateProfileInput{
		FullName: &name,
		Phone:    &phone,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ayesha K.", dto.FullName)
	require.NotNil(t, dto.Phone)
	assert.Equal(t, "03001234567", *dto.Phone)
	assert.Equal(t, "Ayesha K.", rows.updates["full_name"])
}

func TestUpdateProfileRejectsBlankName(t *testing.T) {
	svc, rows, _ := newProfileFixture(t)
	blank := "   "

	_, err := svc.UpdateProfile(context.Background(), rows.user.ID, UpdateProfileInput{FullName: &blank})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Nil(t, rows.updates)
}

func TestPhotoUploadURL(t *testing.T) {
	svc, rows, signer := newProfileFixture(t)

	upload, err := svc.PhotoUploadURL(context.Background(), rows.user.ID, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "giftly-media", signer.bucket)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "profile-pics/"+rows.user.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".png"))
	assert.Equal(t, "https://storage.googleapis.com/giftly-media/"+upload.ObjectKey, upload.PublicURL)
	assert.Equal(t, upload.PublicURL, rows.photoURL)
	assert.NotEmpty(t, upload.UploadURL)
}

func TestPhotoUploadURLRejectsUnknownType(t *testing.T) {
	svc, rows, _ := newProfileFixture(t)

	_, err := svc.PhotoUploadURL(context.Background(), rows.user.ID, "application/pdf")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Empty(t, rows.photoURL)
}
