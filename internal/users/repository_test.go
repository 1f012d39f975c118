package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "github.com/giftlypk/giftly-backend/pkg/db"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
)

func mustCreateTestUser(t *testing.T, repo *Repository, email string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &models.User{
		ID:       uuid.New(),
		Email:    email,
		Provider: enums.AuthProviderPassword,
		FullName: "Test User",
		IsActive: true,
	})
	require.NoError(t, err)
	return user
}

func TestRepositoryFindByEmail(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	created := mustCreateTestUser(t, repo, "buyer@example.com")

	found, err := repo.FindByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	require.Error(t, err)
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	mustCreateTestUser(t, repo, "dup@example.com")

	_, err := repo.Create(context.Background(), &models.User{
		ID:       uuid.New(),
		Email:    "dup@example.com",
		Provider: enums.AuthProviderPassword,
		FullName: "Other User",
	})
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, ""))
}

func TestRepositoryUpdateProfileAndPhoto(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	user := mustCreateTestUser(t, repo, "edit@example.com")
	ctx := context.Background()

	require.NoError(t, repo.UpdateProfile(ctx, user.ID, map[string]any{
		"full_name": "Edited Name",
		"phone":     "03001234567",
	}))
	require.NoError(t, repo.UpdatePhotoURL(ctx, user.ID, "https://storage.googleapis.com/b/p.png"))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited Name", found.FullName)
	require.NotNil(t, found.Phone)
	assert.Equal(t, "03001234567", *found.Phone)
	require.NotNil(t, found.PhotoURL)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	user := mustCreateTestUser(t, repo, "login@example.com")
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}

func TestRepositoryFavorites(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, repo.AddFavorite(ctx, userID, first))
	require.NoError(t, repo.AddFavorite(ctx, userID, second))

	saved, err := repo.HasFavorite(ctx, userID, first)
	require.NoError(t, err)
	assert.True(t, saved)

	ids, err := repo.ListFavorites(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	require.NoError(t, repo.RemoveFavorite(ctx, userID, first))
	saved, err = repo.HasFavorite(ctx, userID, first)
	require.NoError(t, err)
	assert.False(t, saved)
}
