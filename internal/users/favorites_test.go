package users

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/pkg/config"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

type mockFavoritesKV struct {
	data map[string]string
	ttls map[string]time.Duration
	dels []string
}

func newMockFavoritesKV() *mockFavoritesKV {
	return &mockFavoritesKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockFavoritesKV) Get(_ context.Context, key string) (string, error) {
	val, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return val, nil
}

func (m *mockFavoritesKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			return err
		}
		m.data[key] = string(payload)
	}
	m.ttls[key] = ttl
	return nil
}

func (m *mockFavoritesKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
		m.dels = append(m.dels, key)
	}
	return nil
}

func (m *mockFavoritesKV) GuestFavoritesKey(sessionID string) string {
	return "gf:guest_favorites:" + sessionID
}

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT,
  provider TEXT NOT NULL DEFAULT 'password',
  full_name TEXT NOT NULL,
  phone TEXT,
  photo_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	favorites := `
CREATE TABLE IF NOT EXISTS favorite_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(favorites).Error)
	return db
}

func newFavoritesService(t *testing.T, db *gorm.DB, kv *mockFavoritesKV) FavoritesService {
	t.Helper()
	svc, err := NewFavoritesService(NewRepository(db), kv, config.CheckoutConfig{GuestCartTTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func TestFavoritesToggleGuest(t *testing.T) {
	kv := newMockFavoritesKV()
	svc := newFavoritesService(t, setupUsersTestDB(t), kv)
	ctx := context.Background()
	actor := types.GuestActor("sess-1")
	productID := uuid.New()

	saved, err := svc.Toggle(ctx, actor, productID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, time.Hour, kv.ttls[kv.GuestFavoritesKey("sess-1")])

	ids, err := svc.List(ctx, actor)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, productID, ids[0])

	saved, err = svc.Toggle(ctx, actor, productID)
	require.NoError(t, err)
	assert.False(t, saved)

	ids, err = svc.List(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavoritesToggleUser(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newFavoritesService(t, db, newMockFavoritesKV())
	ctx := context.Background()
	userID := uuid.New()
	actor := types.UserActor(userID)
	productID := uuid.New()

	saved, err := svc.Toggle(ctx, actor, productID)
	require.NoError(t, err)
	assert.True(t, saved)

	ids, err := svc.List(ctx, actor)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	saved, err = svc.Toggle(ctx, actor, productID)
	require.NoError(t, err)
	assert.False(t, saved)

	ids, err = svc.List(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavoritesAnonymousActor(t *testing.T) {
	svc := newFavoritesService(t, setupUsersTestDB(t), newMockFavoritesKV())

	_, err := svc.Toggle(context.Background(), types.Actor{}, uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestFavoritesMergeOnLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	kv := newMockFavoritesKV()
	svc := newFavoritesService(t, db, kv)
	ctx := context.Background()
	userID := uuid.New()
	shared := uuid.New()
	guestOnly := uuid.New()

	// Account already saved the shared product.
	_, err := svc.Toggle(ctx, types.UserActor(userID), shared)
	require.NoError(t, err)

	guest := types.GuestActor("sess-merge")
	_, err = svc.Toggle(ctx, guest, shared)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, guest, guestOnly)
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(ctx, userID, "sess-merge"))

	ids, err := svc.List(ctx, types.UserActor(userID))
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, shared)
	assert.Contains(t, ids, guestOnly)

	_, exists := kv.data[kv.GuestFavoritesKey("sess-merge")]
	assert.False(t, exists, "guest favorites should be cleared after merge")
}

func TestFavoritesMergeEmptySessionNoop(t *testing.T) {
	svc := newFavoritesService(t, setupUsersTestDB(t), newMockFavoritesKV())
	require.NoError(t, svc.MergeOnLogin(context.Background(), uuid.New(), ""))
}
