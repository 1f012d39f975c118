package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/pkg/config"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  color TEXT,
  size TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func newCartService(t *testing.T, db *gorm.DB, kv *mockKV) Service {
	t.Helper()
	cfg := config.CheckoutConfig{GuestCartTTL: time.Hour}
	logg := logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(NewRepository(db), kv, cfg, logg)
	require.NoError(t, err)
	return svc
}

func TestServiceToggleUserBackend(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db, newMockKV())
	ctx := context.Background()
	actor := types.UserActor(uuid.New())
	productID := uuid.New()

	added, err := svc.Toggle(ctx, actor, Entry{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, added)

	entries, err := svc.List(ctx, actor)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	added, err = svc.Toggle(ctx, actor, Entry{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	assert.False(t, added)

	entries, err = svc.List(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestServiceAddIsIdempotentPerProduct(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db, newMockKV())
	ctx := context.Background()
	actor := types.UserActor(uuid.New())
	productID := uuid.New()

	added, err := svc.Add(ctx, actor, Entry{ProductID: productID, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(ctx, actor, Entry{ProductID: productID, Quantity: 9})
	require.NoError(t, err)
	assert.False(t, added)

	entries, err := svc.List(ctx, actor)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Quantity)
}

func TestServiceRejectsAnonymousWithoutSession(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db, newMockKV())

	_, err := svc.List(context.Background(), types.Actor{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestServiceMergeOnLogin(t *testing.T) {
	db := setupCartTestDB(t)
	kv := newMockKV()
	svc := newCartService(t, db, kv)
	ctx := context.Background()

	userID := uuid.New()
	shared := uuid.New()
	guestOnly := uuid.New()

	guest := types.GuestActor("sess-9")
	_, err := svc.Add(ctx, guest, Entry{ProductID: shared, Quantity: 5})
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, Entry{ProductID: guestOnly, Quantity: 2})
	require.NoError(t, err)

	account := types.UserActor(userID)
	_, err = svc.Add(ctx, account, Entry{ProductID: shared, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(ctx, userID, "sess-9"))

	entries, err := svc.List(ctx, account)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byProduct := map[uuid.UUID]Entry{}
	for _, entry := range entries {
		byProduct[entry.ProductID] = entry
	}
	assert.Equal(t, 1, byProduct[shared].Quantity, "account row wins on duplicate")
	assert.Equal(t, 2, byProduct[guestOnly].Quantity)

	guestEntries, err := svc.List(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, guestEntries, "guest cart cleared after merge")
}

func TestServiceMergeOnLoginNoGuestSession(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db, newMockKV())

	require.NoError(t, svc.MergeOnLogin(context.Background(), uuid.New(), ""))
}
