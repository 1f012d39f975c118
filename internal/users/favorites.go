package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/giftlypk/giftly-backend/pkg/config"
	dbpkg "github.com/giftlypk/giftly-backend/pkg/db"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

type favoriteRows interface {
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	HasFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
}

type favoritesKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	GuestFavoritesKey(sessionID string) string
}

// FavoritesService keeps saved products, like the cart split per backend:
// guest favorites live as a JSON id list in redis, account favorites as
// favorite_items rows.
type FavoritesService interface {
	List(ctx context.Context, actor types.Actor) ([]uuid.UUID, error)
	Toggle(ctx context.Context, actor types.Actor, productID uuid.UUID) (bool, error)
	Remove(ctx context.Context, actor types.Actor, productID uuid.UUID) error
	MergeOnLogin(ctx context.Context, userID uuid.UUID, guestSessionID string) error
}

type favoritesService struct {
	rows favoriteRows
	kv   favoritesKV
	cfg  config.CheckoutConfig
}

// NewFavoritesService builds the dual-backend favorites service.
func NewFavoritesService(rows favoriteRows, kv favoritesKV, cfg config.CheckoutConfig) (FavoritesService, error) {
	if rows == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &favoritesService{rows: rows, kv: kv, cfg: cfg}, nil
}

func (s *favoritesService) List(ctx context.Context, actor types.Actor) ([]uuid.UUID, error) {
	if actor.IsUser() {
		ids, err := s.rows.ListFavorites(ctx, *actor.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list favorites")
		}
		return ids, nil
	}
	if actor.GuestSessionID == nil || *actor.GuestSessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no favorites identity on request")
	}
	return s.loadGuest(ctx, *actor.GuestSessionID)
}

// Toggle saves the product when absent and removes it otherwise. Returns true
// when the product ended up saved.
func (s *favoritesService) Toggle(ctx context.Context, actor types.Actor, productID uuid.UUID) (bool, error) {
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if actor.IsUser() {
		return s.toggleUser(ctx, *actor.UserID, productID)
	}
	if actor.GuestSessionID == nil || *actor.GuestSessionID == "" {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "no favorites identity on request")
	}
	return s.toggleGuest(ctx, *actor.GuestSessionID, productID)
}

func (s *favoritesService) Remove(ctx context.Context, actor types.Actor, productID uuid.UUID) error {
	if actor.IsUser() {
		if err := s.rows.RemoveFavorite(ctx, *actor.UserID, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove favorite")
		}
		return nil
	}
	if actor.GuestSessionID == nil || *actor.GuestSessionID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no favorites identity on request")
	}

	sessionID := *actor.GuestSessionID
	ids, err := s.loadGuest(ctx, sessionID)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != productID {
			kept = append(kept, id)
		}
	}
	return s.saveGuest(ctx, sessionID, kept)
}

// MergeOnLogin folds guest favorites into the account after sign-in, keeping
// the account row on duplicates and clearing the guest list.
func (s *favoritesService) MergeOnLogin(ctx context.Context, userID uuid.UUID, guestSessionID string) error {
	if guestSessionID == "" {
		return nil
	}
	ids, err := s.loadGuest(ctx, guestSessionID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if err := s.rows.AddFavorite(ctx, userID, id); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: merge favorite")
		}
	}
	if err := s.kv.Del(ctx, s.kv.GuestFavoritesKey(guestSessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: clear guest favorites")
	}
	return nil
}

func (s *favoritesService) toggleUser(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	saved, err := s.rows.HasFavorite(ctx, userID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check favorite")
	}
	if saved {
		if err := s.rows.RemoveFavorite(ctx, userID, productID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove favorite")
		}
		return false, nil
	}
	if err := s.rows.AddFavorite(ctx, userID, productID); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return true, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: add favorite")
	}
	return true, nil
}

func (s *favoritesService) toggleGuest(ctx context.Context, sessionID string, productID uuid.UUID) (bool, error) {
	ids, err := s.loadGuest(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for i, id := range ids {
		if id == productID {
			ids = append(ids[:i], ids[i+1:]...)
			if err := s.saveGuest(ctx, sessionID, ids); err != nil {
				return false, err
			}
			return false, nil
		}
	}
	ids = append(ids, productID)
	if err := s.saveGuest(ctx, sessionID, ids); err != nil {
		return false, err
	}
	return true, nil
}

func (s *favoritesService) loadGuest(ctx context.Context, sessionID string) ([]uuid.UUID, error) {
	raw, err := s.kv.Get(ctx, s.kv.GuestFavoritesKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []uuid.UUID{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load guest favorites")
	}
	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode guest favorites")
	}
	return ids, nil
}

func (s *favoritesService) saveGuest(ctx context.Context, sessionID string, ids []uuid.UUID) error {
	payload, err := json.Marshal(ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode guest favorites")
	}
	if err := s.kv.Set(ctx, s.kv.GuestFavoritesKey(sessionID), payload, s.cfg.GuestCartTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save guest favorites")
	}
	return nil
}
