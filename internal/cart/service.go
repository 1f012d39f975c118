package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/config"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/types"
)

// Service exposes cart operations for both guest and account actors.
type Service interface {
	List(ctx context.Context, actor types.Actor) ([]Entry, error)
	Add(ctx context.Context, actor types.Actor, entry Entry) (bool, error)
	Toggle(ctx context.Context, actor types.Actor, entry Entry) (bool, error)
	Remove(ctx context.Context, actor types.Actor, productID uuid.UUID) error
	Clear(ctx context.Context, actor types.Actor) error
	MergeOnLogin(ctx context.Context, userID uuid.UUID, guestSessionID string) error
	ForActor(actor types.Actor) (Store, error)
}

type service struct {
	rows cartRows
	kv   guestKV
	cfg  config.CheckoutConfig
	logg *logger.Logger
}

// NewService builds a cart service wiring both backends.
func NewService(rows cartRows, kv guestKV, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if rows == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{rows: rows, kv: kv, cfg: cfg, logg: logg}, nil
}

// ForActor selects the backend for the request's identity: account rows for a
// signed-in user, the redis document for a guest session.
func (s *service) ForActor(actor types.Actor) (Store, error) {
	if actor.IsUser() {
		return NewUserStore(s.rows, *actor.UserID)
	}
	if actor.GuestSessionID != nil && *actor.GuestSessionID != "" {
		return NewGuestStore(s.kv, *actor.GuestSessionID, s.cfg.GuestCartTTL)
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no cart identity on request")
}

func (s *service) List(ctx context.Context, actor types.Actor) ([]Entry, error) {
	store, err := s.ForActor(actor)
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

func (s *service) Add(ctx context.Context, actor types.Actor, entry Entry) (bool, error) {
	if entry.ProductID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	store, err := s.ForActor(actor)
	if err != nil {
		return false, err
	}
	return store.Add(ctx, entry)
}

// Toggle removes the product when present and adds it otherwise. Returns true
// when the product ended up in the cart.
func (s *service) Toggle(ctx context.Context, actor types.Actor, entry Entry) (bool, error) {
	if entry.ProductID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	store, err := s.ForActor(actor)
	if err != nil {
		return false, err
	}
	present, err := store.Has(ctx, entry.ProductID)
	if err != nil {
		return false, err
	}
	if present {
		if err := store.Remove(ctx, entry.ProductID); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := store.Add(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Remove(ctx context.Context, actor types.Actor, productID uuid.UUID) error {
	store, err := s.ForActor(actor)
	if err != nil {
		return err
	}
	return store.Remove(ctx, productID)
}

func (s *service) Clear(ctx context.Context, actor types.Actor) error {
	store, err := s.ForActor(actor)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}

// MergeOnLogin folds a guest cart into the account cart after sign-in. Guest
// entries whose product is already in the account cart are discarded; the
// guest document is cleared once everything surviving has been copied.
func (s *service) MergeOnLogin(ctx context.Context, userID uuid.UUID, guestSessionID string) error {
	if guestSessionID == "" {
		return nil
	}
	guest, err := NewGuestStore(s.kv, guestSessionID, s.cfg.GuestCartTTL)
	if err != nil {
		return err
	}
	account, err := NewUserStore(s.rows, userID)
	if err != nil {
		return err
	}

	entries, err := guest.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if _, err := account.Add(ctx, entry); err != nil {
			return err
		}
	}
	if err := guest.Clear(ctx); err != nil {
		return err
	}
	s.logg.Info(ctx, "guest cart merged into account")
	return nil
}
