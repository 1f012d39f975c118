package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
)

type guestKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	GuestCartKey(sessionID string) string
}

// GuestStore keeps an anonymous cart as a JSON document in redis, keyed by the
// guest session id. Every mutation rewrites the document and refreshes its TTL.
type GuestStore struct {
	kv        guestKV
	sessionID string
	ttl       time.Duration
}

// NewGuestStore builds a guest cart store bound to one session.
func NewGuestStore(kv guestKV, sessionID string, ttl time.Duration) (*GuestStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("guest session id required")
	}
	return &GuestStore{kv: kv, sessionID: sessionID, ttl: ttl}, nil
}

// Add appends the entry unless the product is already in the cart.
func (s *GuestStore) Add(ctx context.Context, entry Entry) (bool, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range entries {
		if existing.ProductID == entry.ProductID {
			return false, nil
		}
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}
	entries = append(entries, entry)
	if err := s.save(ctx, entries); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops the product's entry if present.
func (s *GuestStore) Remove(ctx context.Context, productID uuid.UUID) error {
	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, existing := range entries {
		if existing.ProductID != productID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.save(ctx, kept)
}

// Has reports whether the product sits in the cart.
func (s *GuestStore) Has(ctx context.Context, productID uuid.UUID) (bool, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range entries {
		if existing.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// List returns every entry in insertion order.
func (s *GuestStore) List(ctx context.Context) ([]Entry, error) {
	return s.load(ctx)
}

// Clear deletes the whole cart document.
func (s *GuestStore) Clear(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.kv.GuestCartKey(s.sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: clear guest cart")
	}
	return nil
}

func (s *GuestStore) load(ctx context.Context) ([]Entry, error) {
	raw, err := s.kv.Get(ctx, s.kv.GuestCartKey(s.sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Entry{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load guest cart")
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode guest cart")
	}
	return entries, nil
}

func (s *GuestStore) save(ctx context.Context, entries []Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode guest cart")
	}
	if err := s.kv.Set(ctx, s.kv.GuestCartKey(s.sessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save guest cart")
	}
	return nil
}
