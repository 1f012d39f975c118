package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftlypk/giftly-backend/internal/users"
	pkgauth "github.com/giftlypk/giftly-backend/pkg/auth"
	"github.com/giftlypk/giftly-backend/pkg/auth/session"
	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/outbox"
	"github.com/giftlypk/giftly-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller. Every sign-in
// path accepts the caller's guest session id so anonymous cart and favorites
// state can be folded into the account.
type Service interface {
	Register(ctx context.Context, req RegisterRequest, guestSessionID string) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest, guestSessionID string) (*AuthResponse, error)
	GoogleSignIn(ctx context.Context, req GoogleSignInRequest, guestSessionID string) (*AuthResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type guestStateMerger interface {
	MergeOnLogin(ctx context.Context, userID uuid.UUID, guestSessionID string) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          *users.Repository
	TxRunner       txRunner
	SessionManager sessionManager
	Events         eventEmitter
	Google         googleVerifier
	Carts          guestStateMerger
	Favorites      guestStateMerger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	users       *users.Repository
	tx          txRunner
	session     sessionManager
	events      eventEmitter
	google      googleVerifier
	carts       guestStateMerger
	favorites   guestStateMerger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		users:       params.Users,
		tx:          params.TxRunner,
		session:     params.SessionManager,
		events:      params.Events,
		google:      params.Google,
		carts:       params.Carts,
		favorites:   params.Favorites,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest, guestSessionID string) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		created, err := repo.Create(ctx, &models.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: &passwordHash,
			Provider:     enums.AuthProviderPassword,
			FullName:     fullName,
			Phone:        req.Phone,
			IsActive:     true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: &created.ID},
			Data: map[string]any{
				"email":    created.Email,
				"provider": created.Provider,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.finishSignIn(ctx, user, time.Now().UTC(), guestSessionID)
}

func (s *service) Login(ctx context.Context, req LoginRequest, guestSessionID string) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.finishSignIn(ctx, user, now, guestSessionID)
}

func (s *service) GoogleSignIn(ctx context.Context, req GoogleSignInRequest, guestSessionID string) (*AuthResponse, error) {
	if s.google == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "google sign-in is not configured")
	}
	identity, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		user, err = s.provisionGoogleUser(ctx, email, identity)
		if err != nil {
			return nil, err
		}
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.finishSignIn(ctx, user, now, guestSessionID)
}

// provisionGoogleUser creates a passwordless account for a first-time Google
// sign-in inside its own transaction.
func (s *service) provisionGoogleUser(ctx context.Context, email string, identity *GoogleIdentity) (*models.User, error) {
	fullName := strings.TrimSpace(identity.FullName)
	if fullName == "" {
		fullName = email
	}
	var photoURL *string
	if identity.PhotoURL != "" {
		photo := identity.PhotoURL
		photoURL = &photo
	}

	var user *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		created, err := repo.Create(ctx, &models.User{
			ID:       uuid.New(),
			Email:    email,
			Provider: enums.AuthProviderGoogle,
			FullName: fullName,
			PhotoURL: photoURL,
			IsActive: true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: &created.ID},
			Data: map[string]any{
				"email":    created.Email,
				"provider": created.Provider,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	// Google-provisioned accounts have no password hash.
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	valid, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}

// finishSignIn mints the token pair and folds any guest state into the
// account. Merge failures never fail the sign-in.
func (s *service) finishSignIn(ctx context.Context, user *models.User, now time.Time, guestSessionID string) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Email:    user.Email,
		Provider: user.Provider,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	s.mergeGuestState(ctx, user.ID, guestSessionID)

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) mergeGuestState(ctx context.Context, userID uuid.UUID, guestSessionID string) {
	if guestSessionID == "" {
		return
	}
	if s.carts != nil {
		if err := s.carts.MergeOnLogin(ctx, userID, guestSessionID); err != nil {
			s.logg.Warn(ctx, "guest cart merge failed: "+err.Error())
		}
	}
	if s.favorites != nil {
		if err := s.favorites.MergeOnLogin(ctx, userID, guestSessionID); err != nil {
			s.logg.Warn(ctx, "guest favorites merge failed: "+err.Error())
		}
	}
}
