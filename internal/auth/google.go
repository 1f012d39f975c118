package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/giftlypk/giftly-backend/pkg/config"
	pkgerrors "github.com/giftlypk/giftly-backend/pkg/errors"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the verified subset of a Google ID token we act on.
type GoogleIdentity struct {
	Subject  string
	Email    string
	FullName string
	PhotoURL string
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint
// and checks the audience matches our OAuth client.
type GoogleVerifier struct {
	clientID   string
	httpClient *http.Client
	endpoint   string
}

// NewGoogleVerifier builds a verifier for the configured OAuth client.
func NewGoogleVerifier(cfg config.GoogleAuthConfig) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	return &GoogleVerifier{
		clientID:   cfg.ClientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   tokenInfoURL,
	}, nil
}

type tokenInfoResponse struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

// Verify resolves the ID token and returns the identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if idToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google token is required")
	}

	endpoint := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build tokeninfo request")
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call tokeninfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google token rejected")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read tokeninfo response")
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode tokeninfo response")
	}

	if info.Aud != v.clientID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google token audience mismatch")
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google account email not verified")
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err == nil && time.Now().Unix() >= exp {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google token expired")
	}

	return &GoogleIdentity{
		Subject:  info.Sub,
		Email:    info.Email,
		FullName: info.Name,
		PhotoURL: info.Picture,
	}, nil
}
