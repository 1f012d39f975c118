package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/api/middleware"
	"github.com/giftlypk/giftly-backend/internal/users"
)

type stubUsersService struct {
	profile    *users.UserDTO
	upload     *users.PhotoUpload
	updates    []users.UpdateProfileInput
	contentTys []string
}

func (s *stubUsersService) GetProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return s.profile, nil
}

func (s *stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, input users.UpdateProfileInput) (*users.UserDTO, error) {
	s.updates = append(s.updates, input)
	return s.profile, nil
}

func (s *stubUsersService) PhotoUploadURL(ctx context.Context, userID uuid.UUID, contentType string) (*users.PhotoUpload, error) {
	s.contentTys = append(s.contentTys, contentType)
	return s.upload, nil
}

func signedInRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestAccountGetRequiresIdentity(t *testing.T) {
	handler := AccountGet(&stubUsersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAccountGetReturnsProfile(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{profile: &users.UserDTO{ID: userID, Email: "shopper@example.com"}}
	handler := AccountGet(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, signedInRequest(http.MethodGet, "/api/v1/account", nil, userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Email != "shopper@example.com" {
		t.Fatalf("expected profile in payload got %+v", payload.Data)
	}
}

func TestAccountPatchForwardsPartialUpdate(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{profile: &users.UserDTO{ID: userID}}
	handler := AccountPatch(svc, nil)

	body := []byte(`{"phone":"+923001234567"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, signedInRequest(http.MethodPatch, "/api/v1/account", body, userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.updates) != 1 {
		t.Fatalf("expected one update got %d", len(svc.updates))
	}
	update := svc.updates[0]
	if update.FullName != nil {
		t.Fatalf("expected full name untouched got %v", *update.FullName)
	}
	if update.Phone == nil || *update.Phone != "+923001234567" {
		t.Fatalf("expected phone forwarded got %v", update.Phone)
	}
}

func TestAccountPhotoUploadForwardsContentType(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{upload: &users.PhotoUpload{UploadURL: "https://storage.example/put"}}
	handler := AccountPhotoUpload(svc, nil)

	body := []byte(`{"content_type":"image/png"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, signedInRequest(http.MethodPost, "/api/v1/account/photo-upload", body, userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.contentTys) != 1 || svc.contentTys[0] != "image/png" {
		t.Fatalf("expected content type forwarded got %v", svc.contentTys)
	}
}

func TestAccountPhotoUploadRequiresContentType(t *testing.T) {
	userID := uuid.New()
	handler := AccountPhotoUpload(&stubUsersService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, signedInRequest(http.MethodPost, "/api/v1/account/photo-upload", []byte(`{}`), userID))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
