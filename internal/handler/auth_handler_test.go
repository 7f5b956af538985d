package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/storyline/internal/middleware"
	"github.com/hitoshi/storyline/internal/model"
	"github.com/hitoshi/storyline/internal/token"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn   func(ctx context.Context, email, password string) (string, error)
	refreshFn func(claims *token.IdentityClaims) (string, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "mock-token", nil
}

func (m *mockAuthService) Refresh(claims *token.IdentityClaims) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(claims)
	}
	return "mock-token", nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// --- テスト ---

func TestAuthHandler_Login_ReturnsToken(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			if email != "alice@example.com" || password != "secret-password" {
				t.Errorf("Login called with %q %q", email, password)
			}
			return "signed-token-abc", nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret-password"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body authTokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.AuthToken != "signed-token-abc" {
		t.Errorf("authToken = %q, want %q", body.AuthToken, "signed-token-abc")
	}
}

// 必須キー欠落は最初に検出されたキーを指す400になることを検証する。
func TestAuthHandler_Login_MissingField_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"alice@example.com"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	body := decodeErrorBody(t, rec)
	if body.Code != model.ErrCodeMissingField {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeMissingField)
	}
	if !strings.Contains(body.Message, "password") {
		t.Errorf("message %q should name the missing field", body.Message)
	}
}

func TestAuthHandler_Login_MalformedJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	body := decodeErrorBody(t, rec)
	if body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}

func TestAuthHandler_Login_InvalidCredentials_Returns401(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			return "", model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, rec)
	if body.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestAuthHandler_Refresh_ReturnsNewToken(t *testing.T) {
	claims := &token.IdentityClaims{
		User: token.IdentityPayload{ID: "user-id-1", Email: "alice@example.com"},
	}

	svc := &mockAuthService{
		refreshFn: func(got *token.IdentityClaims) (string, error) {
			if got.User.Email != "alice@example.com" {
				t.Errorf("Refresh called with %q", got.User.Email)
			}
			return "fresh-token", nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()

	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body authTokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.AuthToken != "fresh-token" {
		t.Errorf("authToken = %q, want %q", body.AuthToken, "fresh-token")
	}
}

func TestAuthHandler_Refresh_NoClaims_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()

	h.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_ReturnsIdentity(t *testing.T) {
	claims := &token.IdentityClaims{
		User: token.IdentityPayload{
			ID:        "user-id-1",
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Smith",
		},
	}

	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body identityResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "user-id-1" || body.Email != "alice@example.com" {
		t.Errorf("identity = %+v", body)
	}
	if body.FirstName != "Alice" || body.LastName != "Smith" {
		t.Errorf("name = %q %q, want Alice Smith", body.FirstName, body.LastName)
	}
}

func TestAuthHandler_Me_NoClaims_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
