package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/storyline/internal/token"
)

// --- モック定義 ---

type mockVerifier struct {
	verifyFn func(raw string) (*token.IdentityClaims, error)
}

func (m *mockVerifier) Verify(raw string) (*token.IdentityClaims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(raw)
	}
	return nil, errors.New("no token accepted")
}

var _ TokenVerifier = (*mockVerifier)(nil)

func testClaims() *token.IdentityClaims {
	return &token.IdentityClaims{
		User: token.IdentityPayload{
			ID:        "user-id-1",
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Smith",
		},
	}
}

// --- テスト ---

func TestBearerAuth_ValidToken_InjectsClaims(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(raw string) (*token.IdentityClaims, error) {
			if raw != "valid-token" {
				t.Errorf("Verify called with %q", raw)
			}
			return testClaims(), nil
		},
	}

	var gotClaims *token.IdentityClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ClaimsFromContext(r.Context())
		if err != nil {
			t.Errorf("ClaimsFromContext() error = %v", err)
		}
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	})

	mw := NewBearerAuthMiddleware(verifier)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotClaims == nil || gotClaims.User.Email != "alice@example.com" {
		t.Errorf("claims = %+v", gotClaims)
	}
}

func TestBearerAuth_MissingHeader_Returns401(t *testing.T) {
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	mw := NewBearerAuthMiddleware(&mockVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if nextCalled {
		t.Error("next handler must not be called without a token")
	}
}

func TestBearerAuth_MalformedHeader_Returns401(t *testing.T) {
	mw := NewBearerAuthMiddleware(&mockVerifier{
		verifyFn: func(raw string) (*token.IdentityClaims, error) {
			return testClaims(), nil
		},
	})

	for _, header := range []string{"valid-token", "Basic dXNlcjpwdw==", "Bearer", "Bearer "} {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("next handler called for header %q", header)
		})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestBearerAuth_InvalidToken_Returns401(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(raw string) (*token.IdentityClaims, error) {
			return nil, token.ErrTokenExpired
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not be called for an invalid token")
	})

	mw := NewBearerAuthMiddleware(verifier)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestClaimsFromContext_NoClaims_ReturnsError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := ClaimsFromContext(req.Context()); err == nil {
		t.Fatal("expected error when no claims in context")
	}
}

func TestContextWithClaims_RoundTrip(t *testing.T) {
	claims := testClaims()
	ctx := ContextWithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), claims)

	got, err := ClaimsFromContext(ctx)
	if err != nil {
		t.Fatalf("ClaimsFromContext() error = %v", err)
	}
	if got != claims {
		t.Error("expected the same claims instance")
	}
}
