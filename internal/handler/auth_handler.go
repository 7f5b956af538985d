package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/storyline/internal/middleware"
	"github.com/hitoshi/storyline/internal/model"
	"github.com/hitoshi/storyline/internal/token"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は認証情報を検証してベアラートークンを発行する。
	Login(ctx context.Context, email, password string) (string, error)
	// Refresh は検証済みクレームから新しい有効期限のトークンを再発行する。
	Refresh(claims *token.IdentityClaims) (string, error)
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// authTokenResponse はトークン発行のレスポンス。
type authTokenResponse struct {
	AuthToken string `json:"authToken"`
}

// identityResponse は認証済みアイデンティティのレスポンス。
type identityResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Login はメールアドレスとパスワードによるログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := requireFields(body, "email", "password"); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	email, apiErr := stringField(body, "email")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	password, apiErr := stringField(body, "password")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	authToken, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authTokenResponse{AuthToken: authToken})
}

// Refresh は有効なトークンを新しい有効期限のトークンと交換する。
// ベアラー認証ミドルウェアの後に配置する。
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	authToken, err := h.service.Refresh(claims)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authTokenResponse{AuthToken: authToken})
}

// Me は認証済みアイデンティティを返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, identityResponse{
		ID:        claims.User.ID,
		Email:     claims.User.Email,
		FirstName: claims.User.FirstName,
		LastName:  claims.User.LastName,
	})
}
