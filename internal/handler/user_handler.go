package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/storyline/internal/model"
	"github.com/hitoshi/storyline/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, input user.RegisterInput) (*model.User, error)
}

// UserHandler はユーザー登録のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// userResponse は登録済みユーザーのレスポンス。パスワードは含めない。
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register はユーザー登録を処理する。
// POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := requireFields(body, "email", "firstName", "lastName", "password"); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	input := user.RegisterInput{}
	for field, dst := range map[string]*string{
		"email":     &input.Email,
		"firstName": &input.FirstName,
		"lastName":  &input.LastName,
		"password":  &input.Password,
	} {
		value, apiErr := stringField(body, field)
		if apiErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		*dst = value
	}

	registered, err := h.service.Register(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:        registered.ID,
		Email:     registered.Email,
		FirstName: registered.FirstName,
		LastName:  registered.LastName,
	})
}
