package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storyline/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	// ListAll は指定種別の作品に付いたコメントを最大10件返す。
	ListAll(ctx context.Context, kind model.ContentKind) ([]model.CommentWithOwner, error)
	// ListForTarget は指定作品に付いた全コメントを返す。
	ListForTarget(ctx context.Context, kind model.ContentKind, targetID string) ([]model.CommentWithOwner, error)
	// Create は投稿者と対象作品を解決してコメントを作成する。
	Create(ctx context.Context, kind model.ContentKind, body, ownerEmail, targetID string) (*model.CommentWithOwner, error)
}

// CommentHandler はコメントのHTTPハンドラー。
// 対象種別（story/writing）をハンドラー生成時に固定する。
type CommentHandler struct {
	service CommentServiceInterface
	kind    model.ContentKind
}

// NewCommentHandler は指定対象種別のCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface, kind model.ContentKind) *CommentHandler {
	return &CommentHandler{
		service: service,
		kind:    kind,
	}
}

// --- レスポンス型 ---

// commentResponse はコメントのAPIレスポンス。
type commentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	User      string    `json:"user"`
	Commented time.Time `json:"commented"`
}

// commentListResponse はコメント一覧のレスポンス。
type commentListResponse struct {
	Comments []commentResponse `json:"comments"`
}

// toCommentResponse はmodel.CommentWithOwnerからAPIレスポンスに変換する。
func toCommentResponse(comment *model.CommentWithOwner) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		User:      comment.Owner.DisplayName(),
		Commented: comment.Commented,
	}
}

// ListAll はコメント一覧を取得する。
// GET /api/{stories|writings}/comments
func (h *CommentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListAll(r.Context(), h.kind)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentListResponse(comments))
}

// ListForTarget は指定作品に付いたコメント一覧を取得する。
// GET /api/{stories|writings}/comments/:targetID
func (h *CommentHandler) ListForTarget(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	comments, err := h.service.ListForTarget(r.Context(), h.kind, targetID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentListResponse(comments))
}

// Create はコメントの新規投稿を処理する。
// POST /api/{stories|writings}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := requireFields(body, "content", "user", "target"); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	content, apiErr := stringField(body, "content")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	ownerEmail, apiErr := stringField(body, "user")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	targetID, apiErr := stringField(body, "target")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.Create(r.Context(), h.kind, content, ownerEmail, targetID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(created))
}

func toCommentListResponse(comments []model.CommentWithOwner) commentListResponse {
	responses := make([]commentResponse, len(comments))
	for i := range comments {
		responses[i] = toCommentResponse(&comments[i])
	}
	return commentListResponse{Comments: responses}
}
