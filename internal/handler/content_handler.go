package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storyline/internal/model"
)

// ContentServiceInterface は作品ハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	// List は指定種別の作品を最大10件、投稿者情報付きで返す。
	List(ctx context.Context, kind model.ContentKind) ([]model.ContentWithOwner, error)
	// Get は指定IDの作品を投稿者情報付きで返す。
	Get(ctx context.Context, kind model.ContentKind, id string) (*model.ContentWithOwner, error)
	// Create は投稿者メールアドレスを解決して作品を作成する。
	Create(ctx context.Context, kind model.ContentKind, title, body, ownerEmail string) (*model.ContentWithOwner, error)
	// Update はtitle/contentのうち指定されたもののみを更新し、更新後の作品を返す。
	Update(ctx context.Context, kind model.ContentKind, pathID, bodyID string, title, body *string) (*model.ContentWithOwner, error)
	// Delete は指定IDの作品を削除する（冪等）。
	Delete(ctx context.Context, kind model.ContentKind, id string) error
}

// ContentHandler は作品のHTTPハンドラー。
// 種別（story/writing）をハンドラー生成時に固定し、同一実装を両種別で使い回す。
type ContentHandler struct {
	service ContentServiceInterface
	kind    model.ContentKind
}

// NewContentHandler は指定種別のContentHandlerを生成する。
func NewContentHandler(service ContentServiceInterface, kind model.ContentKind) *ContentHandler {
	return &ContentHandler{
		service: service,
		kind:    kind,
	}
}

// --- レスポンス型 ---

// contentResponse は作品のAPIレスポンス。
// userには解決済みの投稿者表示名を埋め込む。投稿者未解決のまま
// この型を組み立てる経路は存在しない。
type contentResponse struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	User    string     `json:"user"`
	Posted  time.Time  `json:"posted"`
	Updated *time.Time `json:"updated,omitempty"`
}

// contentListResponse は作品一覧のレスポンス。
type contentListResponse struct {
	Items []contentResponse `json:"items"`
}

// toContentResponse はmodel.ContentWithOwnerからAPIレスポンスに変換する。
func toContentResponse(item *model.ContentWithOwner) contentResponse {
	return contentResponse{
		ID:      item.ID,
		Title:   item.Title,
		Content: item.Content,
		User:    item.Owner.DisplayName(),
		Posted:  item.Posted,
		Updated: item.Updated,
	}
}

// List は作品一覧を取得する。
// GET /api/{stories|writings}
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), h.kind)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]contentResponse, len(items))
	for i := range items {
		responses[i] = toContentResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, contentListResponse{Items: responses})
}

// Get は作品詳細を取得する。
// GET /api/{stories|writings}/:id
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.service.Get(r.Context(), h.kind, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContentResponse(item))
}

// Create は作品の新規投稿を処理する。
// POST /api/{stories|writings}
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := requireFields(body, "title", "content", "user"); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	title, apiErr := stringField(body, "title")
	if apiErr != nil {
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

	created, err := h.service.Create(r.Context(), h.kind, title, content, ownerEmail)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContentResponse(created))
}

// Update は作品の部分更新を処理する。
// 更新できるのはtitleとcontentのみで、それ以外のキーは黙って無視する。
// PUT /api/{stories|writings}/:id
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	pathID := chi.URLParam(r, "id")

	body, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	bodyID := ""
	if _, ok := body["id"]; ok {
		bodyID, apiErr = stringField(body, "id")
		if apiErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
	}

	title, apiErr := optionalStringField(body, "title")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	content, apiErr := optionalStringField(body, "content")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), h.kind, pathID, bodyID, title, content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContentResponse(updated))
}

// Delete は作品を削除する。存在しないIDの削除も成功として扱う。
// DELETE /api/{stories|writings}/:id
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), h.kind, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
