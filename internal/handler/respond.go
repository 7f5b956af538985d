// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/storyline/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 「見つからない」は経路によらず一貫して404に正規化する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeMissingField,
		model.ErrCodeInvalidField,
		model.ErrCodeIDMismatch,
		model.ErrCodeUserNotFound,
		model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeContentNotFound,
		model.ErrCodeTargetNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidCredentials,
		model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// requireFields はボディの必須キーを固定リストで検証する。
// 最初に欠落が検出されたキーのエラーを返す。全キーが存在する場合はnil。
func requireFields(body map[string]json.RawMessage, fields ...string) *model.APIError {
	for _, field := range fields {
		if _, ok := body[field]; !ok {
			return model.NewMissingFieldError(field)
		}
	}
	return nil
}

// decodeBody はリクエストボディをキー単位のRawMessageに分解する。
// 必須キーの存在検証を型の検証より先に行うための中間表現。
func decodeBody(r *http.Request) (map[string]json.RawMessage, *model.APIError) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, model.NewInvalidRequestError()
	}
	return body, nil
}

// stringField はRawMessageをstringとして取り出す。型が不正な場合はエラー。
func stringField(body map[string]json.RawMessage, field string) (string, *model.APIError) {
	raw, ok := body[field]
	if !ok {
		return "", model.NewMissingFieldError(field)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", model.NewInvalidFieldError(field, "文字列で指定してください")
	}
	return value, nil
}

// optionalStringField はキーが存在する場合のみstringとして取り出す。
func optionalStringField(body map[string]json.RawMessage, field string) (*string, *model.APIError) {
	if _, ok := body[field]; !ok {
		return nil, nil
	}
	value, apiErr := stringField(body, field)
	if apiErr != nil {
		return nil, apiErr
	}
	return &value, nil
}
