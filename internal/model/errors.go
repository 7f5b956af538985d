// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, not_found, conflict, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidField       = "INVALID_FIELD"
	ErrCodeIDMismatch         = "ID_MISMATCH"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeContentNotFound    = "CONTENT_NOT_FOUND"
	ErrCodeTargetNotFound     = "TARGET_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
)

// NewMissingFieldError はリクエストボディの必須キー欠落エラーを生成する。
// 最初に欠落が検出されたキー名をメッセージに含める。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("リクエストボディに `%s` がありません。", field),
		Category: "validation",
		Action:   fmt.Sprintf("`%s` フィールドを含めて再度リクエストしてください。", field),
	}
}

// NewInvalidFieldError はフィールド値の検証エラーを生成する。
func NewInvalidFieldError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidField,
		Message:  fmt.Sprintf("`%s` が不正です: %s", field, reason),
		Category: "validation",
		Action:   fmt.Sprintf("`%s` の値を確認してください。", field),
	}
}

// NewIDMismatchError はパスIDとボディIDの不一致エラーを生成する。
func NewIDMismatchError(pathID, bodyID string) *APIError {
	return &APIError{
		Code:     ErrCodeIDMismatch,
		Message:  fmt.Sprintf("パスのID（%s）とボディのID（%s）が一致しません。", pathID, bodyID),
		Category: "validation",
		Action:   "パスとボディに同じIDを指定してください。",
	}
}

// NewUserNotFoundError は投稿者メールアドレスが解決できない場合のエラーを生成する。
func NewUserNotFoundError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザーが見つかりません: %s", email),
		Category: "validation",
		Action:   "登録済みユーザーのメールアドレスを指定してください。",
	}
}

// NewContentNotFoundError は作品が見つからない場合のエラーを生成する。
func NewContentNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeContentNotFound,
		Message:  fmt.Sprintf("指定された作品が見つかりません: %s", id),
		Category: "not_found",
		Action:   "作品IDを確認してください。",
	}
}

// NewTargetNotFoundError はコメント対象の作品が見つからない場合のエラーを生成する。
func NewTargetNotFoundError(targetID string) *APIError {
	return &APIError{
		Code:     ErrCodeTargetNotFound,
		Message:  fmt.Sprintf("コメント対象の作品が見つかりません: %s", targetID),
		Category: "not_found",
		Action:   "コメント対象の作品IDを確認してください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレス未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "認証情報を確認して再度ログインしてください。",
	}
}

// NewUnauthorizedError はトークン未提示・無効トークンのエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "有効なトークンをAuthorizationヘッダーに指定してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "conflict",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}
