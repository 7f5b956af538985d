// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/storyline/internal/model"
)

// ErrDuplicateEmail はメールアドレスのUNIQUE制約違反を表す。
// 登録の事前チェックと挿入の間の競合はこのエラーで検出する。
var ErrDuplicateEmail = errors.New("repository: duplicate email")

// ErrReferenceNotFound は挿入時の外部キー制約違反を表す。
// 存在チェックと挿入の間に参照先が消えた場合にこのエラーで検出する。
var ErrReferenceNotFound = errors.New("repository: referenced row not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// メールアドレスは保存された表記そのままで比較する（大文字小文字を区別する）。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが重複している場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateLastLogin は最終ログイン日時を更新する。
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// ContentRepository は作品（Story/Writing）の永続化インターフェース。
// 両種別を単一の実装で扱い、種別タグで区別する。
type ContentRepository interface {
	// FindByID は指定種別・指定IDの作品を投稿者情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, kind model.ContentKind, id string) (*model.ContentWithOwner, error)

	// ListRecent は指定種別の作品をposted降順で最大limit件、投稿者情報付きで返す。
	ListRecent(ctx context.Context, kind model.ContentKind, limit int) ([]model.ContentWithOwner, error)

	// Create は作品を作成する。
	// 投稿者参照が存在しない場合はErrReferenceNotFoundを返す。
	Create(ctx context.Context, item *model.ContentItem) error

	// UpdateFields はtitle/contentのうちnilでないものを更新し、updatedを必ず刻印する。
	// 更新対象が存在しない場合はfalseを返す。
	UpdateFields(ctx context.Context, kind model.ContentKind, id string, title, content *string, updatedAt time.Time) (bool, error)

	// Delete は指定種別・指定IDの作品を削除する。
	// 対象が存在しない場合もエラーにしない（冪等）。
	Delete(ctx context.Context, kind model.ContentKind, id string) error
}

// CommentRepository はコメントの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを投稿者情報付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.CommentWithOwner, error)

	// ListByKind は指定種別の作品に付いたコメントをcommented降順で最大limit件返す。
	ListByKind(ctx context.Context, kind model.ContentKind, limit int) ([]model.CommentWithOwner, error)

	// ListByTarget は指定作品に付いた全コメントをcommented降順で返す。
	ListByTarget(ctx context.Context, targetID string) ([]model.CommentWithOwner, error)

	// Create はコメントを作成する。
	// 投稿者または対象作品の参照が存在しない場合はErrReferenceNotFoundを返す。
	Create(ctx context.Context, comment *model.Comment) error
}
