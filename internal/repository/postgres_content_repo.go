package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/storyline/internal/model"
)

// PostgresContentRepo はPostgreSQLを使用した作品リポジトリ。
// StoryとWritingを単一テーブルで扱い、kind列で区別する。
type PostgresContentRepo struct {
	db *sql.DB
}

// NewPostgresContentRepo はPostgresContentRepoを生成する。
func NewPostgresContentRepo(db *sql.DB) *PostgresContentRepo {
	return &PostgresContentRepo{db: db}
}

// 読み取り経路は常にusersとJOINし、投稿者を未解決のまま返さない。
const contentSelectColumns = `
	c.id, c.kind, c.title, c.content, c.user_id, c.posted, c.updated,
	u.id, u.email, u.first_name, u.last_name`

// FindByID は指定種別・指定IDの作品を投稿者情報付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresContentRepo) FindByID(ctx context.Context, kind model.ContentKind, id string) (*model.ContentWithOwner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contentSelectColumns+`
		 FROM content_items c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.kind = $1 AND c.id = $2`,
		string(kind), id,
	)

	item, err := scanContentWithOwner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find content by ID: %w", err)
	}
	return item, nil
}

// ListRecent は指定種別の作品をposted降順で最大limit件、投稿者情報付きで返す。
func (r *PostgresContentRepo) ListRecent(ctx context.Context, kind model.ContentKind, limit int) ([]model.ContentWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentSelectColumns+`
		 FROM content_items c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.kind = $1
		 ORDER BY c.posted DESC
		 LIMIT $2`,
		string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	items := []model.ContentWithOwner{}
	for rows.Next() {
		item, err := scanContentWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content rows: %w", err)
	}
	return items, nil
}

// Create は作品を作成する。
// 投稿者参照が存在しない場合はErrReferenceNotFoundを返す。
// 事前の存在チェックと挿入の間の競合は外部キー制約が防ぐ。
func (r *PostgresContentRepo) Create(ctx context.Context, item *model.ContentItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO content_items (id, kind, title, content, user_id, posted)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, string(item.Kind), item.Title, item.Content, item.UserID, item.Posted,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return ErrReferenceNotFound
		}
		return fmt.Errorf("failed to insert content: %w", err)
	}
	return nil
}

// UpdateFields はtitle/contentのうちnilでないものを更新し、updatedを必ず刻印する。
// 更新対象が存在しない場合はfalseを返す。
func (r *PostgresContentRepo) UpdateFields(ctx context.Context, kind model.ContentKind, id string, title, content *string, updatedAt time.Time) (bool, error) {
	sets := []string{"updated = $1"}
	args := []any{updatedAt}

	if title != nil {
		args = append(args, *title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if content != nil {
		args = append(args, *content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}

	args = append(args, string(kind))
	kindPos := len(args)
	args = append(args, id)
	idPos := len(args)

	query := fmt.Sprintf(
		`UPDATE content_items SET %s WHERE kind = $%d AND id = $%d`,
		strings.Join(sets, ", "), kindPos, idPos,
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete は指定種別・指定IDの作品を削除する。
// 対象が存在しない場合もエラーにしない（冪等）。関連コメントはCASCADE削除される。
func (r *PostgresContentRepo) Delete(ctx context.Context, kind model.ContentKind, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM content_items WHERE kind = $1 AND id = $2`,
		string(kind), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentWithOwner(row rowScanner) (*model.ContentWithOwner, error) {
	item := &model.ContentWithOwner{}
	var kind string
	var updated sql.NullTime

	err := row.Scan(
		&item.ID, &kind, &item.Title, &item.Content, &item.UserID, &item.Posted, &updated,
		&item.Owner.ID, &item.Owner.Email, &item.Owner.FirstName, &item.Owner.LastName,
	)
	if err != nil {
		return nil, err
	}

	item.Kind = model.ContentKind(kind)
	if updated.Valid {
		item.Updated = &updated.Time
	}
	return item, nil
}

// compile-time interface check
var _ ContentRepository = (*PostgresContentRepo)(nil)
