package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/storyline/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

const commentSelectColumns = `
	cm.id, cm.content, cm.user_id, cm.target_id, cm.commented,
	u.id, u.email, u.first_name, u.last_name`

// FindByID は指定IDのコメントを投稿者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByID(ctx context.Context, id string) (*model.CommentWithOwner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+commentSelectColumns+`
		 FROM comments cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.id = $1`,
		id,
	)

	comment, err := scanCommentWithOwner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment by ID: %w", err)
	}
	return comment, nil
}

// ListByKind は指定種別の作品に付いたコメントをcommented降順で最大limit件返す。
func (r *PostgresCommentRepo) ListByKind(ctx context.Context, kind model.ContentKind, limit int) ([]model.CommentWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentSelectColumns+`
		 FROM comments cm
		 JOIN users u ON u.id = cm.user_id
		 JOIN content_items c ON c.id = cm.target_id
		 WHERE c.kind = $1
		 ORDER BY cm.commented DESC
		 LIMIT $2`,
		string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	return collectComments(rows)
}

// ListByTarget は指定作品に付いた全コメントをcommented降順で返す。
func (r *PostgresCommentRepo) ListByTarget(ctx context.Context, targetID string) ([]model.CommentWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentSelectColumns+`
		 FROM comments cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.target_id = $1
		 ORDER BY cm.commented DESC`,
		targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments by target: %w", err)
	}
	defer rows.Close()

	return collectComments(rows)
}

// Create はコメントを作成する。
// 投稿者または対象作品の参照が存在しない場合はErrReferenceNotFoundを返す。
// 事前の存在チェックと挿入の間に参照先が消えても外部キー制約が孤児行を防ぐ。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, content, user_id, target_id, commented)
		 VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.Content, comment.UserID, comment.TargetID, comment.Commented,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return ErrReferenceNotFound
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func collectComments(rows *sql.Rows) ([]model.CommentWithOwner, error) {
	comments := []model.CommentWithOwner{}
	for rows.Next() {
		comment, err := scanCommentWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment rows: %w", err)
	}
	return comments, nil
}

func scanCommentWithOwner(row rowScanner) (*model.CommentWithOwner, error) {
	comment := &model.CommentWithOwner{}
	err := row.Scan(
		&comment.ID, &comment.Content, &comment.UserID, &comment.TargetID, &comment.Commented,
		&comment.Owner.ID, &comment.Owner.Email, &comment.Owner.FirstName, &comment.Owner.LastName,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
