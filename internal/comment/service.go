// Package comment は作品へのコメントのドメインロジックを提供する。
//
// コメントはStoryまたはWritingのいずれか一方に付く。対象種別での
// パラメータ化により、単一のサービスが両変種を扱う。
package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/storyline/internal/model"
	"github.com/hitoshi/storyline/internal/repository"
	"github.com/hitoshi/storyline/internal/security"
)

// listLimit は全件一覧の件数上限。対象作品ごとの一覧には適用しない。
const listLimit = 10

// Metrics はコメントイベントのメトリクス記録インターフェース。nil可。
type Metrics interface {
	RecordCommentCreated(kind string)
}

// Service はコメントのサービス層。
type Service struct {
	comments  repository.CommentRepository
	contents  repository.ContentRepository
	users     repository.UserRepository
	sanitizer security.ContentSanitizer
	metrics   Metrics
	now       func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	comments repository.CommentRepository,
	contents repository.ContentRepository,
	users repository.UserRepository,
	sanitizer security.ContentSanitizer,
	metrics Metrics,
) *Service {
	return &Service{
		comments:  comments,
		contents:  contents,
		users:     users,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// ListAll は指定種別の作品に付いたコメントを最大10件、投稿者情報付きで返す。
func (s *Service) ListAll(ctx context.Context, kind model.ContentKind) ([]model.CommentWithOwner, error) {
	comments, err := s.comments.ListByKind(ctx, kind, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s comments: %w", kind, err)
	}
	return comments, nil
}

// ListForTarget は指定作品に付いた全コメントを投稿者情報付きで返す。
// 先に対象作品の存在を確認し、存在しない場合はTARGET_NOT_FOUNDを返す。
func (s *Service) ListForTarget(ctx context.Context, kind model.ContentKind, targetID string) ([]model.CommentWithOwner, error) {
	target, err := s.contents.FindByID(ctx, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve comment target: %w", err)
	}
	if target == nil {
		return nil, model.NewTargetNotFoundError(targetID)
	}

	comments, err := s.comments.ListByTarget(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for target: %w", err)
	}
	return comments, nil
}

// Create は投稿者と対象作品の両方を解決してからコメントを作成する。
// どちらかの解決に失敗した場合は書き込みを行わずエラーを返す。
// 解決と挿入の間に参照先が消えた場合は外部キー制約が挿入を失敗させるため、
// 消えた対象を指すコメントが残ることはない。
func (s *Service) Create(ctx context.Context, kind model.ContentKind, body, ownerEmail, targetID string) (*model.CommentWithOwner, error) {
	owner, err := s.users.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve comment owner: %w", err)
	}
	if owner == nil {
		return nil, model.NewUserNotFoundError(ownerEmail)
	}

	target, err := s.contents.FindByID(ctx, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve comment target: %w", err)
	}
	if target == nil {
		return nil, model.NewTargetNotFoundError(targetID)
	}

	newComment := &model.Comment{
		ID:        uuid.New().String(),
		Content:   s.sanitizer.Sanitize(body),
		UserID:    owner.ID,
		TargetID:  target.ID,
		Commented: s.now(),
	}

	if err := s.comments.Create(ctx, newComment); err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return nil, model.NewTargetNotFoundError(targetID)
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	created, err := s.comments.FindByID(ctx, newComment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch created comment: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("created comment disappeared: %s", newComment.ID)
	}

	if s.metrics != nil {
		s.metrics.RecordCommentCreated(string(kind))
	}
	slog.Info("comment created",
		slog.String("kind", string(kind)),
		slog.String("id", newComment.ID),
		slog.String("target_id", targetID),
	)

	return created, nil
}
