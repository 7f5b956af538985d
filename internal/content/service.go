// Package content は作品（Story/Writing）のCRUDドメインロジックを提供する。
//
// StoryとWritingは構造的に同一のため、単一のサービスを種別タグで
// パラメータ化して両方を扱う。
package content

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

// listLimit は一覧取得の件数上限。ページネーションは提供しない。
const listLimit = 10

// Metrics は作品イベントのメトリクス記録インターフェース。nil可。
type Metrics interface {
	RecordContentCreated(kind string)
}

// Service は作品のサービス層。
type Service struct {
	contents  repository.ContentRepository
	users     repository.UserRepository
	sanitizer security.ContentSanitizer
	metrics   Metrics
	now       func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	contents repository.ContentRepository,
	users repository.UserRepository,
	sanitizer security.ContentSanitizer,
	metrics Metrics,
) *Service {
	return &Service{
		contents:  contents,
		users:     users,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// List は指定種別の作品をposted降順で最大10件、投稿者情報付きで返す。
func (s *Service) List(ctx context.Context, kind model.ContentKind) ([]model.ContentWithOwner, error) {
	items, err := s.contents.ListRecent(ctx, kind, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s items: %w", kind, err)
	}
	return items, nil
}

// Get は指定IDの作品を投稿者情報付きで返す。
// 存在しない場合はシリアライズに進まずCONTENT_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, kind model.ContentKind, id string) (*model.ContentWithOwner, error) {
	item, err := s.contents.FindByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s item: %w", kind, err)
	}
	if item == nil {
		return nil, model.NewContentNotFoundError(id)
	}
	return item, nil
}

// Create は投稿者メールアドレスを解決して作品を作成する。
// 投稿者が存在しない場合は書き込みを行わずUSER_NOT_FOUNDを返す。
// 挿入は投稿者参照を解決しないため、投稿者情報付きで返すには再取得が必要。
// 呼び出し元に返すオブジェクトは常に投稿者解決済みであることが契約。
func (s *Service) Create(ctx context.Context, kind model.ContentKind, title, body, ownerEmail string) (*model.ContentWithOwner, error) {
	owner, err := s.users.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}
	if owner == nil {
		return nil, model.NewUserNotFoundError(ownerEmail)
	}

	item := &model.ContentItem{
		ID:      uuid.New().String(),
		Kind:    kind,
		Title:   title,
		Content: s.sanitizer.Sanitize(body),
		UserID:  owner.ID,
		Posted:  s.now(),
	}

	if err := s.contents.Create(ctx, item); err != nil {
		// 解決と挿入の間に投稿者が消えた場合は外部キー制約が検出する
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return nil, model.NewUserNotFoundError(ownerEmail)
		}
		return nil, fmt.Errorf("failed to create %s item: %w", kind, err)
	}

	created, err := s.contents.FindByID(ctx, kind, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch created item: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("created item disappeared: %s", item.ID)
	}

	if s.metrics != nil {
		s.metrics.RecordContentCreated(string(kind))
	}
	slog.Info("content created",
		slog.String("kind", string(kind)),
		slog.String("id", item.ID),
		slog.String("user_id", owner.ID),
	)

	return created, nil
}

// Update はtitle/contentのうち指定されたもののみを更新する。
// パスのIDとボディのIDが完全一致しない場合は書き込み前にID_MISMATCHを返す。
// updatedは更新内容の有無にかかわらず必ず現在時刻になる。
// 戻り値は更新後に再取得した投稿者解決済みの作品。
func (s *Service) Update(ctx context.Context, kind model.ContentKind, pathID, bodyID string, title, body *string) (*model.ContentWithOwner, error) {
	if pathID == "" || bodyID == "" || pathID != bodyID {
		return nil, model.NewIDMismatchError(pathID, bodyID)
	}

	if body != nil {
		sanitized := s.sanitizer.Sanitize(*body)
		body = &sanitized
	}

	found, err := s.contents.UpdateFields(ctx, kind, pathID, title, body, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update %s item: %w", kind, err)
	}
	if !found {
		return nil, model.NewContentNotFoundError(pathID)
	}

	updated, err := s.contents.FindByID(ctx, kind, pathID)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch updated item: %w", err)
	}
	if updated == nil {
		return nil, model.NewContentNotFoundError(pathID)
	}
	return updated, nil
}

// Delete は指定IDの作品を削除する。
// 対象が存在しない場合も成功として扱う（呼び出し元から見て冪等）。
func (s *Service) Delete(ctx context.Context, kind model.ContentKind, id string) error {
	if err := s.contents.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete %s item: %w", kind, err)
	}
	return nil
}
