// Package auth はログイン・トークンリフレッシュの認証フローを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/storyline/internal/model"
	"github.com/hitoshi/storyline/internal/repository"
	"github.com/hitoshi/storyline/internal/token"
)

// lastLoginTimeout は最終ログイン刻印の書き込みに許す最大時間。
// リクエストとは独立したgoroutineで実行するため専用のタイムアウトを持つ。
const lastLoginTimeout = 5 * time.Second

// TokenIssuer はトークンの発行インターフェース。
type TokenIssuer interface {
	// Issue は検証済みアイデンティティから署名付きトークンを発行する。
	Issue(identity token.IdentityPayload) (string, error)
}

// Metrics は認証イベントのメトリクス記録インターフェース。nil可。
type Metrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordTokenRefreshed()
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users   repository.UserRepository
	issuer  TokenIssuer
	metrics Metrics
	now     func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(users repository.UserRepository, issuer TokenIssuer, metrics Metrics) *Service {
	return &Service{
		users:   users,
		issuer:  issuer,
		metrics: metrics,
		now:     time.Now,
	}
}

// Login はメールアドレスとパスワードを検証し、ベアラートークンを発行する。
// 未登録メールとパスワード不一致は同一のエラーとして扱う。
// 成功時にlastLoginをベストエフォートで刻印する。刻印の失敗はログに記録するのみで、
// トークンは必ず呼び出し元に返す（ログインを付随的な書き込みで失敗させない）。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user for login: %w", err)
	}
	if user == nil {
		s.recordLoginFailure()
		return "", model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLoginFailure()
		return "", model.NewInvalidCredentialsError()
	}

	authToken, err := s.issuer.Issue(token.PayloadFromUser(user))
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	// fire-and-forget: 完了を待たない
	go s.stampLastLogin(user.ID)

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return authToken, nil
}

// Refresh は検証済みクレームから新しい有効期限のトークンを再発行する。
// パスワードの再確認は行わない。信頼はトークン検証から引き継がれる。
func (s *Service) Refresh(claims *token.IdentityClaims) (string, error) {
	authToken, err := s.issuer.Issue(claims.User)
	if err != nil {
		return "", fmt.Errorf("failed to reissue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTokenRefreshed()
	}
	return authToken, nil
}

// stampLastLogin はlastLoginを現在時刻に更新する。
// リクエストのコンテキストに紐付けず、独立したタイムアウトで実行する。
func (s *Service) stampLastLogin(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), lastLoginTimeout)
	defer cancel()

	if err := s.users.UpdateLastLogin(ctx, userID, s.now()); err != nil {
		slog.Error("failed to stamp last login",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) recordLoginFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}
