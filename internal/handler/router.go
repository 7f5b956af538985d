package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/storyline/internal/metrics"
	"github.com/hitoshi/storyline/internal/middleware"
	"github.com/hitoshi/storyline/internal/model"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス（nil可）
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// サービス
	AuthService    AuthServiceInterface
	UserService    UserServiceInterface
	ContentService ContentServiceInterface
	CommentService CommentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Logging → Metrics → (APIルートのみ RateLimit)
//
// ベアラー認証は /auth/refresh と /auth/me のみに適用する。
// 作品・コメントのルートにはリソース単位の認可を適用しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)

	storyHandler := NewContentHandler(deps.ContentService, model.ContentKindStory)
	writingHandler := NewContentHandler(deps.ContentService, model.ContentKindWriting)
	storyCommentHandler := NewCommentHandler(deps.CommentService, model.ContentKindStory)
	writingCommentHandler := NewCommentHandler(deps.CommentService, model.ContentKindWriting)

	bearerAuth := middleware.NewBearerAuthMiddleware(deps.TokenVerifier)

	// ヘルスチェック
	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// Prometheusスクレイプ
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.With(bearerAuth).Post("/refresh", authHandler.Refresh)
		r.With(bearerAuth).Get("/me", authHandler.Me)
	})

	// APIルート（クライアントIP単位のレート制限を適用）
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Post("/api/users", userHandler.Register)

		mountContentRoutes(r, "/api/stories", storyHandler, storyCommentHandler)
		mountContentRoutes(r, "/api/writings", writingHandler, writingCommentHandler)
	})

	return r
}

// mountContentRoutes は作品CRUDとコメントのルートを指定パスに構成する。
// StoryとWritingで同一のルート構成を共有する。
// 静的な/commentsセグメントは/{id}より優先してマッチする。
func mountContentRoutes(r chi.Router, pattern string, contents *ContentHandler, comments *CommentHandler) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", contents.List)
		r.Post("/", contents.Create)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", comments.ListAll)
			r.Post("/", comments.Create)
			r.Get("/{targetID}", comments.ListForTarget)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", contents.Get)
			r.Put("/", contents.Update)
			r.Delete("/", contents.Delete)
		})
	})
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
