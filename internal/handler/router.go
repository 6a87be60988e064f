package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/aispecialist/internal/logger"
	"github.com/hitoshi/aispecialist/internal/metrics"
	"github.com/hitoshi/aispecialist/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	AppLogger         *logger.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	// HSTS はサイトがHTTPSで配信される場合にtrueとする。
	HSTS bool
	// RateLimiter は先行登録APIにのみ適用する。nilの場合は制限しない。
	RateLimiter *middleware.RateLimiter

	// 先行登録
	RegistrationService RegistrationServiceInterface
	TrustProxyHeaders   bool

	// インタビュー記事
	Articles        ArticleSourceInterface
	ArticleRenderer ArticleRendererInterface
	InterviewConfig InterviewHandlerConfig

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CORS
//
// Recoveryが返した500もLoggingで記録される。
// レート制限は POST /api/early-access にのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(log, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware(deps.AppLogger))
	r.Use(middleware.NewSecurityHeadersMiddleware(middleware.DefaultSecurityHeadersConfig(deps.HSTS)))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	earlyAccessHandler := NewEarlyAccessHandler(deps.RegistrationService, deps.TrustProxyHeaders)
	interviewHandler := NewInterviewHandler(deps.Articles, deps.ArticleRenderer, deps.Metrics, deps.InterviewConfig)

	// 先行登録
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Post("/api/early-access", earlyAccessHandler.Register)
	})

	// インタビュー記事
	r.Route("/api/interviews", func(r chi.Router) {
		r.Get("/", interviewHandler.ListArticles)
		r.Get("/tags", interviewHandler.ListTags)
		r.Get("/industries", interviewHandler.ListIndustries)
		r.Get("/{slug}", interviewHandler.GetArticle)
	})
	r.Get("/interview/feed.xml", interviewHandler.Feed)

	// 運用
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	return r
}
