package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/aispecialist/internal/config"
	"github.com/hitoshi/aispecialist/internal/content"
	"github.com/hitoshi/aispecialist/internal/database"
	"github.com/hitoshi/aispecialist/internal/earlyaccess"
	"github.com/hitoshi/aispecialist/internal/email"
	"github.com/hitoshi/aispecialist/internal/handler"
	"github.com/hitoshi/aispecialist/internal/logger"
	"github.com/hitoshi/aispecialist/internal/metrics"
	"github.com/hitoshi/aispecialist/internal/middleware"
	"github.com/hitoshi/aispecialist/internal/repository"
	"github.com/hitoshi/aispecialist/internal/security"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログとアプリケーションロガーをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	if w == nil {
		w = os.Stdout
	}

	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, logger.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定したレベルでロガーを再構成する
	logger.SetupDefault(w, cfg.LogLevel)
	logger.SetDefault(logger.New(w, cfg.LoggerConfig()))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer logger.Default().Flush()

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("environment", cfg.Environment),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// server はAPIサーバーの構成要素をまとめたもの。
type server struct {
	handler     http.Handler
	db          *database.Lazy
	rateLimiter *middleware.RateLimiter
	appLog      *logger.Logger
}

// newServer は全依存関係をワイヤリングしてAPIサーバーを構築する。
// DB接続は初回利用時に開く。DATABASE_URL未設定の場合、登録はPERSISTENCE_ERRORとなる。
func newServer(cfg *config.Config, appLog *logger.Logger, reg *prometheus.Registry) *server {
	// 1. メトリクス
	mc := metrics.NewCollector(reg)

	// 2. DB接続（遅延）とリポジトリ
	db := database.NewLazy(cfg.DatabaseURL)
	registrationRepo := repository.NewPostgresRegistrationRepo(db)

	var healthChecker handler.HealthChecker
	if cfg.DatabaseURL != "" {
		healthChecker = db
	} else {
		slog.Warn("DATABASE_URL is not set. Early access registrations will fail.")
	}

	// 3. メール送信
	sender := email.NewSender(cfg.ResendAPIKey, cfg.MailFrom, nil, slog.Default())

	// 4. ドメインサービスの初期化
	registrationService := earlyaccess.NewService(registrationRepo, sender, appLog, mc)

	articles := content.NewLoader(os.DirFS(cfg.ContentDir), appLog, mc)
	renderer := content.NewRenderer(security.NewContentSanitizer())

	// 5. ルーターの構築（req/min -> req/sec に変換）
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:            rate.Limit(float64(cfg.RateLimitEarlyAccess) / 60.0),
		Burst:           cfg.RateLimitBurst,
		CleanupInterval: middleware.DefaultRateLimiterConfig().CleanupInterval,
	}, handler.ClientKey(cfg.TrustProxyHeaders))

	deps := &handler.RouterDeps{
		Logger:              slog.Default(),
		AppLogger:           appLog,
		Metrics:             mc,
		CORSAllowedOrigin:   cfg.CORSAllowedOrigin,
		HSTS:                strings.HasPrefix(cfg.BaseURL, "https://"),
		RateLimiter:         rateLimiter,
		RegistrationService: registrationService,
		TrustProxyHeaders:   cfg.TrustProxyHeaders,
		Articles:            articles,
		ArticleRenderer:     renderer,
		InterviewConfig: handler.InterviewHandlerConfig{
			Feed: content.Channel{
				Title:       "AIスペシャリスト.com インタビュー",
				Link:        cfg.BaseURL,
				Description: "AIを導入した企業の担当者へのインタビュー記事",
				Language:    "ja",
			},
			AvatarStyle: content.AvatarStyle(cfg.AvatarStyle),
		},
		HealthChecker:  healthChecker,
		MetricsHandler: metrics.Handler(reg),
	}

	return &server{
		handler:     handler.NewRouter(deps),
		db:          db,
		rateLimiter: rateLimiter,
		appLog:      appLog,
	}
}

// Close はサーバーが保持する資源を解放する。
func (s *server) Close() error {
	s.rateLimiter.Stop()
	err := s.db.Close()
	s.appLog.Flush()
	return err
}

// newRegistry はGo・プロセスのメトリクスを登録したレジストリを返す。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	srv := newServer(cfg, logger.Default(), newRegistry())
	defer func() {
		if err := srv.Close(); err != nil {
			slog.Error("failed to close resources", slog.String("error", err.Error()))
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, httpServer, cfg.ShutdownTimeout)
}

// serve はHTTPサーバーを起動し、ctxのキャンセルまでブロックする。
// 起動に失敗した場合はそのエラーを返す。
func serve(ctx context.Context, httpServer *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("migration failed: %w", database.ErrDatabaseURLNotSet)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.MigrateUp(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
