// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/schoolrecords/internal/config"
	"github.com/hitoshi/schoolrecords/internal/course"
	"github.com/hitoshi/schoolrecords/internal/database"
	"github.com/hitoshi/schoolrecords/internal/flash"
	"github.com/hitoshi/schoolrecords/internal/handler"
	"github.com/hitoshi/schoolrecords/internal/logger"
	"github.com/hitoshi/schoolrecords/internal/metrics"
	"github.com/hitoshi/schoolrecords/internal/middleware"
	"github.com/hitoshi/schoolrecords/internal/repository"
	"github.com/hitoshi/schoolrecords/internal/security"
	"github.com/hitoshi/schoolrecords/internal/student"
	"github.com/hitoshi/schoolrecords/internal/teacher"
	"github.com/hitoshi/schoolrecords/internal/validation"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再設定する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck と help は軽量サブコマンドのため、フル初期化をスキップする
	switch cmd {
	case CommandHealthcheck:
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	case CommandHelp:
		_, err := io.WriteString(w, config.Usage())
		return err
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, ParseMigrateDirection(args))
	default:
		return runServe(cfg)
	}
}

// runServe はHTTPサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	pool := database.DefaultPoolConfig()
	pool.MaxOpenConns = cfg.DBMaxOpenConns
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, pool)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("driver", cfg.DBDriver))

	// 2. フラッシュメッセージストア
	store, closeStore, err := newFlashStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. ルーターの構築
	router, stopRouter, err := buildHandler(cfg, db, store, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer stopRouter()

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("HTTP server stopped gracefully")
	return nil
}

// buildHandler はリポジトリ・サービス・ハンドラーをワイヤリングしたルーターを返す。
// 返される関数でバックグラウンド処理（レート制限のクリーンアップ）を停止する。
func buildHandler(cfg *config.Config, db *sql.DB, store flash.Store, reg *prometheus.Registry) (http.Handler, func(), error) {
	collector := metrics.NewCollector(reg)

	// 1. リポジトリの初期化
	courseRepo := repository.NewCourseRepo(db).WithObserver(collector)
	teacherRepo := repository.NewTeacherRepo(db, courseRepo).WithObserver(collector)
	studentRepo := repository.NewStudentRepo(db).WithObserver(collector)

	// 2. サービスの初期化
	rules := validation.New(time.Now)
	studentService := student.NewService(studentRepo, rules, collector)
	teacherService := teacher.NewService(teacherRepo, rules, collector)
	courseService := course.NewService(courseRepo, rules, collector)

	// 3. 画面テンプレート
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(cfg.RateLimitGeneral))

	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		FlashStore: store,
		CookieConfig: middleware.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
		},
		Logger:        slog.Default(),
		Metrics:       collector,
		Gatherer:      reg,
		HealthChecker: db,

		StudentStore: studentRepo,
		TeacherStore: teacherRepo,
		CourseStore:  courseRepo,

		StudentService: studentService,
		TeacherService: teacherService,
		CourseService:  courseService,
		Sanitizer:      security.NewInputSanitizer(),
		Renderer:       renderer,
	}

	return handler.NewRouter(deps), rateLimiter.Stop, nil
}

// newFlashStore はREDIS_URLが設定されていればRedis、なければメモリのストアを返す。
func newFlashStore(ctx context.Context, cfg *config.Config) (flash.Store, func(), error) {
	if cfg.RedisURL == "" {
		slog.Info("flash store: memory", slog.Duration("ttl", cfg.FlashTTL))
		return flash.NewMemoryStore(cfg.FlashTTL), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := flash.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("flash store: redis", slog.Duration("ttl", cfg.FlashTTL))
	return flash.NewRedisStore(client, cfg.FlashTTL), func() { client.Close() }, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// MigrateUpはすべての未適用マイグレーションを順番に適用し、MigrateDownは最新の1つを戻す。
func runMigrate(cfg *config.Config, direction MigrateDirection) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.String("direction", string(direction)),
	)

	run := database.RunMigrations
	if direction == MigrateDown {
		run = database.RollbackMigration
	}
	if err := run(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
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
