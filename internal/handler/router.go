// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/schoolrecords/internal/flash"
	"github.com/hitoshi/schoolrecords/internal/metrics"
	"github.com/hitoshi/schoolrecords/internal/middleware"
	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/security"
)

// TeacherPageService は教員画面が必要とするサービスインターフェース。
type TeacherPageService interface {
	Records[model.Teacher]
	ListHiredBetween(ctx context.Context, start, end string) ([]model.Teacher, error)
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	FlashStore        flash.Store
	CookieConfig      middleware.CookieConfig
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	Gatherer          prometheus.Gatherer
	HealthChecker     HealthChecker

	// API（検証なしでリポジトリを直接呼ぶ）
	StudentStore Records[model.Student]
	TeacherStore Records[model.Teacher]
	CourseStore  Records[model.Course]

	// 画面（サービスの検証を経由する）
	StudentService Records[model.Student]
	TeacherService TeacherPageService
	CourseService  Records[model.Course]
	Sanitizer      security.InputSanitizerService
	Renderer       *Renderer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Metrics → RealIP → Flash → Logging → Recovery → SecurityHeaders
//	  /api/*     : CORS → RateLimit
//	  /*Page/*   : RateLimit → CSRF
func NewRouter(deps *RouterDeps) http.Handler {
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewMetricsMiddleware(mc))
	r.Use(chimw.RealIP)
	r.Use(middleware.NewFlashMiddleware(deps.FlashStore, deps.CookieConfig))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/StudentPage/List", http.StatusFound)
	})

	// --- JSON API ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		NewAPIHandler("Student", deps.StudentStore, nil).Mount(r)
		NewAPIHandler("Teacher", deps.TeacherStore, emptyTeacher).
			WithGet("/ListCourses", listAll[model.Course](deps.CourseStore)).
			Mount(r)
		NewAPIHandler("Course", deps.CourseStore, nil).Mount(r)
	})

	// --- 画面 ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		NewStudentPageHandler(deps.StudentService, deps.Sanitizer, deps.Renderer).Mount(r)
		NewTeacherPageHandler(deps.TeacherService, deps.TeacherService, deps.Sanitizer, deps.Renderer).Mount(r)
		NewCoursePageHandler(deps.CourseService, deps.Sanitizer, deps.Renderer).Mount(r)
	})

	return r
}
