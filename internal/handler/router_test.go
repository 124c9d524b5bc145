package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/schoolrecords/internal/flash"
	"github.com/hitoshi/schoolrecords/internal/metrics"
	"github.com/hitoshi/schoolrecords/internal/middleware"
	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/security"
)

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// createTestRouter はテスト用の完全なルーターを構築するヘルパー。
func createTestRouter(t *testing.T, checker HealthChecker) http.Handler {
	t.Helper()

	students := &mockRecords[model.Student]{
		createFn: func(ctx context.Context, s model.Student) (int64, error) { return 11, nil },
	}
	reg := prometheus.NewRegistry()
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(120))
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		FlashStore:        flash.NewMemoryStore(time.Minute),
		Metrics:           metrics.NewCollector(reg),
		Gatherer:          reg,
		HealthChecker:     checker,

		StudentStore: students,
		TeacherStore: &mockRecords[model.Teacher]{},
		CourseStore:  &mockRecords[model.Course]{},

		StudentService: students,
		TeacherService: &mockTeacherService{},
		CourseService:  &mockRecords[model.Course]{},
		Sanitizer:      security.NewInputSanitizer(),
		Renderer:       newTestRenderer(t),
	})
}

func TestNewRouter_Health(t *testing.T) {
	w := serve(createTestRouter(t, &mockHealthChecker{}), httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	w = serve(createTestRouter(t, &mockHealthChecker{err: errors.New("down")}), httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := createTestRouter(t, nil)

	serve(router, httptest.NewRequest(http.MethodGet, "/api/Student/ListStudents", nil))
	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `schoolrecords_http_requests_total{method="GET",route="/api/Student/ListStudents",status_code="200"}`) {
		t.Errorf("metrics output missing request counter:\n%s", w.Body.String())
	}
}

func TestNewRouter_APIRoutes_AllEndpoints(t *testing.T) {
	router := createTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/Student/ListStudents", ""},
		{http.MethodGet, "/api/Student/FindStudent/1", ""},
		{http.MethodPost, "/api/Student/AddStudent", "{}"},
		{http.MethodDelete, "/api/Student/DeleteStudent/1", ""},
		{http.MethodPut, "/api/Student/UpdateStudent/1", "{}"},
		{http.MethodGet, "/api/Teacher/ListTeachers", ""},
		{http.MethodGet, "/api/Teacher/FindTeacher/1", ""},
		{http.MethodPost, "/api/Teacher/AddTeacher", "{}"},
		{http.MethodDelete, "/api/Teacher/DeleteTeacher/1", ""},
		{http.MethodPut, "/api/Teacher/UpdateTeacher/1", "{}"},
		{http.MethodGet, "/api/Teacher/ListCourses", ""},
		{http.MethodGet, "/api/Course/ListCourses", ""},
		{http.MethodGet, "/api/Course/FindCourse/1", ""},
		{http.MethodPost, "/api/Course/AddCourse", "{}"},
		{http.MethodDelete, "/api/Course/DeleteCourse/1", ""},
		{http.MethodPut, "/api/Course/UpdateCourse/1", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(router, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
				t.Error("API responses should carry CORS headers")
			}
		})
	}
}

// TestNewRouter_APIDoesNotRequireCSRF はAPIがCSRFトークンなしで書き込めることを検証する。
func TestNewRouter_APIDoesNotRequireCSRF(t *testing.T) {
	router := createTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/api/Student/AddStudent", strings.NewReader(`{"studentFName":"A"}`)))

	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "11" {
		t.Errorf("status/body = %d %q, want 200 11", w.Code, w.Body.String())
	}
}

func TestNewRouter_PagePOST_RequiresCSRF(t *testing.T) {
	router := createTestRouter(t, nil)

	w := serve(router, postForm("/StudentPage/Create", url.Values{"StudentNumber": {"N1234"}}))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

// TestNewRouter_PageFlow_NewThenCreate はフォーム画面で発行されたCSRFトークンで作成できることを検証する。
func TestNewRouter_PageFlow_NewThenCreate(t *testing.T) {
	router := createTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/StudentPage/New", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("New status = %d, want 200", w.Code)
	}
	cookies := w.Result().Cookies()

	var token string
	for _, c := range cookies {
		if c.Name == "csrf_token" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("expected csrf_token cookie")
	}
	if !strings.Contains(w.Body.String(), `value="`+token+`"`) {
		t.Error("form should embed the CSRF token")
	}

	w = serve(router, postForm("/StudentPage/Create", url.Values{"csrf_token": {token}, "StudentNumber": {"N1234"}}), cookies...)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/StudentPage/Show/11" {
		t.Errorf("status/location = %d %q, want 302 /StudentPage/Show/11", w.Code, w.Header().Get("Location"))
	}
}

func TestNewRouter_SecurityHeadersAndRootRedirect(t *testing.T) {
	w := serve(createTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/StudentPage/List" {
		t.Errorf("status/location = %d %q", w.Code, w.Header().Get("Location"))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestNewRouter_TeacherSearchRouteRegistered(t *testing.T) {
	router := createTestRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/TeacherPage/List", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="StartDate"`) {
		t.Error("teacher list should render the hire date search form")
	}
}

func TestNewRouter_TeacherListCourses_UsesCourseStore(t *testing.T) {
	courses := &mockRecords[model.Course]{
		listFn: func(ctx context.Context) ([]model.Course, error) {
			return []model.Course{{ID: 1, CourseCode: "http5101", TeacherID: 1, CourseName: "Web Application Development"}}, nil
		},
	}
	teachers := &mockRecords[model.Teacher]{
		listFn: func(ctx context.Context) ([]model.Teacher, error) {
			t.Error("ListCourses must not read teachers")
			return nil, nil
		},
	}
	router := NewRouter(&RouterDeps{
		FlashStore:   flash.NewMemoryStore(time.Minute),
		StudentStore: &mockRecords[model.Student]{},
		TeacherStore: teachers,
		CourseStore:  courses,
		Renderer:     newTestRenderer(t),
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/Teacher/ListCourses", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"courseCode":"http5101"`) {
		t.Errorf("body = %s, want course list", w.Body.String())
	}
}
