package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/schoolrecords/internal/flash"
	"github.com/hitoshi/schoolrecords/internal/middleware"
	"github.com/hitoshi/schoolrecords/internal/model"
)

// --- モック定義 ---

// mockRecords はRecords[T]のモック実装。
type mockRecords[T any] struct {
	listFn   func(ctx context.Context) ([]T, error)
	findFn   func(ctx context.Context, id int64) (*T, error)
	createFn func(ctx context.Context, rec T) (int64, error)
	deleteFn func(ctx context.Context, id int64) (model.DeleteOutcome, error)
	updateFn func(ctx context.Context, id int64, rec T) (*T, error)
}

func (m *mockRecords[T]) List(ctx context.Context) ([]T, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRecords[T]) Find(ctx context.Context, id int64) (*T, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRecords[T]) Create(ctx context.Context, rec T) (int64, error) {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	return 0, nil
}

func (m *mockRecords[T]) Delete(ctx context.Context, id int64) (model.DeleteOutcome, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return model.DeleteNotFound, nil
}

func (m *mockRecords[T]) Update(ctx context.Context, id int64, rec T) (*T, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, rec)
	}
	return nil, nil
}

// mockTeacherService はTeacherPageServiceのモック実装。
type mockTeacherService struct {
	mockRecords[model.Teacher]
	listHiredBetweenFn func(ctx context.Context, start, end string) ([]model.Teacher, error)
}

func (m *mockTeacherService) ListHiredBetween(ctx context.Context, start, end string) ([]model.Teacher, error) {
	if m.listHiredBetweenFn != nil {
		return m.listHiredBetweenFn(ctx, start, end)
	}
	return nil, nil
}

// --- テストヘルパー ---

// newTestRenderer はテスト用のRendererを生成する。
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	rr, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error: %v", err)
	}
	return rr
}

// mountWithFlash はフラッシュセッション付きのルーターにハンドラーを登録する。
func mountWithFlash(mount func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewFlashMiddleware(flash.NewMemoryStore(time.Minute), middleware.CookieConfig{}))
	mount(r)
	return r
}

// serve はリクエストを処理し、レスポンスを返す。cookiesは前のレスポンスから引き継ぐ。
func serve(h http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
