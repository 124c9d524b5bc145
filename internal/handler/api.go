package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/schoolrecords/internal/model"
)

// Records は1エンティティ分のCRUD操作。
// APIハンドラーはリポジトリを、画面ハンドラーはサービスをこの形で受け取る。
type Records[T any] interface {
	List(ctx context.Context) ([]T, error)
	Find(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, rec T) (int64, error)
	Delete(ctx context.Context, id int64) (model.DeleteOutcome, error)
	Update(ctx context.Context, id int64, rec T) (*T, error)
}

// APIHandler は1エンティティ分のJSON APIハンドラー。
// ルート名は /api/<Name>/List<Name>s のようにエンティティ名から組み立てる。
type APIHandler[T any] struct {
	name  string
	store Records[T]
	empty func() T
	gets  []extraRoute
}

type extraRoute struct {
	path string
	fn   http.HandlerFunc
}

// Lister は全件取得を行うストア。
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// NewAPIHandler はAPIHandlerを生成する。
// emptyは該当レコードがない場合に返す空オブジェクトを生成する。nilの場合はゼロ値を返す。
func NewAPIHandler[T any](name string, store Records[T], empty func() T) *APIHandler[T] {
	if empty == nil {
		empty = func() T {
			var zero T
			return zero
		}
	}
	return &APIHandler[T]{name: name, store: store, empty: empty}
}

// Mount はAPIルートを登録する。
func (h *APIHandler[T]) Mount(r chi.Router) {
	r.Route("/api/"+h.name, func(r chi.Router) {
		r.Get("/List"+h.name+"s", h.List)
		r.Get("/Find"+h.name+"/{id}", h.Find)
		r.Post("/Add"+h.name, h.Add)
		r.Delete("/Delete"+h.name+"/{id}", h.Delete)
		r.Put("/Update"+h.name+"/{id}", h.Update)
		for _, e := range h.gets {
			r.Get(e.path, e.fn)
		}
	})
}

// WithGet は /api/<Name> 配下にGETルートを追加する。Mountより前に呼ぶこと。
func (h *APIHandler[T]) WithGet(path string, fn http.HandlerFunc) *APIHandler[T] {
	h.gets = append(h.gets, extraRoute{path: path, fn: fn})
	return h
}

// List は全レコードを返す。
// GET /api/<Name>/List<Name>s
func (h *APIHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	listAll[T](h.store)(w, r)
}

// listAll はstoreの全件をJSON配列で返すハンドラーを生成する。0件は [] を返す。
func listAll[T any](store Lister[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.List(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if recs == nil {
			recs = []T{}
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// Find は指定IDのレコードを返す。見つからない場合は空オブジェクトを返す。
// GET /api/<Name>/Find<Name>/{id}
func (h *APIHandler[T]) Find(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	rec, err := h.store.Find(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orEmpty(rec))
}

// Add はレコードを作成し、採番されたIDを返す。リクエストボディのIDは無視する。
// POST /api/<Name>/Add<Name>
func (h *APIHandler[T]) Add(w http.ResponseWriter, r *http.Request) {
	var in T
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	id, err := h.store.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("record created", slog.String("entity", h.name), slog.Int64("id", id))
	writeJSON(w, http.StatusOK, id)
}

// Delete は指定IDのレコードを削除し、結果をテキストで返す。
// DELETE /api/<Name>/Delete<Name>/{id}
func (h *APIHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	outcome, err := h.store.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, deleteMessage(h.name, id, outcome))
}

// Update は指定IDのレコードを上書きし、再取得した結果を返す。
// 該当行がない場合は空オブジェクトを返す。
// PUT /api/<Name>/Update<Name>/{id}
func (h *APIHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	var in T
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	updated, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orEmpty(updated))
}

func (h *APIHandler[T]) orEmpty(rec *T) T {
	if rec == nil {
		return h.empty()
	}
	return *rec
}

// deleteMessage は削除結果を利用者向けの文に変換する。
func deleteMessage(name string, id int64, outcome model.DeleteOutcome) string {
	entity := strings.ToLower(name)
	if outcome == model.DeleteRemoved {
		return fmt.Sprintf("The %s with given id %d has been removed from the DB", entity, id)
	}
	return fmt.Sprintf("The %s with given id %d is not found", entity, id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// emptyTeacher は該当なしの教員を返す。担当コースは常に配列として出力する。
func emptyTeacher() model.Teacher {
	return model.Teacher{Courses: []model.Course{}}
}
