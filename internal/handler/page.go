package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/schoolrecords/internal/flash"
	"github.com/hitoshi/schoolrecords/internal/middleware"
	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/security"
)

// HireDateSearcher は採用日の範囲で教員を検索する。
type HireDateSearcher interface {
	ListHiredBetween(ctx context.Context, start, end string) ([]model.Teacher, error)
}

// PageHandler は1エンティティ分の画面ハンドラー。
// 作成・更新はサービスの検証を経由し、検証エラーはフラッシュメッセージとして
// Validation画面に一度だけ表示する。
type PageHandler[T any] struct {
	form      recordForm[T]
	service   Records[T]
	sanitizer security.InputSanitizerService
	renderer  *Renderer
	search    func(ctx context.Context, start, end string) ([]T, error)
}

// NewStudentPageHandler は学生画面のハンドラーを生成する。
func NewStudentPageHandler(service Records[model.Student], sanitizer security.InputSanitizerService, renderer *Renderer) *PageHandler[model.Student] {
	return &PageHandler[model.Student]{form: studentForm, service: service, sanitizer: sanitizer, renderer: renderer}
}

// NewTeacherPageHandler は教員画面のハンドラーを生成する。
// searcherが指定された場合、一覧画面で採用日の範囲検索を提供する。
func NewTeacherPageHandler(service Records[model.Teacher], searcher HireDateSearcher, sanitizer security.InputSanitizerService, renderer *Renderer) *PageHandler[model.Teacher] {
	h := &PageHandler[model.Teacher]{form: teacherForm, service: service, sanitizer: sanitizer, renderer: renderer}
	if searcher != nil {
		h.search = searcher.ListHiredBetween
	}
	return h
}

// NewCoursePageHandler はコース画面のハンドラーを生成する。
func NewCoursePageHandler(service Records[model.Course], sanitizer security.InputSanitizerService, renderer *Renderer) *PageHandler[model.Course] {
	return &PageHandler[model.Course]{form: courseForm, service: service, sanitizer: sanitizer, renderer: renderer}
}

// Mount は画面ルートを登録する。
func (h *PageHandler[T]) Mount(r chi.Router) {
	r.Route(h.base(), func(r chi.Router) {
		r.Get("/List", h.List)
		if h.search != nil {
			r.Post("/List", h.Search)
		}
		r.Get("/Show/{id}", h.Show)
		r.Get("/New", h.New)
		r.Post("/Create", h.Create)
		r.Get("/Validation", h.Validation)
		r.Get("/DeleteConfirm/{id}", h.DeleteConfirm)
		r.Post("/Delete/{id}", h.Delete)
		r.Get("/Edit/{id}", h.Edit)
		r.Post("/Update/{id}", h.Update)
	})
}

// List は一覧画面を表示する。
// GET /<Name>Page/List
func (h *PageHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	data := h.data(r, h.form.name+"s")
	data.Rows = h.rows(recs)
	if h.search != nil {
		data.Search = &searchForm{}
	}
	h.renderer.Render(w, http.StatusOK, pageList, data)
}

// Search は採用日の範囲で絞り込んだ一覧画面を表示する。
// 開始日・終了日のいずれかが空の場合は全件を表示する。
// POST /TeacherPage/List
func (h *PageHandler[T]) Search(w http.ResponseWriter, r *http.Request) {
	form := &searchForm{
		StartDate: h.sanitizer.Clean(r.PostFormValue("StartDate")),
		EndDate:   h.sanitizer.Clean(r.PostFormValue("EndDate")),
	}

	data := h.data(r, h.form.name+"s")
	data.Search = form

	recs, err := h.search(r.Context(), form.StartDate, form.EndDate)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && mapAPIErrorToHTTPStatus(apiErr) == http.StatusBadRequest {
			data.Message = apiErr.Message
			h.renderer.Render(w, http.StatusBadRequest, pageList, data)
			return
		}
		h.fail(w, err)
		return
	}

	data.Rows = h.rows(recs)
	h.renderer.Render(w, http.StatusOK, pageList, data)
}

// Show は詳細画面を表示する。
// GET /<Name>Page/Show/{id}
func (h *PageHandler[T]) Show(w http.ResponseWriter, r *http.Request) {
	rec, id, ok := h.load(w, r)
	if !ok {
		return
	}

	data := h.data(r, h.form.name+" Details")
	data.ID = id
	if rec == nil {
		h.renderer.Render(w, http.StatusNotFound, pageShow, data)
		return
	}

	data.Found = true
	data.Fields = h.form.fields(*rec)
	if h.form.courses != nil {
		data.ShowCourses = true
		data.Courses = h.form.courses(*rec)
	}
	h.renderer.Render(w, http.StatusOK, pageShow, data)
}

// New は作成フォームを表示する。
// GET /<Name>Page/New
func (h *PageHandler[T]) New(w http.ResponseWriter, r *http.Request) {
	var zero T
	data := h.data(r, "New "+h.form.name)
	data.Action = h.base() + "/Create"
	data.Fields = blankValues(h.form.fields(zero))
	h.renderer.Render(w, http.StatusOK, pageForm, data)
}

// Create は入力を検証してレコードを作成し、詳細画面へリダイレクトする。
// 検証に失敗した場合はValidation画面へリダイレクトする。
// POST /<Name>Page/Create
func (h *PageHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := h.form.clean(h.sanitizer, h.form.parse(r))
	id, err := h.service.Create(r.Context(), in)
	if err != nil {
		if h.rejected(w, r, err) {
			return
		}
		h.fail(w, err)
		return
	}

	slog.Info("record created", slog.String("entity", h.form.name), slog.Int64("id", id))
	http.Redirect(w, r, h.showURL(id), http.StatusFound)
}

// Validation は直前の検証エラーを一度だけ表示する。
// GET /<Name>Page/Validation
func (h *PageHandler[T]) Validation(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, h.form.name+" Validation")

	if s, ok := flash.FromContext(r.Context()); ok {
		msg, found, err := s.Pop(r.Context())
		if err != nil {
			slog.Error("failed to read flash message", slog.String("error", err.Error()))
		} else if found {
			data.Message = msg
		}
	}

	h.renderer.Render(w, http.StatusOK, pageValidation, data)
}

// DeleteConfirm は削除確認画面を表示する。
// GET /<Name>Page/DeleteConfirm/{id}
func (h *PageHandler[T]) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	rec, id, ok := h.load(w, r)
	if !ok {
		return
	}

	data := h.data(r, "Delete "+h.form.name)
	data.ID = id
	if rec == nil {
		h.renderer.Render(w, http.StatusNotFound, pageConfirm, data)
		return
	}

	data.Found = true
	data.Label = h.form.label(*rec)
	h.renderer.Render(w, http.StatusOK, pageConfirm, data)
}

// Delete はレコードを削除し、一覧画面へリダイレクトする。
// POST /<Name>Page/Delete/{id}
func (h *PageHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseID(r)
	if apiErr != nil {
		http.Error(w, apiErr.Message, http.StatusBadRequest)
		return
	}

	outcome, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	slog.Info("record deleted",
		slog.String("entity", h.form.name),
		slog.Int64("id", id),
		slog.String("outcome", outcome.String()),
	)
	http.Redirect(w, r, h.base()+"/List", http.StatusFound)
}

// Edit は更新フォームを現在の値で表示する。
// GET /<Name>Page/Edit/{id}
func (h *PageHandler[T]) Edit(w http.ResponseWriter, r *http.Request) {
	rec, id, ok := h.load(w, r)
	if !ok {
		return
	}

	data := h.data(r, "Edit "+h.form.name)
	data.ID = id
	if rec == nil {
		data.Title = h.form.name + " Details"
		h.renderer.Render(w, http.StatusNotFound, pageShow, data)
		return
	}

	data.Action = h.base() + "/Update/" + strconv.FormatInt(id, 10)
	data.Fields = h.form.fields(*rec)
	h.renderer.Render(w, http.StatusOK, pageForm, data)
}

// Update は入力を検証してレコードを更新し、詳細画面へリダイレクトする。
// 検証に失敗した場合はValidation画面へリダイレクトする。
// POST /<Name>Page/Update/{id}
func (h *PageHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseID(r)
	if apiErr != nil {
		http.Error(w, apiErr.Message, http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := h.form.clean(h.sanitizer, h.form.parse(r))
	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		if h.rejected(w, r, err) {
			return
		}
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, h.showURL(id), http.StatusFound)
}

// rejected は入力起因のエラーをフラッシュメッセージに記録し、Validation画面へリダイレクトする。
// 入力起因でない場合はfalseを返す。
func (h *PageHandler[T]) rejected(w http.ResponseWriter, r *http.Request, err error) bool {
	var msg string
	var verr *model.ValidationError
	var apiErr *model.APIError
	switch {
	case errors.As(err, &verr):
		msg = verr.Message
	case errors.As(err, &apiErr) && mapAPIErrorToHTTPStatus(apiErr) == http.StatusBadRequest:
		msg = apiErr.Message
	default:
		return false
	}

	if s, ok := flash.FromContext(r.Context()); ok {
		if err := s.Set(r.Context(), msg); err != nil {
			slog.Error("failed to store flash message", slog.String("error", err.Error()))
		}
	} else {
		slog.Warn("flash session missing; validation message dropped", slog.String("path", r.URL.Path))
	}

	http.Redirect(w, r, h.base()+"/Validation", http.StatusFound)
	return true
}

// load はパスパラメータのIDでレコードを取得する。
// 応答を書き込んだ場合はokがfalseになる。
func (h *PageHandler[T]) load(w http.ResponseWriter, r *http.Request) (*T, int64, bool) {
	id, apiErr := parseID(r)
	if apiErr != nil {
		http.Error(w, apiErr.Message, http.StatusBadRequest)
		return nil, 0, false
	}

	rec, err := h.service.Find(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return nil, 0, false
	}
	return rec, id, true
}

func (h *PageHandler[T]) fail(w http.ResponseWriter, err error) {
	slog.Error("page request failed",
		slog.String("entity", h.form.name),
		slog.String("error", err.Error()),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *PageHandler[T]) data(r *http.Request, title string) *pageData {
	return &pageData{
		Entity: h.form.name,
		Base:   h.base(),
		Title:  title,
		CSRF:   middleware.CSRFTokenFromContext(r.Context()),
	}
}

func (h *PageHandler[T]) rows(recs []T) []listRow {
	rows := make([]listRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, listRow{
			ID:     h.form.id(rec),
			Label:  h.form.label(rec),
			Detail: h.form.detail(rec),
		})
	}
	return rows
}

func (h *PageHandler[T]) base() string {
	return "/" + h.form.name + "Page"
}

func (h *PageHandler[T]) showURL(id int64) string {
	return h.base() + "/Show/" + strconv.FormatInt(id, 10)
}

// blankValues は作成フォーム用に初期値を空にする。
func blankValues(fields []field) []field {
	for i := range fields {
		fields[i].Value = ""
	}
	return fields
}
