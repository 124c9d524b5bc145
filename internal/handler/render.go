package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/schoolrecords/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// 画面テンプレート名。
const (
	pageList       = "list"
	pageShow       = "show"
	pageForm       = "form"
	pageValidation = "validation"
	pageConfirm    = "confirm"
)

// field は画面に表示する1項目。
type field struct {
	Label string
	Name  string
	Value string
	Type  string
}

// listRow は一覧の1行。
type listRow struct {
	ID     int64
	Label  string
	Detail string
}

// searchForm は教員一覧の採用日検索の入力値。
type searchForm struct {
	StartDate string
	EndDate   string
}

// pageData は全テンプレート共通のビューモデル。
type pageData struct {
	Entity  string
	Base    string
	Title   string
	CSRF    string
	Action  string
	Message string

	ID     int64
	Label  string
	Found  bool
	Fields []field
	Rows   []listRow
	Search *searchForm

	ShowCourses bool
	Courses     []model.Course
}

// Renderer は埋め込みテンプレートから画面を描画する。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer は全画面テンプレートを解析したRendererを生成する。
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageList, pageShow, pageForm, pageValidation, pageConfirm} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render は画面を描画する。描画に失敗した場合はレスポンスを書き込む前に500を返す。
func (rr *Renderer) Render(w http.ResponseWriter, status int, page string, data *pageData) {
	t, ok := rr.pages[page]
	if !ok {
		slog.Error("unknown page template", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
