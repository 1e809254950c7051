package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/listing"
	"github.com/aidar/participant-manager/internal/selection"
	"github.com/aidar/participant-manager/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Имена страниц
const (
	PageDashboard   = "dashboard"
	PageStudies     = "studies"
	PageStudy       = "study"
	PageRespondents = "respondents"
)

// Page содержит данные для рендеринга страницы
type Page struct {
	Title   string
	Nav     string
	Path    string
	APIBase string
	Flash   *view.ErrorInfo
	View    any
}

// Renderer рендерит HTML страницы из встроенных шаблонов
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

// NewRenderer разбирает шаблоны всех страниц
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{
		pages:  make(map[string]*template.Template),
		logger: logger,
	}
	for _, name := range []string{PageDashboard, PageStudies, PageStudy, PageRespondents} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render выполняет шаблон страницы name
func (r *Renderer) Render(w io.Writer, name string, data Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// StaticHandler раздает встроенные стили
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

var statusColors = map[domain.StudyStatus]string{
	domain.StatusDraft:      "yellow",
	domain.StatusRecruiting: "green",
	domain.StatusInField:    "blue",
	domain.StatusCompleted:  "gray",
}

var templateFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"money": func(f *float64) string {
		if f == nil {
			return ""
		}
		return "$" + humanize.Commaf(*f)
	},
	"statusColor": func(s domain.StudyStatus) string {
		if c, ok := statusColors[s]; ok {
			return c
		}
		return "gray"
	},
	"states":             func() []string { return domain.States },
	"incomes":            func() []string { return domain.IncomeBrackets },
	"studyStatuses":      func() []domain.StudyStatus { return domain.StudyStatuses },
	"assignmentStatuses": func() []domain.AssignmentStatus { return domain.AssignmentStatuses },
	"pageURL":            PageURL,
	"filterURL":          FilterURL,
	"toggleURL":          ToggleURL,
	"add":                func(a, b int) int { return a + b },
}

// PageURL возвращает ссылку на страницу n списка, не меняя состояние представления
func PageURL(path string, s *listing.State, n int) string {
	c := s.Clone()
	c.SetPage(n)
	return withQuery(path, c.Query())
}

// FilterURL возвращает ссылку со значением фильтра key, страница сбрасывается
func FilterURL(path string, s *listing.State, key, value string) string {
	c := s.Clone()
	c.SetFilter(key, value)
	return withQuery(path, c.Query())
}

// ToggleURL возвращает ссылку на исследование с переключенным выбором респондента
func ToggleURL(studyID int64, sel *selection.Set, respondentID int64) string {
	c := sel.Clone()
	c.Toggle(respondentID)
	q := url.Values{ParamMatches: {"1"}}
	for _, id := range c.Strings() {
		q.Add(ParamSelected, id)
	}
	return withQuery(fmt.Sprintf("/studies/%d", studyID), q)
}

func withQuery(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
