package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"

	"github.com/gorilla/csrf"
	"github.com/skybiz/skybiz/server/models"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

const (
	TEMPLATES_DIR     = "templates"
	LAYOUT_TEMPLATE   = "layout.html"
	PARTIALS_TEMPLATE = "partials.html"
)

var pageTemplates = []string{
	"home.html", "packages.html", "services.html", "about.html", "faq.html",
	"business.html", "contact.html", "admin_panel.html", "dashboard.html",
}

// Raw HTML in markdown is escaped since WithUnsafe is not set
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// PageData is passed to every template.
type PageData struct {
	Title     string
	User      *SessionUser
	Flashes   []Flash
	News      []models.NewsTicker
	CSRFField template.HTML
	Form      url.Values
	Errors    map[string]string
	Data      interface{}
}

type templateSet map[string]*template.Template

func parseTemplates(files fs.FS) (templateSet, error) {
	funcs := template.FuncMap{
		"markdown": renderMarkdown,
		"field": func(form url.Values, key string) string {
			if form == nil {
				return ""
			}
			return form.Get(key)
		},
		"deref": func(value *string) string {
			if value == nil {
				return ""
			}
			return *value
		},
		"dict": dict,
	}

	set := templateSet{}
	for _, page := range pageTemplates {
		tpl, err := template.New(LAYOUT_TEMPLATE).Funcs(funcs).ParseFS(files,
			path.Join(TEMPLATES_DIR, LAYOUT_TEMPLATE),
			path.Join(TEMPLATES_DIR, PARTIALS_TEMPLATE),
			path.Join(TEMPLATES_DIR, page))
		if err != nil {
			return nil, fmt.Errorf("parse %v: %v", page, err)
		}

		set[page] = tpl
	}

	return set, nil
}

// dict builds a map from key value pairs so sub-templates can take several arguments.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}

	values := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		values[key] = pairs[i+1]
	}

	return values, nil
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// render executes page inside the site layout. The news ticker, the flashes and the
// CSRF field are filled in here for every page.
func (s *Server) render(rw http.ResponseWriter, r *http.Request, page string, status int, data PageData) {
	tpl, ok := s.templates[page]
	if !ok {
		s.serverError(rw, fmt.Errorf("unknown template %v", page))
		return
	}

	news, err := models.ActiveNews()
	if err != nil {
		logg.Errorf("unable to load news ticker: %v", err)
	}

	data.News = news
	data.User = sessionUserFromContext(r.Context())
	data.Flashes = s.popFlashes(rw, r)
	if s.opts.CSRFKey != nil {
		data.CSRFField = csrf.TemplateField(r)
	}

	var buf bytes.Buffer
	if err = tpl.Execute(&buf, data); err != nil {
		s.serverError(rw, err)
		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(status)
	buf.WriteTo(rw)
}

func (s *Server) serverError(rw http.ResponseWriter, err error) {
	logg.Error(err)
	http.Error(rw, "Sorry an application error has occurred. Please try again later.", http.StatusInternalServerError)
}
