// Package site renders the public marketing pages, the contact wizard page,
// the sitemap and the embedded static assets.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/harbor-homecare-web/internal/session"
	"github.com/wolfman30/harbor-homecare-web/internal/validation"
	"github.com/wolfman30/harbor-homecare-web/internal/wizard"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

//go:embed content/*
var contentFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const defaultBaseURL = "https://harborofhealthhomecare.com"

// Config wires a Site.
type Config struct {
	BaseURL string
	Wizards *session.Store[*wizard.Wizard]
	Slots   SlotLister // optional
	// ChatEnabled adds the chat widget script to every page.
	ChatEnabled  bool
	SecureCookie bool
	Logger       *logging.Logger
	Now          func() time.Time
}

// Site serves the HTML side of the website.
type Site struct {
	catalog      *Catalog
	pages        map[string]*template.Template
	baseURL      string
	wizards      *session.Store[*wizard.Wizard]
	slots        SlotLister
	chatEnabled  bool
	secureCookie bool
	logger       *logging.Logger
	now          func() time.Time
}

var pageTemplates = []string{"home", "about", "services", "resources", "contact", "notfound"}

// New loads the catalog and parses every page template.
func New(cfg Config) (*Site, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Wizards == nil {
		return nil, fmt.Errorf("site: wizard store is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	contentDir, err := fs.Sub(contentFS, "content")
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(contentDir)
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		t, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("site: parse %s template: %w", name, err)
		}
		pages[name] = t
	}

	return &Site{
		catalog:      catalog,
		pages:        pages,
		baseURL:      baseURL,
		wizards:      cfg.Wizards,
		slots:        cfg.Slots,
		chatEnabled:  cfg.ChatEnabled,
		secureCookie: cfg.SecureCookie,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}, nil
}

func (s *Site) Catalog() *Catalog { return s.catalog }

var funcMap = template.FuncMap{
	"statusClass": func(r validation.Result) string {
		switch r.Status {
		case validation.Valid:
			return "is-valid"
		case validation.Invalid:
			return "is-invalid"
		default:
			return ""
		}
	},
	"millis": func(d time.Duration) int64 { return d.Milliseconds() },
}

// pageData is what every template receives. Data carries the page-specific view.
type pageData struct {
	Title       string
	Description string
	Path        string
	Canonical   string
	Catalog     *Catalog
	ChatEnabled bool
	Year        int
	Data        any
}

func (s *Site) render(w http.ResponseWriter, status int, name, title, path string, data any) {
	t, ok := s.pages[name]
	if !ok {
		s.logger.Error("site: unknown template", "template", name)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	pd := pageData{
		Title:       title,
		Description: s.catalog.Business.Description,
		Path:        path,
		Canonical:   s.baseURL + path,
		Catalog:     s.catalog,
		ChatEnabled: s.chatEnabled,
		Year:        s.now().Year(),
		Data:        data,
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", pd); err != nil {
		s.logger.Error("site: render failed", "template", name, "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Site) title(page string) string {
	if page == "" {
		return s.catalog.Business.Name + " | " + s.catalog.Business.City + " Home Care | " + s.catalog.Business.Tagline
	}
	return page + " | " + s.catalog.Business.Name
}

// Home serves "/". Any other path that reaches it gets the 404 page.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.NotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, "home", s.title(""), "/", nil)
}

func (s *Site) About(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "about", s.title("About Us"), "/about", nil)
}

func (s *Site) Services(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "services", s.title("Our Services"), "/services", nil)
}

func (s *Site) Resources(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "resources", s.title("Resources"), "/resources", nil)
}

// NotFound renders the custom 404 page.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, "notfound", s.title("Page not found"), r.URL.Path, nil)
}

// Static serves the embedded CSS and scripts.
func (s *Site) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
