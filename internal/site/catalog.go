package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Business holds the contact details shown in the header and footer.
type Business struct {
	Name         string `yaml:"name"`
	ShortName    string `yaml:"shortName"`
	Tagline      string `yaml:"tagline"`
	Description  string `yaml:"description"`
	Phone        string `yaml:"phone"`
	PhoneDisplay string `yaml:"phoneDisplay"`
	Email        string `yaml:"email"`
	City         string `yaml:"city"`
	Region       string `yaml:"region"`
}

type NavLink struct {
	Name string `yaml:"name"`
	Href string `yaml:"href"`
}

type Service struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type Step struct {
	Number      int    `yaml:"number"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type PricingTier struct {
	Title    string   `yaml:"title"`
	Price    string   `yaml:"price"`
	Unit     string   `yaml:"unit"`
	Featured bool     `yaml:"featured"`
	Features []string `yaml:"features"`
}

type Value struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Testimonial is a family quote shown on the home page.
type Testimonial struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
	Role   string `yaml:"role"`
}

type FAQItem struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Catalog is the site's editable copy.
type Catalog struct {
	Business Business      `yaml:"business"`
	Nav      []NavLink     `yaml:"nav"`
	Services []Service     `yaml:"services"`
	Stats    []Stat        `yaml:"stats"`
	Steps    []Step        `yaml:"steps"`
	Pricing  []PricingTier `yaml:"pricing"`
	Areas    []string      `yaml:"areas"`
	Values   []Value       `yaml:"values"`
	FAQ      []FAQItem     `yaml:"faq"`

	Testimonials []Testimonial `yaml:"testimonials"`

	// Rendered long-form copy.
	About     template.HTML `yaml:"-"`
	Resources template.HTML `yaml:"-"`
}

// LoadCatalog reads catalog.yaml and the Markdown pages from fsys.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("site: read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("site: parse catalog: %w", err)
	}
	if c.Business.Name == "" {
		return nil, fmt.Errorf("site: catalog is missing business.name")
	}

	md := newMarkdown()
	for name, dst := range map[string]*template.HTML{"about.md": &c.About, "resources.md": &c.Resources} {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("site: read %s: %w", name, err)
		}
		html, err := md.render(src)
		if err != nil {
			return nil, fmt.Errorf("site: render %s: %w", name, err)
		}
		*dst = html
	}
	return &c, nil
}

type markdown struct {
	engine goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdown() *markdown {
	return &markdown{
		engine: goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Typographer)),
		policy: bluemonday.UGCPolicy(),
	}
}

// render converts Markdown to sanitised HTML.
func (m *markdown) render(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.engine.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes())), nil
}
