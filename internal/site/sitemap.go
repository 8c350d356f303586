package site

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"
)

// Page is a public route listed in the sitemap.
type Page struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// Pages lists the public pages in sitemap order.
var Pages = []Page{
	{Path: "/", ChangeFreq: "yearly", Priority: 1.0},
	{Path: "/about", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/services", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/contact", ChangeFreq: "monthly", Priority: 0.7},
	{Path: "/resources", ChangeFreq: "monthly", Priority: 0.6},
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// BuildSitemap renders the sitemap for baseURL with every page stamped lastMod.
func BuildSitemap(baseURL string, lastMod time.Time) ([]byte, error) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range Pages {
		loc := baseURL + p.Path
		if p.Path == "/" {
			loc = baseURL
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        loc,
			LastMod:    lastMod.UTC().Format(time.RFC3339),
			ChangeFreq: p.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", p.Priority),
		})
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("site: marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Sitemap serves /sitemap.xml.
func (s *Site) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := BuildSitemap(s.baseURL, s.now())
	if err != nil {
		s.logger.Error("site: sitemap failed", "error", err)
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// Robots serves /robots.txt.
func (s *Site) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", s.baseURL)
}
