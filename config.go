package inkpress

import (
	"time"

	"github.com/calmloop/inkpress/markdown"
)

// SiteConfig holds all configuration for an inkpress site.
type SiteConfig struct {
	Title       string // Site title (default "Blog")
	URL         string // Canonical URL (default "http://localhost:1414")
	Description string // Site description for the feed and meta tags
	Author      string // Author name for JSON-LD

	ContentDir string // Markdown sources (default "content")
	LayoutsDir string // html/template layouts (default "layouts")
	StaticDir  string // Static assets copied verbatim (default "static")
	OutputDir  string // Build output (default "public")
	IndexPath  string // Build index SQLite path (default "data/index.db")

	Addr string // Dev server listen address (default ":1414")

	BuildDrafts   bool          // Include drafts in builds (default false)
	CoverMaxWidth int           // Max cover image width in px (default 800)
	DocCacheTTL   time.Duration // Dev-server document cache TTL (default 5s)

	SessionSecret string // Secret for the dev server's preview cookie
}

func (c *SiteConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:1414"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.LayoutsDir == "" {
		c.LayoutsDir = "layouts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.IndexPath == "" {
		c.IndexPath = "data/index.db"
	}
	if c.Addr == "" {
		c.Addr = ":1414"
	}
	if c.CoverMaxWidth == 0 {
		c.CoverMaxWidth = 800
	}
	if c.DocCacheTTL == 0 {
		c.DocCacheTTL = 5 * time.Second
	}
	if c.SessionSecret == "" {
		// Dev-only default; the preview cookie guards nothing sensitive.
		c.SessionSecret = "inkpress-dev-preview"
	}
}

// Option configures additional Engine behavior.
type Option func(*Engine)

// WithMarkdownOptions overrides the Markdown renderer configuration.
func WithMarkdownOptions(opts markdown.Options) Option {
	return func(e *Engine) {
		e.mdOptions = opts
	}
}

// WithCustomRoutes registers additional routes on the dev server's Echo
// instance before it starts.
func WithCustomRoutes(fn func(*DevServer)) Option {
	return func(e *Engine) {
		e.customRoutes = append(e.customRoutes, fn)
	}
}
