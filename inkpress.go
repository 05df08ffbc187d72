// Package inkpress is a static blog publishing engine built with Go, Echo,
// and goldmark. It turns a directory of front-matter Markdown documents into
// a deployable HTML site, lints the content-level invariants (titles,
// layouts, permalinks, internal links), and ships a live-reloading dev
// server for writing.
//
// The front-matter contract is small on purpose: layout selects the HTML
// template, title names the page, and permalink optionally overrides the
// URL derived from the source path. Everything else in the block is passed
// to layouts untouched.
package inkpress

import (
	"fmt"
	"os"

	"github.com/calmloop/inkpress/content"
	"github.com/calmloop/inkpress/markdown"
)

// Engine is the central inkpress object. It wires together the content
// loader, the Markdown renderer, and the build index, and hands them to the
// builder and the dev server.
type Engine struct {
	Config   SiteConfig
	Markdown *markdown.Renderer

	mdOptions    markdown.Options
	customRoutes []func(*DevServer)
}

// New creates an Engine with the given configuration.
func New(cfg SiteConfig, opts ...Option) *Engine {
	cfg.setDefaults()

	e := &Engine{
		Config: cfg,
		// Blog content is author-owned, so raw HTML passthrough is on.
		mdOptions: markdown.Options{Unsafe: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Markdown = markdown.New(e.mdOptions)
	return e
}

// LoadContent reads every document under ContentDir, newest first.
// Drafts are included; callers decide what to do with them.
func (e *Engine) LoadContent() ([]*content.Document, error) {
	if _, err := os.Stat(e.Config.ContentDir); err != nil {
		return nil, fmt.Errorf("inkpress: content dir %s: %w", e.Config.ContentDir, err)
	}
	loader := content.NewLoader(os.DirFS(e.Config.ContentDir), "")
	docs, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("inkpress: load content: %w", err)
	}
	return docs, nil
}
