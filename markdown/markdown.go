// Package markdown renders Markdown to HTML for the build pipeline.
// It wraps goldmark with GFM extensions so fenced code blocks, tables,
// and strikethrough behave the way blog authors expect.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Options controls renderer behavior. The zero value is the blog default:
// soft wraps, raw HTML escaped.
type Options struct {
	// HardWraps renders single newlines as <br>.
	HardWraps bool
	// Unsafe passes raw HTML in the source through to the output. Only
	// enable for content you author yourself.
	Unsafe bool
}

// Renderer converts Markdown to HTML. It is stateless after construction
// and safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer with GFM, footnotes, smart punctuation, and auto
// heading IDs.
func New(opts Options) *Renderer {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, gmhtml.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Renderer{md: md}
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Component wraps rendered Markdown as a templ component for the dev
// server's preview pages.
func (r *Renderer) Component(src []byte) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render(src)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
}
