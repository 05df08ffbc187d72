// Package views holds the templ components the dev server renders itself:
// error pages, the draft list, and the draft preview chrome. Production
// pages come from the user's layouts; these are framework-owned.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// SiteInfo is the slice of site config the dev pages need.
type SiteInfo struct {
	Title string
	URL   string
}

// DraftItem is one row in the draft list.
type DraftItem struct {
	Title   string
	Slug    string
	Date    string
	Summary string
}

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:42rem;margin:3rem auto;padding:0 1rem;line-height:1.6}` +
	`h1{font-size:1.5rem}a{color:#2563eb}ul{padding-left:1.25rem}` +
	`.banner{background:#fef3c7;border:1px solid #f59e0b;padding:.5rem 1rem;border-radius:.375rem;margin-bottom:2rem}` +
	`.muted{color:#6b7280;font-size:.875rem}`

func page(title string, body func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html><head><meta charset="utf-8"><meta name="robots" content="noindex"><title>%s</title><style>%s</style></head><body>`,
			html.EscapeString(title), pageStyle); err != nil {
			return err
		}
		if err := body(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// NotFound renders the dev server's 404 page.
func NotFound(site SiteInfo) templ.Component {
	return page("404 - "+site.Title, func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<h1>Page not found</h1><p>Nothing is built at this path. If you just added the page, wait for the rebuild or check the build log.</p><p><a href="/">Back to the site</a></p>`)
		return err
	})
}

// ServerError renders the dev server's 500 page.
func ServerError(site SiteInfo) templ.Component {
	return page("Error - "+site.Title, func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<h1>Something broke</h1><p>The dev server hit an error. Details are in the terminal.</p>`)
		return err
	})
}

// BuildError shows the most recent build failure so authors see broken
// front matter without switching to the terminal.
func BuildError(site SiteInfo, message string) templ.Component {
	return page("Build failed - "+site.Title, func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Build failed</h1><pre style="white-space:pre-wrap;background:#f3f4f6;padding:1rem;border-radius:.375rem">%s</pre>`,
			html.EscapeString(message))
		return err
	})
}

// DraftList renders the draft index at /drafts/.
func DraftList(site SiteInfo, drafts []DraftItem, enabled bool) templ.Component {
	return page("Drafts - "+site.Title, func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Drafts</h1>`); err != nil {
			return err
		}
		state, action := "off", "enable"
		if enabled {
			state, action = "on", "disable"
		}
		if _, err := fmt.Fprintf(w,
			`<form method="post" action="/drafts/toggle/"><p class="muted">Draft previews are <strong>%s</strong> for this browser. <button type="submit">%s</button></p></form>`,
			state, action); err != nil {
			return err
		}
		if len(drafts) == 0 {
			_, err := io.WriteString(w, `<p>No drafts. Write something.</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<ul>`); err != nil {
			return err
		}
		for _, d := range drafts {
			if _, err := fmt.Fprintf(w,
				`<li><a href="/preview/%s/">%s</a> <span class="muted">%s</span><br><span class="muted">%s</span></li>`,
				url.PathEscape(d.Slug), html.EscapeString(d.Title),
				html.EscapeString(d.Date), html.EscapeString(d.Summary)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// Preview wraps a rendered draft body in minimal chrome with a banner
// marking it unpublished.
func Preview(site SiteInfo, title string, body templ.Component) templ.Component {
	return page(title+" - draft - "+site.Title, func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<div class="banner">Draft preview: this page is not in the built site. <a href="/drafts/">All drafts</a></div><h1>%s</h1>`,
			html.EscapeString(title)); err != nil {
			return err
		}
		return body.Render(ctx, w)
	})
}
