// Package lint checks content-level properties of a loaded site: every
// document has a non-empty title and layout, the layout exists, permalinks
// are unique, and internal links point at pages or assets that exist.
package lint

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/calmloop/inkpress/content"
)

// Severity classifies a finding. Errors fail the lint run; warnings do not.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Finding is a single lint result tied to a source file.
type Finding struct {
	File     string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.File, f.Severity, f.Message)
}

// Options configures a lint run.
type Options struct {
	// LayoutExists reports whether a layout name resolves to a template.
	// nil skips the layout-existence check (title/layout presence is still
	// checked).
	LayoutExists func(name string) bool
	// AssetExists reports whether an internal link that is not a page
	// resolves to a static asset. nil treats unknown paths as broken.
	AssetExists func(urlPath string) bool
}

// Markdown links and raw hrefs/srcs with a site-absolute target.
var (
	reMarkdownLink = regexp.MustCompile(`\]\(\s*(/[^)\s]*)\s*\)`)
	reRawLink      = regexp.MustCompile(`(?:href|src)="(/[^"]*)"`)
)

// Run lints docs and returns findings sorted by file. An empty slice means
// the site is clean.
func Run(docs []*content.Document, opts Options) []Finding {
	var findings []Finding
	report := func(doc *content.Document, sev Severity, format string, args ...any) {
		findings = append(findings, Finding{
			File:     doc.SourcePath,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	pages := make(map[string]*content.Document, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Title) == "" {
			report(doc, Error, "missing title")
		}
		if strings.TrimSpace(doc.Layout) == "" {
			report(doc, Error, "missing layout")
		} else if opts.LayoutExists != nil && !opts.LayoutExists(doc.Layout) {
			report(doc, Error, "layout %q not found", doc.Layout)
		}

		if prev, dup := pages[doc.Permalink]; dup {
			report(doc, Error, "permalink %s already used by %s", doc.Permalink, prev.SourcePath)
		} else {
			pages[doc.Permalink] = doc
		}
	}

	for _, doc := range docs {
		for _, target := range internalLinks(doc.Body) {
			if linkResolves(target, pages, opts.AssetExists) {
				continue
			}
			report(doc, Error, "broken internal link %s", target)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].File < findings[j].File
	})
	return findings
}

// HasErrors reports whether any finding is an Error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == Error {
			return true
		}
	}
	return false
}

// internalLinks extracts site-absolute link targets from Markdown source.
// External URLs and pure fragments are not this linter's business.
func internalLinks(body []byte) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(target string) {
		target = strings.TrimSpace(target)
		if i := strings.IndexAny(target, "#?"); i >= 0 {
			target = target[:i]
		}
		if target == "" {
			return
		}
		if _, ok := seen[target]; ok {
			return
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	for _, m := range reMarkdownLink.FindAllSubmatch(body, -1) {
		add(string(m[1]))
	}
	for _, m := range reRawLink.FindAllSubmatch(body, -1) {
		add(string(m[1]))
	}
	return out
}

func linkResolves(target string, pages map[string]*content.Document, assetExists func(string) bool) bool {
	if _, ok := pages[content.NormalizePermalink(target)]; ok {
		return true
	}
	// The pipeline emits these itself; they exist in every build.
	switch target {
	case "/sitemap.xml", "/feed.xml", "/robots.txt":
		return true
	}
	if assetExists != nil && assetExists(target) {
		return true
	}
	return false
}
