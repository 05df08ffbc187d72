package inkpress

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/calmloop/inkpress/content"
	"github.com/calmloop/inkpress/lint"
)

// BuildOptions narrows the scope of a build run.
type BuildOptions struct {
	// Drafts includes draft documents in the output.
	Drafts bool
	// Force rebuilds every page regardless of the build index.
	Force bool
}

// BuildResult reports what a build did.
type BuildResult struct {
	PagesBuilt   int
	PagesSkipped int
	PagesRemoved int
	Duration     time.Duration
}

// Page is a document prepared for template execution. JSONLD is template.JS
// because layouts interpolate it inside a script element.
type Page struct {
	*content.Document
	Content template.HTML
	JSONLD  template.JS
}

// SiteData is the site-wide template context. Layouts receive it as .Site.
type SiteData struct {
	Config SiteConfig
	Docs   []*content.Document            // all published documents, newest first
	Posts  []*content.Document            // the "posts" section
	ByTag  map[string][]*content.Document // published documents grouped by tag
	Tags   []string
}

// Build runs the full pipeline: load, lint, render, copy static assets,
// emit sitemap/feed/robots, and reconcile the build index.
func (e *Engine) Build(opts BuildOptions) (*BuildResult, error) {
	start := time.Now()
	cfg := e.Config

	docs, err := e.LoadContent()
	if err != nil {
		return nil, err
	}

	templates, layoutsHash, err := e.loadLayouts()
	if err != nil {
		return nil, err
	}

	findings := lint.Run(docs, lint.Options{
		LayoutExists: func(name string) bool {
			return templates.Lookup(layoutTemplateName(name)) != nil
		},
		AssetExists: e.staticAssetExists,
	})
	if lint.HasErrors(findings) {
		return nil, &LintError{Findings: findings}
	}

	if !opts.Drafts && !cfg.BuildDrafts {
		docs = content.Published(docs)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("inkpress: create output dir: %w", err)
	}

	idx, err := OpenIndex(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("inkpress: open build index: %w", err)
	}
	defer idx.Close()

	site := e.siteData(docs)
	listHash := siteListHash(docs)
	result := &BuildResult{}

	live := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		live[doc.SourcePath] = struct{}{}

		hash := pageHash(doc, layoutsHash, listHash)
		outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(doc.Permalink), "index.html")
		if !opts.Force {
			if entry, ok, err := idx.Get(doc.SourcePath); err != nil {
				return nil, err
			} else if ok && entry.Hash == hash && fileExists(outPath) {
				result.PagesSkipped++
				continue
			}
		}

		if err := e.renderPage(templates, site, doc, outPath); err != nil {
			return nil, err
		}
		if err := idx.Put(IndexEntry{Source: doc.SourcePath, Permalink: doc.Permalink, Hash: hash}); err != nil {
			return nil, err
		}
		result.PagesBuilt++
	}

	// Pages whose source disappeared get their output removed too.
	removed, err := idx.Prune(live)
	if err != nil {
		return nil, err
	}
	for _, entry := range removed {
		target := filepath.Join(cfg.OutputDir, filepath.FromSlash(entry.Permalink))
		if entry.Permalink == "/" {
			// Never remove the output root itself.
			target = filepath.Join(target, "index.html")
		}
		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("inkpress: remove stale page %s: %w", entry.Permalink, err)
		}
		result.PagesRemoved++
	}

	if err := e.copyStatic(); err != nil {
		return nil, err
	}
	if _, err := e.BuildCovers(); err != nil {
		return nil, err
	}
	if err := e.writeArtifacts(docs); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// LintError wraps lint findings so callers can distinguish content problems
// from pipeline failures.
type LintError struct {
	Findings []lint.Finding
}

func (e *LintError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "inkpress: %d lint problem(s):", len(e.Findings))
	for _, f := range e.Findings {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}

func (e *Engine) siteData(docs []*content.Document) *SiteData {
	byTag := make(map[string][]*content.Document)
	for _, d := range docs {
		for _, t := range d.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				byTag[t] = append(byTag[t], d)
			}
		}
	}
	return &SiteData{
		Config: e.Config,
		Docs:   docs,
		Posts:  content.BySection(docs)["posts"],
		ByTag:  byTag,
		Tags:   content.AllTags(docs),
	}
}

func (e *Engine) renderPage(templates *template.Template, site *SiteData, doc *content.Document, outPath string) error {
	html, err := e.Markdown.Render(doc.Body)
	if err != nil {
		return fmt.Errorf("inkpress: render %s: %w", doc.SourcePath, err)
	}
	page := &Page{
		Document: doc,
		Content:  template.HTML(html),
		JSONLD:   template.JS(BlogPostingJsonLD(doc, e.Config)),
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("inkpress: create page dir for %s: %w", doc.Permalink, err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("inkpress: create %s: %w", outPath, err)
	}
	defer f.Close()

	data := struct {
		Site *SiteData
		Page *Page
	}{Site: site, Page: page}

	if err := templates.ExecuteTemplate(f, layoutTemplateName(doc.Layout), data); err != nil {
		return fmt.Errorf("inkpress: execute layout %q for %s: %w", doc.Layout, doc.SourcePath, err)
	}
	return nil
}

// loadLayouts parses every .html file under LayoutsDir. base.html and the
// partials directory are parsed first so page layouts can reference their
// definitions. Returns the template set and a hash covering all layout
// bytes, so layout edits invalidate the build index.
func (e *Engine) loadLayouts() (*template.Template, string, error) {
	dir := e.Config.LayoutsDir
	if _, err := os.Stat(dir); err != nil {
		return nil, "", fmt.Errorf("inkpress: layouts dir %s: %w", dir, err)
	}

	var baseFiles, pageFiles []string
	partialsPrefix := filepath.Join(dir, "partials") + string(filepath.Separator)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		if d.Name() == "base.html" || strings.HasPrefix(path, partialsPrefix) {
			baseFiles = append(baseFiles, path)
		} else {
			pageFiles = append(pageFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("inkpress: scan layouts: %w", err)
	}
	if len(baseFiles)+len(pageFiles) == 0 {
		return nil, "", fmt.Errorf("inkpress: no .html layouts found in %s", dir)
	}
	sort.Strings(baseFiles)
	sort.Strings(pageFiles)

	templates := template.New("").Funcs(e.templateFuncs())
	h := sha256.New()
	for _, path := range append(append([]string{}, baseFiles...), pageFiles...) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("inkpress: read layout %s: %w", path, err)
		}
		h.Write(src)
		rel, _ := filepath.Rel(dir, path)
		if _, err := templates.New(filepath.ToSlash(rel)).Parse(string(src)); err != nil {
			return nil, "", fmt.Errorf("inkpress: parse layout %s: %w", path, err)
		}
	}
	return templates, hex.EncodeToString(h.Sum(nil)), nil
}

func (e *Engine) templateFuncs() template.FuncMap {
	cfg := e.Config
	return template.FuncMap{
		"absURL": func(p string) string {
			return AbsoluteURL(cfg.URL, p)
		},
		"joinTags": JoinTags,
		"fmtDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"websiteJsonLD": func() template.JS {
			return template.JS(WebsiteJsonLD(cfg))
		},
	}
}

// layoutTemplateName maps a front-matter layout name to its template name.
// "post" and "post.html" both select post.html.
func layoutTemplateName(name string) string {
	if strings.HasSuffix(name, ".html") {
		return name
	}
	return name + ".html"
}

func (e *Engine) staticAssetExists(urlPath string) bool {
	rel := filepath.FromSlash(strings.TrimPrefix(urlPath, "/"))
	if rel == "" {
		return false
	}
	if fileExists(filepath.Join(e.Config.StaticDir, rel)) {
		return true
	}
	// Cover links point at the .jpg derivative; resolve them against the
	// originals, whatever their extension.
	dir, name := filepath.Split(rel)
	if filepath.Clean(dir) == coversSubdir && strings.HasSuffix(name, ".jpg") {
		stem := strings.TrimSuffix(name, ".jpg")
		entries, err := os.ReadDir(filepath.Join(e.Config.StaticDir, coversSubdir))
		if err != nil {
			return false
		}
		for _, entry := range entries {
			entryStem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if Slugify(entryStem) == stem {
				return true
			}
		}
	}
	return false
}

// copyStatic copies the static dir verbatim, except the covers dir, which
// ships only as resized derivatives (see BuildCovers).
func (e *Engine) copyStatic() error {
	src := e.Config.StaticDir
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel == coversSubdir {
				return fs.SkipDir
			}
			return os.MkdirAll(filepath.Join(e.Config.OutputDir, rel), 0o755)
		}
		return copyFile(path, filepath.Join(e.Config.OutputDir, rel))
	})
}

func (e *Engine) writeArtifacts(docs []*content.Document) error {
	cfg := e.Config

	sitemap, err := os.Create(filepath.Join(cfg.OutputDir, "sitemap.xml"))
	if err != nil {
		return fmt.Errorf("inkpress: create sitemap.xml: %w", err)
	}
	defer sitemap.Close()
	if err := WriteSitemap(sitemap, cfg, docs); err != nil {
		return fmt.Errorf("inkpress: write sitemap.xml: %w", err)
	}

	feed, err := os.Create(filepath.Join(cfg.OutputDir, "feed.xml"))
	if err != nil {
		return fmt.Errorf("inkpress: create feed.xml: %w", err)
	}
	defer feed.Close()
	if err := WriteFeed(feed, cfg, docs); err != nil {
		return fmt.Errorf("inkpress: write feed.xml: %w", err)
	}

	robots := "User-agent: *\nAllow: /\nSitemap: " + AbsoluteURL(cfg.URL, "/sitemap.xml") + "\n"
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, "robots.txt"), []byte(robots), 0o644); err != nil {
		return fmt.Errorf("inkpress: write robots.txt: %w", err)
	}
	return nil
}

// pageHash captures everything a rendered page depends on: its own source
// fields, the layout set, and the site-wide listing metadata (list layouts
// show other documents' titles and summaries).
func pageHash(doc *content.Document, layoutsHash, listHash string) string {
	h := sha256.New()
	io.WriteString(h, doc.Title)
	io.WriteString(h, "\x00")
	io.WriteString(h, doc.Layout)
	io.WriteString(h, "\x00")
	io.WriteString(h, doc.Permalink)
	io.WriteString(h, "\x00")
	io.WriteString(h, doc.Summary)
	io.WriteString(h, "\x00")
	io.WriteString(h, doc.Date.Format(time.RFC3339))
	io.WriteString(h, "\x00")
	io.WriteString(h, strings.Join(doc.Tags, ","))
	io.WriteString(h, "\x00")
	h.Write(doc.Body)
	io.WriteString(h, "\x00")
	io.WriteString(h, paramsFingerprint(doc.Params))
	io.WriteString(h, "\x00")
	io.WriteString(h, layoutsHash)
	io.WriteString(h, "\x00")
	io.WriteString(h, listHash)
	return hex.EncodeToString(h.Sum(nil))
}

// paramsFingerprint serializes custom front-matter keys deterministically.
// Layouts can render any Params value, so an edit there must invalidate the
// page like an edit to a named field would.
func paramsFingerprint(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v\n", k, params[k])
	}
	return b.String()
}

func siteListHash(docs []*content.Document) string {
	h := sha256.New()
	for _, d := range docs {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s\n", d.Permalink, d.Title, d.Summary,
			d.Date.Format(time.RFC3339), strings.Join(d.Tags, ","))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
