package inkpress

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestSite lays out a small site under a temp dir and returns its config.
func newTestSite(t *testing.T) SiteConfig {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"content/index.md": `---
title: Home
layout: home
permalink: /
---

Welcome.
`,
		"content/about.md": `---
title: About
layout: single
---

A blog about Swift idioms.
`,
		"content/posts/first-post.md": `---
title: First Post
layout: post
date: 2026-01-10
tags: [swift]
summary: The first one.
---

Hello from the [about page](/about/).
`,
		"content/posts/second-post.md": `---
title: Second Post
layout: post
date: 2026-02-01
---

More words.
`,
		"layouts/partials/head.html": `<title>{{.Page.Title}} | {{.Site.Config.Title}}</title>
<link rel="canonical" href="{{absURL .Page.Permalink}}">`,
		"layouts/single.html": `<html><head>{{template "partials/head.html" .}}</head>
<body><article>{{.Page.Content}}</article></body></html>`,
		"layouts/post.html": `<html><head>{{template "partials/head.html" .}}</head>
<body><article>
<h1>{{.Page.Title}}</h1>
<time>{{fmtDate .Page.Date}}</time>
{{.Page.Content}}
</article></body></html>`,
		"layouts/home.html": `<html><head>{{template "partials/head.html" .}}</head>
<body><ul>
{{range .Site.Posts}}<li><a href="{{.Permalink}}">{{.Title}}</a></li>
{{end}}</ul></body></html>`,
		"static/css/site.css": "body { margin: 0 }\n",
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return SiteConfig{
		Title:      "Test Blog",
		URL:        "https://example.com",
		ContentDir: filepath.Join(root, "content"),
		LayoutsDir: filepath.Join(root, "layouts"),
		StaticDir:  filepath.Join(root, "static"),
		OutputDir:  filepath.Join(root, "public"),
		IndexPath:  filepath.Join(root, "data", "index.db"),
	}
}

func readOutput(t *testing.T, cfg SiteConfig, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read output %s: %v", rel, err)
	}
	return string(b)
}

func TestBuildEndToEnd(t *testing.T) {
	cfg := newTestSite(t)
	e := New(cfg)

	result, err := e.Build(BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 4 {
		t.Errorf("PagesBuilt = %d, want 4", result.PagesBuilt)
	}
	if result.PagesSkipped != 0 {
		t.Errorf("PagesSkipped = %d, want 0", result.PagesSkipped)
	}

	home := readOutput(t, cfg, "index.html")
	if !strings.Contains(home, "First Post") || !strings.Contains(home, "Second Post") {
		t.Errorf("home page missing post listing:\n%s", home)
	}
	if !strings.Contains(home, "Test Blog") {
		t.Errorf("home page missing site title")
	}

	post := readOutput(t, cfg, "posts/first-post/index.html")
	if !strings.Contains(post, "January 10, 2026") {
		t.Errorf("post missing formatted date:\n%s", post)
	}
	if !strings.Contains(post, `href="/about/"`) {
		t.Errorf("post missing rendered internal link:\n%s", post)
	}

	about := readOutput(t, cfg, "about/index.html")
	if !strings.Contains(about, "Swift idioms") {
		t.Errorf("about page body missing")
	}

	if got := readOutput(t, cfg, "css/site.css"); !strings.Contains(got, "margin") {
		t.Errorf("static asset not copied: %q", got)
	}

	sitemap := readOutput(t, cfg, "sitemap.xml")
	for _, want := range []string{
		"https://example.com/",
		"https://example.com/about/",
		"https://example.com/posts/first-post/",
		"<lastmod>2026-01-10</lastmod>",
	} {
		if !strings.Contains(sitemap, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}

	feed := readOutput(t, cfg, "feed.xml")
	if !strings.Contains(feed, "First Post") || !strings.Contains(feed, "The first one.") {
		t.Errorf("feed missing dated post:\n%s", feed)
	}
	if strings.Contains(feed, "<title>About</title>") {
		t.Errorf("feed should not contain undated pages")
	}

	robots := readOutput(t, cfg, "robots.txt")
	if !strings.Contains(robots, "https://example.com/sitemap.xml") {
		t.Errorf("robots.txt missing sitemap: %q", robots)
	}
}

func TestBuildIncremental(t *testing.T) {
	cfg := newTestSite(t)
	e := New(cfg)

	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	result, err := e.Build(BuildOptions{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if result.PagesBuilt != 0 || result.PagesSkipped != 4 {
		t.Fatalf("unchanged rebuild: built %d skipped %d, want 0/4", result.PagesBuilt, result.PagesSkipped)
	}

	// A body-only edit rebuilds just that page.
	src := filepath.Join(cfg.ContentDir, "posts", "second-post.md")
	b, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, append(b, []byte("\nEven more words.\n")...), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err = e.Build(BuildOptions{})
	if err != nil {
		t.Fatalf("third Build: %v", err)
	}
	if result.PagesBuilt != 1 || result.PagesSkipped != 3 {
		t.Fatalf("body edit: built %d skipped %d, want 1/3", result.PagesBuilt, result.PagesSkipped)
	}
	if got := readOutput(t, cfg, "posts/second-post/index.html"); !strings.Contains(got, "Even more words.") {
		t.Errorf("edited page not re-rendered")
	}
}

func TestBuildTitleChangeRebuildsLists(t *testing.T) {
	cfg := newTestSite(t)
	e := New(cfg)

	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	// Retitling a post changes the listing metadata every page can see,
	// so everything rebuilds.
	src := filepath.Join(cfg.ContentDir, "posts", "second-post.md")
	b, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(b), "title: Second Post", "title: Renamed Post", 1)
	if err := os.WriteFile(src, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := e.Build(BuildOptions{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if result.PagesBuilt != 4 {
		t.Fatalf("title edit: built %d, want 4", result.PagesBuilt)
	}
	if got := readOutput(t, cfg, "index.html"); !strings.Contains(got, "Renamed Post") {
		t.Errorf("home listing not refreshed after retitle")
	}
}

func TestBuildParamEditRebuilds(t *testing.T) {
	cfg := newTestSite(t)
	layout := `<html><head>{{template "partials/head.html" .}}</head>
<body class="{{index .Page.Params "accent"}}"><article>{{.Page.Content}}</article></body></html>`
	if err := os.WriteFile(filepath.Join(cfg.LayoutsDir, "accent.html"), []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(cfg.ContentDir, "styled.md")
	write := func(accent string) {
		t.Helper()
		doc := "---\ntitle: Styled\nlayout: accent\naccent: " + accent + "\n---\n\nColored page.\n"
		if err := os.WriteFile(src, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("teal")

	e := New(cfg)
	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if got := readOutput(t, cfg, "styled/index.html"); !strings.Contains(got, `class="teal"`) {
		t.Fatalf("custom param not rendered:\n%s", got)
	}

	// A custom-key edit is layout-visible, so the page must not be skipped.
	write("crimson")
	result, err := e.Build(BuildOptions{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if result.PagesBuilt != 1 || result.PagesSkipped != 4 {
		t.Fatalf("param edit: built %d skipped %d, want 1/4", result.PagesBuilt, result.PagesSkipped)
	}
	got := readOutput(t, cfg, "styled/index.html")
	if !strings.Contains(got, `class="crimson"`) || strings.Contains(got, "teal") {
		t.Errorf("page is stale after param edit:\n%s", got)
	}
}

func TestBuildLayoutsPartialsSibling(t *testing.T) {
	cfg := newTestSite(t)
	// A directory whose name merely starts with "partials" holds page
	// layouts, not partials; both kinds must resolve.
	layout := `<html><head>{{template "partials/head.html" .}}</head>
<body class="wide"><article>{{.Page.Content}}</article></body></html>`
	dir := filepath.Join(cfg.LayoutsDir, "partials-old")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wide.html"), []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := "---\ntitle: Wide\nlayout: partials-old/wide\n---\n\nStretched out.\n"
	if err := os.WriteFile(filepath.Join(cfg.ContentDir, "wide.md"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(cfg)
	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := readOutput(t, cfg, "wide/index.html")
	if !strings.Contains(got, `class="wide"`) || !strings.Contains(got, "Stretched out.") {
		t.Errorf("sibling-directory layout did not render:\n%s", got)
	}
	if !strings.Contains(got, "Wide | Test Blog") {
		t.Errorf("partial inside the real partials dir did not resolve:\n%s", got)
	}
}

func TestBuildForce(t *testing.T) {
	cfg := newTestSite(t)
	e := New(cfg)

	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	result, err := e.Build(BuildOptions{Force: true})
	if err != nil {
		t.Fatalf("forced Build: %v", err)
	}
	if result.PagesBuilt != 4 || result.PagesSkipped != 0 {
		t.Fatalf("forced rebuild: built %d skipped %d, want 4/0", result.PagesBuilt, result.PagesSkipped)
	}
}

func TestBuildRemovesStalePages(t *testing.T) {
	cfg := newTestSite(t)
	e := New(cfg)

	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if err := os.Remove(filepath.Join(cfg.ContentDir, "posts", "second-post.md")); err != nil {
		t.Fatal(err)
	}

	result, err := e.Build(BuildOptions{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if result.PagesRemoved != 1 {
		t.Fatalf("PagesRemoved = %d, want 1", result.PagesRemoved)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "posts", "second-post")); !os.IsNotExist(err) {
		t.Errorf("stale page directory still present")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "posts", "first-post", "index.html")); err != nil {
		t.Errorf("surviving page removed: %v", err)
	}
}

func TestBuildDrafts(t *testing.T) {
	cfg := newTestSite(t)
	draft := `---
title: Work In Progress
layout: post
draft: true
---

Not ready.
`
	if err := os.WriteFile(filepath.Join(cfg.ContentDir, "posts", "wip.md"), []byte(draft), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(cfg)

	if _, err := e.Build(BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "posts", "wip", "index.html")); !os.IsNotExist(err) {
		t.Errorf("draft built without the drafts option")
	}

	if _, err := e.Build(BuildOptions{Drafts: true}); err != nil {
		t.Fatalf("Build with drafts: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "posts", "wip", "index.html")); err != nil {
		t.Errorf("draft not built with the drafts option: %v", err)
	}
}

func TestBuildLintFailure(t *testing.T) {
	cfg := newTestSite(t)
	bad := `---
title: Broken
layout: nonexistent
---

Body.
`
	if err := os.WriteFile(filepath.Join(cfg.ContentDir, "broken.md"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(cfg)

	_, err := e.Build(BuildOptions{})
	if err == nil {
		t.Fatal("Build succeeded with an unknown layout")
	}
	var lintErr *LintError
	if !errors.As(err, &lintErr) {
		t.Fatalf("error is %T, want *LintError", err)
	}
	if len(lintErr.Findings) == 0 {
		t.Fatal("LintError carries no findings")
	}
	if !strings.Contains(lintErr.Error(), "nonexistent") {
		t.Errorf("error does not name the missing layout: %v", lintErr)
	}
}
