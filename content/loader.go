package content

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPattern matches every Markdown file under the content dir.
const DefaultPattern = "**/*.md"

// Loader discovers Markdown files on a filesystem and turns them into
// Documents. It operates on fs.FS so tests can feed it a fstest.MapFS.
type Loader struct {
	fsys    fs.FS
	pattern string
}

// NewLoader creates a Loader rooted at fsys. pattern is a doublestar glob
// relative to the root; empty means DefaultPattern.
func NewLoader(fsys fs.FS, pattern string) *Loader {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	return &Loader{fsys: fsys, pattern: pattern}
}

// Load reads every matching file and returns the parsed documents sorted
// newest first. A file that fails to parse fails the whole load: a build
// should never silently drop content.
func (l *Loader) Load() ([]*Document, error) {
	matches, err := doublestar.Glob(l.fsys, l.pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", l.pattern, err)
	}
	sort.Strings(matches)

	var docs []*Document
	for _, name := range matches {
		doc, err := l.LoadFile(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	SortByDate(docs)
	return docs, nil
}

// LoadFile reads and parses a single document by content-relative path.
func (l *Loader) LoadFile(name string) (*Document, error) {
	source, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return buildDocument(path.Clean(name), source)
}

// NormalizePermalink forces the /segment/segment/ form: leading slash,
// trailing slash, forward slashes only.
func NormalizePermalink(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	if p == "/" {
		return "/"
	}
	return p + "/"
}

// permalinkFromPath derives the URL path for a document with no explicit
// permalink: the source path with the extension dropped. An index.md maps to
// its directory, so content/posts/index.md lands at /posts/.
func permalinkFromPath(relPath string) string {
	p := strings.TrimSuffix(relPath, path.Ext(relPath))
	if path.Base(p) == "index" {
		p = path.Dir(p)
		if p == "." {
			p = ""
		}
	}
	return NormalizePermalink(p)
}

func slugFromPermalink(permalink string) string {
	trimmed := strings.Trim(permalink, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

func sectionFromPath(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	return strings.Split(dir, "/")[0]
}

var titleCaser = cases.Title(language.English)

// titleFromPath turns a file stem like "failable-initializers.md" into
// "Failable Initializers".
func titleFromPath(relPath string) string {
	stem := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	stem = strings.ReplaceAll(stem, "-", " ")
	stem = strings.ReplaceAll(stem, "_", " ")
	return titleCaser.String(stem)
}
