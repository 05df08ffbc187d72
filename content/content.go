// Package content loads Markdown documents with YAML front matter from a
// content directory and exposes them as immutable Document values. Documents
// are never written back: the pipeline reads, renders, and moves on.
package content

import (
	"sort"
	"strings"
	"time"
)

// Document is a single piece of content: one Markdown file with its front
// matter resolved. Body holds the Markdown source with the front-matter
// block stripped; rendering to HTML happens downstream.
type Document struct {
	Title      string
	Layout     string
	Permalink  string
	Slug       string
	Section    string // first path element under the content dir, "" for root pages
	Date       time.Time
	Tags       []string
	Summary    string
	Draft      bool
	Body       []byte
	Params     map[string]any // custom front-matter keys, verbatim
	SourcePath string         // content-relative path of the source file
}

// HasExplicitPermalink reports whether the permalink came from front matter
// rather than being derived from the source path.
func (d *Document) HasExplicitPermalink() bool {
	_, ok := d.Params["permalink"]
	return ok
}

// SortByDate orders docs newest first. Documents without a date sort last,
// ties broken by source path so output is deterministic.
func SortByDate(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		di, dj := docs[i].Date, docs[j].Date
		if di.IsZero() != dj.IsZero() {
			return dj.IsZero()
		}
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return docs[i].SourcePath < docs[j].SourcePath
	})
}

// BySection groups docs by their Section, preserving input order.
func BySection(docs []*Document) map[string][]*Document {
	out := make(map[string][]*Document)
	for _, d := range docs {
		out[d.Section] = append(out[d.Section], d)
	}
	return out
}

// Published filters out drafts.
func Published(docs []*Document) []*Document {
	var out []*Document
	for _, d := range docs {
		if !d.Draft {
			out = append(out, d)
		}
	}
	return out
}

// AllTags returns a sorted, deduplicated list of tags across docs.
func AllTags(docs []*Document) []string {
	set := make(map[string]struct{})
	for _, d := range docs {
		for _, t := range d.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				set[t] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
