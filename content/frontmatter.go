package content

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// envelope is the typed shape of the front-matter block. Unknown keys are
// collected into Custom so authors can pass arbitrary values to layouts.
type envelope struct {
	Title     string         `yaml:"title"`
	Layout    string         `yaml:"layout"`
	Permalink string         `yaml:"permalink"`
	Date      string         `yaml:"date"`
	Tags      []string       `yaml:"tags"`
	Summary   string         `yaml:"summary"`
	Draft     bool           `yaml:"draft"`
	Custom    map[string]any `yaml:",inline"`
}

// dateFormats are tried in order when parsing the front-matter date field.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseFrontMatter splits source into front matter and Markdown body.
// A file without a front-matter block is valid: the envelope comes back
// zero-valued and the body is the whole file.
func parseFrontMatter(source []byte) (envelope, []byte, error) {
	var meta envelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return envelope{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return meta, body, nil
}

// buildDocument assembles a Document from a parsed envelope and the
// content-relative source path. Derivation rules:
//   - Title falls back to a title-cased file stem.
//   - Layout falls back to "single".
//   - Permalink uses the front-matter override when present, otherwise the
//     source path with the extension dropped. Either way it is normalized to
//     the /segment/segment/ form.
func buildDocument(relPath string, source []byte) (*Document, error) {
	meta, body, err := parseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}

	doc := &Document{
		Title:      meta.Title,
		Layout:     meta.Layout,
		Tags:       append([]string(nil), meta.Tags...),
		Summary:    meta.Summary,
		Draft:      meta.Draft,
		Body:       body,
		Params:     cloneParams(meta.Custom),
		SourcePath: relPath,
	}

	if meta.Date != "" {
		parsed := false
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, meta.Date); err == nil {
				doc.Date = t
				parsed = true
				break
			}
		}
		if !parsed {
			return nil, fmt.Errorf("%s: unrecognized date %q (want YYYY-MM-DD or RFC3339)", relPath, meta.Date)
		}
	}

	if doc.Title == "" {
		doc.Title = titleFromPath(relPath)
	}
	if doc.Layout == "" {
		doc.Layout = "single"
	}

	if meta.Permalink != "" {
		doc.Permalink = NormalizePermalink(meta.Permalink)
		doc.Params["permalink"] = meta.Permalink
	} else {
		doc.Permalink = permalinkFromPath(relPath)
	}
	doc.Slug = slugFromPermalink(doc.Permalink)
	doc.Section = sectionFromPath(relPath)

	return doc, nil
}

func cloneParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
