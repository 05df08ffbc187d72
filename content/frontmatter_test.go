package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentFullFrontMatter(t *testing.T) {
	source := []byte(`---
title: Enums Instead of Booleans
layout: post
permalink: /swift/enums-instead-of-booleans/
date: 2024-03-10
tags: [swift, modeling]
summary: Why a two-case enum beats a bool.
accent: teal
---
Body text with a [link](/about/).
`)

	doc, err := buildDocument("posts/enums.md", source)
	require.NoError(t, err)

	assert.Equal(t, "Enums Instead of Booleans", doc.Title)
	assert.Equal(t, "post", doc.Layout)
	assert.Equal(t, "/swift/enums-instead-of-booleans/", doc.Permalink)
	assert.Equal(t, "enums-instead-of-booleans", doc.Slug)
	assert.Equal(t, "posts", doc.Section)
	assert.Equal(t, "2024-03-10", doc.Date.Format("2006-01-02"))
	assert.Equal(t, []string{"swift", "modeling"}, doc.Tags)
	assert.Equal(t, "Why a two-case enum beats a bool.", doc.Summary)
	assert.False(t, doc.Draft)
	assert.Contains(t, string(doc.Body), "Body text")
	assert.NotContains(t, string(doc.Body), "---")
	assert.Equal(t, "teal", doc.Params["accent"])
	assert.True(t, doc.HasExplicitPermalink())
}

func TestBuildDocumentDefaults(t *testing.T) {
	doc, err := buildDocument("posts/failable-initializers.md", []byte("Just prose, no front matter.\n"))
	require.NoError(t, err)

	assert.Equal(t, "Failable Initializers", doc.Title)
	assert.Equal(t, "single", doc.Layout)
	assert.Equal(t, "/posts/failable-initializers/", doc.Permalink)
	assert.Equal(t, "failable-initializers", doc.Slug)
	assert.False(t, doc.HasExplicitPermalink())
	assert.True(t, doc.Date.IsZero())
}

func TestBuildDocumentPermalinkNormalized(t *testing.T) {
	source := []byte("---\ntitle: About\npermalink: about\n---\nHi.\n")
	doc, err := buildDocument("about.md", source)
	require.NoError(t, err)
	assert.Equal(t, "/about/", doc.Permalink)
	assert.Equal(t, "", doc.Section)
}

func TestBuildDocumentIndexFile(t *testing.T) {
	doc, err := buildDocument("posts/index.md", []byte("---\ntitle: Archive\nlayout: list\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "/posts/", doc.Permalink)
	assert.Equal(t, "posts", doc.Slug)
}

func TestBuildDocumentBadDate(t *testing.T) {
	_, err := buildDocument("posts/p.md", []byte("---\ntitle: P\ndate: March 10th\n---\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized date")
}

func TestBuildDocumentMalformedFrontMatter(t *testing.T) {
	_, err := buildDocument("posts/p.md", []byte("---\ntitle: [unclosed\n---\nbody\n"))
	require.Error(t, err)
}

func TestBuildDocumentDraft(t *testing.T) {
	doc, err := buildDocument("posts/wip.md", []byte("---\ntitle: WIP\ndraft: true\n---\n"))
	require.NoError(t, err)
	assert.True(t, doc.Draft)
}

func TestNormalizePermalink(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"about", "/about/"},
		{"/about", "/about/"},
		{"/about/", "/about/"},
		{"a/b//c", "/a/b/c/"},
		{"/", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePermalink(tt.in), "input %q", tt.in)
	}
}
