package inkpress

import (
	"encoding/xml"
	"io"

	"github.com/calmloop/inkpress/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemap for docs to w. Every document gets an
// entry; dated documents carry a lastmod.
func WriteSitemap(w io.Writer, cfg SiteConfig, docs []*content.Document) error {
	urls := []sitemapURL{
		{Loc: BuildURL(cfg.URL)},
	}
	for _, d := range docs {
		if d.Permalink == "/" {
			continue // home is already listed
		}
		u := sitemapURL{Loc: AbsoluteURL(cfg.URL, d.Permalink)}
		if !d.Date.IsZero() {
			u.LastMod = d.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}
