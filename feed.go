package inkpress

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/calmloop/inkpress/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// WriteFeed writes an RSS 2.0 feed for docs to w. Only dated documents are
// feed-worthy; undated pages like About are skipped.
func WriteFeed(w io.Writer, cfg SiteConfig, docs []*content.Document) error {
	items := make([]rssItem, 0, len(docs))
	for _, d := range docs {
		if d.Date.IsZero() {
			continue
		}
		pageURL := AbsoluteURL(cfg.URL, d.Permalink)
		items = append(items, rssItem{
			Title:       d.Title,
			Link:        pageURL,
			Description: d.Summary,
			PubDate:     d.Date.Format(time.RFC1123Z),
			GUID:        pageURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Title,
			Link:        cfg.URL,
			Description: cfg.Description,
			Items:       items,
		},
	}
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
