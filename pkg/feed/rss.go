package feed

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
)

type rssDocument struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Channel *rssChannel `xml:"channel"`
}

type rssChannel struct {
	XMLName        xml.Name   `xml:"channel"`
	Title          string     `xml:"title"`
	Link           string     `xml:"link"`
	Description    string     `xml:"description"`
	Language       string     `xml:"language,omitempty"`
	ManagingEditor string     `xml:"managingEditor,omitempty"`
	LastBuildDate  string     `xml:"lastBuildDate"`
	Generator      string     `xml:"generator"`
	Items          []*rssItem `xml:"item"`
}

type rssItem struct {
	XMLName     xml.Name       `xml:"item"`
	Title       string         `xml:"title"`
	Link        string         `xml:"link"`
	Description string         `xml:"description"`
	Author      string         `xml:"author,omitempty"`
	Guid        *feeds.RssGuid `xml:"guid"`
	PubDate     string         `xml:"pubDate,omitempty"`
	Enclosure   *rssEnclosure  `xml:"enclosure,omitempty"`
}

// rssEnclosure mirrors feeds.RssEnclosure but omits an unknown type
type rssEnclosure struct {
	XMLName xml.Name `xml:"enclosure"`
	URL     string   `xml:"url,attr"`
	Length  string   `xml:"length,attr"`
	Type    string   `xml:"type,attr,omitempty"`
}

func toRSS(doc *Document) *rssDocument {
	channel := &rssChannel{
		Title:          doc.Title,
		Link:           doc.Link,
		Description:    doc.Description,
		Language:       doc.Language,
		ManagingEditor: doc.Author,
		LastBuildDate:  doc.Updated.UTC().Format(time.RFC1123Z),
		Generator:      Generator,
		Items:          make([]*rssItem, 0, len(doc.Entries)),
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		item := &rssItem{
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Description,
			Author:      entry.Author,
			Guid:        &feeds.RssGuid{Id: entry.GUID, IsPermaLink: "false"},
		}
		if !entry.Published.IsZero() {
			item.PubDate = entry.Published.UTC().Format(time.RFC1123Z)
		}
		if entry.Enclosure != nil {
			item.Enclosure = &rssEnclosure{
				URL:    entry.Enclosure.URL,
				Length: strconv.FormatInt(entry.Enclosure.Length, 10),
				Type:   entry.Enclosure.Type,
			}
		}
		channel.Items = append(channel.Items, item)
	}

	return &rssDocument{Version: "2.0", Channel: channel}
}
