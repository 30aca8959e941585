package feed

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

// atomEntry is an Atom entry with enclosure links
type atomEntry struct {
	XMLName   xml.Name           `xml:"entry"`
	Title     string             `xml:"title"`
	Updated   string             `xml:"updated"`
	Id        string             `xml:"id"`
	Content   *feeds.AtomContent `xml:"content,omitempty"`
	Published string             `xml:"published,omitempty"`
	Links     []feeds.AtomLink   `xml:"link"`
	Author    *feeds.AtomAuthor  `xml:"author,omitempty"`
}

type atomFeed struct {
	XMLName   xml.Name          `xml:"feed"`
	Xmlns     string            `xml:"xmlns,attr"`
	Lang      string            `xml:"xml:lang,attr,omitempty"`
	Title     string            `xml:"title"`
	Id        string            `xml:"id"`
	Updated   string            `xml:"updated"`
	Generator string            `xml:"generator"`
	Link      *feeds.AtomLink   `xml:"link,omitempty"`
	Author    *feeds.AtomAuthor `xml:"author,omitempty"`
	Subtitle  string            `xml:"subtitle,omitempty"`
	Entries   []*atomEntry      `xml:"entry"`
}

func atomAuthor(name string) *feeds.AtomAuthor {
	if name == "" {
		return nil
	}
	return &feeds.AtomAuthor{AtomPerson: feeds.AtomPerson{Name: name}}
}

// atomID turns a bare post id into a URI, as Atom requires
func atomID(guid string) string {
	return "urn:twitterss:" + guid
}

func toAtom(doc *Document) *atomFeed {
	updated := doc.Updated.UTC().Format(time.RFC3339)
	out := &atomFeed{
		Xmlns:     atomNamespace,
		Lang:      doc.Language,
		Title:     doc.Title,
		Id:        doc.Link,
		Updated:   updated,
		Generator: Generator,
		Link:      &feeds.AtomLink{Href: doc.Link, Rel: "alternate"},
		Author:    atomAuthor(doc.Author),
		Subtitle:  doc.Description,
		Entries:   make([]*atomEntry, 0, len(doc.Entries)),
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]

		entryUpdated := updated
		published := ""
		if !entry.Published.IsZero() {
			published = entry.Published.UTC().Format(time.RFC3339)
			entryUpdated = published
		}

		links := []feeds.AtomLink{{Href: entry.Link, Rel: "alternate", Type: "text/html"}}
		if entry.Enclosure != nil {
			links = append(links, feeds.AtomLink{
				Href:   entry.Enclosure.URL,
				Rel:    "enclosure",
				Type:   entry.Enclosure.Type,
				Length: strconv.FormatInt(entry.Enclosure.Length, 10),
			})
		}

		out.Entries = append(out.Entries, &atomEntry{
			Title:     entry.Title,
			Updated:   entryUpdated,
			Id:        atomID(entry.GUID),
			Content:   &feeds.AtomContent{Content: entry.Description, Type: "html"},
			Published: published,
			Links:     links,
			Author:    atomAuthor(entry.Author),
		})
	}

	return out
}
