// Package preview provides an interactive feed entry preview using Bubble Tea.
package preview

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"github.com/lepinkainen/twitterss/pkg/feed"
)

const (
	defaultWidth     = 72
	maxTitleWidth    = 70
	maxContentRunes  = 1000
	wrapBreakpoints  = " ,.;-/"
	xmlBreakpoints   = " >"
	compactDateStyle = time.RFC3339
)

// FormatCompactListItem formats a single feed entry in compact list format
// Example: " 1. [📷] 2025-10-21T13:33:58Z  RT from @alice"
func FormatCompactListItem(index int, entry *feed.Entry) string {
	marker := "    "
	if entry.Enclosure != nil {
		marker = "[📷]"
	}

	title := ansi.Truncate(entry.Title, maxTitleWidth, "…")
	return fmt.Sprintf("%2d. %s %s  %s", index+1, marker, entry.Published.UTC().Format(compactDateStyle), title)
}

// FormatDetailedItem formats a single feed entry with all metadata, wrapped to width.
// A width of zero uses the default.
func FormatDetailedItem(entry *feed.Entry, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	rule := strings.Repeat("═", width)

	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Title: %s\n", entry.Title)
	fmt.Fprintf(&b, "Link: %s\n", entry.Link)
	fmt.Fprintf(&b, "GUID: %s\n", entry.GUID)
	if entry.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", entry.Author)
	}
	if !entry.Published.IsZero() {
		fmt.Fprintf(&b, "Posted: %s\n", formatTimeAgo(entry.Published))
	}
	if enc := entry.Enclosure; enc != nil {
		mediaType := enc.Type
		if mediaType == "" {
			mediaType = "unknown type"
		}
		fmt.Fprintf(&b, "Media: %s (%s)\n", enc.URL, mediaType)
	}

	if content := PlainText(entry.Description); content != "" {
		if runes := []rune(content); len(runes) > maxContentRunes {
			content = string(runes[:maxContentRunes]) + "…"
		}
		b.WriteString("\nContent:\n")
		b.WriteString(ansi.Wrap(content, width, wrapBreakpoints))
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	return b.String()
}

// PlainText converts an HTML entry body to text, turning line breaks and
// paragraphs into newlines
func PlainText(body string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(body))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteString("\n")
			case "img":
				b.WriteString("[image]")
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				b.WriteString("\n")
			}
		}
	}
}

var entryRegex = regexp.MustCompile(`(?s)<(item|entry)>.*?</(item|entry)>`)

// FormatXMLItem renders the entry at index as it appears in the serialized feed
func FormatXMLItem(doc *feed.Document, index int, format feed.Format) string {
	if index < 0 || index >= len(doc.Entries) {
		return fmt.Sprintf("Index %d out of range (%d entries)", index, len(doc.Entries))
	}

	// Generate a full feed with just this one entry
	single := *doc
	single.Entries = doc.Entries[index : index+1]

	data, err := feed.Marshal(&single, format)
	if err != nil {
		return fmt.Sprintf("Error generating feed: %s", err)
	}

	match := entryRegex.Find(data)
	if match == nil {
		return "No entry found in generated feed"
	}

	return ansi.Wrap(string(match), 80, xmlBreakpoints) + "\n"
}

// formatTimeAgo formats recent times relative to now and older ones as a date
func formatTimeAgo(t time.Time) string {
	if time.Since(t) >= 7*24*time.Hour {
		return t.Format(time.DateOnly)
	}
	return humanize.Time(t)
}
