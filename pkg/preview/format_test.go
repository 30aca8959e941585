package preview

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/lepinkainen/twitterss/pkg/feed"
)

func testDocument() *feed.Document {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &feed.Document{
		Title:       "Tech",
		Link:        "https://example.com/feeds",
		Description: "alice's TwitteRSS Feed",
		Language:    "en-US",
		Updated:     published,
		Entries: []feed.Entry{
			{
				Title:       "Tweet from @alice",
				Link:        "https://twitter.com/alice/status/1",
				GUID:        "1",
				Description: "line one<br/>line two",
				Author:      "Alice A",
				Published:   published,
			},
			{
				Title:       "Quote from @bob",
				Link:        "https://twitter.com/bob/status/2",
				GUID:        "2",
				Description: "<p>my take</p><p>*** Quoted @carol (Carol C) ***</p><p>a &amp; b</p><p><img src=\"https://pbs.twimg.com/media/c.png\"/></p>",
				Author:      "Bob B",
				Published:   published.Add(-time.Hour),
				Enclosure:   &feed.Enclosure{URL: "https://pbs.twimg.com/media/c.png", Type: "image/png"},
			},
		},
	}
}

func TestFormatCompactListItem(t *testing.T) {
	doc := testDocument()

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{name: "without media", index: 0, want: " 1.      2024-03-01T12:00:00Z  Tweet from @alice"},
		{name: "with media", index: 1, want: " 2. [📷] 2024-03-01T11:00:00Z  Quote from @bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCompactListItem(tt.index, &doc.Entries[tt.index]); got != tt.want {
				t.Errorf("FormatCompactListItem() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCompactListItem_TruncatesTitle(t *testing.T) {
	entry := feed.Entry{Title: strings.Repeat("x", 100)}
	got := FormatCompactListItem(0, &entry)
	if !strings.HasSuffix(got, "…") || strings.Count(got, "x") != 69 {
		t.Errorf("FormatCompactListItem() = %q", got)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "line breaks", in: "line one<br/>line two", want: "line one\nline two"},
		{name: "entities decoded", in: "a &amp; b &lt;3", want: "a & b <3"},
		{name: "paragraphs", in: "<p>one</p><p>two</p>", want: "one\ntwo"},
		{name: "image placeholder", in: "look<p><img src=\"x.jpg\"/></p>", want: "look[image]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDetailedItem(t *testing.T) {
	doc := testDocument()
	got := FormatDetailedItem(&doc.Entries[1], 0)

	for _, want := range []string{
		"Title: Quote from @bob",
		"Link: https://twitter.com/bob/status/2",
		"GUID: 2",
		"Author: Bob B",
		"Media: https://pbs.twimg.com/media/c.png (image/png)",
		"*** Quoted @carol (Carol C) ***",
		"a & b",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatDetailedItem() missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatXMLItem(t *testing.T) {
	doc := testDocument()

	tests := []struct {
		name   string
		format feed.Format
		open   string
		close  string
	}{
		{name: "rss", format: feed.RSS, open: "<item>", close: "</item>"},
		{name: "atom", format: feed.Atom, open: "<entry>", close: "</entry>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatXMLItem(doc, 1, tt.format)
			if !strings.HasPrefix(got, tt.open) || !strings.Contains(got, tt.close) {
				t.Fatalf("FormatXMLItem() = %q", got)
			}
			if !strings.Contains(got, "https://twitter.com/bob/status/2") {
				t.Errorf("FormatXMLItem() does not contain the selected entry:\n%s", got)
			}
			if strings.Contains(got, "status/1") {
				t.Errorf("FormatXMLItem() contains another entry:\n%s", got)
			}
		})
	}

	if got := FormatXMLItem(doc, 5, feed.RSS); !strings.Contains(got, "out of range") {
		t.Errorf("FormatXMLItem() out of range = %q", got)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "10 seconds ago"},
		{time.Minute + time.Second, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{49 * time.Hour, "2 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatTimeAgo(time.Now().Add(-tt.ago)); got != tt.want {
				t.Errorf("formatTimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}

	old := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := formatTimeAgo(old); got != "2024-03-01" {
		t.Errorf("formatTimeAgo(old) = %q, want the date", got)
	}
}

func TestFormatDetailedItem_WrapsToWidth(t *testing.T) {
	entry := feed.Entry{
		Title:       "Tweet from @alice",
		Description: strings.Repeat("word ", 40),
	}

	got := FormatDetailedItem(&entry, 30)
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		if w := ansi.StringWidth(line); w > 30 {
			t.Errorf("line %q is %d cells wide, want at most 30", line, w)
		}
	}
	if !strings.HasPrefix(got, strings.Repeat("═", 30)+"\n") {
		t.Errorf("rule does not follow the width:\n%s", got)
	}
}

func TestFormatDetailedItem_TruncatesContentOnRunes(t *testing.T) {
	entry := feed.Entry{Description: strings.Repeat("ä", maxContentRunes+10)}

	got := FormatDetailedItem(&entry, 0)
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multi-byte character")
	}
	if n := strings.Count(got, "ä"); n != maxContentRunes {
		t.Errorf("kept %d runes, want %d", n, maxContentRunes)
	}
}
