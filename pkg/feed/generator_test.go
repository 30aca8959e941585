package feed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func testDocument() *Document {
	return &Document{
		Title:       "Tech feed",
		Link:        "https://s3.amazonaws.com/bucket/feeds/",
		Description: "alice's TwitteRSS Feed",
		Language:    "en-US",
		Author:      "alice",
		Updated:     time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
		Entries: []Entry{
			{
				Title:       "Tweet from @alice",
				Link:        "https://twitter.com/alice/status/42",
				GUID:        "42",
				Description: "<p>a &amp; b</p>",
				Author:      "Alice A",
				Published:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				Enclosure:   &Enclosure{URL: "https://pbs.twimg.com/media/a.jpg", Type: "image/jpeg"},
			},
			{
				Title:       "RT from @alice",
				Link:        "https://twitter.com/alice/status/41",
				GUID:        "41",
				Description: "<p>original</p>",
				Author:      "Alice A",
				Published:   time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC),
				Enclosure:   &Enclosure{URL: "https://example.com/media/file.unknownext"},
			},
		},
	}
}

func parse(t *testing.T, data []byte) *gofeed.Feed {
	t.Helper()
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to parse generated feed: %v\n%s", err, data)
	}
	return parsed
}

func TestMarshal_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		wantType string
	}{
		{"rss", RSS, "rss"},
		{"atom", Atom, "atom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(testDocument(), tt.format)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if !bytes.HasPrefix(data, []byte("<?xml")) {
				t.Errorf("output missing XML header")
			}

			parsed := parse(t, data)
			if parsed.FeedType != tt.wantType {
				t.Errorf("FeedType = %q, want %q", parsed.FeedType, tt.wantType)
			}
			if parsed.Title != "Tech feed" {
				t.Errorf("Title = %q", parsed.Title)
			}
			if len(parsed.Items) != 2 {
				t.Fatalf("got %d items, want 2", len(parsed.Items))
			}

			first := parsed.Items[0]
			if first.Title != "Tweet from @alice" {
				t.Errorf("first item title = %q", first.Title)
			}
			if first.Link != "https://twitter.com/alice/status/42" {
				t.Errorf("first item link = %q", first.Link)
			}
			if !strings.HasSuffix(first.GUID, "42") {
				t.Errorf("first item GUID = %q", first.GUID)
			}
			if first.PublishedParsed == nil || !first.PublishedParsed.Equal(testDocument().Entries[0].Published) {
				t.Errorf("first item published = %v", first.PublishedParsed)
			}

			if len(first.Enclosures) != 1 {
				t.Fatalf("first item has %d enclosures, want 1", len(first.Enclosures))
			}
			enc := first.Enclosures[0]
			if enc.URL != "https://pbs.twimg.com/media/a.jpg" || enc.Type != "image/jpeg" || enc.Length != "0" {
				t.Errorf("enclosure = %+v", enc)
			}

			second := parsed.Items[1]
			if len(second.Enclosures) != 1 {
				t.Fatalf("second item has %d enclosures, want 1", len(second.Enclosures))
			}
			if second.Enclosures[0].Type != "" || second.Enclosures[0].Length != "0" {
				t.Errorf("unknown enclosure = %+v, want empty type and zero length", second.Enclosures[0])
			}
		})
	}
}

func TestMarshal_RSSGuidIsNotPermalink(t *testing.T) {
	data, err := Marshal(testDocument(), RSS)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `<guid isPermaLink="false">42</guid>`) {
		t.Errorf("missing non-permalink guid:\n%s", out)
	}
	if !strings.Contains(out, `<enclosure url="https://example.com/media/file.unknownext" length="0"></enclosure>`) {
		t.Errorf("unknown enclosure should omit type:\n%s", out)
	}
	if !strings.Contains(out, "<generator>twitterss</generator>") {
		t.Errorf("missing generator:\n%s", out)
	}
	if !strings.Contains(out, "<pubDate>Fri, 01 Mar 2024 12:00:00 +0000</pubDate>") {
		t.Errorf("pubDate not in RFC1123Z:\n%s", out)
	}
}

func TestMarshal_EmptyFeed(t *testing.T) {
	doc := testDocument()
	doc.Entries = nil

	for _, format := range []Format{RSS, Atom} {
		data, err := Marshal(doc, format)
		if err != nil {
			t.Fatalf("Marshal(%s) error = %v", format, err)
		}
		if err := Validate(data, 0); err != nil {
			t.Errorf("Validate(%s) error = %v", format, err)
		}
	}
}

func TestMarshal_UnsupportedFormat(t *testing.T) {
	if _, err := Marshal(testDocument(), Format("json")); err == nil {
		t.Error("Marshal() with unknown format should fail")
	}
	if _, err := Marshal(nil, RSS); err == nil {
		t.Error("Marshal(nil) should fail")
	}
}

func TestValidate_CountMismatch(t *testing.T) {
	data, err := Marshal(testDocument(), RSS)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := Validate(data, 3); err == nil {
		t.Error("Validate() should fail on item count mismatch")
	}
	if err := Validate([]byte("not a feed"), 0); err == nil {
		t.Error("Validate() should fail on garbage")
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr string
	}{
		{"valid", func(*Document) {}, ""},
		{"empty feed is valid", func(d *Document) { d.Entries = nil }, ""},
		{"missing title", func(d *Document) { d.Title = "" }, "feed title is empty"},
		{"missing link", func(d *Document) { d.Link = "" }, "feed link is empty"},
		{"missing description", func(d *Document) { d.Description = "" }, "feed description is empty"},
		{"entry without guid", func(d *Document) { d.Entries[1].GUID = "" }, "entry 1 validation failed: entry GUID is empty"},
		{"enclosure without url", func(d *Document) { d.Entries[0].Enclosure.URL = "" }, "enclosure URL is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			tt.mutate(doc)

			err := ValidateDocument(doc)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetMetadata(t *testing.T) {
	meta := GetMetadata(testDocument())

	if meta.ItemCount != 2 || meta.Enclosures != 2 {
		t.Errorf("metadata = %+v", meta)
	}
	if !meta.OldestItem.Equal(time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("OldestItem = %v", meta.OldestItem)
	}
	if !meta.NewestItem.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("NewestItem = %v", meta.NewestItem)
	}
	if GetMetadata(nil) != nil {
		t.Error("GetMetadata(nil) should be nil")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantCT  string
		wantErr bool
	}{
		{"rss", RSS, "application/xml", false},
		{" ATOM ", Atom, "application/atom+xml", false},
		{"json", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
			if !tt.wantErr && got.ContentType() != tt.wantCT {
				t.Errorf("ContentType() = %q, want %q", got.ContentType(), tt.wantCT)
			}
		})
	}
}
