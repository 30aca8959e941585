// Package feed serializes feed documents as RSS 2.0 or Atom 1.0.
package feed

import (
	"fmt"
	"strings"
	"time"
)

// Generator is written into the generator element of every document
const Generator = "twitterss"

// Format is the output syndication format
type Format string

const (
	RSS  Format = "rss"
	Atom Format = "atom"
)

// ParseFormat parses a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case RSS:
		return RSS, nil
	case Atom:
		return Atom, nil
	default:
		return "", fmt.Errorf("unsupported feed format: %q", s)
	}
}

// ContentType returns the MIME type stored alongside the serialized document
func (f Format) ContentType() string {
	if f == Atom {
		return "application/atom+xml"
	}
	return "application/xml"
}

// Document is a format-independent feed
type Document struct {
	Title       string
	Link        string
	Description string
	Language    string
	Author      string
	Updated     time.Time
	Entries     []Entry
}

// Entry is a single feed item
type Entry struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Author      string
	Published   time.Time
	Enclosure   *Enclosure
}

// Enclosure is an attached media resource.
// Type is empty when it could not be inferred.
type Enclosure struct {
	URL    string
	Length int64
	Type   string
}

// Metadata contains metadata about a generated feed
type Metadata struct {
	Title      string
	ItemCount  int
	Updated    time.Time
	OldestItem time.Time
	NewestItem time.Time
	Enclosures int
}
