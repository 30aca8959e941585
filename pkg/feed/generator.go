package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
)

// Marshal serializes the document in the given format, XML header included
func Marshal(doc *Document, format Format) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("feed is nil")
	}

	var v any
	switch format {
	case RSS:
		v = toRSS(doc)
	case Atom:
		v = toAtom(doc)
	default:
		return nil, fmt.Errorf("unsupported feed format: %s", format)
	}

	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s feed: %w", format, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(data))
	buf.WriteString(xml.Header)
	buf.Write(data)

	slog.Debug("Generated feed", "format", format, "items", len(doc.Entries), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// ValidateDocument validates the document structure.
// An empty feed is valid.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return errors.New("feed is nil")
	}

	if doc.Title == "" {
		return errors.New("feed title is empty")
	}

	if doc.Link == "" {
		return errors.New("feed link is empty")
	}

	if doc.Description == "" {
		return errors.New("feed description is empty")
	}

	for i := range doc.Entries {
		if err := validateEntry(&doc.Entries[i]); err != nil {
			return fmt.Errorf("entry %d validation failed: %w", i, err)
		}
	}

	return nil
}

func validateEntry(entry *Entry) error {
	if entry.Title == "" {
		return errors.New("entry title is empty")
	}

	if entry.Link == "" {
		return errors.New("entry link is empty")
	}

	if entry.GUID == "" {
		return errors.New("entry GUID is empty")
	}

	if entry.Enclosure != nil && entry.Enclosure.URL == "" {
		return errors.New("enclosure URL is empty")
	}

	return nil
}

// GetMetadata returns metadata about a feed document
func GetMetadata(doc *Document) *Metadata {
	if doc == nil {
		return nil
	}

	metadata := &Metadata{
		Title:     doc.Title,
		ItemCount: len(doc.Entries),
		Updated:   doc.Updated,
	}

	for i, entry := range doc.Entries {
		if entry.Enclosure != nil {
			metadata.Enclosures++
		}
		if i == 0 || entry.Published.Before(metadata.OldestItem) {
			metadata.OldestItem = entry.Published
		}
		if i == 0 || entry.Published.After(metadata.NewestItem) {
			metadata.NewestItem = entry.Published
		}
	}

	return metadata
}
