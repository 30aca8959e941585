// Package syndicate turns list timelines into stored feed documents.
package syndicate

import (
	"fmt"
	"time"

	"github.com/lepinkainen/twitterss/internal/tweet"
	"github.com/lepinkainen/twitterss/pkg/feed"
)

// DefaultLanguage is the feed language when none is configured
const DefaultLanguage = "en-US"

// Meta holds feed-level metadata
type Meta struct {
	Title       string
	Link        string
	Description string
	Language    string
	Author      string
}

// DefaultDescription is the feed description used for an account
func DefaultDescription(handle string) string {
	return fmt.Sprintf("%s's TwitteRSS Feed", handle)
}

// Assemble converts classified posts into a feed document, one entry per post in order
func Assemble(meta Meta, posts []tweet.ClassifiedPost, now time.Time) *feed.Document {
	language := meta.Language
	if language == "" {
		language = DefaultLanguage
	}

	doc := &feed.Document{
		Title:       meta.Title,
		Link:        meta.Link,
		Description: meta.Description,
		Language:    language,
		Author:      meta.Author,
		Updated:     now.UTC(),
		Entries:     make([]feed.Entry, 0, len(posts)),
	}

	for i := range posts {
		doc.Entries = append(doc.Entries, entry(&posts[i]))
	}

	return doc
}

func entry(post *tweet.ClassifiedPost) feed.Entry {
	rendered := tweet.Render(post)

	e := feed.Entry{
		Title:       rendered.Title,
		Link:        post.URL,
		GUID:        post.ID,
		Description: rendered.Body,
		Author:      post.Author.Name,
		Published:   post.CreatedAt,
	}

	if post.HasMedia() {
		e.Enclosure = &feed.Enclosure{
			URL:    post.MediaURL,
			Length: 0,
			Type:   feed.MediaType(post.MediaURL),
		}
	}

	return e
}
