// Package tweet classifies raw timeline posts and renders them as feed content.
package tweet

import (
	"fmt"
	"time"
)

// UnavailablePlaceholder replaces quoted content the timeline did not deliver.
const UnavailablePlaceholder = "*** original tweet is unavailable ***"

// PermalinkBase is the host used for post permalinks
const PermalinkBase = "https://twitter.com"

// Variant is the shape of a timeline post
type Variant int

const (
	Regular Variant = iota
	Repost
	Quote
	QuotedRepost
)

// String returns the variant name
func (v Variant) String() string {
	switch v {
	case Regular:
		return "regular"
	case Repost:
		return "repost"
	case Quote:
		return "quote"
	case QuotedRepost:
		return "quoted-repost"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Label returns the title prefix used for the variant
func (v Variant) Label() string {
	switch v {
	case Repost:
		return "RT from"
	case Quote:
		return "Quote from"
	case QuotedRepost:
		return "Quoted RT from"
	default:
		return "Tweet from"
	}
}

// User identifies an account
type User struct {
	ID     string `yaml:"id" json:"id"`
	Handle string `yaml:"handle" json:"handle"`
	Name   string `yaml:"name" json:"name"`
}

// Media is an attachment on a post
type Media struct {
	Key        string `yaml:"key" json:"key"`
	Type       string `yaml:"type" json:"type"`
	URL        string `yaml:"url" json:"url"`
	PreviewURL string `yaml:"preview_url" json:"preview_url"`
}

// Link returns the direct media URL, or the preview image for videos
func (m Media) Link() string {
	if m.URL != "" {
		return m.URL
	}
	return m.PreviewURL
}

// RawPost is a timeline entry as delivered by a timeline source.
// Any nested reference may be missing even when its flag says otherwise.
type RawPost struct {
	ID        string    `yaml:"id"`
	Author    User      `yaml:"author"`
	Text      string    `yaml:"text"`
	CreatedAt time.Time `yaml:"created_at"`
	// IsRetweet is set when the post references a reposted post, resolved or not
	IsRetweet     bool     `yaml:"is_retweet"`
	Retweeted     *RawPost `yaml:"retweeted,omitempty"`
	IsQuoteStatus bool     `yaml:"is_quote_status"`
	Quoted        *RawPost `yaml:"quoted,omitempty"`
	Media         []Media  `yaml:"media,omitempty"`
}

// Quoted holds the quoted-within content of a Quote or QuotedRepost
type Quoted struct {
	Author    User
	Body      string
	Available bool
}

// ClassifiedPost is a RawPost resolved into its variant and canonical content
type ClassifiedPost struct {
	ID      string
	Variant Variant
	// Author is the account that put the post on the timeline (the reposter for reposts)
	Author          User
	CanonicalAuthor User
	CanonicalBody   string
	Secondary       *Quoted
	MediaURL        string
	CreatedAt       time.Time
	URL             string
}

// IsRepost reports whether the post is a repost, quoted or not
func (p *ClassifiedPost) IsRepost() bool {
	return p.Variant == Repost || p.Variant == QuotedRepost
}

// IsQuote reports whether the post quotes another post
func (p *ClassifiedPost) IsQuote() bool {
	return p.Variant == Quote || p.Variant == QuotedRepost
}

// HasMedia reports whether a media attachment was resolved
func (p *ClassifiedPost) HasMedia() bool {
	return p.MediaURL != ""
}

// Permalink builds the public URL of a post
func Permalink(handle, id string) string {
	return fmt.Sprintf("%s/%s/status/%s", PermalinkBase, handle, id)
}
