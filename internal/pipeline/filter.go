// Package pipeline deduplicates and filters classified posts across the lists of a feed.
package pipeline

import "github.com/lepinkainen/twitterss/internal/tweet"

// FilterConfig holds the per-feed include/exclude predicates.
// Setting both the exclude and require flag of a pair rejects every post.
type FilterConfig struct {
	ExcludeRetweets bool
	RequireRetweets bool
	ExcludeQuotes   bool
	RequireQuotes   bool
	ExcludeMedia    bool
	RequireMedia    bool
}

// Reject evaluates the predicates in order and reports the first one that rejects the post
func (c FilterConfig) Reject(post *tweet.ClassifiedPost) (bool, string) {
	switch {
	case c.ExcludeRetweets && post.IsRepost():
		return true, "excluded: retweet"
	case c.RequireRetweets && !post.IsRepost():
		return true, "excluded: not a retweet"
	case c.ExcludeQuotes && post.IsQuote():
		return true, "excluded: quote"
	case c.RequireQuotes && !post.IsQuote():
		return true, "excluded: not a quote"
	case c.ExcludeMedia && post.HasMedia():
		return true, "excluded: has media"
	case c.RequireMedia && !post.HasMedia():
		return true, "excluded: no media"
	}
	return false, ""
}
