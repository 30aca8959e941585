package twitter

import (
	"github.com/lepinkainen/twitterss/internal/tweet"
)

// maxDepth bounds reference resolution: outer post, reposted post, its quote
const maxDepth = 2

// index resolves expansion references of a timeline response
type index struct {
	users  map[string]apiUser
	tweets map[string]apiTweet
	media  map[string]apiMedia
}

func newIndex() *index {
	return &index{
		users:  make(map[string]apiUser),
		tweets: make(map[string]apiTweet),
		media:  make(map[string]apiMedia),
	}
}

func (ix *index) add(inc apiIncludes) {
	for _, u := range inc.Users {
		ix.users[u.ID] = u
	}
	for _, t := range inc.Tweets {
		ix.tweets[t.ID] = t
	}
	for _, m := range inc.Media {
		ix.media[m.MediaKey] = m
	}
}

// missingQuotes lists quoted posts referenced by reposted posts that the
// expansions did not include.
func (ix *index) missingQuotes(data []apiTweet) []string {
	seen := make(map[string]bool)
	var missing []string

	for _, t := range data {
		for _, ref := range t.ReferencedTweets {
			if ref.Type != "retweeted" {
				continue
			}
			inner, ok := ix.tweets[ref.ID]
			if !ok {
				continue
			}
			for _, innerRef := range inner.ReferencedTweets {
				if innerRef.Type != "quoted" || seen[innerRef.ID] {
					continue
				}
				if _, ok := ix.tweets[innerRef.ID]; ok {
					continue
				}
				seen[innerRef.ID] = true
				missing = append(missing, innerRef.ID)
			}
		}
	}

	return missing
}

func (ix *index) user(id string) tweet.User {
	u, ok := ix.users[id]
	if !ok {
		return tweet.User{ID: id}
	}
	return tweet.User{ID: u.ID, Handle: u.Username, Name: u.Name}
}

func (ix *index) mediaFor(t *apiTweet) []tweet.Media {
	if t.Attachments == nil {
		return nil
	}

	var media []tweet.Media
	for _, key := range t.Attachments.MediaKeys {
		m, ok := ix.media[key]
		if !ok {
			continue
		}
		media = append(media, tweet.Media{
			Key:        m.MediaKey,
			Type:       m.Type,
			URL:        m.URL,
			PreviewURL: m.PreviewImageURL,
		})
	}
	return media
}

// rawPost maps an API post to a RawPost, resolving references up to maxDepth.
// A quote reference marks the post as a quote even when the quoted post is
// missing from the response.
func (ix *index) rawPost(t *apiTweet, depth int) tweet.RawPost {
	post := tweet.RawPost{
		ID:        t.ID,
		Author:    ix.user(t.AuthorID),
		Text:      t.fullText(),
		CreatedAt: t.CreatedAt,
		Media:     ix.mediaFor(t),
	}

	for _, ref := range t.ReferencedTweets {
		switch ref.Type {
		case "quoted":
			post.IsQuoteStatus = true
			if depth >= maxDepth {
				continue
			}
			if quoted, ok := ix.tweets[ref.ID]; ok {
				q := ix.rawPost(&quoted, depth+1)
				post.Quoted = &q
			}
		case "retweeted":
			post.IsRetweet = true
			if depth >= maxDepth {
				continue
			}
			if retweeted, ok := ix.tweets[ref.ID]; ok {
				rt := ix.rawPost(&retweeted, depth+1)
				post.Retweeted = &rt
				post.IsQuoteStatus = rt.IsQuoteStatus
			}
		}
	}

	return post
}
