package pipeline

import (
	"log/slog"

	"github.com/lepinkainen/twitterss/internal/tweet"
)

// List is the raw timeline of one source list
type List struct {
	Name  string
	Posts []tweet.RawPost
}

// orderedSet keeps accepted posts in insertion order with O(1) membership
type orderedSet struct {
	seen  map[string]struct{}
	posts []tweet.ClassifiedPost
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *orderedSet) add(post tweet.ClassifiedPost) {
	s.seen[post.ID] = struct{}{}
	s.posts = append(s.posts, post)
}

// Process classifies the posts of every list, drops duplicates and filtered posts,
// and returns the survivors in encounter order. At most limit posts are considered
// per list; limit <= 0 means no limit.
func Process(lists []List, cfg FilterConfig, limit int) []tweet.ClassifiedPost {
	accepted := newOrderedSet()

	for _, list := range lists {
		posts := list.Posts
		if limit > 0 && len(posts) > limit {
			posts = posts[:limit]
		}

		for i := range posts {
			raw := &posts[i]
			if accepted.contains(raw.ID) {
				slog.Debug("Skipping duplicate post", "list", list.Name, "id", raw.ID)
				continue
			}

			post := tweet.Classify(raw)
			if rejected, reason := cfg.Reject(&post); rejected {
				slog.Debug("Filtered post", "list", list.Name, "id", post.ID, "variant", post.Variant, "reason", reason)
				continue
			}

			accepted.add(post)
		}
	}

	if accepted.posts == nil {
		return []tweet.ClassifiedPost{}
	}
	return accepted.posts
}
