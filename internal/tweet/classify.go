package tweet

// Classify resolves a raw post into its variant, canonical content and media.
// It never fails; missing nested posts degrade to UnavailablePlaceholder.
func Classify(raw *RawPost) ClassifiedPost {
	post := ClassifiedPost{
		ID:        raw.ID,
		Author:    raw.Author,
		CreatedAt: raw.CreatedAt.UTC(),
		URL:       Permalink(raw.Author.Handle, raw.ID),
	}

	isRepost := raw.IsRetweet || raw.Retweeted != nil
	isQuote := raw.IsQuoteStatus

	switch {
	case isQuote && isRepost:
		post.Variant = QuotedRepost
		if raw.Retweeted == nil {
			post.CanonicalBody = UnavailablePlaceholder
			post.Secondary = quotedContent(nil)
			break
		}
		retweeted := raw.Retweeted
		post.CanonicalAuthor = retweeted.Author
		post.CanonicalBody = retweeted.Text
		post.Secondary = quotedContent(retweeted.Quoted)
		// Media resolution stops at the quoted post; the retweeted wrapper's own media is ignored
		post.MediaURL = firstMedia(retweeted.Quoted)

	case isQuote:
		post.Variant = Quote
		post.CanonicalAuthor = raw.Author
		post.CanonicalBody = raw.Text
		post.Secondary = quotedContent(raw.Quoted)
		post.MediaURL = firstMedia(raw.Quoted)

	case isRepost:
		post.Variant = Repost
		if raw.Retweeted == nil {
			post.CanonicalBody = UnavailablePlaceholder
			break
		}
		post.CanonicalAuthor = raw.Retweeted.Author
		post.CanonicalBody = raw.Retweeted.Text
		post.MediaURL = firstMedia(raw.Retweeted)

	default:
		post.Variant = Regular
		post.CanonicalAuthor = raw.Author
		post.CanonicalBody = raw.Text
		post.MediaURL = firstMedia(raw)
	}

	return post
}

func quotedContent(quoted *RawPost) *Quoted {
	if quoted == nil {
		return &Quoted{Body: UnavailablePlaceholder}
	}
	return &Quoted{
		Author:    quoted.Author,
		Body:      quoted.Text,
		Available: true,
	}
}

// firstMedia returns the first usable media URL of a post, if any
func firstMedia(post *RawPost) string {
	if post == nil || len(post.Media) == 0 {
		return ""
	}
	return post.Media[0].Link()
}
