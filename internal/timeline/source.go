// Package timeline defines where raw list timelines come from.
package timeline

import (
	"context"
	"errors"

	"github.com/lepinkainen/twitterss/internal/tweet"
)

// ErrListNotFound is returned when the owner has no list with the requested name
var ErrListNotFound = errors.New("list not found")

// Source delivers the authenticated account and its list timelines
type Source interface {
	// Account returns the account the source acts as
	Account(ctx context.Context) (tweet.User, error)
	// ListTimeline returns up to max newest-first posts of the owner's list
	ListTimeline(ctx context.Context, owner tweet.User, listName string, max int) ([]tweet.RawPost, error)
}
