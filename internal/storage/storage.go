// Package storage uploads generated feed documents.
package storage

import (
	"context"
	"strings"
)

// Object is a document to store under Key
type Object struct {
	Key             string
	Body            []byte
	ContentType     string
	CacheControl    string
	ContentEncoding string
	PublicRead      bool
}

// Sink stores objects and knows their public location
type Sink interface {
	Put(ctx context.Context, obj Object) error
	PublicURL(key string) string
}

// ObjectKey joins a folder and a filename into an object key
func ObjectKey(folder, filename string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return filename
	}
	return folder + "/" + filename
}
