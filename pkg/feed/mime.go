package feed

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

// mediaTypes covers extensions the system MIME table is often missing
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".m3u8": "application/vnd.apple.mpegurl",
}

// MediaType infers the MIME type of a media URL from its path extension.
// It returns "" when the type is unknown.
func MediaType(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return ""
	}

	if t, ok := mediaTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
