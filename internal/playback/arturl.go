package playback

import (
	"net/url"
	"strings"
)

// NormalizeArtURL converts a host art reference into a plain URL or path.
// References arrive percent-encoded inside an image:// wrapper, often with
// a type prefix before an @ separator:
//
//	image://video%40http%3A%2F%2Fx.com%2Fa.jpg/  ->  http://x.com/a.jpg
//
// Empty input stays empty; input that fails to decode is used as-is. The
// result is stable under repeated normalization as long as the payload
// itself contains no literal @.
func NormalizeArtURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := raw
	if dec, err := url.PathUnescape(raw); err == nil {
		s = dec
	}
	s = strings.TrimPrefix(s, "image://")
	s = strings.TrimRight(s, "/")
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
