// SPDX-License-Identifier: MIT
package thumbcache

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

// fallbackExt is used when neither the URL path nor the Content-Type
// identifies the image format.
const fallbackExt = "img"

var mimeToExt = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/bmp":     "bmp",
	"image/svg+xml": "svg",
}

// extFromURL extracts a plausible image extension from the URL's path
// suffix, or "" when there is none.
func extFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "" || len(ext) > 5 {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// extFromContentType maps a Content-Type header value to an extension,
// or "" when unknown.
func extFromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mimeToExt[mediaType]
}
