// SPDX-License-Identifier: MIT
package thumbcache

import (
	"crypto/sha1"
	"encoding/hex"
)

// BaseName computes the deterministic cache filename stem for a media item:
//
//	thumbnail_<sha1(token)>_<recorded|stream>_<sha1(id)>
//
// The token hash comes first: it is the cache-invalidation key, refreshed
// whenever the user edits the source URL, so an edited item never collides
// with a stale file. Hashing both parts keeps arbitrary IDs filesystem-safe.
func BaseName(id string, recorded bool, token string) string {
	kind := "stream"
	if recorded {
		kind = "recorded"
	}
	return "thumbnail_" + sha1hex(token) + "_" + kind + "_" + sha1hex(id)
}

func sha1hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
