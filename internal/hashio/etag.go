package hashio

import (
	"crypto/sha1" //nolint
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// Sum streams r through the hasher and returns the digest
func Sum(r io.Reader, hasher hash.Hash) ([]byte, error) {
	if _, err := io.Copy(hasher, r); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return hasher.Sum(nil), nil
}

// ETag returns the strong entity tag of a response body
func ETag(body io.Reader) (string, error) {
	sum, err := Sum(body, sha1.New())
	if err != nil {
		return "", fmt.Errorf("etag: %w", err)
	}

	return `"` + hex.EncodeToString(sum) + `"`, nil
}

// Match reports whether an If-None-Match header value matches the entity tag. Weak tags compare by their opaque part
func Match(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}

	return false
}
