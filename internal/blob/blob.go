// Package blob implements content addressing for binary payloads: the
// digest, the canonical storage path, and the inline reference token.
// Pure and stateless; no file I/O.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// TokenPrefix starts every inline blob reference token.
const TokenPrefix = "gdblob:sha256-"

// PathPrefix is the directory all blob payloads live under.
const PathPrefix = "blobs/sha256/"

var (
	tokenRe  = regexp.MustCompile(`^gdblob:sha256-([0-9a-f]{64})$`)
	pathRe   = regexp.MustCompile(`^blobs/sha256/([0-9a-f]{2})/([0-9a-f]{64})$`)
	digestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Digest returns the hex-encoded SHA-256 digest of data.
func Digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// CanonicalPath returns the storage path for a payload with the given hex
// digest: blobs/sha256/<first-2-hex>/<64-hex>.
func CanonicalPath(digest string) string {
	return PathPrefix + digest[:2] + "/" + digest
}

// IsDigest reports whether s is a lowercase hex SHA-256 digest.
func IsDigest(s string) bool {
	return digestRe.MatchString(s)
}

// Token returns the inline reference token for a digest.
func Token(digest string) string {
	return TokenPrefix + digest
}

// ParseToken extracts the digest from an inline blob token. ok is false
// when the token does not have the blob-reference shape.
func ParseToken(token string) (digest string, ok bool) {
	m := tokenRe.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParsePath extracts the digest encoded in a canonical blob path. ok is
// false when the path has the wrong shape or the two-hex prefix directory
// does not match the digest.
func ParsePath(path string) (digest string, ok bool) {
	m := pathRe.FindStringSubmatch(path)
	if m == nil || m[1] != m[2][:2] {
		return "", false
	}
	return m[2], true
}
