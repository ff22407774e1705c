package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Fingerprint derives the 16-hex-character cache key for a search
// request: the first 8 bytes of SHA-256 over
// lower(trim(query)) | "|" | topK | "|" | shardKey.
func Fingerprint(query string, topK int, shardKey string) string {
	canonical := canonicalTuple(query, topK, shardKey)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:8])
}

func canonicalTuple(query string, topK int, shardKey string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s|%s|%s", normalized, strconv.Itoa(topK), shardKey)
}
