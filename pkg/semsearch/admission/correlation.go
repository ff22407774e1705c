package admission

import (
	"crypto/rand"
	"encoding/hex"
)

// CorrelationIDHeader is the header carrying the correlation id in both
// directions.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID returns incoming verbatim when non-empty, else a fresh
// 16-hex-character id from a cryptographic random source.
func CorrelationID(incoming string) string {
	if incoming != "" {
		return incoming
	}
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; degrade to a fixed sentinel rather than panic.
		return "0000000000000000"
	}
	return hex.EncodeToString(buf)
}
