package news

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint is the hex SHA-1 of title immediately followed by summary.
// It must stay SHA-1: stored rows from earlier runs are compared against it.
func Fingerprint(title, summary string) string {
	h := sha1.New()
	h.Write([]byte(title + summary))
	return hex.EncodeToString(h.Sum(nil))
}
