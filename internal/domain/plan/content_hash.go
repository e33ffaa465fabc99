package plan

import (
	"crypto/sha256"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ContentHash returns SHA256(NFC(doc)) with line endings normalized, so
// visually identical documents hash the same.
func ContentHash(doc string) []byte {
	normalized := strings.ReplaceAll(doc, "\r\n", "\n")
	sum := sha256.Sum256(norm.NFC.Bytes([]byte(normalized)))
	return sum[:]
}
