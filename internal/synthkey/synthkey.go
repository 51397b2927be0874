// Package synthkey derives synthetic partition keys for email claim records.
package synthkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// EmailPK computes a hash-distributed partition key for an email claim.
// Hashing spreads claims across partitions, eliminating hot partition risk
// on the claim table.
func EmailPK(table, email string) string {
	data := fmt.Sprintf("%s#email#%s", table, email)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}
