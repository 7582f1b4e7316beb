// Package refid generates support reference identifiers for accepted lead
// submissions. The format is BRAND-TTTTTTTTT-RRRR: a base36 millisecond
// timestamp (sortable by creation) followed by a random base36 suffix.
// Identifiers are opaque to callers; the only contract is uniqueness in
// practice and readability over the phone with support.
package refid

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	brandPrefix  = "TRW"
	suffixLength = 4
	alphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// New returns a fresh reference id.
func New() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("%s-%s-%s", brandPrefix, strings.ToUpper(ts), randomSuffix(suffixLength))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	// rand.Read never returns an error on supported platforms; fall back to a
	// timestamp-derived suffix if it ever does.
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(strconv.FormatInt(time.Now().UnixNano()%1679616, 36))
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return strings.ToUpper(string(out))
}
