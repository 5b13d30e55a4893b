package reservation

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Suffix alphabet excludes look-alikes (0/O, 1/I) so staff can read
// numbers over the phone.
const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const numberSuffixLen = 6

// GenerateNumber returns a human-friendly reservation number of the form
// R-YYYYMM-XXXXXX. Uniqueness is per store; collisions are handled by the
// caller retrying and finally falling back to FallbackNumber.
func GenerateNumber(now time.Time) string {
	buf := make([]byte, numberSuffixLen)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = numberAlphabet[int(buf[i])%len(numberAlphabet)]
	}
	return fmt.Sprintf("R-%s-%s", now.UTC().Format("200601"), string(buf))
}

// FallbackNumber derives the suffix from the reservation id, which is
// unique by construction, for use after repeated random collisions.
func FallbackNumber(now time.Time, id uuid.UUID) string {
	compact := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("R-%s-%s", now.UTC().Format("200601"), compact[:10])
}
