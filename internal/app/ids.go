package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lamesahq/comanda/internal/domain"
)

func newRowID() string {
	return uuid.NewString()
}

// mintTicketNumber builds a human-readable ticket number:
// {KOT|BOT}-{epochMillis}-{4 hex chars}. The store enforces uniqueness; the
// caller re-mints on a unique violation, so a rare collision only costs a
// retry.
func mintTicketNumber(kind domain.TicketKind, now time.Time) string {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		// Fall back to the nanosecond remainder; uniqueness is still
		// guarded by the store.
		return fmt.Sprintf("%s-%d-%04x", kind.Prefix(), now.UnixMilli(), now.Nanosecond()&0xffff)
	}
	return fmt.Sprintf("%s-%d-%s", kind.Prefix(), now.UnixMilli(), hex.EncodeToString(suffix))
}
