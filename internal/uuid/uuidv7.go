// Package uuid generates the time-ordered UUIDv7 strings used as
// primary keys by every model.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 for the current instant. The leading 48-bit
// millisecond timestamp keeps keys roughly insertion-ordered, which
// matters for the created_at-ordered listings and b-tree locality.
//
// Layout per RFC 4122: 48-bit unix-millis timestamp, 4-bit version (7),
// 12 random bits, 2-bit variant (10), 62 random bits.
func New() string {
	var id [16]byte

	millis := uint64(time.Now().UnixMilli())
	binary.BigEndian.PutUint64(id[0:8], millis<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// No entropy available; a v4 key still satisfies uniqueness.
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return format(id)
}

func format(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// Parse validates s and returns it in canonical form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
