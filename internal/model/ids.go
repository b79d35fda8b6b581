package model

import (
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes the engine's UUIDv5 space so that ids never collide
// with externally assigned node ids.
var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DeterministicID derives a stable UUID from the identity of a record.
// Identical snapshots therefore re-run to byte-identical match, edge and
// finding sets.
func DeterministicID(kind string, parts ...string) string {
	payload := kind + "\x1f" + strings.Join(parts, "\x1f")
	return uuid.NewSHA1(idNamespace, []byte(payload)).String()
}
