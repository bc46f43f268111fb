/*
Package randx generates identifiers for entities of the shared document.

IDs are a short kind prefix followed by a UUID v4, so they stay unique across
clients that create entities concurrently against the same snapshot.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes, one per entity kind.
const (
	PrefixUser    = "user"
	PrefixDirect  = "conv"
	PrefixGroup   = "group"
	PrefixMessage = "msg"
	PrefixSystem  = "sys"
	PrefixBan     = "ban"
	PrefixAd      = "ad"
)

// ID returns a new identifier of the form "<prefix>-<uuid>".
func ID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

// HasPrefix reports whether id was generated with prefix and carries a valid UUID.
func HasPrefix(id, prefix string) bool {
	raw, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}
