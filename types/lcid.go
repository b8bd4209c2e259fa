package types

import "fmt"

// An LCID is a 31-bit numeric locale identifier. The runtime treats it as
// opaque and never decomposes it into language or region parts.
type LCID uint32

const (
	// LCIDNone marks an unset or unknown locale.
	LCIDNone LCID = 0
	// MaxLCID is the largest representable locale identifier.
	MaxLCID LCID = 0x7FFFFFFF
)

// Valid reports whether the identifier is inside [1, MaxLCID].
func (l LCID) Valid() bool {
	return l > LCIDNone && l <= MaxLCID
}

func (l LCID) String() string {
	return fmt.Sprintf("%#x", uint32(l))
}
