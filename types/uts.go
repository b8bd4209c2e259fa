package types

// UTS settings-artifact data structures.

import "encoding/binary"

const (
	UtsSignatureSize = 4
	// UtsHeaderSize covers the signature, both LCIDs and the catalog count.
	UtsHeaderSize = 14
	// UtsNameSlotSize is the fixed, NUL-padded space reserved for a catalog
	// name inside a slot.
	UtsNameSlotSize = 64
	// UtsMaxNameLen is the longest encodable catalog name, excluding the
	// trailing NUL.
	UtsMaxNameLen = UtsNameSlotSize - 1
	// UtsSlotSize is the serialized size of one catalog slot.
	UtsSlotSize = UtsNameSlotSize + 4
	// UtsMaxCatalogCount is the largest count representable by the two-byte
	// count field.
	UtsMaxCatalogCount = 0xFFFF
	// UtsPreferredLCIDOffset is the file position of the preferred LCID,
	// patched in place when changed settings are persisted.
	UtsPreferredLCIDOffset = 8
)

// UtsSignature is the four-byte magic opening every settings artifact.
var UtsSignature = [UtsSignatureSize]byte{'U', 'T', 'S', 0x00}

// A UtsHeader is the fixed 14-byte prologue of a settings artifact.
type UtsHeader struct {
	DefaultLCID   LCID
	PreferredLCID LCID
	CatalogCount  uint16
}

// Put serializes the header, signature included, into b, which must be at
// least UtsHeaderSize bytes.
func (h *UtsHeader) Put(b []byte, o binary.ByteOrder) int {
	copy(b[0:], UtsSignature[:])
	o.PutUint32(b[4:], uint32(h.DefaultLCID))
	o.PutUint32(b[8:], uint32(h.PreferredLCID))
	o.PutUint16(b[12:], h.CatalogCount)
	return UtsHeaderSize
}
