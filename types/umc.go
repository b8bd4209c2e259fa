package types

// UMC message-catalog data structures.

import "encoding/binary"

const (
	UmcSignatureSize = 4
	// UmcMaxLanguageLen bounds the language-name length field; the on-disk
	// field is a single byte but values above 128 are rejected.
	UmcMaxLanguageLen = 128
	// UmcEntrySize is the serialized size of a lookup-table entry. Entries
	// are packed on 4-byte boundaries, so the size is 20, not the natural 24.
	UmcEntrySize = 20
)

// UmcSignature is the four-byte magic opening every message catalog.
var UmcSignature = [UmcSignatureSize]byte{'U', 'M', 'C', 0x00}

// A UmcEntry is one lookup-table record: the digest of a message identifier
// plus the position of the message body inside the catalog blob.
type UmcEntry struct {
	Hash   uint64
	Offset uint64
	Length uint32
}

// Put serializes the entry into b, which must be at least UmcEntrySize bytes.
func (e *UmcEntry) Put(b []byte, o binary.ByteOrder) int {
	o.PutUint64(b[0:], e.Hash)
	o.PutUint64(b[8:], e.Offset)
	o.PutUint32(b[16:], e.Length)
	return UmcEntrySize
}

// ReadUmcEntry decodes one packed table record from b.
func ReadUmcEntry(b []byte, o binary.ByteOrder) UmcEntry {
	return UmcEntry{
		Hash:   o.Uint64(b[0:]),
		Offset: o.Uint64(b[8:]),
		Length: o.Uint32(b[16:]),
	}
}
