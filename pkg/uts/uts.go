// Package uts reads and writes the translator-settings artifact that names
// the catalogs shipped with an application together with its default and
// preferred locales.
//
// The artifact is a fixed 14-byte header ("UTS\0", two u32 LCIDs, a u16
// catalog count) followed by one 68-byte slot per catalog: 64 bytes of
// NUL-padded UTF-8 name and a u32 LCID. All integers are little-endian.
package uts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/appsworld/go-umls/internal/bio"
	"github.com/appsworld/go-umls/types"
)

// A Catalog names one installed message catalog by file name and locale.
// Names are compared byte-exact; the runtime never parses them.
type Catalog struct {
	Name string
	LCID types.LCID
}

// Settings is the decoded form of a settings artifact.
type Settings struct {
	DefaultLCID   types.LCID
	PreferredLCID types.LCID
	Catalogs      []Catalog
}

// Open reads and parses the named settings artifact.
func Open(name string) (*Settings, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a settings artifact. A bad signature or any truncation is
// an error; Parse never returns a partially populated Settings.
func Parse(r io.ReadSeeker) (*Settings, error) {
	br := bio.NewReader(r)

	var hdr [types.UtsHeaderSize]byte
	if err := br.ReadFull(hdr[:]); err != nil {
		return nil, fmt.Errorf("failed to read settings header: %v", err)
	}
	if !bytes.Equal(hdr[:types.UtsSignatureSize], types.UtsSignature[:]) {
		return nil, fmt.Errorf("invalid settings signature %q", hdr[:types.UtsSignatureSize])
	}

	s := &Settings{
		DefaultLCID:   types.LCID(binary.LittleEndian.Uint32(hdr[4:])),
		PreferredLCID: types.LCID(binary.LittleEndian.Uint32(hdr[8:])),
	}
	count := int(binary.LittleEndian.Uint16(hdr[12:]))
	if count == 0 {
		return s, nil
	}

	buf := make([]byte, count*types.UtsSlotSize)
	if err := br.ReadFull(buf); err != nil {
		return nil, fmt.Errorf("failed to read %d catalog slots: %v", count, err)
	}
	s.Catalogs = make([]Catalog, 0, count)
	for off := 0; off < len(buf); off += types.UtsSlotSize {
		slot := buf[off : off+types.UtsSlotSize]
		s.Catalogs = append(s.Catalogs, Catalog{
			Name: slotName(slot[:types.UtsNameSlotSize]),
			LCID: types.LCID(binary.LittleEndian.Uint32(slot[types.UtsNameSlotSize:])),
		})
	}
	return s, nil
}

// slotName trims the NUL padding from a name slot. A slot with no NUL at
// all uses the full 64 bytes.
func slotName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// CheckedCatalogCount clamps a catalog count to what the two-byte count
// field can represent.
func CheckedCatalogCount(n int) int {
	if n > types.UtsMaxCatalogCount {
		return types.UtsMaxCatalogCount
	}
	return n
}

// A Writer emits a settings artifact in the four passes of the on-disk
// layout: signature, LCIDs, catalog count, catalog slots.
type Writer struct {
	w *bio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bio.NewWriter(w)}
}

func (w *Writer) WriteSignature() error {
	return w.w.WriteFull(types.UtsSignature[:])
}

func (w *Writer) WriteLCIDs(def, pref types.LCID) error {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[0:], uint32(def))
	binary.LittleEndian.PutUint32(b[4:], uint32(pref))
	return w.w.WriteFull(b[:])
}

// WriteCatalogCount writes the two-byte count; n must already be checked
// against CheckedCatalogCount.
func (w *Writer) WriteCatalogCount(n int) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(n))
	return w.w.WriteFull(b[:])
}

func (w *Writer) WriteCatalogs(catalogs []Catalog) error {
	buf := make([]byte, len(catalogs)*types.UtsSlotSize)
	for i, c := range catalogs {
		if err := putCatalog(buf[i*types.UtsSlotSize:(i+1)*types.UtsSlotSize], c); err != nil {
			return err
		}
	}
	return w.w.WriteFull(buf)
}

func putCatalog(b []byte, c Catalog) error {
	if len(c.Name) > types.UtsMaxNameLen {
		return fmt.Errorf("catalog name %q exceeds %d bytes", c.Name, types.UtsMaxNameLen)
	}
	copy(b[:types.UtsNameSlotSize], c.Name)
	binary.LittleEndian.PutUint32(b[types.UtsNameSlotSize:], uint32(c.LCID))
	return nil
}

// Encode writes a complete settings artifact. A catalog list longer than
// the count field can represent is trimmed from the tail.
func Encode(w io.Writer, s *Settings) error {
	catalogs := s.Catalogs
	count := CheckedCatalogCount(len(catalogs))
	catalogs = catalogs[:count]

	uw := NewWriter(w)
	if err := uw.WriteSignature(); err != nil {
		return fmt.Errorf("failed to write the signature: %v", err)
	}
	if err := uw.WriteLCIDs(s.DefaultLCID, s.PreferredLCID); err != nil {
		return fmt.Errorf("failed to write the LCIDs: %v", err)
	}
	if err := uw.WriteCatalogCount(count); err != nil {
		return fmt.Errorf("failed to write the catalog count: %v", err)
	}
	if err := uw.WriteCatalogs(catalogs); err != nil {
		return fmt.Errorf("failed to write the catalog slots: %v", err)
	}
	return nil
}

// PatchPreferredLCID rewrites the four preferred-LCID bytes of an existing
// artifact in place; no other byte is touched.
func PatchPreferredLCID(ws io.WriteSeeker, lcid types.LCID) error {
	if _, err := ws.Seek(types.UtsPreferredLCIDOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to the preferred LCID: %v", err)
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(lcid))
	return bio.NewWriter(ws).WriteFull(b[:])
}
