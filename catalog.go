package umls

// High level access to compiled message catalogs.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/appsworld/go-umls/internal/bio"
	"github.com/appsworld/go-umls/internal/msghash"
	"github.com/appsworld/go-umls/pkg/format"
	"github.com/appsworld/go-umls/types"
)

// CatalogExt is the file extension every compiled catalog carries.
const CatalogExt = ".umc"

// A Catalog is one compiled message catalog loaded into memory. It owns its
// lookup table and message blob exclusively and is immutable after loading,
// so it may be read from any number of goroutines.
type Catalog struct {
	language string
	lcid     types.LCID
	table    []types.UmcEntry
	blob     []byte

	closer io.Closer
}

// Open opens the named file and loads it as a message catalog. The file
// must carry the .umc extension.
func Open(name string) (*Catalog, error) {
	if ext := filepath.Ext(name); ext != CatalogExt {
		return nil, &FormatError{0, "invalid catalog extension", ext}
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	c, err := NewCatalog(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

// NewCatalog decodes a message catalog from r. The stream is consumed
// front to back: signature, language name and LCID, lookup table, then the
// message blob sized by the table's length sum.
func NewCatalog(r io.ReadSeeker) (*Catalog, error) {
	br := bio.NewReader(r)

	var sig [types.UmcSignatureSize]byte
	if err := br.ReadFull(sig[:]); err != nil {
		return nil, fmt.Errorf("failed to read catalog signature: %v", err)
	}
	if !bytes.Equal(sig[:], types.UmcSignature[:]) {
		return nil, &FormatError{0, "invalid catalog signature", sig[:]}
	}

	langLen, err := br.Uint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read language-name length: %v", err)
	}
	if langLen > types.UmcMaxLanguageLen {
		return nil, &FormatError{4, "language name too long", langLen}
	}

	// The language name and the LCID that follows it come in a single read.
	buf := make([]byte, int(langLen)+4)
	if err := br.ReadFull(buf); err != nil {
		return nil, fmt.Errorf("failed to read language name and LCID: %v", err)
	}
	c := &Catalog{
		language: string(buf[:langLen]),
		lcid:     types.LCID(binary.LittleEndian.Uint32(buf[langLen:])),
	}
	if c.language == "" {
		return nil, &FormatError{4, "empty language name", nil}
	}
	if !c.lcid.Valid() {
		return nil, &FormatError{int64(5 + int(langLen)), "LCID out of range", c.lcid}
	}

	count, err := br.Uint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read message count: %v", err)
	}
	if count == 0 {
		// An empty table and blob still form a valid catalog.
		return c, nil
	}

	tableOff, err := br.Offset()
	if err != nil {
		return nil, err
	}
	size, err := br.Size()
	if err != nil {
		return nil, err
	}
	need := int64(count) * types.UmcEntrySize
	if need > size-tableOff {
		return nil, &FormatError{tableOff, "lookup table exceeds file size", count}
	}

	raw := make([]byte, need)
	if err := br.ReadFull(raw); err != nil {
		return nil, fmt.Errorf("failed to read lookup table: %v", err)
	}
	c.table = make([]types.UmcEntry, count)
	var blobSize uint64
	for i := range c.table {
		c.table[i] = types.ReadUmcEntry(raw[i*types.UmcEntrySize:], binary.LittleEndian)
		blobSize += uint64(c.table[i].Length)
	}
	for i, e := range c.table {
		if e.Offset+uint64(e.Length) > blobSize {
			return nil, &FormatError{tableOff + int64(i)*types.UmcEntrySize, "message exceeds blob", e.Hash}
		}
	}

	c.blob = make([]byte, blobSize)
	if err := br.ReadFull(c.blob); err != nil {
		return nil, fmt.Errorf("failed to read message blob: %v", err)
	}
	return c, nil
}

// Close releases the underlying file, if the catalog was opened by path.
func (c *Catalog) Close() error {
	var err error
	if c.closer != nil {
		err = c.closer.Close()
		c.closer = nil
	}
	c.table = nil
	c.blob = nil
	return err
}

// Language returns the catalog's language name.
func (c *Catalog) Language() string {
	return c.language
}

// LCID returns the locale identifier the catalog was compiled for.
func (c *Catalog) LCID() types.LCID {
	return c.lcid
}

// Len returns the number of messages in the catalog.
func (c *Catalog) Len() int {
	return len(c.table)
}

// find scans the lookup table in file order; the first matching digest wins.
func (c *Catalog) find(hash uint64) *types.UmcEntry {
	for i := range c.table {
		if c.table[i].Hash == hash {
			return &c.table[i]
		}
	}
	return nil
}

// HasMessage reports whether the catalog holds a message for the identifier.
func (c *Catalog) HasMessage(id string) bool {
	return c.find(msghash.Sum(id)) != nil
}

// GetMessage retrieves the message for id, substituting positional
// arguments when the body contains format specifiers. The second result is
// false when the identifier is unknown, the body lies outside the blob, or
// formatting fails for lack of an argument.
func (c *Catalog) GetMessage(id string, args ...string) (string, bool) {
	e := c.find(msghash.Sum(id))
	if e == nil {
		return "", false
	}
	end := e.Offset + uint64(e.Length)
	if end > uint64(len(c.blob)) {
		return "", false
	}
	msg := string(c.blob[e.Offset:end])
	if !format.IsFormattable(msg) {
		return msg, true
	}
	out := format.FormatString(msg, args...)
	if out == "" && msg != "" {
		return "", false
	}
	return out, true
}

// ReadCatalogLCID extracts the LCID embedded in a catalog file without
// loading it. The LCID sits right after the variable-length language name,
// so the language-name length byte is read first to find it.
func ReadCatalogLCID(name string) (types.LCID, error) {
	f, err := os.Open(name)
	if err != nil {
		return types.LCIDNone, err
	}
	defer f.Close()

	br := bio.NewReader(f)
	if err := br.Seek(types.UmcSignatureSize); err != nil {
		return types.LCIDNone, err
	}
	langLen, err := br.Uint8()
	if err != nil {
		return types.LCIDNone, fmt.Errorf("failed to read language-name length: %v", err)
	}
	if err := br.Seek(int64(types.UmcSignatureSize) + 1 + int64(langLen)); err != nil {
		return types.LCIDNone, err
	}
	lcid, err := br.Uint32()
	if err != nil {
		return types.LCIDNone, fmt.Errorf("failed to read LCID: %v", err)
	}
	return types.LCID(lcid), nil
}
