package umls

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/appsworld/go-umls/internal/msghash"
	"github.com/appsworld/go-umls/types"
)

type testMessage struct {
	id   string
	body string
}

// buildUmc assembles a catalog image: signature, language-name length,
// language name, LCID, message count, packed lookup table, message blob.
func buildUmc(lang string, lcid uint32, msgs []testMessage) []byte {
	var buf bytes.Buffer
	buf.Write(types.UmcSignature[:])
	buf.WriteByte(byte(len(lang)))
	buf.WriteString(lang)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], lcid)
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(len(msgs)))
	buf.Write(u32[:])

	var blob bytes.Buffer
	var entry [types.UmcEntrySize]byte
	for _, m := range msgs {
		e := types.UmcEntry{
			Hash:   msghash.Sum(m.id),
			Offset: uint64(blob.Len()),
			Length: uint32(len(m.body)),
		}
		e.Put(entry[:], binary.LittleEndian)
		buf.Write(entry[:])
		blob.WriteString(m.body)
	}
	buf.Write(blob.Bytes())
	return buf.Bytes()
}

func TestNewCatalog(t *testing.T) {
	msgs := []testMessage{
		{"greeting", "Hello!"},
		{"farewell", "Goodbye!"},
	}
	c, err := NewCatalog(bytes.NewReader(buildUmc("English", 0x409, msgs)))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if c.Language() != "English" {
		t.Errorf("Language() = %q, want \"English\"", c.Language())
	}
	if c.LCID() != 0x409 {
		t.Errorf("LCID() = %v, want 0x409", c.LCID())
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	for _, m := range msgs {
		if !c.HasMessage(m.id) {
			t.Errorf("HasMessage(%q) = false", m.id)
		}
		got, ok := c.GetMessage(m.id)
		if !ok || got != m.body {
			t.Errorf("GetMessage(%q) = %q, %v; want %q, true", m.id, got, ok, m.body)
		}
	}
	if c.HasMessage("missing") {
		t.Error("HasMessage(\"missing\") = true")
	}
	if _, ok := c.GetMessage("missing"); ok {
		t.Error("GetMessage(\"missing\") succeeded")
	}
}

func TestNewCatalogEmpty(t *testing.T) {
	c, err := NewCatalog(bytes.NewReader(buildUmc("English", 0x409, nil)))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if _, ok := c.GetMessage("anything"); ok {
		t.Error("GetMessage on empty catalog succeeded")
	}
}

func TestNewCatalogFormatting(t *testing.T) {
	msgs := []testMessage{
		{"welcome", "Welcome to the {%0} conference, {%1}!"},
		{"broken", "A {%xy} specifier stays {% 1} verbatim."},
	}
	c, err := NewCatalog(bytes.NewReader(buildUmc("English", 0x409, msgs)))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	got, ok := c.GetMessage("welcome", "Go", "friends")
	if want := "Welcome to the Go conference, friends!"; !ok || got != want {
		t.Errorf("GetMessage(welcome) = %q, %v; want %q, true", got, ok, want)
	}
	// A formattable message without its arguments fails rather than leak a
	// partial expansion.
	if got, ok := c.GetMessage("welcome"); ok {
		t.Errorf("GetMessage(welcome) without args = %q, true; want failure", got)
	}
	// Malformed specifiers are no reason to format at all.
	got, ok = c.GetMessage("broken")
	if !ok || got != msgs[1].body {
		t.Errorf("GetMessage(broken) = %q, %v; want %q, true", got, ok, msgs[1].body)
	}
}

func TestNewCatalogFirstMatchWins(t *testing.T) {
	// Duplicate identifiers resolve to the entry that comes first in file
	// order.
	img := buildUmc("English", 0x409, []testMessage{
		{"dup", "first"},
		{"dup", "second"},
	})
	c, err := NewCatalog(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if got, _ := c.GetMessage("dup"); got != "first" {
		t.Errorf("GetMessage(dup) = %q, want \"first\"", got)
	}
}

func TestNewCatalogInvalid(t *testing.T) {
	valid := buildUmc("English", 0x409, []testMessage{{"id", "body"}})

	badSig := append([]byte(nil), valid...)
	copy(badSig, "XYZ\x00")

	overflow := buildUmc("English", 0x409, []testMessage{{"id", "body"}})
	// Point the entry past the end of the blob.
	off := 4 + 1 + len("English") + 4 + 4 + 8
	binary.LittleEndian.PutUint64(overflow[off:], 1<<20)

	zeroLCID := buildUmc("English", 0, nil)
	hugeLCID := buildUmc("English", 0x80000000, nil)

	noLang := buildUmc("", 0x409, nil)

	longLang := append([]byte(nil), valid...)
	longLang[4] = 200

	truncTable := buildUmc("English", 0x409, []testMessage{{"id", "body"}})
	truncTable = truncTable[:len(truncTable)-len("body")-8]

	truncBlob := buildUmc("English", 0x409, []testMessage{{"id", "body"}})
	truncBlob = truncBlob[:len(truncBlob)-2]

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short signature", valid[:2]},
		{"bad signature", badSig},
		{"header only", valid[:4]},
		{"zero LCID", zeroLCID},
		{"LCID out of range", hugeLCID},
		{"empty language", noLang},
		{"language too long", longLang},
		{"entry past blob", overflow},
		{"truncated table", truncTable},
		{"truncated blob", truncBlob},
	}
	for _, tt := range tests {
		if _, err := NewCatalog(bytes.NewReader(tt.data)); err == nil {
			t.Errorf("%s: NewCatalog succeeded, want error", tt.name)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en-US.umc")
	img := buildUmc("English", 0x409, []testMessage{{"greeting", "Hello!"}})
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if got, ok := c.GetMessage("greeting"); !ok || got != "Hello!" {
		t.Errorf("GetMessage(greeting) = %q, %v", got, ok)
	}

	// The extension gate rejects even a well-formed image.
	other := filepath.Join(dir, "en-US.txt")
	if err := os.WriteFile(other, img, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(other); err == nil {
		t.Error("Open accepted a non-.umc extension")
	}
	if _, err := Open(filepath.Join(dir, "absent.umc")); err == nil {
		t.Error("Open accepted a missing file")
	}
}

func TestReadCatalogLCID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pl-PL.umc")
	img := buildUmc("Polski", 0x415, []testMessage{{"greeting", "Witaj!"}})
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatal(err)
	}
	lcid, err := ReadCatalogLCID(path)
	if err != nil {
		t.Fatalf("ReadCatalogLCID: %v", err)
	}
	if lcid != 0x415 {
		t.Errorf("ReadCatalogLCID = %v, want 0x415", lcid)
	}

	if err := os.WriteFile(path, img[:5], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCatalogLCID(path); err == nil {
		t.Error("ReadCatalogLCID succeeded on a truncated file")
	}
}
