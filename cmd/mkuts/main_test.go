package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	umls "github.com/appsworld/go-umls"
	"github.com/appsworld/go-umls/pkg/uts"
	"github.com/appsworld/go-umls/types"
)

// writeUmc drops a minimal, empty catalog with the given language and LCID.
func writeUmc(t *testing.T, path, lang string, lcid uint32) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(types.UmcSignature[:])
	buf.WriteByte(byte(len(lang)))
	buf.WriteString(lang)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], lcid)
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], 0)
	buf.Write(u32[:])
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseLCID(t *testing.T) {
	tests := []struct {
		in   string
		want types.LCID
	}{
		{"1033", 1033},
		{"2147483647", types.MaxLCID},
		{"2147483648", 0}, // too large, ignored
		{"10x3", 0},       // digits only
		{"", 0},
	}
	for _, tt := range tests {
		var lcid types.LCID
		parseLCID(tt.in, &lcid)
		if lcid != tt.want {
			t.Errorf("parseLCID(%q) set %v, want %v", tt.in, lcid, tt.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "en-US.umc")
	b := filepath.Join(dir, "pl-PL.umc")
	writeUmc(t, a, "English", 0x409)
	writeUmc(t, b, "Polski", 0x415)
	writeUmc(t, filepath.Join(dir, "notes.txt"), "x", 1)

	out := filepath.Join(dir, "out")
	o := parseArgs([]string{
		"--catalog=" + a,
		"--catalog=" + a, // duplicate, ignored
		"--catalog-dir=" + dir,
		"--output-dir=" + out,
		"--default-lcid=1033",
		"--preferred-lcid=1045",
		"--bogus=1",
		"no-equals-sign",
	})

	// The single include plus the directory scan, minus duplicates and the
	// non-catalog file.
	if len(o.catalogs) != 2 {
		t.Fatalf("catalogs = %v, want 2 entries", o.catalogs)
	}
	if o.catalogs[0] != a || o.catalogs[1] != b {
		t.Errorf("catalogs = %v, want [%s %s]", o.catalogs, a, b)
	}
	if o.outputDir != out {
		t.Errorf("outputDir = %q, want %q", o.outputDir, out)
	}
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		t.Errorf("output directory was not created: %v", err)
	}
	if o.defaultLCID != 1033 || o.preferredLCID != 1045 {
		t.Errorf("LCIDs = %v/%v, want 1033/1045", o.defaultLCID, o.preferredLCID)
	}
}

func TestCreateSettingsFile(t *testing.T) {
	dir := t.TempDir()
	writeUmc(t, filepath.Join(dir, "en-US.umc"), "English", 0x409)
	writeUmc(t, filepath.Join(dir, "pl-PL.umc"), "Polski", 0x415)

	o := parseArgs([]string{
		"--catalog-dir=" + dir,
		"--output-dir=" + dir,
		"--default-lcid=1033",
		"--preferred-lcid=1045",
	})
	createSettingsFile(o)

	path := filepath.Join(dir, umls.SettingsFileName)
	got, err := uts.Open(path)
	if err != nil {
		t.Fatalf("decoding the produced artifact: %v", err)
	}
	if got.DefaultLCID != 1033 || got.PreferredLCID != 1045 {
		t.Errorf("LCIDs = %v/%v, want 1033/1045", got.DefaultLCID, got.PreferredLCID)
	}
	want := []uts.Catalog{
		{Name: "en-US.umc", LCID: 0x409},
		{Name: "pl-PL.umc", LCID: 0x415},
	}
	if len(got.Catalogs) != len(want) {
		t.Fatalf("catalogs = %v, want %v", got.Catalogs, want)
	}
	for i := range want {
		if got.Catalogs[i] != want[i] {
			t.Errorf("catalog %d = %v, want %v", i, got.Catalogs[i], want[i])
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(types.UtsHeaderSize + 2*types.UtsSlotSize); info.Size() != want {
		t.Errorf("artifact size = %d, want %d", info.Size(), want)
	}

	// Rebuilding truncates rather than appends.
	createSettingsFile(o)
	if info, err = os.Stat(path); err != nil || info.Size() != int64(types.UtsHeaderSize+2*types.UtsSlotSize) {
		t.Errorf("rebuilt artifact size = %d, %v", info.Size(), err)
	}
}
