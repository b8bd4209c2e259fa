// Command mkuts compiles a translator-settings artifact (settings.uts) from
// a set of compiled message catalogs.
//
// Each included .umc file contributes one installed-catalog entry: its file
// name plus the LCID embedded in its header. Options use the --name=value
// form; unrecognized or malformed options are warned about and ignored.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	umls "github.com/appsworld/go-umls"
	"github.com/appsworld/go-umls/pkg/uts"
	"github.com/appsworld/go-umls/types"
	"github.com/xyproto/env/v2"
	"golang.org/x/exp/slices"
)

var rtlog = log.New(os.Stdout, "", 0)

type options struct {
	catalogs      []string
	outputDir     string
	defaultLCID   types.LCID
	preferredLCID types.LCID
}

// defaultOptions seeds the options from the environment, so build scripts
// can omit the flags they set globally.
func defaultOptions() *options {
	o := &options{outputDir: env.Str("MKUTS_OUTPUT_DIR")}
	o.defaultLCID = lcidFromEnv("MKUTS_DEFAULT_LCID")
	o.preferredLCID = lcidFromEnv("MKUTS_PREFERRED_LCID")
	return o
}

func lcidFromEnv(name string) types.LCID {
	v := env.Int(name, 0)
	if v <= 0 || v > int(types.MaxLCID) {
		return types.LCIDNone
	}
	return types.LCID(v)
}

func absolutePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(wd, path)
}

func (o *options) parseCatalog(value string) {
	path := absolutePath(value)
	if slices.Contains(o.catalogs, path) {
		rtlog.Printf("Warning: The catalog '%s' specified more than once, ignored.", value)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		rtlog.Printf("Warning: The catalog '%s' does not exist, ignored.", value)
		return
	}
	if filepath.Ext(path) != umls.CatalogExt {
		rtlog.Printf("Warning: The catalog '%s' has an invalid extension, ignored.", value)
		return
	}
	o.catalogs = append(o.catalogs, path)
}

func (o *options) parseCatalogDir(value string) {
	path := absolutePath(value)
	info, err := os.Stat(path)
	if err != nil {
		rtlog.Printf("Warning: The directory '%s' does not exist, ignored.", value)
		return
	}
	if !info.IsDir() {
		rtlog.Printf("Warning: The directory '%s' is not a directory, ignored.", value)
		return
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		rtlog.Printf("Warning: The directory '%s' could not be read, ignored.", value)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != umls.CatalogExt {
			continue
		}
		file := filepath.Join(path, entry.Name())
		if slices.Contains(o.catalogs, file) {
			rtlog.Printf("Warning: The catalog '%s' already specified, ignored.", file)
			continue
		}
		o.catalogs = append(o.catalogs, file)
	}
}

func (o *options) parseOutputDir(value string) {
	if o.outputDir != "" {
		rtlog.Printf("Warning: Output directory specified more than once, ignored.")
		return
	}
	path := absolutePath(value)
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			rtlog.Printf("Warning: The output directory '%s' is not a directory, ignored.", value)
			return
		}
	} else if err := os.MkdirAll(path, 0o755); err != nil {
		rtlog.Printf("Warning: Failed to create the output directory '%s', ignored.", value)
		return
	}
	o.outputDir = path
}

func parseLCID(value string, lcid *types.LCID) {
	var v uint64
	for _, c := range []byte(value) {
		if c < '0' || c > '9' {
			rtlog.Printf("Warning: The LCID '%s' must consist only of digits, ignored.", value)
			return
		}
		v = v*10 + uint64(c-'0')
		if v > uint64(types.MaxLCID) {
			rtlog.Printf("Warning: The LCID '%s' is too large.", value)
			return
		}
	}
	*lcid = types.LCID(v)
}

func parseArgs(args []string) *options {
	o := defaultOptions()
	for _, arg := range args {
		eq := -1
		for i := 0; i < len(arg); i++ {
			if arg[i] == '=' {
				eq = i
				break
			}
		}
		if eq < 0 {
			rtlog.Printf("Warning: Unrecognized option '%s', ignored.", arg)
			continue
		}
		if eq == 0 || eq == len(arg)-1 {
			rtlog.Printf("Warning: Invalid option '%s', ignored.", arg)
			continue
		}
		option, value := arg[:eq], arg[eq+1:]
		switch option {
		case "--catalog":
			o.parseCatalog(value)
		case "--catalog-dir":
			o.parseCatalogDir(value)
		case "--output-dir":
			o.parseOutputDir(value)
		case "--default-lcid":
			parseLCID(value, &o.defaultLCID)
		case "--preferred-lcid":
			parseLCID(value, &o.preferredLCID)
		default:
			rtlog.Printf("Warning: Unrecognized option '%s', ignored.", arg)
		}
	}
	if o.outputDir == "" {
		o.outputDir, _ = os.Getwd()
	}
	if o.defaultLCID == types.LCIDNone {
		rtlog.Printf("Warning: The default LCID has not been specified.")
	}
	if o.preferredLCID == types.LCIDNone {
		rtlog.Printf("Warning: The preferred LCID has not been specified.")
	}
	return o
}

// makeCatalogs turns the included .umc paths into installed-catalog
// entries: the file name, checked against the name-slot capacity, plus the
// LCID read from the catalog header.
func makeCatalogs(paths []string) ([]uts.Catalog, error) {
	catalogs := make([]uts.Catalog, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if len(name) > types.UtsMaxNameLen {
			return nil, fmt.Errorf("catalog name %q exceeds %d bytes", name, types.UtsMaxNameLen)
		}
		lcid, err := umls.ReadCatalogLCID(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read the LCID of '%s': %v", path, err)
		}
		catalogs = append(catalogs, uts.Catalog{Name: name, LCID: lcid})
	}
	return catalogs, nil
}

func writeSettingsFile(f *os.File, o *options, catalogs []uts.Catalog) {
	w := uts.NewWriter(f)
	if err := w.WriteSignature(); err != nil {
		rtlog.Printf("Error: Failed to write the signature.")
		return
	}
	if err := w.WriteLCIDs(o.defaultLCID, o.preferredLCID); err != nil {
		rtlog.Printf("Error: Failed to write the LCIDs.")
		return
	}

	count := uts.CheckedCatalogCount(len(catalogs))
	if count < len(catalogs) {
		rtlog.Printf("Warning: Requested too many catalogs, trimmed to %d.", count)
		catalogs = catalogs[:count]
	}
	if err := w.WriteCatalogCount(count); err != nil {
		rtlog.Printf("Error: Failed to write the number of catalogs.")
		repairEmpty(f)
		return
	}
	if err := w.WriteCatalogs(catalogs); err != nil {
		rtlog.Printf("Error: Failed to write the UTS catalogs.")
		repairEmpty(f)
	}
}

// repairEmpty rewrites the artifact as a valid zero-catalog file after a
// failed count or slot write, so a partial file never carries a count that
// promises slots it does not have. Best effort; the device is already
// failing.
func repairEmpty(f *os.File) {
	var zero [2]byte
	if _, err := f.WriteAt(zero[:], types.UtsHeaderSize-2); err != nil {
		return
	}
	f.Truncate(types.UtsHeaderSize)
}

func createSettingsFile(o *options) {
	catalogs, err := makeCatalogs(o.catalogs)
	if err != nil {
		rtlog.Printf("Error: Failed to create UTS catalogs: %v.", err)
		return
	}
	path := filepath.Join(o.outputDir, umls.SettingsFileName)
	f, err := os.Create(path)
	if err != nil {
		rtlog.Printf("Error: Failed to create the settings file.")
		return
	}
	defer f.Close()
	writeSettingsFile(f, o, catalogs)
}

func shouldPrintHelp(args []string) bool {
	if len(args) == 0 {
		return true
	}
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printHelp() {
	rtlog.Print(
		"MKUTS usage:\n" +
			"\n" +
			"mkuts [options...]\n" +
			"mkuts --help\n" +
			"\n" +
			"Options:\n" +
			"    --help (or -h)             display this help message and exit\n" +
			"\n" +
			"    --catalog=\"[...]\"          include the specified catalog\n" +
			"    --catalog-dir=\"[...]\"      include all catalogs from the specified directory\n" +
			"    --output-dir=\"[...]\"       set the output directory for the created settings file\n" +
			"\n" +
			"    --default-lcid=<value>     set the default LCID\n" +
			"    --preferred-lcid=<value>   set the preferred LCID")
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			rtlog.Printf("Error: An unknown error occured: %v", r)
			os.Exit(-2)
		}
	}()
	args := os.Args[1:]
	if shouldPrintHelp(args) {
		printHelp()
		return
	}
	createSettingsFile(parseArgs(args))
}
