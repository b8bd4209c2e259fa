package umls

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/appsworld/go-umls/pkg/uts"
	"github.com/appsworld/go-umls/types"
	"golang.org/x/exp/slices"
)

// Settings stores the locale preferences and the installed-catalog list
// decoded from the settings artifact. Only the preferred LCID may change
// after loading; everything else is immutable and safe to read without
// synchronization.
type Settings struct {
	path          string
	defaultLCID   types.LCID
	origPreferred uint32
	preferred     atomic.Uint32
	catalogs      []uts.Catalog
}

// LoadSettings reads <dir>/settings.uts. A missing or malformed artifact is
// not an error: the store comes back valid but empty, with zero LCIDs and
// no installed catalogs.
func LoadSettings(dir string) *Settings {
	s := &Settings{path: filepath.Join(dir, SettingsFileName)}
	set, err := uts.Open(s.path)
	if err != nil {
		return s
	}
	s.defaultLCID = set.DefaultLCID
	s.origPreferred = uint32(set.PreferredLCID)
	s.preferred.Store(uint32(set.PreferredLCID))
	s.catalogs = set.Catalogs
	return s
}

// DefaultLCID returns the default locale identifier.
func (s *Settings) DefaultLCID() types.LCID {
	return s.defaultLCID
}

// PreferredLCID returns the preferred locale identifier. Reads and writes
// may race freely; the value is a single word and couples to no other field.
func (s *Settings) PreferredLCID() types.LCID {
	return types.LCID(s.preferred.Load())
}

// SetPreferredLCID changes the preferred locale identifier. The change is
// persisted when the store is closed, unless discarded first.
func (s *Settings) SetPreferredLCID(lcid types.LCID) {
	s.preferred.Store(uint32(lcid))
}

// InstalledCatalogs returns the catalog list as decoded from the artifact.
func (s *Settings) InstalledCatalogs() []uts.Catalog {
	return s.catalogs
}

// IsCatalogInstalled reports whether a catalog with the given name appears
// in the installed list. Comparison is byte-exact.
func (s *Settings) IsCatalogInstalled(name string) bool {
	for _, c := range s.catalogs {
		if c.Name == name {
			return true
		}
	}
	return false
}

// DiscardChanges reverts the preferred LCID to the value read from disk,
// suppressing the persist-on-close step.
func (s *Settings) DiscardChanges() {
	if s.changed() {
		s.preferred.Store(s.origPreferred)
	}
}

func (s *Settings) changed() bool {
	return s.preferred.Load() != s.origPreferred
}

// Close persists a changed preferred LCID by patching the artifact in
// place; the four bytes at the preferred-LCID offset are the only ones
// rewritten. Failures to open or update the file are swallowed. Close must
// be called from exactly one goroutine.
func (s *Settings) Close() error {
	if !s.changed() {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY, 0)
	if err != nil {
		return nil
	}
	defer f.Close()
	uts.PatchPreferredLCID(f, s.PreferredLCID())
	return nil
}

// Config parameterizes translator construction.
type Config struct {
	// Dir is the base directory holding settings.uts and the locale
	// subdirectory. The process working directory when empty.
	Dir string
	// Fallback overrides the message served when retrieval fails.
	Fallback string
	// SystemDefaultLCID and SystemPreferredLCID override the host locale
	// queries consulted during catalog auto-selection.
	SystemDefaultLCID   func() types.LCID
	SystemPreferredLCID func() types.LCID
}

// A Translator serves formatted messages from the best installed catalog.
// At most one catalog is open at a time; the slot and the fallback message
// are guarded by a reader/writer lock so retrieval can proceed concurrently.
type Translator struct {
	mu       sync.RWMutex
	settings *Settings
	dir      string
	cat      *Catalog
	fallback string
}

// NewTranslator loads the settings store and selects a catalog by
// preference order. Construction never fails: when no installed catalog can
// be opened the translator serves the fallback message.
func NewTranslator(config ...Config) *Translator {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}
	dir := cfg.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	t := &Translator{
		settings: LoadSettings(dir),
		dir:      dir,
		fallback: DefaultFallbackMessage,
	}
	if cfg.Fallback != "" {
		t.fallback = cfg.Fallback
	}
	sysPreferred := SystemPreferredLCID
	if cfg.SystemPreferredLCID != nil {
		sysPreferred = cfg.SystemPreferredLCID
	}
	sysDefault := SystemDefaultLCID
	if cfg.SystemDefaultLCID != nil {
		sysDefault = cfg.SystemDefaultLCID
	}
	for _, lcid := range t.initLCIDs(sysPreferred(), sysDefault()) {
		if name := t.findCatalogNameByLCID(lcid); name != "" && t.UseCatalog(name) {
			break
		}
	}
	return t
}

// initLCIDs builds the catalog-selection order: preferred, default,
// system-preferred, system-default, keeping the first occurrence of each.
// Zero values stay in the list; they simply match no installed catalog.
func (t *Translator) initLCIDs(sysPreferred, sysDefault types.LCID) []types.LCID {
	order := [...]types.LCID{
		t.settings.PreferredLCID(),
		t.settings.DefaultLCID(),
		sysPreferred,
		sysDefault,
	}
	lcids := make([]types.LCID, 0, len(order))
	for _, lcid := range order {
		if !slices.Contains(lcids, lcid) {
			lcids = append(lcids, lcid)
		}
	}
	return lcids
}

// findCatalogNameByLCID returns the first installed catalog compiled for
// the locale, or the empty string.
func (t *Translator) findCatalogNameByLCID(lcid types.LCID) string {
	for _, c := range t.settings.InstalledCatalogs() {
		if c.LCID == lcid {
			return c.Name
		}
	}
	return ""
}

// Settings returns the translator's settings store.
func (t *Translator) Settings() *Settings {
	return t.settings
}

// CatalogsDirectory returns the directory the translator opens catalogs
// from.
func (t *Translator) CatalogsDirectory() string {
	return filepath.Join(t.dir, LocaleDirName)
}

// Catalog returns the currently open catalog, or nil.
func (t *Translator) Catalog() *Catalog {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cat
}

// FallbackMessage returns the message served when retrieval fails.
func (t *Translator) FallbackMessage() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fallback
}

// SetFallbackMessage changes the message served when retrieval fails.
func (t *Translator) SetFallbackMessage(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fallback = msg
}

// UseCatalog closes the open catalog, if any, and replaces it with the
// named one from the catalogs directory. It reports whether the new catalog
// was loaded; on failure the translator is left with no catalog open.
func (t *Translator) UseCatalog(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cat != nil {
		t.cat.Close()
		t.cat = nil
	}
	c, err := Open(filepath.Join(t.dir, LocaleDirName, name))
	if err != nil {
		return false
	}
	t.cat = c
	return true
}

// GetMessage returns the formatted message for id. Every failure — no open
// catalog, unknown identifier, a body outside the blob, or a formatting
// failure — collapses into serving the fallback message.
func (t *Translator) GetMessage(id string, args ...string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.cat == nil {
		return t.fallback
	}
	msg, ok := t.cat.GetMessage(id, args...)
	if !ok {
		return t.fallback
	}
	return msg
}

// Close releases the open catalog and persists any settings change. The
// translator must not be used afterwards.
func (t *Translator) Close() error {
	t.mu.Lock()
	if t.cat != nil {
		t.cat.Close()
		t.cat = nil
	}
	t.mu.Unlock()
	return t.settings.Close()
}

var (
	globalOnce sync.Once
	globalTr   *Translator
)

// Global returns the process-wide translator, constructing it with default
// configuration on first use. The core never requires it; it exists as a
// convenience for applications with a single translator.
func Global() *Translator {
	globalOnce.Do(func() {
		globalTr = NewTranslator()
	})
	return globalTr
}

// GetMessage retrieves a message through the process-wide translator.
func GetMessage(id string, args ...string) string {
	return Global().GetMessage(id, args...)
}
