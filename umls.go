// Package umls is a user-space localization runtime for applications that
// ship compiled message catalogs keyed by numeric locale identifiers.
//
// A compiled catalog (a UMC file) maps hashed message identifiers to UTF-8
// message bodies. A settings artifact (a UTS file, conventionally
// settings.uts) names the installed catalogs and the default and preferred
// locales. The Translator ties the two together: it picks the best installed
// catalog by preference order and serves formatted messages, falling back to
// a configurable fallback string whenever retrieval fails.
package umls

import (
	"fmt"

	"github.com/appsworld/go-umls/types"
	"github.com/xyproto/env/v2"
)

const (
	// SettingsFileName is the leaf name of the settings artifact, resolved
	// against the translator's base directory.
	SettingsFileName = "settings.uts"
	// LocaleDirName is the subdirectory holding the installed catalogs.
	LocaleDirName = "locale"
	// DefaultFallbackMessage is served when no message can be retrieved.
	DefaultFallbackMessage = "???"
)

// FormatError is returned by the catalog loader when a file has the wrong
// extension or signature, or a header field or table entry breaks the UMC
// layout. Short reads are reported as wrapped I/O errors instead, and the
// settings decoder in pkg/uts reports all of its failures as plain errors.
type FormatError struct {
	off int64
	msg string
	val interface{}
}

func (e *FormatError) Error() string {
	msg := e.msg
	if e.val != nil {
		msg += fmt.Sprintf(" '%v'", e.val)
	}
	msg += fmt.Sprintf(" at byte %#x", e.off)
	return msg
}

// SystemDefaultLCID returns the locale the host reports as its default.
// There is no portable OS query, so the value comes from the
// UMLS_SYSTEM_DEFAULT_LCID environment variable; unset or out-of-range
// values mean unknown.
func SystemDefaultLCID() types.LCID {
	return lcidFromEnv("UMLS_SYSTEM_DEFAULT_LCID")
}

// SystemPreferredLCID returns the locale the host reports as the user's
// preference, from the UMLS_SYSTEM_PREFERRED_LCID environment variable.
func SystemPreferredLCID() types.LCID {
	return lcidFromEnv("UMLS_SYSTEM_PREFERRED_LCID")
}

func lcidFromEnv(name string) types.LCID {
	v := env.Int(name, 0)
	if v <= 0 || v > int(types.MaxLCID) {
		return types.LCIDNone
	}
	return types.LCID(v)
}
