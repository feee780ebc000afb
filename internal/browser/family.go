// internal/browser/family.go
package browser

import (
	"sort"
	"strings"
)

// Playwright engine names.
const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
	EngineWebKit   = "webkit"
)

// DefaultFamily is used when no browser name is configured.
const DefaultFamily = "chrome"

// Family describes one supported browser family. The option builder is driven entirely by
// these rows.
type Family struct {
	// Name is the canonical family name, e.g. "chrome".
	Name string
	// Engine is the Playwright browser type the family launches on.
	Engine string
	// Channel selects a branded build of the engine, e.g. "chrome" or "msedge".
	Channel string
	// PrivacyFlag is appended when incognito/private browsing is requested. Empty when the
	// family has no command-line switch for it.
	PrivacyFlag string
	// RemoteDebugArgs are appended for remote sessions.
	RemoteDebugArgs []string
	// SupportsCDP reports whether the family speaks the Chrome DevTools Protocol.
	SupportsCDP bool
}

var families = map[string]Family{
	"chrome": {
		Name:            "chrome",
		Engine:          EngineChromium,
		PrivacyFlag:     "--incognito",
		RemoteDebugArgs: []string{"--remote-debugging-port=9222"},
		SupportsCDP:     true,
	},
	"edge": {
		Name:            "edge",
		Engine:          EngineChromium,
		Channel:         "msedge",
		PrivacyFlag:     "--inPrivate",
		RemoteDebugArgs: []string{"--remote-debugging-port=9222"},
		SupportsCDP:     true,
	},
	// Playwright drives Firefox over its own Juggler protocol, so no --remote-debugging-port.
	"firefox": {
		Name:        "firefox",
		Engine:      EngineFirefox,
		PrivacyFlag: "--private",
	},
	"webkit": {
		Name:   "webkit",
		Engine: EngineWebKit,
	},
}

var familyAliases = map[string]string{
	"chromium": "chrome",
	"msedge":   "edge",
	"safari":   "webkit",
}

// LookupFamily resolves a user-supplied browser name, ignoring case and surrounding space.
// An empty name resolves to DefaultFamily.
func LookupFamily(name string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultFamily
	}
	if alias, ok := familyAliases[key]; ok {
		key = alias
	}
	f, ok := families[key]
	if !ok {
		return Family{}, &UnsupportedBrowserError{Name: name}
	}
	f.RemoteDebugArgs = append([]string(nil), f.RemoteDebugArgs...)
	return f, nil
}

// FamilyNames returns the canonical family names, sorted.
func FamilyNames() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
