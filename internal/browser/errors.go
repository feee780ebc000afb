// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned when a session is requested before InitSession.
	ErrNotInitialized = errors.New("browser session not initialized")
	// ErrSessionActive is returned by InitSession when the manager already holds a session.
	ErrSessionActive = errors.New("browser session already active")
)

// UnsupportedBrowserError reports a browser name with no matching family.
type UnsupportedBrowserError struct {
	Name string
}

func (e *UnsupportedBrowserError) Error() string {
	return fmt.Sprintf("unsupported browser %q (supported: %s)", e.Name, strings.Join(FamilyNames(), ", "))
}
