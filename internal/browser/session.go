// internal/browser/session.go
package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Viewport is a page size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// Session is the browser, context and page triple a test operates against. It is created by
// Manager.InitSession and owned by that manager; callers receive it by reference and must not
// close its handles directly.
type Session struct {
	ID        string
	Family    Family
	Browser   playwright.Browser
	Context   playwright.BrowserContext
	Page      playwright.Page
	BaseURL   string
	Viewport  Viewport
	Remote    bool
	CreatedAt time.Time
}

// close releases the page, the context and the browser in that order and reports every
// failure, not just the first.
func (s *Session) close() error {
	var errs []error
	if s.Page != nil && !s.Page.IsClosed() {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close page: %w", err))
		}
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	return errors.Join(errs...)
}
