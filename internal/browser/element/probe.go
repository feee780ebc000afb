// internal/browser/element/probe.go
package element

import (
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Probe is the outcome of a status query: OK, or not OK with the reason.
type Probe struct {
	OK     bool
	Reason string
}

func probeFailed(reason string) Probe { return Probe{Reason: reason} }

// CheckVisible waits up to timeout for the first match to become visible. It never fails;
// absence and timeout both come back as a not-OK Probe.
func (u *Util) CheckVisible(selector string, timeout time.Duration) Probe {
	timeout = u.orDefault(timeout)
	err := u.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		u.logger.Debug("Element not visible.", zap.String("selector", selector), zap.Duration("timeout", timeout), zap.Error(err))
		return probeFailed(err.Error())
	}
	return Probe{OK: true}
}

// IsVisible is CheckVisible collapsed to a bool.
func (u *Util) IsVisible(selector string, timeout time.Duration) bool {
	return u.CheckVisible(selector, timeout).OK
}

// CheckEnabled reports whether the first match is enabled. It never fails.
func (u *Util) CheckEnabled(selector string) Probe {
	loc := u.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		u.logger.Warn("Error checking if element is enabled.", zap.String("selector", selector), zap.Error(err))
		return probeFailed(err.Error())
	}
	if n == 0 {
		u.logger.Warn("Element to check for enabled state not found.", zap.String("selector", selector))
		return probeFailed((&ElementNotFoundError{Selector: selector}).Error())
	}

	enabled, err := loc.First().IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: millis(u.timeout)})
	if err != nil {
		u.logger.Warn("Error checking if element is enabled.", zap.String("selector", selector), zap.Error(err))
		return probeFailed(err.Error())
	}
	u.logger.Debug("Element enabled state.", zap.String("selector", selector), zap.Bool("enabled", enabled))
	if !enabled {
		return probeFailed("element is disabled")
	}
	return Probe{OK: true}
}

// IsEnabled is CheckEnabled collapsed to a bool.
func (u *Util) IsEnabled(selector string) bool {
	return u.CheckEnabled(selector).OK
}
