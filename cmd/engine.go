// cmd/engine.go
package cmd

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser"
	"github.com/xkilldash9x/webharness/internal/config"
)

// newEngine builds the Playwright engine for one browser family, installing only that
// family's engine. Tests replace it.
var newEngine = func(cfg config.BrowserConfig, logger *zap.Logger, family string) (browser.Engine, error) {
	f, err := browser.LookupFamily(family)
	if err != nil {
		return nil, err
	}
	return browser.NewPlaywrightEngine(cfg, logger, f.Engine), nil
}
