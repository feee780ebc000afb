// internal/pages/base.go
package pages

import (
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser/element"
	"github.com/xkilldash9x/webharness/internal/browser/jsexec"
)

// BasePage is embedded by every page object. It carries the page plus the element and script
// helpers built over it.
type BasePage struct {
	Page     playwright.Page
	Elements *element.Util
	JS       *jsexec.Util
	logger   *zap.Logger
}

// NewBasePage wraps page. A nil page panics, as it does for element.New.
func NewBasePage(page playwright.Page, logger *zap.Logger, opts ...element.Option) BasePage {
	if logger == nil {
		logger = zap.NewNop()
	}
	elements := element.New(page, logger, opts...)
	return BasePage{
		Page:     page,
		Elements: elements,
		JS:       jsexec.New(elements, logger),
		logger:   logger.Named("pages"),
	}
}
