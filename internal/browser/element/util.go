// internal/browser/element/util.go
package element

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// DefaultTimeout bounds visibility, title and URL waits when the caller passes none.
const DefaultTimeout = 5 * time.Second

const (
	highlightScript   = `el => { el.style.border = '2px solid red'; }`
	attributeScript   = `(el, name) => el.getAttribute(name)`
	optionTextsScript = `el => Array.from(el.options || [], o => (o.textContent || '').trim())`
	titleScript       = `partial => document.title.includes(partial)`
	urlScript         = `partial => window.location.href.includes(partial)`
)

// Util resolves selectors against one page and performs actions on the result. Selectors are
// re-resolved on every call; nothing is cached.
//
// State-changing calls return errors. Probes (IsVisible, IsEnabled) never do.
type Util struct {
	page      playwright.Page
	logger    *zap.Logger
	highlight bool
	timeout   time.Duration

	dialogOnce sync.Once
	dialogQ    *dialogQueue
}

// Option configures a Util.
type Option func(*Util)

// WithHighlight turns the red debug border on resolved elements on or off.
func WithHighlight(enabled bool) Option {
	return func(u *Util) { u.highlight = enabled }
}

// WithDefaultTimeout sets the timeout used by actions and by waits called with a zero timeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(u *Util) {
		if d > 0 {
			u.timeout = d
		}
	}
}

// New wraps page. It panics when page is nil: element calls require an initialized session.
func New(page playwright.Page, logger *zap.Logger, opts ...Option) *Util {
	if page == nil {
		panic("element: New called with a nil page; initialize the browser session first")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	u := &Util{
		page:      page,
		logger:    logger.Named("element"),
		highlight: true,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Page returns the wrapped page.
func (u *Util) Page() playwright.Page { return u.page }

// Resolve returns a locator for the first node matching selector, or an ElementNotFoundError
// when there is none right now. The element gets a highlight border when enabled; a failed
// highlight is logged and otherwise ignored.
func (u *Util) Resolve(selector string) (playwright.Locator, error) {
	all := u.page.Locator(selector)
	n, err := all.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count matches for %q: %w", selector, err)
	}
	if n == 0 {
		return nil, &ElementNotFoundError{Selector: selector}
	}

	loc := all.First()
	if u.highlight {
		if _, err := loc.Evaluate(highlightScript, nil); err != nil {
			u.logger.Debug("Could not highlight element.", zap.String("selector", selector), zap.Error(err))
		}
	}
	return loc, nil
}

// SetText clears the element and types value into it.
func (u *Util) SetText(selector, value string) error {
	loc, err := u.Resolve(selector)
	if err != nil {
		return err
	}
	opts := playwright.LocatorFillOptions{Timeout: millis(u.timeout)}
	if err := loc.Fill("", opts); err != nil {
		return u.wrap("clear", selector, u.timeout, err)
	}
	if err := loc.Fill(value, opts); err != nil {
		return u.wrap("fill", selector, u.timeout, err)
	}
	return nil
}

// Click clicks the element.
func (u *Util) Click(selector string) error {
	loc, err := u.Resolve(selector)
	if err != nil {
		return err
	}
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: millis(u.timeout)}); err != nil {
		return u.wrap("click", selector, u.timeout, err)
	}
	return nil
}

// ReadText returns the element's trimmed text content, "" when it has none.
func (u *Util) ReadText(selector string) (string, error) {
	loc, err := u.Resolve(selector)
	if err != nil {
		return "", err
	}
	text, err := loc.TextContent(playwright.LocatorTextContentOptions{Timeout: millis(u.timeout)})
	if err != nil {
		return "", u.wrap("read text", selector, u.timeout, err)
	}
	return strings.TrimSpace(text), nil
}

// ReadValue returns the current value of an input, textarea or select.
func (u *Util) ReadValue(selector string) (string, error) {
	loc, err := u.Resolve(selector)
	if err != nil {
		return "", err
	}
	value, err := loc.InputValue(playwright.LocatorInputValueOptions{Timeout: millis(u.timeout)})
	if err != nil {
		return "", u.wrap("read value", selector, u.timeout, err)
	}
	return value, nil
}

// ReadAttribute returns the named attribute. present is false when the attribute is absent,
// which is distinct from an attribute set to "".
func (u *Util) ReadAttribute(selector, name string) (value string, present bool, err error) {
	loc, err := u.Resolve(selector)
	if err != nil {
		return "", false, err
	}
	res, err := loc.Evaluate(attributeScript, name)
	if err != nil {
		return "", false, u.wrap("read attribute "+name, selector, u.timeout, err)
	}
	if res == nil {
		return "", false, nil
	}
	s, ok := res.(string)
	if !ok {
		return "", false, fmt.Errorf("attribute %s of %q: unexpected %T", name, selector, res)
	}
	return s, true, nil
}

// ListTexts returns the non-empty trimmed texts of every match, in DOM order.
func (u *Util) ListTexts(selector string) ([]string, error) {
	raw, err := u.page.Locator(selector).AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("failed to read texts for %q: %w", selector, err)
	}
	texts := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

// SelectByValue selects the dropdown option with the given value attribute.
func (u *Util) SelectByValue(selector, value string) error {
	loc, err := u.Resolve(selector)
	if err != nil {
		return err
	}
	_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.LocatorSelectOptionOptions{Timeout: millis(u.timeout)})
	if err != nil {
		return u.wrap("select value "+value, selector, u.timeout, err)
	}
	return nil
}

// SelectByVisibleText selects the first option whose trimmed text equals text. When no option
// matches it returns an OptionNotFoundError and leaves the selection as it was.
func (u *Util) SelectByVisibleText(selector, text string) error {
	loc, err := u.Resolve(selector)
	if err != nil {
		return err
	}
	res, err := loc.Evaluate(optionTextsScript, nil)
	if err != nil {
		return u.wrap("list options", selector, u.timeout, err)
	}
	options, _ := res.([]interface{})

	for i, opt := range options {
		if label, _ := opt.(string); strings.TrimSpace(label) == text {
			_, err := loc.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{i}},
				playwright.LocatorSelectOptionOptions{Timeout: millis(u.timeout)})
			if err != nil {
				return u.wrap("select option "+text, selector, u.timeout, err)
			}
			return nil
		}
	}
	return &OptionNotFoundError{Selector: selector, Text: text}
}

// WaitVisible blocks until the first match is visible or timeout elapses.
func (u *Util) WaitVisible(selector string, timeout time.Duration) (playwright.Locator, error) {
	timeout = u.orDefault(timeout)
	loc := u.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		return nil, u.wrap("wait visible", selector, timeout, err)
	}
	return loc, nil
}

// WaitTitleContains polls the document title until it contains substr and returns the title.
func (u *Util) WaitTitleContains(substr string, timeout time.Duration) (string, error) {
	timeout = u.orDefault(timeout)
	if _, err := u.page.WaitForFunction(titleScript, substr,
		playwright.PageWaitForFunctionOptions{Timeout: millis(timeout)}); err != nil {
		return "", u.wrap("wait title contains", substr, timeout, err)
	}
	return u.page.Title()
}

// WaitURLContains polls the page URL until it contains substr and returns the URL.
func (u *Util) WaitURLContains(substr string, timeout time.Duration) (string, error) {
	timeout = u.orDefault(timeout)
	if _, err := u.page.WaitForFunction(urlScript, substr,
		playwright.PageWaitForFunctionOptions{Timeout: millis(timeout)}); err != nil {
		return "", u.wrap("wait url contains", substr, timeout, err)
	}
	return u.page.URL(), nil
}

// Frame returns a frame locator for an iframe that exists right now.
func (u *Util) Frame(frameSelector string) (playwright.FrameLocator, error) {
	n, err := u.page.Locator(frameSelector).Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count frames for %q: %w", frameSelector, err)
	}
	if n == 0 {
		return nil, &ElementNotFoundError{Selector: frameSelector}
	}
	return u.page.FrameLocator(frameSelector), nil
}

// ScrollIntoView scrolls until the element is in the viewport.
func (u *Util) ScrollIntoView(selector string) error {
	loc, err := u.Resolve(selector)
	if err != nil {
		return err
	}
	if err := loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: millis(u.timeout)}); err != nil {
		return u.wrap("scroll into view", selector, u.timeout, err)
	}
	return nil
}

func (u *Util) orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return u.timeout
	}
	return d
}

// wrap maps Playwright timeouts to TimeoutError and annotates everything else.
func (u *Util) wrap(op, target string, timeout time.Duration, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return &TimeoutError{Op: op, Target: target, Timeout: timeout, Err: err}
	}
	return fmt.Errorf("%s %q: %w", op, target, err)
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
