// internal/mocks/fakepage.go
package mocks

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// FakeElement is one node of a FakePage.
type FakeElement struct {
	Text       string
	Value      string
	Attrs      map[string]string
	Hidden     bool
	Disabled   bool
	Options    []FakeOption
	Selected   int
	Clicks     int
	Border     string
	Background string
}

// FakeOption is an <option> of a FakeElement acting as a <select>.
type FakeOption struct {
	Value string
	Text  string
}

// FakePage is a small in-memory page: a selector-to-nodes table with enough behavior for the
// element, page-object and scenario layers. Selectors are matched literally.
type FakePage struct {
	playwright.Page

	mu          sync.Mutex
	elements    map[string][]*FakeElement
	title       string
	url         string
	closed      bool
	dialogFns   []func(playwright.Dialog)
	Gotos       []string
	Evaluations []string
	Screenshots []string
	Viewport    [2]int

	// EvaluateFunc answers Page.Evaluate when set.
	EvaluateFunc func(expression string, arg []interface{}) (interface{}, error)
	// GotoFunc runs after a navigation is recorded, e.g. to swap the page content.
	GotoFunc func(page *FakePage, url string)
	// GotoErr fails every navigation when set.
	GotoErr error
	// ClickFunc runs after a successful click, e.g. to reveal what the click would show.
	ClickFunc func(page *FakePage, selector string)
}

// NewFakePage returns an empty page at url.
func NewFakePage(url string) *FakePage {
	return &FakePage{elements: make(map[string][]*FakeElement), url: url}
}

// Add appends nodes matching selector. It is safe to call while waits are in progress.
func (p *FakePage) Add(selector string, els ...*FakeElement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = append(p.elements[selector], els...)
}

// Remove drops every node matching selector.
func (p *FakePage) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// Element returns the i-th node for selector, or nil.
func (p *FakePage) Element(selector string, i int) *FakeElement {
	p.mu.Lock()
	defer p.mu.Unlock()
	els := p.elements[selector]
	if i < 0 || i >= len(els) {
		return nil
	}
	return els[i]
}

// SetTitle changes the document title.
func (p *FakePage) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

// SetURL changes the location without recording a navigation.
func (p *FakePage) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// TriggerDialog delivers d to every registered dialog listener, as the page does when a
// script opens an alert, confirm or prompt.
func (p *FakePage) TriggerDialog(d playwright.Dialog) {
	p.mu.Lock()
	fns := append([]func(playwright.Dialog){}, p.dialogFns...)
	p.mu.Unlock()
	for _, fn := range fns {
		fn(d)
	}
}

// DialogListeners reports how many dialog listeners are registered.
func (p *FakePage) DialogListeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dialogFns)
}

func (p *FakePage) with(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

// -- playwright.Page --

func (p *FakePage) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	return &FakeLocator{page: p, selector: selector, index: -1}
}

func (p *FakePage) FrameLocator(selector string) playwright.FrameLocator {
	return &fakeFrameLocator{selector: selector}
}

func (p *FakePage) OnDialog(fn func(playwright.Dialog)) {
	p.with(func() { p.dialogFns = append(p.dialogFns, fn) })
}

func (p *FakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.GotoErr != nil {
		return nil, p.GotoErr
	}
	p.with(func() {
		p.Gotos = append(p.Gotos, url)
		p.url = url
	})
	if p.GotoFunc != nil {
		p.GotoFunc(p, url)
	}
	return nil, nil
}

func (p *FakePage) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, nil
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *FakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	p.with(func() { p.Evaluations = append(p.Evaluations, expression) })
	if p.EvaluateFunc != nil {
		return p.EvaluateFunc(expression, arg)
	}
	return nil, nil
}

// WaitForFunction understands the title and location predicates the element layer uses.
func (p *FakePage) WaitForFunction(expression string, arg interface{}, options ...playwright.PageWaitForFunctionOptions) (playwright.JSHandle, error) {
	want, _ := arg.(string)
	check := func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		switch {
		case strings.Contains(expression, "document.title"):
			return strings.Contains(p.title, want)
		case strings.Contains(expression, "location.href"):
			return strings.Contains(p.url, want)
		}
		return false
	}
	var timeout *float64
	if len(options) > 0 {
		timeout = options[0].Timeout
	}
	if err := poll(timeout, check); err != nil {
		return nil, fmt.Errorf("page.waitForFunction: %w", err)
	}
	return nil, nil
}

func (p *FakePage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	if len(options) > 0 && options[0].Path != nil {
		p.with(func() { p.Screenshots = append(p.Screenshots, *options[0].Path) })
	}
	return []byte("\x89PNG"), nil
}

func (p *FakePage) SetViewportSize(width, height int) error {
	p.with(func() { p.Viewport = [2]int{width, height} })
	return nil
}

func (p *FakePage) SetDefaultTimeout(timeout float64)           {}
func (p *FakePage) SetDefaultNavigationTimeout(timeout float64) {}
func (p *FakePage) WaitForTimeout(timeout float64)              {}

func (p *FakePage) Close(options ...playwright.PageCloseOptions) error {
	p.with(func() { p.closed = true })
	return nil
}

func (p *FakePage) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// poll checks cond every few milliseconds until it holds or the timeout (milliseconds,
// default 5000) expires.
func poll(timeout *float64, cond func() bool) error {
	d := 5 * time.Second
	if timeout != nil {
		d = time.Duration(*timeout) * time.Millisecond
	}
	deadline := time.Now().Add(d)
	for {
		if cond() {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s exceeded", playwright.ErrTimeout, d)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// -- playwright.Locator --

// Aliases keep the embedded field from shadowing the Locator and FrameLocator methods
// both interfaces declare.
type (
	pwLocator      = playwright.Locator
	pwFrameLocator = playwright.FrameLocator
)

// FakeLocator resolves against its FakePage on every call, like a real locator.
type FakeLocator struct {
	pwLocator
	page     *FakePage
	selector string
	index    int
}

func (l *FakeLocator) nodes() []*FakeElement {
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	els := l.page.elements[l.selector]
	if l.index < 0 {
		return append([]*FakeElement(nil), els...)
	}
	if l.index >= len(els) {
		return nil
	}
	return []*FakeElement{els[l.index]}
}

// node returns the single target of an action, or a timeout error when there is none.
func (l *FakeLocator) node(op string) (*FakeElement, error) {
	els := l.nodes()
	if len(els) == 0 {
		return nil, fmt.Errorf("locator.%s(%s): %w", op, l.selector, playwright.ErrTimeout)
	}
	if len(els) > 1 {
		return nil, fmt.Errorf("locator.%s: strict mode violation: %s resolved to %d elements", op, l.selector, len(els))
	}
	return els[0], nil
}

func (l *FakeLocator) Count() (int, error) { return len(l.nodes()), nil }

func (l *FakeLocator) First() playwright.Locator {
	return &FakeLocator{page: l.page, selector: l.selector, index: 0}
}

func (l *FakeLocator) Nth(index int) playwright.Locator {
	return &FakeLocator{page: l.page, selector: l.selector, index: index}
}

func (l *FakeLocator) All() ([]playwright.Locator, error) {
	n := len(l.nodes())
	out := make([]playwright.Locator, n)
	for i := range out {
		out[i] = l.Nth(i)
	}
	return out, nil
}

func (l *FakeLocator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	el, err := l.node("fill")
	if err != nil {
		return err
	}
	var ferr error
	l.page.with(func() {
		if el.Hidden || el.Disabled {
			ferr = fmt.Errorf("locator.fill(%s): element is not editable: %w", l.selector, playwright.ErrTimeout)
			return
		}
		el.Value = value
	})
	return ferr
}

func (l *FakeLocator) Click(options ...playwright.LocatorClickOptions) error {
	el, err := l.node("click")
	if err != nil {
		return err
	}
	var cerr error
	l.page.with(func() {
		if el.Hidden || el.Disabled {
			cerr = fmt.Errorf("locator.click(%s): element is not enabled: %w", l.selector, playwright.ErrTimeout)
			return
		}
		el.Clicks++
	})
	if cerr == nil && l.page.ClickFunc != nil {
		l.page.ClickFunc(l.page, l.selector)
	}
	return cerr
}

func (l *FakeLocator) TextContent(options ...playwright.LocatorTextContentOptions) (string, error) {
	el, err := l.node("textContent")
	if err != nil {
		return "", err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	return el.Text, nil
}

func (l *FakeLocator) InputValue(options ...playwright.LocatorInputValueOptions) (string, error) {
	el, err := l.node("inputValue")
	if err != nil {
		return "", err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	if len(el.Options) > 0 {
		return el.Options[el.Selected].Value, nil
	}
	return el.Value, nil
}

func (l *FakeLocator) AllTextContents() ([]string, error) {
	els := l.nodes()
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.Text)
	}
	return out, nil
}

func (l *FakeLocator) IsEnabled(options ...playwright.LocatorIsEnabledOptions) (bool, error) {
	el, err := l.node("isEnabled")
	if err != nil {
		return false, err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	return !el.Disabled, nil
}

func (l *FakeLocator) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	var timeout *float64
	if len(options) > 0 {
		timeout = options[0].Timeout
	}
	err := poll(timeout, func() bool {
		els := l.nodes()
		l.page.mu.Lock()
		defer l.page.mu.Unlock()
		return len(els) == 1 && !els[0].Hidden
	})
	if err != nil {
		return fmt.Errorf("locator.waitFor(%s): %w", l.selector, err)
	}
	return nil
}

func (l *FakeLocator) SelectOption(values playwright.SelectOptionValues, options ...playwright.LocatorSelectOptionOptions) ([]string, error) {
	el, err := l.node("selectOption")
	if err != nil {
		return nil, err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()

	idx := -1
	switch {
	case values.Indexes != nil && len(*values.Indexes) > 0:
		if i := (*values.Indexes)[0]; i >= 0 && i < len(el.Options) {
			idx = i
		}
	case values.Values != nil && len(*values.Values) > 0:
		for i, o := range el.Options {
			if o.Value == (*values.Values)[0] {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("locator.selectOption(%s): no matching option: %w", l.selector, playwright.ErrTimeout)
	}
	el.Selected = idx
	return []string{el.Options[idx].Value}, nil
}

func (l *FakeLocator) ScrollIntoViewIfNeeded(options ...playwright.LocatorScrollIntoViewIfNeededOptions) error {
	_, err := l.node("scrollIntoViewIfNeeded")
	return err
}

// Evaluate recognizes the handful of element scripts the harness runs.
func (l *FakeLocator) Evaluate(expression string, arg interface{}, options ...playwright.LocatorEvaluateOptions) (interface{}, error) {
	el, err := l.node("evaluate")
	if err != nil {
		return nil, err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	l.page.Evaluations = append(l.page.Evaluations, expression)

	switch {
	case strings.Contains(expression, "getAttribute"):
		name, _ := arg.(string)
		if v, ok := el.Attrs[name]; ok {
			return v, nil
		}
		return nil, nil
	case strings.Contains(expression, ".options"):
		texts := make([]interface{}, 0, len(el.Options))
		for _, o := range el.Options {
			texts = append(texts, strings.TrimSpace(o.Text))
		}
		return texts, nil
	case strings.Contains(expression, "getComputedStyle"):
		if el.Background == "" {
			return "rgba(0, 0, 0, 0)", nil
		}
		return el.Background, nil
	case strings.Contains(expression, "style.backgroundColor"):
		el.Background, _ = arg.(string)
		return nil, nil
	case strings.Contains(expression, "style.border"):
		el.Border = quoted(expression)
		return nil, nil
	case strings.Contains(expression, ".click()"):
		el.Clicks++
		return nil, nil
	}
	return nil, nil
}

func quoted(s string) string {
	start := strings.IndexByte(s, '\'')
	if start < 0 {
		return s
	}
	end := strings.IndexByte(s[start+1:], '\'')
	if end < 0 {
		return s[start+1:]
	}
	return s[start+1 : start+1+end]
}

type fakeFrameLocator struct {
	pwFrameLocator
	selector string
}

// -- playwright.Dialog --

// FakeDialog records how it was answered.
type FakeDialog struct {
	playwright.Dialog
	Kind       string
	Text       string
	Default    string
	mu         sync.Mutex
	accepted   bool
	dismissed  bool
	promptText *string
}

func (d *FakeDialog) Type() string         { return d.Kind }
func (d *FakeDialog) Message() string      { return d.Text }
func (d *FakeDialog) DefaultValue() string { return d.Default }

func (d *FakeDialog) Accept(promptText ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accepted = true
	if len(promptText) > 0 {
		d.promptText = &promptText[0]
	}
	return nil
}

func (d *FakeDialog) Dismiss() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dismissed = true
	return nil
}

// Outcome reports whether the dialog was accepted or dismissed and the prompt text sent, if any.
func (d *FakeDialog) Outcome() (accepted, dismissed bool, promptText *string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted, d.dismissed, d.promptText
}
