// internal/browser/jsexec/util.go
package jsexec

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser/element"
)

const (
	flashColor  = "rgb(0,200,0)"
	flashCycles = 7
	flashPause  = 20 * time.Millisecond
)

// Util runs small scripts in the page: document reads, history moves, scrolling, zoom and
// JS-driven dialogs and clicks. Dialogs are answered through the element layer's subscriptions
// so both layers share one dialog listener per page.
type Util struct {
	page     playwright.Page
	elements *element.Util
	logger   *zap.Logger
}

// New creates a script helper for the page wrapped by elements.
func New(elements *element.Util, logger *zap.Logger) *Util {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Util{
		page:     elements.Page(),
		elements: elements,
		logger:   logger.Named("jsexec"),
	}
}

func (u *Util) evalString(script string, arg ...interface{}) (string, error) {
	res, err := u.page.Evaluate(script, arg...)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	s, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("script returned %T, want string", res)
	}
	return s, nil
}

func (u *Util) run(what, script string, arg ...interface{}) error {
	if _, err := u.page.Evaluate(script, arg...); err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	return nil
}

// Title reads document.title.
func (u *Util) Title() (string, error) {
	return u.evalString(`() => document.title`)
}

// URL reads document.URL.
func (u *Util) URL() (string, error) {
	return u.evalString(`() => document.URL`)
}

// InnerText returns the rendered text of the whole document.
func (u *Util) InnerText() (string, error) {
	return u.evalString(`() => document.documentElement.innerText`)
}

// Alert opens an alert with msg and accepts it.
func (u *Util) Alert(ctx context.Context, msg string) error {
	sub := u.elements.HandleNextDialog(element.DialogAccept)
	if err := u.run("open alert", `msg => alert(msg)`, msg); err != nil {
		sub.Cancel()
		return err
	}
	_, err := sub.Wait(ctx)
	return err
}

// Confirm opens a confirm with msg, accepts it and returns what the page saw.
func (u *Util) Confirm(ctx context.Context, msg string) (bool, error) {
	sub := u.elements.HandleNextDialog(element.DialogAccept)
	res, err := u.page.Evaluate(`msg => confirm(msg)`, msg)
	if err != nil {
		sub.Cancel()
		return false, fmt.Errorf("failed to open confirm: %w", err)
	}
	if _, err := sub.Wait(ctx); err != nil {
		return false, err
	}
	ok, _ := res.(bool)
	return ok, nil
}

// Prompt opens a prompt with msg, answers it with value and returns what the page received.
func (u *Util) Prompt(ctx context.Context, msg, value string) (string, error) {
	sub := u.elements.HandleNextDialog(element.DialogAccept, value)
	answer, err := u.evalString(`msg => prompt(msg)`, msg)
	if err != nil {
		sub.Cancel()
		return "", fmt.Errorf("failed to open prompt: %w", err)
	}
	if _, err := sub.Wait(ctx); err != nil {
		return "", err
	}
	return answer, nil
}

// GoBack moves one entry back in history.
func (u *Util) GoBack() error { return u.run("go back", `() => history.go(-1)`) }

// GoForward moves one entry forward in history.
func (u *Util) GoForward() error { return u.run("go forward", `() => history.go(1)`) }

// Refresh reloads the current history entry.
func (u *Util) Refresh() error { return u.run("refresh", `() => history.go(0)`) }

func (u *Util) ScrollToMiddle() error {
	return u.run("scroll", `() => window.scrollTo(0, document.body.scrollHeight / 2)`)
}

func (u *Util) ScrollToBottom() error {
	return u.run("scroll", `() => window.scrollTo(0, document.body.scrollHeight)`)
}

// ScrollTo scrolls vertically to height pixels.
func (u *Util) ScrollTo(height int) error {
	return u.run("scroll", `h => window.scrollTo(0, h)`, height)
}

func (u *Util) ScrollToTop() error {
	return u.run("scroll", `() => window.scrollTo(0, 0)`)
}

// Zoom sets the CSS zoom of the body, in percent.
func (u *Util) Zoom(percent int) error {
	if percent <= 0 {
		return fmt.Errorf("zoom must be positive, got %d", percent)
	}
	return u.run("zoom", `zoom => { document.body.style.zoom = zoom + '%'; }`, percent)
}

// DrawBorder outlines the element in red.
func (u *Util) DrawBorder(loc playwright.Locator) error {
	if _, err := loc.Evaluate(`el => { el.style.border = '3px solid red'; }`, nil); err != nil {
		return fmt.Errorf("failed to draw border: %w", err)
	}
	return nil
}

// Flash blinks the element's background green a few times and restores the original color.
func (u *Util) Flash(ctx context.Context, loc playwright.Locator) error {
	res, err := loc.Evaluate(`el => window.getComputedStyle(el).backgroundColor`, nil)
	if err != nil {
		return fmt.Errorf("failed to read background color: %w", err)
	}
	original, _ := res.(string)

	for i := 0; i < flashCycles; i++ {
		for _, color := range []string{flashColor, original} {
			if _, err := loc.Evaluate(`(el, c) => { el.style.backgroundColor = c; }`, color); err != nil {
				return fmt.Errorf("failed to change background color: %w", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(flashPause):
			}
		}
	}
	return nil
}

// ClickByJS clicks through the DOM instead of synthesizing mouse input.
func (u *Util) ClickByJS(loc playwright.Locator) error {
	if _, err := loc.Evaluate(`el => el.click()`, nil); err != nil {
		return fmt.Errorf("failed to click by script: %w", err)
	}
	return nil
}

// SetValueByID assigns value to the element with the given id, if there is one.
func (u *Util) SetValueByID(id, value string) error {
	return u.run("set value of #"+id, `([id, value]) => {
		const el = document.getElementById(id);
		if (el) el.value = value;
	}`, []string{id, value})
}
