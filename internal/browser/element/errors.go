// internal/browser/element/errors.go
package element

import (
	"errors"
	"fmt"
	"time"
)

// ErrSubscriptionCanceled is returned by DialogSubscription.Wait after Cancel.
var ErrSubscriptionCanceled = errors.New("dialog subscription canceled")

// ElementNotFoundError reports a selector that matched no nodes when it was resolved.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found for selector: %s", e.Selector)
}

// TimeoutError reports a bounded wait that expired.
type TimeoutError struct {
	Op      string
	Target  string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %q: timed out after %s", e.Op, e.Target, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// OptionNotFoundError reports a dropdown with no option whose trimmed text matches.
type OptionNotFoundError struct {
	Selector string
	Text     string
}

func (e *OptionNotFoundError) Error() string {
	return fmt.Sprintf("no option with text %q in %s", e.Text, e.Selector)
}
