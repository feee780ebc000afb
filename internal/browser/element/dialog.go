// internal/browser/element/dialog.go
package element

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// DialogAction is what to do with a browser-native dialog.
type DialogAction string

const (
	DialogAccept  DialogAction = "accept"
	DialogDismiss DialogAction = "dismiss"
)

// DialogEvent describes a dialog a subscription handled.
type DialogEvent struct {
	Type         string
	Message      string
	DefaultValue string
	Action       DialogAction
	// Err is set when accepting or dismissing failed.
	Err error
}

// DialogSubscription is armed for exactly one dialog and disarms itself after handling it or
// when canceled.
type DialogSubscription struct {
	logger *zap.Logger
	action DialogAction
	text   *string
	armed  atomic.Bool

	// event and canceled are written once, before done is closed.
	event    DialogEvent
	canceled bool
	done     chan struct{}
}

// dialogQueue is the single dialog listener of a page. Dialogs go to the oldest armed
// subscription; with none armed they are dismissed, as Playwright does without listeners.
// beforeunload never consumes a subscription and is always accepted so navigation proceeds.
type dialogQueue struct {
	mu     sync.Mutex
	subs   []*DialogSubscription
	logger *zap.Logger
}

func (q *dialogQueue) push(s *DialogSubscription) {
	q.mu.Lock()
	q.subs = append(q.subs, s)
	q.mu.Unlock()
}

const dialogBeforeUnload = "beforeunload"

func (q *dialogQueue) dispatch(d playwright.Dialog) {
	if d.Type() == dialogBeforeUnload {
		q.logger.Debug("Accepting beforeunload dialog.")
		if err := d.Accept(); err != nil {
			q.logger.Warn("Failed to accept beforeunload dialog.", zap.Error(err))
		}
		return
	}

	var target *DialogSubscription
	q.mu.Lock()
	for len(q.subs) > 0 {
		s := q.subs[0]
		q.subs = q.subs[1:]
		if s.armed.CompareAndSwap(true, false) {
			target = s
			break
		}
	}
	q.mu.Unlock()

	if target == nil {
		q.logger.Debug("Dismissing unexpected dialog.", zap.String("type", d.Type()), zap.String("message", d.Message()))
		if err := d.Dismiss(); err != nil {
			q.logger.Warn("Failed to dismiss dialog.", zap.Error(err))
		}
		return
	}
	target.resolve(d)
}

// HandleNextDialog arms a subscription for the next alert, confirm or prompt on the page.
// With DialogAccept an optional text is sent as the prompt answer.
func (u *Util) HandleNextDialog(action DialogAction, text ...string) *DialogSubscription {
	sub := &DialogSubscription{
		logger: u.logger,
		action: action,
		done:   make(chan struct{}),
	}
	if len(text) > 0 {
		sub.text = &text[0]
	}
	sub.armed.Store(true)
	u.dialogs().push(sub)
	return sub
}

func (u *Util) dialogs() *dialogQueue {
	u.dialogOnce.Do(func() {
		u.dialogQ = &dialogQueue{logger: u.logger}
		u.page.OnDialog(u.dialogQ.dispatch)
	})
	return u.dialogQ
}

func (s *DialogSubscription) resolve(d playwright.Dialog) {
	ev := DialogEvent{
		Type:         d.Type(),
		Message:      d.Message(),
		DefaultValue: d.DefaultValue(),
		Action:       s.action,
	}
	switch {
	case s.action == DialogAccept && s.text != nil:
		ev.Err = d.Accept(*s.text)
	case s.action == DialogAccept:
		ev.Err = d.Accept()
	default:
		ev.Err = d.Dismiss()
	}
	if ev.Err != nil {
		s.logger.Warn("Failed to handle dialog.", zap.String("type", ev.Type), zap.Error(ev.Err))
	} else {
		s.logger.Debug("Dialog handled.", zap.String("type", ev.Type), zap.String("action", string(s.action)))
	}

	s.event = ev
	close(s.done)
}

// Armed reports whether the subscription is still waiting for its dialog.
func (s *DialogSubscription) Armed() bool { return s.armed.Load() }

// Wait blocks until the dialog has been handled, the subscription is canceled or ctx ends.
func (s *DialogSubscription) Wait(ctx context.Context) (DialogEvent, error) {
	select {
	case <-s.done:
		if s.canceled {
			return DialogEvent{}, ErrSubscriptionCanceled
		}
		return s.event, nil
	case <-ctx.Done():
		return DialogEvent{}, ctx.Err()
	}
}

// Cancel disarms the subscription. It is a no-op once the dialog has been handled.
func (s *DialogSubscription) Cancel() {
	if !s.armed.CompareAndSwap(true, false) {
		return
	}
	s.canceled = true
	close(s.done)
}
