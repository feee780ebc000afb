// internal/browser/jsexec/util_test.go
package jsexec_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/webharness/internal/browser/element"
	"github.com/xkilldash9x/webharness/internal/browser/jsexec"
	"github.com/xkilldash9x/webharness/internal/mocks"
)

func newTestFixture(t *testing.T) (*jsexec.Util, *mocks.FakePage) {
	t.Helper()
	page := mocks.NewFakePage("http://localhost/")
	page.Add("#box", &mocks.FakeElement{Background: "rgb(255, 255, 255)"})
	logger := zaptest.NewLogger(t)
	return jsexec.New(element.New(page, logger), logger), page
}

func TestDocumentReads(t *testing.T) {
	u, page := newTestFixture(t)
	page.EvaluateFunc = func(expr string, _ []interface{}) (interface{}, error) {
		switch {
		case strings.Contains(expr, "document.title"):
			return "Fixture", nil
		case strings.Contains(expr, "document.URL"):
			return "http://localhost/", nil
		case strings.Contains(expr, "innerText"):
			return "Hello\nWorld", nil
		}
		return nil, nil
	}

	title, err := u.Title()
	require.NoError(t, err)
	assert.Equal(t, "Fixture", title)

	url, err := u.URL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/", url)

	text, err := u.InnerText()
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text)
}

func TestDocumentReads_WrongType(t *testing.T) {
	u, page := newTestFixture(t)
	page.EvaluateFunc = func(string, []interface{}) (interface{}, error) { return 42.0, nil }
	_, err := u.Title()
	assert.ErrorContains(t, err, "want string")
}

func TestNavigationAndScrolling(t *testing.T) {
	u, page := newTestFixture(t)

	require.NoError(t, u.GoBack())
	require.NoError(t, u.GoForward())
	require.NoError(t, u.Refresh())
	require.NoError(t, u.ScrollToMiddle())
	require.NoError(t, u.ScrollToBottom())
	require.NoError(t, u.ScrollTo(640))
	require.NoError(t, u.ScrollToTop())
	require.NoError(t, u.Zoom(80))
	require.NoError(t, u.SetValueByID("username", "alice"))

	require.Len(t, page.Evaluations, 9)
	assert.Contains(t, page.Evaluations[0], "history.go(-1)")
	assert.Contains(t, page.Evaluations[1], "history.go(1)")
	assert.Contains(t, page.Evaluations[2], "history.go(0)")
	assert.Contains(t, page.Evaluations[7], "style.zoom")
	assert.Contains(t, page.Evaluations[8], "getElementById")

	assert.Error(t, u.Zoom(0))
}

func TestScriptFailure(t *testing.T) {
	page := new(mocks.MockPage)
	page.Mock.On("Evaluate", mock.Anything, mock.Anything).Return(nil, errors.New("execution context was destroyed"))
	u := jsexec.New(element.New(page, nil), nil)

	err := u.GoBack()
	assert.ErrorContains(t, err, "failed to go back")
	assert.ErrorContains(t, err, "execution context was destroyed")
}

func TestDialogs(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	t.Run("Alert", func(t *testing.T) {
		u, page := newTestFixture(t)
		d := &mocks.FakeDialog{Kind: "alert"}
		page.EvaluateFunc = func(expr string, arg []interface{}) (interface{}, error) {
			d.Text = arg[0].(string)
			page.TriggerDialog(d)
			return nil, nil
		}

		require.NoError(t, u.Alert(ctx, "saved"))
		accepted, _, _ := d.Outcome()
		assert.True(t, accepted)
		assert.Equal(t, "saved", d.Text)
	})

	t.Run("Confirm", func(t *testing.T) {
		u, page := newTestFixture(t)
		d := &mocks.FakeDialog{Kind: "confirm"}
		page.EvaluateFunc = func(string, []interface{}) (interface{}, error) {
			page.TriggerDialog(d)
			accepted, _, _ := d.Outcome()
			return accepted, nil
		}

		ok, err := u.Confirm(ctx, "Delete?")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Prompt", func(t *testing.T) {
		u, page := newTestFixture(t)
		d := &mocks.FakeDialog{Kind: "prompt"}
		page.EvaluateFunc = func(string, []interface{}) (interface{}, error) {
			page.TriggerDialog(d)
			_, _, text := d.Outcome()
			return *text, nil
		}

		answer, err := u.Prompt(ctx, "Name?", "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", answer)
	})

	t.Run("FailedScriptCancelsSubscription", func(t *testing.T) {
		u, page := newTestFixture(t)
		page.EvaluateFunc = func(string, []interface{}) (interface{}, error) {
			return nil, errors.New("page crashed")
		}
		require.Error(t, u.Alert(ctx, "x"))

		// The canceled subscription must not swallow the next dialog.
		d := &mocks.FakeDialog{Kind: "alert"}
		page.TriggerDialog(d)
		accepted, dismissed, _ := d.Outcome()
		assert.False(t, accepted)
		assert.True(t, dismissed)
	})
}

func TestElementScripts(t *testing.T) {
	u, page := newTestFixture(t)
	loc := page.Locator("#box").First()

	require.NoError(t, u.DrawBorder(loc))
	assert.Equal(t, "3px solid red", page.Element("#box", 0).Border)

	require.NoError(t, u.ClickByJS(loc))
	assert.Equal(t, 1, page.Element("#box", 0).Clicks)

	require.NoError(t, u.Flash(context.Background(), loc))
	assert.Equal(t, "rgb(255, 255, 255)", page.Element("#box", 0).Background, "original color is restored")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, u.Flash(ctx, loc), context.Canceled)

	missing := page.Locator("#missing").First()
	assert.Error(t, u.DrawBorder(missing))
}

func TestElementScriptFailures(t *testing.T) {
	u, _ := newTestFixture(t)

	t.Run("ReadBackgroundFails", func(t *testing.T) {
		loc := new(mocks.MockLocator)
		loc.On("Evaluate", mock.Anything, nil).Return(nil, errors.New("element detached")).Once()
		err := u.Flash(context.Background(), loc)
		assert.ErrorContains(t, err, "failed to read background color")
		loc.AssertExpectations(t)
	})

	t.Run("ChangeBackgroundFails", func(t *testing.T) {
		loc := new(mocks.MockLocator)
		loc.On("Evaluate", mock.Anything, nil).Return("rgb(0, 0, 0)", nil).Once()
		loc.On("Evaluate", mock.Anything, mock.Anything).Return(nil, errors.New("element detached")).Once()
		err := u.Flash(context.Background(), loc)
		assert.ErrorContains(t, err, "failed to change background color")
		loc.AssertExpectations(t)
	})

	t.Run("ClickByJS", func(t *testing.T) {
		loc := new(mocks.MockLocator)
		loc.On("Evaluate", "el => el.click()", nil).Return(nil, errors.New("element detached")).Once()
		assert.ErrorContains(t, u.ClickByJS(loc), "failed to click by script")
		loc.AssertExpectations(t)
	})

	t.Run("DrawBorder", func(t *testing.T) {
		loc := new(mocks.MockLocator)
		loc.On("Evaluate", mock.MatchedBy(func(s string) bool { return strings.Contains(s, "border") }), nil).
			Return(nil, nil).Once()
		require.NoError(t, u.DrawBorder(loc))
		loc.AssertExpectations(t)
	})
}
