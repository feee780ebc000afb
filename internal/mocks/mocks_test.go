// internal/mocks/mocks_test.go
package mocks

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The doubles must keep satisfying the playwright interfaces they stand in for.
var (
	_ playwright.BrowserType    = (*MockBrowserType)(nil)
	_ playwright.Browser        = (*MockBrowser)(nil)
	_ playwright.BrowserContext = (*MockBrowserContext)(nil)
	_ playwright.Page           = (*MockPage)(nil)
	_ playwright.Locator        = (*MockLocator)(nil)
	_ playwright.Dialog         = (*MockDialog)(nil)
	_ playwright.Page           = (*FakePage)(nil)
	_ playwright.Locator        = (*FakeLocator)(nil)
	_ playwright.FrameLocator   = (*fakeFrameLocator)(nil)
	_ playwright.Dialog         = (*FakeDialog)(nil)
)

func TestEmitterMocksIgnoreEvents(t *testing.T) {
	page := new(MockPage)
	var pw playwright.Page = page
	assert.NotPanics(t, func() { pw.On("dialog", func(playwright.Dialog) {}) })

	page.Mock.On("URL").Return("http://localhost/")
	assert.Equal(t, "http://localhost/", pw.URL())
	page.AssertExpectations(t)
}

func TestFakeLocatorAsInterface(t *testing.T) {
	page := NewFakePage("http://localhost/")
	page.Add("#item", &FakeElement{Text: "one"}, &FakeElement{Text: "two"})

	var loc playwright.Locator = page.Locator("#item")
	n, err := loc.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text, err := loc.Nth(1).TextContent()
	require.NoError(t, err)
	assert.Equal(t, "two", text)
}
