// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/mock"
)

// The Playwright interfaces are large; each mock embeds the interface so it satisfies it and
// implements only the methods the harness calls. Calling anything else panics on the nil
// embedded value, which is what a test wants. Browser, context and page mocks also inherit
// an event-emitter On from playwright, so expectations are set with m.Mock.On.

// -- Engine Mock --

// MockEngine mocks browser.Engine.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) BrowserType(ctx context.Context, engine string) (playwright.BrowserType, error) {
	args := m.Called(ctx, engine)
	bt, _ := args.Get(0).(playwright.BrowserType)
	return bt, args.Error(1)
}

func (m *MockEngine) Stop() error {
	args := m.Called()
	return args.Error(0)
}

// -- Browser Type Mock --

// MockBrowserType mocks playwright.BrowserType.
type MockBrowserType struct {
	playwright.BrowserType
	mock.Mock
}

func (m *MockBrowserType) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBrowserType) Launch(options ...playwright.BrowserTypeLaunchOptions) (playwright.Browser, error) {
	var opts playwright.BrowserTypeLaunchOptions
	if len(options) > 0 {
		opts = options[0]
	}
	args := m.Called(opts)
	b, _ := args.Get(0).(playwright.Browser)
	return b, args.Error(1)
}

func (m *MockBrowserType) Connect(wsEndpoint string, options ...playwright.BrowserTypeConnectOptions) (playwright.Browser, error) {
	var opts playwright.BrowserTypeConnectOptions
	if len(options) > 0 {
		opts = options[0]
	}
	args := m.Called(wsEndpoint, opts)
	b, _ := args.Get(0).(playwright.Browser)
	return b, args.Error(1)
}

// -- Browser Mock --

// MockBrowser mocks playwright.Browser.
type MockBrowser struct {
	playwright.Browser
	mock.Mock
}

// On satisfies the playwright event emitter; register expectations through m.Mock.On.
func (m *MockBrowser) On(event string, handler interface{}) {}

func (m *MockBrowser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	var opts playwright.BrowserNewContextOptions
	if len(options) > 0 {
		opts = options[0]
	}
	args := m.Called(opts)
	c, _ := args.Get(0).(playwright.BrowserContext)
	return c, args.Error(1)
}

func (m *MockBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockBrowser) Version() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBrowser) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

// -- Browser Context Mock --

// MockBrowserContext mocks playwright.BrowserContext.
type MockBrowserContext struct {
	playwright.BrowserContext
	mock.Mock
}

// On satisfies the playwright event emitter; register expectations through m.Mock.On.
func (m *MockBrowserContext) On(event string, handler interface{}) {}

func (m *MockBrowserContext) NewPage() (playwright.Page, error) {
	args := m.Called()
	p, _ := args.Get(0).(playwright.Page)
	return p, args.Error(1)
}

func (m *MockBrowserContext) Close(options ...playwright.BrowserContextCloseOptions) error {
	args := m.Called()
	return args.Error(0)
}

// -- Page Mock --

// MockPage mocks the lifecycle and script methods of playwright.Page. Element-level tests use
// FakePage instead.
type MockPage struct {
	playwright.Page
	mock.Mock
}

// On satisfies the playwright event emitter; register expectations through m.Mock.On.
func (m *MockPage) On(event string, handler interface{}) {}

func (m *MockPage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	args := m.Called(url)
	r, _ := args.Get(0).(playwright.Response)
	return r, args.Error(1)
}

func (m *MockPage) GoBack(options ...playwright.PageGoBackOptions) (playwright.Response, error) {
	args := m.Called()
	r, _ := args.Get(0).(playwright.Response)
	return r, args.Error(1)
}

func (m *MockPage) GoForward(options ...playwright.PageGoForwardOptions) (playwright.Response, error) {
	args := m.Called()
	r, _ := args.Get(0).(playwright.Response)
	return r, args.Error(1)
}

func (m *MockPage) Reload(options ...playwright.PageReloadOptions) (playwright.Response, error) {
	args := m.Called()
	r, _ := args.Get(0).(playwright.Response)
	return r, args.Error(1)
}

func (m *MockPage) SetViewportSize(width, height int) error {
	args := m.Called(width, height)
	return args.Error(0)
}

func (m *MockPage) SetDefaultTimeout(timeout float64) {
	m.Called(timeout)
}

func (m *MockPage) SetDefaultNavigationTimeout(timeout float64) {
	m.Called(timeout)
}

func (m *MockPage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	var opts playwright.PageScreenshotOptions
	if len(options) > 0 {
		opts = options[0]
	}
	args := m.Called(opts)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockPage) Close(options ...playwright.PageCloseOptions) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPage) IsClosed() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPage) Title() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockPage) URL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	args := m.Called(expression, arg)
	return args.Get(0), args.Error(1)
}

func (m *MockPage) WaitForTimeout(timeout float64) {
	m.Called(timeout)
}

// -- Locator Mock --

// MockLocator mocks Locator.Evaluate for the script helpers.
type MockLocator struct {
	pwLocator
	mock.Mock
}

func (m *MockLocator) Evaluate(expression string, arg interface{}, options ...playwright.LocatorEvaluateOptions) (interface{}, error) {
	args := m.Called(expression, arg)
	return args.Get(0), args.Error(1)
}

// -- Dialog Mock --

// MockDialog mocks playwright.Dialog.
type MockDialog struct {
	playwright.Dialog
	mock.Mock
}

func (m *MockDialog) Type() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDialog) Message() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDialog) DefaultValue() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDialog) Accept(promptText ...string) error {
	args := m.Called(promptText)
	return args.Error(0)
}

func (m *MockDialog) Dismiss() error {
	args := m.Called()
	return args.Error(0)
}
