// internal/browser/manager_test.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/webharness/internal/config"
	"github.com/xkilldash9x/webharness/internal/mocks"
)

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

// managerFixture wires a Manager to an engine that hands out mock Playwright objects.
type managerFixture struct {
	cfg         *config.Config
	engine      *mocks.MockEngine
	browserType *mocks.MockBrowserType
	browser     *mocks.MockBrowser
	context     *mocks.MockBrowserContext
	page        *mocks.FakePage
	manager     *Manager
}

func newManagerFixture(t *testing.T, mutate func(cfg *config.Config)) *managerFixture {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Screenshots.Dir = filepath.Join(t.TempDir(), "screenshots")
	if mutate != nil {
		mutate(cfg)
	}

	f := &managerFixture{
		cfg:         cfg,
		engine:      new(mocks.MockEngine),
		browserType: new(mocks.MockBrowserType),
		browser:     new(mocks.MockBrowser),
		context:     new(mocks.MockBrowserContext),
		page:        mocks.NewFakePage("about:blank"),
	}
	f.browser.Mock.On("Version").Return("129.0.6668.29").Maybe()
	f.manager = NewManager(cfg, zaptest.NewLogger(t), f.engine)
	f.manager.now = func() time.Time { return fixedNow }
	return f
}

// expectLocalLaunch sets up the happy path for a local launch on engine.
func (f *managerFixture) expectLocalLaunch(engine string) {
	f.engine.Mock.On("BrowserType", mock.Anything, engine).Return(f.browserType, nil).Once()
	f.browserType.Mock.On("Launch", mock.Anything).Return(f.browser, nil).Once()
	f.browser.Mock.On("NewContext", mock.Anything).Return(f.context, nil).Once()
	f.context.Mock.On("NewPage").Return(f.page, nil).Once()
}

func TestInitSession_LocalLaunch(t *testing.T) {
	f := newManagerFixture(t, nil)
	f.expectLocalLaunch(EngineChromium)

	s, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "chrome", s.Family.Name)
	assert.False(t, s.Remote)
	assert.Equal(t, "http://localhost", s.BaseURL)
	assert.Equal(t, Viewport{Width: 1920, Height: 1080}, s.Viewport)
	assert.Equal(t, fixedNow, s.CreatedAt)
	assert.Equal(t, []string{"http://localhost"}, f.page.Gotos)
	assert.Equal(t, [2]int{1920, 1080}, f.page.Viewport)

	active, err := f.manager.ActiveSession()
	require.NoError(t, err)
	assert.Same(t, s, active)

	// The context gets the base URL so page objects can navigate relative paths.
	ctxOpts := f.browser.Calls[0].Arguments.Get(0).(playwright.BrowserNewContextOptions)
	require.NotNil(t, ctxOpts.BaseURL)
	assert.Equal(t, "http://localhost", *ctxOpts.BaseURL)

	launchOpts := f.browserType.Calls[0].Arguments.Get(0).(playwright.BrowserTypeLaunchOptions)
	require.NotNil(t, launchOpts.Headless)
	assert.False(t, *launchOpts.Headless)

	f.browserType.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
	f.engine.AssertExpectations(t)
	f.browserType.AssertExpectations(t)
}

func TestInitSession_RemoteConnect(t *testing.T) {
	f := newManagerFixture(t, func(cfg *config.Config) {
		cfg.Remote.Enabled = true
		cfg.Remote.HubURL = "http://grid:4444"
	})
	f.engine.Mock.On("BrowserType", mock.Anything, EngineChromium).Return(f.browserType, nil)
	f.browserType.Mock.On("Connect", "ws://grid:4444", mock.Anything).Return(f.browser, nil)
	f.browser.Mock.On("NewContext", mock.Anything).Return(f.context, nil)
	f.context.Mock.On("NewPage").Return(f.page, nil)

	s, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
	require.NoError(t, err)
	assert.True(t, s.Remote)

	f.browserType.AssertNotCalled(t, "Launch", mock.Anything)
	opts := f.browserType.Calls[0].Arguments.Get(1).(playwright.BrowserTypeConnectOptions)
	assert.Contains(t, opts.Headers[launchOptionsHeader], "--remote-debugging-port=9222")
}

func TestInitSession_Defaults(t *testing.T) {
	f := newManagerFixture(t, func(cfg *config.Config) {
		cfg.Browser.Name = "firefox"
		cfg.Browser.BaseURL = "http://fixture.local"
	})
	f.expectLocalLaunch(EngineFirefox)

	s, err := f.manager.InitSession(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "firefox", s.Family.Name)
	assert.Equal(t, "http://fixture.local", s.BaseURL)
}

func TestInitSession_Errors(t *testing.T) {
	t.Run("UnsupportedBrowser", func(t *testing.T) {
		f := newManagerFixture(t, nil)
		_, err := f.manager.InitSession(context.Background(), "netscape", "http://localhost")
		var ube *UnsupportedBrowserError
		require.True(t, errors.As(err, &ube))
		f.engine.AssertNotCalled(t, "BrowserType", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyActive", func(t *testing.T) {
		f := newManagerFixture(t, nil)
		f.expectLocalLaunch(EngineChromium)
		_, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
		require.NoError(t, err)

		_, err = f.manager.InitSession(context.Background(), "chrome", "http://localhost")
		assert.ErrorIs(t, err, ErrSessionActive)
	})

	t.Run("EngineFailure", func(t *testing.T) {
		f := newManagerFixture(t, nil)
		f.engine.Mock.On("BrowserType", mock.Anything, EngineChromium).Return(nil, errors.New("driver missing"))
		_, err := f.manager.InitSession(context.Background(), "chrome", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "driver missing")
		_, err = f.manager.ActiveSession()
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("LaunchFailure", func(t *testing.T) {
		f := newManagerFixture(t, nil)
		f.engine.Mock.On("BrowserType", mock.Anything, EngineChromium).Return(f.browserType, nil)
		f.browserType.Mock.On("Launch", mock.Anything).Return(nil, errors.New("exec format error"))
		_, err := f.manager.InitSession(context.Background(), "chrome", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to launch chrome")
	})

	t.Run("NavigationFailureReleasesEverything", func(t *testing.T) {
		f := newManagerFixture(t, nil)
		f.expectLocalLaunch(EngineChromium)
		f.page.GotoErr = fmt.Errorf("net::ERR_CONNECTION_REFUSED")
		f.context.Mock.On("Close").Return(nil).Once()
		f.browser.Mock.On("Close").Return(nil).Once()

		_, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost:1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to navigate")

		assert.True(t, f.page.IsClosed())
		f.context.AssertExpectations(t)
		f.browser.AssertExpectations(t)
		_, err = f.manager.ActiveSession()
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("ContextFailureClosesBrowser", func(t *testing.T) {
		f := newManagerFixture(t, nil)
		f.engine.Mock.On("BrowserType", mock.Anything, EngineChromium).Return(f.browserType, nil)
		f.browserType.Mock.On("Launch", mock.Anything).Return(f.browser, nil)
		f.browser.Mock.On("NewContext", mock.Anything).Return(nil, errors.New("boom"))
		f.browser.Mock.On("Close").Return(nil).Once()

		_, err := f.manager.InitSession(context.Background(), "chrome", "")
		require.Error(t, err)
		f.browser.AssertExpectations(t)
	})
}

func TestActiveSession_NotInitialized(t *testing.T) {
	f := newManagerFixture(t, nil)
	s, err := f.manager.ActiveSession()
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = f.manager.CaptureScreenshot("early")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestCaptureScreenshot(t *testing.T) {
	f := newManagerFixture(t, nil)
	f.expectLocalLaunch(EngineChromium)
	_, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
	require.NoError(t, err)

	tmpCtx := new(mocks.MockBrowserContext)
	tmpPage := mocks.NewFakePage("about:blank")
	f.browser.Mock.On("NewContext", mock.Anything).Return(tmpCtx, nil).Once()
	tmpCtx.Mock.On("NewPage").Return(tmpPage, nil).Once()
	tmpCtx.Mock.On("Close").Return(nil).Once()

	path, err := f.manager.CaptureScreenshot("loginTest")
	require.NoError(t, err)

	want := filepath.Join(f.cfg.Screenshots.Dir, fmt.Sprintf("loginTest_%d.png", fixedNow.UnixMilli()))
	assert.Equal(t, want, path)
	assert.Equal(t, []string{want}, tmpPage.Screenshots)

	info, err := os.Stat(f.cfg.Screenshots.Dir)
	require.NoError(t, err, "screenshot directory is created on demand")
	assert.True(t, info.IsDir())

	// The temporary context is closed; the session's own page and context are not.
	tmpCtx.AssertExpectations(t)
	f.context.AssertNotCalled(t, "Close")
	assert.False(t, f.page.IsClosed())
	assert.Empty(t, f.page.Screenshots)
}

func TestCapturePageScreenshot(t *testing.T) {
	f := newManagerFixture(t, nil)
	f.expectLocalLaunch(EngineChromium)
	_, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
	require.NoError(t, err)

	path, err := f.manager.CapturePageScreenshot("login failed/step 2")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("login_failed_step_2_%d.png", fixedNow.UnixMilli()), filepath.Base(path))
	assert.Equal(t, []string{path}, f.page.Screenshots)
}

func TestScreenshotDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	dir, err := ScreenshotDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "screenshots"), dir)

	abs := t.TempDir()
	dir, err = ScreenshotDir(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, dir)
}

func TestConfigureEnvironmentProfile(t *testing.T) {
	f := newManagerFixture(t, nil)
	assert.Equal(t, config.EnvQA, f.manager.Environment())

	err := f.manager.ConfigureEnvironmentProfile("staging")
	var envErr *config.InvalidEnvironmentError
	require.True(t, errors.As(err, &envErr))
	assert.Equal(t, config.EnvQA, f.manager.Environment(), "a rejected name does not change the environment")

	for _, name := range []string{"prod", "qa", "uat", "stage", "dev", " UAT "} {
		require.NoError(t, f.manager.ConfigureEnvironmentProfile(name), name)
	}
	assert.Equal(t, config.EnvUAT, f.manager.Environment())
}

func TestCloseSessionAndShutdown(t *testing.T) {
	f := newManagerFixture(t, nil)
	f.expectLocalLaunch(EngineChromium)
	_, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
	require.NoError(t, err)

	f.context.Mock.On("Close").Return(nil).Once()
	f.browser.Mock.On("Close").Return(nil).Once()
	f.engine.Mock.On("Stop").Return(nil).Once()

	require.NoError(t, f.manager.Shutdown(context.Background()))
	assert.True(t, f.page.IsClosed())
	f.context.AssertExpectations(t)
	f.browser.AssertExpectations(t)
	f.engine.AssertExpectations(t)

	_, err = f.manager.ActiveSession()
	assert.ErrorIs(t, err, ErrNotInitialized)

	// Nothing left to close.
	assert.NoError(t, f.manager.CloseSession(context.Background()))
}

func TestCloseSession_ReportsErrors(t *testing.T) {
	f := newManagerFixture(t, nil)
	f.expectLocalLaunch(EngineChromium)
	_, err := f.manager.InitSession(context.Background(), "chrome", "http://localhost")
	require.NoError(t, err)

	f.context.Mock.On("Close").Return(errors.New("context gone")).Once()
	f.browser.Mock.On("Close").Return(errors.New("browser gone")).Once()

	err = f.manager.CloseSession(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context gone")
	assert.Contains(t, err.Error(), "browser gone")
	_, err = f.manager.ActiveSession()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
