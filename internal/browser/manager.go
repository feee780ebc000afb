// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/config"
)

const shutdownGracePeriod = 15 * time.Second

// Manager owns the lifecycle of one browser session: launch or connect, context and page
// creation, navigation, screenshots and teardown. Tests and page objects get the session from
// the manager they were handed rather than from package state.
type Manager struct {
	cfg    *config.Config
	logger *zap.Logger
	engine Engine
	now    func() time.Time

	mu      sync.RWMutex
	session *Session
	env     config.Environment
}

// NewManager creates a session manager. No browser is started until InitSession.
func NewManager(cfg *config.Config, logger *zap.Logger, engine Engine) *Manager {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger.Named("manager"),
		engine: engine,
		now:    time.Now,
		env:    config.Environment(cfg.Environment.Name),
	}
}

// InitSession launches (or, in remote mode, connects to) a browser of the requested family,
// opens one context and one page, navigates to baseURL and fixes the viewport. An empty family
// falls back to the configured browser and an empty baseURL to the configured base URL.
func (m *Manager) InitSession(ctx context.Context, requestedFamily, baseURL string) (*Session, error) {
	if requestedFamily == "" {
		requestedFamily = m.cfg.Browser.Name
	}
	family, err := LookupFamily(requestedFamily)
	if err != nil {
		m.logger.Error("Unsupported browser requested.", zap.String("browser", requestedFamily))
		return nil, err
	}
	if baseURL == "" {
		baseURL = m.cfg.Browser.BaseURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		return nil, ErrSessionActive
	}

	log := m.logger.With(zap.String("family", family.Name), zap.String("base_url", baseURL))
	log.Info("Initializing browser session.")

	// 1. Obtain the browser, locally or from the grid.
	launchCfg := BuildLaunchConfig(family, FlagsFromConfig(m.cfg), m.logger)
	b, err := m.obtainBrowser(ctx, launchCfg)
	if err != nil {
		return nil, err
	}

	// 2. One context, one page.
	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(baseURL),
	})
	if err != nil {
		m.release(&Session{Browser: b})
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		m.release(&Session{Browser: b, Context: bctx})
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(m.cfg.Browser.NavigationTimeout.Milliseconds()))
	page.SetDefaultTimeout(float64(m.cfg.Browser.ElementTimeout.Milliseconds()))

	s := &Session{
		ID:        uuid.New().String(),
		Family:    family,
		Browser:   b,
		Context:   bctx,
		Page:      page,
		BaseURL:   baseURL,
		Remote:    launchCfg.Remote(),
		CreatedAt: m.now(),
	}

	// 3. Navigate, then pin the viewport.
	if _, err := page.Goto(baseURL); err != nil {
		m.release(s)
		return nil, fmt.Errorf("failed to navigate to %s: %w", baseURL, err)
	}
	vp := Viewport{Width: m.cfg.Browser.Viewport.Width, Height: m.cfg.Browser.Viewport.Height}
	if err := page.SetViewportSize(vp.Width, vp.Height); err != nil {
		m.release(s)
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	s.Viewport = vp

	m.session = s
	log.Info("Browser session ready.",
		zap.String("session_id", s.ID),
		zap.Bool("remote", s.Remote),
		zap.String("browser_version", b.Version()),
	)
	return s, nil
}

func (m *Manager) obtainBrowser(ctx context.Context, launchCfg LaunchConfig) (playwright.Browser, error) {
	family := launchCfg.Family()
	bt, err := m.engine.BrowserType(ctx, family.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s browser type: %w", family.Engine, err)
	}

	if launchCfg.Remote() {
		m.logger.Info("Connecting to remote browser grid.",
			zap.String("family", family.Name),
			zap.String("endpoint", launchCfg.RemoteEndpoint()),
		)
		opts, err := launchCfg.ConnectOptions(m.cfg.Remote.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		b, err := bt.Connect(launchCfg.RemoteEndpoint(), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", launchCfg.RemoteEndpoint(), err)
		}
		return b, nil
	}

	b, err := bt.Launch(launchCfg.LaunchOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", family.Name, err)
	}
	return b, nil
}

// release closes whatever part of a half-built session exists.
func (m *Manager) release(s *Session) {
	if err := s.close(); err != nil {
		m.logger.Warn("Failed to release partially initialized session.", zap.Error(err))
	}
}

// ActiveSession returns the session created by InitSession.
func (m *Manager) ActiveSession() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ErrNotInitialized
	}
	return m.session, nil
}

// ConfigureEnvironmentProfile validates envName and records it as the active environment.
// Per-environment values are merged into the configuration by config.MergeEnvironmentProfile.
func (m *Manager) ConfigureEnvironmentProfile(envName string) error {
	env, err := config.ValidateEnvironment(envName)
	if err != nil {
		m.logger.Error("Invalid environment.", zap.String("env", envName))
		return err
	}

	m.mu.Lock()
	m.env = env
	m.mu.Unlock()
	m.logger.Info("Running test suite on environment.", zap.String("env", string(env)))
	return nil
}

// Environment returns the environment recorded by ConfigureEnvironmentProfile, or the
// configured one before that.
func (m *Manager) Environment() config.Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.env
}

// CloseSession closes the active session's page, context and browser. Closing when no session
// is active is a no-op. The session is forgotten even if closing fails or ctx expires.
func (m *Manager) CloseSession(ctx context.Context) error {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- s.close() }()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		m.logger.Info("Browser session closed.", zap.String("session_id", s.ID))
		return nil
	case <-ctx.Done():
		m.logger.Warn("Timeout waiting for session to close.", zap.String("session_id", s.ID), zap.Error(ctx.Err()))
		return fmt.Errorf("closing session: %w", ctx.Err())
	}
}

// Shutdown closes the active session and stops the engine.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down session manager.")

	closeCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()

	var errs []error
	if err := m.CloseSession(closeCtx); err != nil {
		errs = append(errs, err)
	}
	if m.engine != nil {
		if err := m.engine.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
