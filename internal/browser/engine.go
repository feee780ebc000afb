// internal/browser/engine.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/config"
)

const defaultInstallTimeout = 5 * time.Minute

// Engine hands out Playwright browser types. The production implementation drives the
// Playwright node driver; tests substitute an in-memory one.
type Engine interface {
	// BrowserType returns the browser type for a Playwright engine name (chromium, firefox, webkit).
	BrowserType(ctx context.Context, engine string) (playwright.BrowserType, error)
	// Stop shuts the driver down. It is safe to call on an engine that never started.
	Stop() error
}

// PlaywrightEngine starts the Playwright driver lazily, on the first BrowserType call.
type PlaywrightEngine struct {
	logger         *zap.Logger
	skipInstall    bool
	installTimeout time.Duration
	browsers       []string

	startOnce sync.Once
	startErr  error

	mu sync.Mutex
	pw *playwright.Playwright

	// Overridable for tests.
	install func(*playwright.RunOptions) error
	run     func(*playwright.RunOptions) (*playwright.Playwright, error)
}

// NewPlaywrightEngine creates an engine whose driver start is deferred until first use.
// browsers lists the Playwright engines to install; empty installs the engines of every family.
func NewPlaywrightEngine(cfg config.BrowserConfig, logger *zap.Logger, browsers ...string) *PlaywrightEngine {
	timeout := cfg.InstallTimeout
	if timeout <= 0 {
		timeout = defaultInstallTimeout
	}
	if len(browsers) == 0 {
		browsers = []string{EngineChromium, EngineFirefox, EngineWebKit}
	}
	return &PlaywrightEngine{
		logger:         logger.Named("engine"),
		skipInstall:    cfg.SkipInstall,
		installTimeout: timeout,
		browsers:       browsers,
		install: func(o *playwright.RunOptions) error {
			return playwright.Install(o)
		},
		run: func(o *playwright.RunOptions) (*playwright.Playwright, error) {
			return playwright.Run(o)
		},
	}
}

func (e *PlaywrightEngine) start(ctx context.Context) error {
	e.startOnce.Do(func() {
		e.logger.Info("Starting Playwright driver...")

		opts := &playwright.RunOptions{Browsers: e.browsers, Verbose: false}

		// 1. Make sure the driver and browsers are present.
		if !e.skipInstall {
			if err := e.ensureInstallation(ctx, opts); err != nil {
				e.startErr = err
				return
			}
		}

		// 2. Start the driver.
		pw, err := e.run(opts)
		if err != nil {
			e.startErr = fmt.Errorf("failed to start playwright driver: %w", err)
			return
		}

		e.mu.Lock()
		e.pw = pw
		e.mu.Unlock()
		e.logger.Info("Playwright driver started.")
	})
	return e.startErr
}

func (e *PlaywrightEngine) ensureInstallation(ctx context.Context, opts *playwright.RunOptions) error {
	e.logger.Info("Verifying Playwright browser installation...", zap.Strings("browsers", opts.Browsers))
	installCtx, cancel := context.WithTimeout(ctx, e.installTimeout)
	defer cancel()

	// Install blocks, so it runs on its own goroutine and the context bounds the wait.
	errCh := make(chan error, 1)
	go func() {
		if err := e.install(opts); err != nil {
			errCh <- fmt.Errorf("failed to install playwright browsers: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-installCtx.Done():
		return fmt.Errorf("timeout waiting for Playwright installation: %w", installCtx.Err())
	}
}

// BrowserType implements Engine.
func (e *PlaywrightEngine) BrowserType(ctx context.Context, engine string) (playwright.BrowserType, error) {
	if err := e.start(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pw == nil {
		return nil, fmt.Errorf("playwright driver is stopped")
	}

	switch engine {
	case EngineChromium:
		return e.pw.Chromium, nil
	case EngineFirefox:
		return e.pw.Firefox, nil
	case EngineWebKit:
		return e.pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown playwright engine %q", engine)
	}
}

// Stop implements Engine.
func (e *PlaywrightEngine) Stop() error {
	e.mu.Lock()
	pw := e.pw
	e.pw = nil
	e.mu.Unlock()

	if pw == nil {
		return nil
	}
	if err := pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright driver: %w", err)
	}
	e.logger.Info("Playwright driver stopped.")
	return nil
}
