// internal/browser/screenshot.go
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

var labelReplacer = strings.NewReplacer("/", "_", `\`, "_", " ", "_", ":", "_")

// CaptureScreenshot writes {label}_{epochMillis}.png under the screenshot directory using a
// fresh context and page from the active browser. The session's own page and context are not
// touched, and the temporary context is always closed.
func (m *Manager) CaptureScreenshot(label string) (string, error) {
	s, err := m.ActiveSession()
	if err != nil {
		return "", err
	}

	path, err := m.screenshotPath(label)
	if err != nil {
		return "", err
	}

	tmpCtx, err := s.Browser.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot context: %w", err)
	}
	defer func() {
		if err := tmpCtx.Close(); err != nil {
			m.logger.Warn("Failed to close screenshot context.", zap.Error(err))
		}
	}()

	page, err := tmpCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to open screenshot page: %w", err)
	}
	if _, err := page.Screenshot(m.screenshotOptions(path)); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}

	m.logger.Info("Screenshot captured.", zap.String("path", path))
	return path, nil
}

// CapturePageScreenshot is CaptureScreenshot against the session's main page, so the image
// shows what the test was looking at.
func (m *Manager) CapturePageScreenshot(label string) (string, error) {
	s, err := m.ActiveSession()
	if err != nil {
		return "", err
	}

	path, err := m.screenshotPath(label)
	if err != nil {
		return "", err
	}
	if _, err := s.Page.Screenshot(m.screenshotOptions(path)); err != nil {
		return "", fmt.Errorf("failed to capture page screenshot: %w", err)
	}

	m.logger.Info("Page screenshot captured.", zap.String("path", path))
	return path, nil
}

func (m *Manager) screenshotOptions(path string) playwright.PageScreenshotOptions {
	return playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(m.cfg.Screenshots.FullPage),
	}
}

// screenshotPath resolves the screenshot directory, creates it on demand and names the file.
func (m *Manager) screenshotPath(label string) (string, error) {
	dir, err := ScreenshotDir(m.cfg.Screenshots.Dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory %s: %w", dir, err)
	}

	label = labelReplacer.Replace(strings.TrimSpace(label))
	if label == "" {
		label = "screenshot"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d.png", label, m.now().UnixMilli())), nil
}

// ScreenshotDir expands a leading "~" and anchors relative directories at the working
// directory. An empty dir means "screenshots".
func ScreenshotDir(dir string) (string, error) {
	if dir == "" {
		dir = "screenshots"
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("failed to expand screenshot directory %s: %w", dir, err)
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return filepath.Join(cwd, expanded), nil
}
