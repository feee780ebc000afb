// internal/pages/login.go
package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser/element"
)

// Selectors of the login page.
const (
	UsernameField = "#username"
	PasswordField = "#password"
	LoginButton   = "#Login"
	AppLauncher   = "//button[@title='App Launcher']"
)

// LoginPage drives the login form.
type LoginPage struct {
	BasePage
}

// NewLoginPage creates the login page object for page.
func NewLoginPage(page playwright.Page, logger *zap.Logger, opts ...element.Option) *LoginPage {
	return &LoginPage{BasePage: NewBasePage(page, logger, opts...)}
}

// NavigateToLoginPage opens the root of the session's base URL.
func (p *LoginPage) NavigateToLoginPage() error {
	if _, err := p.Page.Goto("/"); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	return nil
}

func (p *LoginPage) EnterUsername(username string) error {
	return p.Elements.SetText(UsernameField, username)
}

func (p *LoginPage) EnterPassword(password string) error {
	return p.Elements.SetText(PasswordField, password)
}

func (p *LoginPage) ClickLogin() error {
	return p.Elements.Click(LoginButton)
}

func (p *LoginPage) IsLoginButtonEnabled() bool {
	return p.Elements.IsEnabled(LoginButton)
}

// IsAppLauncherDisplayed reports whether the post-login app launcher shows up within the
// default timeout.
func (p *LoginPage) IsAppLauncherDisplayed() bool {
	return p.Elements.IsVisible(AppLauncher, 0)
}

// DoLogin navigates to the login page, submits the credentials and reports whether the app
// launcher appeared. Errors come only from the navigation and form steps.
func (p *LoginPage) DoLogin(username, password string) (bool, error) {
	p.logger.Info("Performing login.", zap.String("username", username))

	if err := p.NavigateToLoginPage(); err != nil {
		return false, err
	}
	if err := p.EnterUsername(username); err != nil {
		return false, err
	}
	if err := p.EnterPassword(password); err != nil {
		return false, err
	}
	if err := p.ClickLogin(); err != nil {
		return false, err
	}

	displayed := p.IsAppLauncherDisplayed()
	p.logger.Info("Login action completed.", zap.Bool("app_launcher_displayed", displayed))
	return displayed, nil
}
