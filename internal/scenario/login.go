// internal/scenario/login.go
package scenario

import (
	"context"
	"errors"

	"github.com/xkilldash9x/webharness/internal/browser/element"
	"github.com/xkilldash9x/webharness/internal/pages"
)

// ErrLoginRejected means the login form was submitted but the app launcher never appeared.
var ErrLoginRejected = errors.New("login did not reach the app launcher")

// LoginScenario logs in with the given credentials through the login page object.
func LoginScenario(username, password string) Scenario {
	return Scenario{
		Name: "login",
		Run: func(_ context.Context, env *Env) error {
			lp := pages.NewLoginPage(env.Session.Page, env.Logger,
				element.WithHighlight(env.Config.Browser.Highlight),
				element.WithDefaultTimeout(env.Config.Browser.ElementTimeout),
			)
			ok, err := lp.DoLogin(username, password)
			if err != nil {
				return err
			}
			if !ok {
				return ErrLoginRejected
			}
			return nil
		},
	}
}
