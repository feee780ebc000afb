// cmd/fixture.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/webharness/internal/fixture"
	"github.com/xkilldash9x/webharness/internal/observability"
)

func newFixtureCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve the demo site the scenarios and acceptance tests run against",
		Long: `Fixture serves a small site with a login form, an app launcher behind it and a widgets
page. Credentials come from LOGIN_USERNAME and LOGIN_PASSWORD, falling back to the demo ones.
It runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}

			site := fixture.NewSite(cfg.Login.Username, cfg.Login.Password, observability.GetLogger())
			ready := make(chan string, 1)
			errc := make(chan error, 1)
			go func() { errc <- fixture.Serve(cmd.Context(), addr, site, ready) }()

			select {
			case bound := <-ready:
				fmt.Fprintf(cmd.OutOrStdout(), "fixture site listening on http://%s\n", bound)
			case err := <-errc:
				return err
			}
			return <-errc
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}
