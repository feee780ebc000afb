// cmd/screenshot.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser"
	"github.com/xkilldash9x/webharness/internal/observability"
)

func newScreenshotCmd() *cobra.Command {
	var (
		family   string
		baseURL  string
		mainPage bool
	)

	cmd := &cobra.Command{
		Use:   "screenshot <label>",
		Short: "Open a browser session and capture a screenshot",
		Long: `Screenshot starts a session on the base URL and writes <label>_<epochMillis>.png into
the screenshot directory. By default the image comes from a fresh page of the same browser;
--page captures the session's own page instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			if family == "" {
				family = cfg.Browser.Name
			}
			engine, err := newEngine(cfg.Browser, logger, family)
			if err != nil {
				return err
			}
			mgr := browser.NewManager(cfg, logger, engine)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := mgr.Shutdown(ctx); err != nil {
					logger.Warn("Failed to shut down browser.", zap.Error(err))
				}
			}()
			if err := mgr.ConfigureEnvironmentProfile(cfg.Environment.Name); err != nil {
				return err
			}

			if _, err := mgr.InitSession(cmd.Context(), family, baseURL); err != nil {
				return err
			}

			var path string
			if mainPage {
				path, err = mgr.CapturePageScreenshot(args[0])
			} else {
				path, err = mgr.CaptureScreenshot(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&family, "browser", "b", "", "browser family (default: BROWSER / browser.name)")
	cmd.Flags().StringVar(&baseURL, "url", "", "page to open (default: URL / browser.base_url)")
	cmd.Flags().BoolVar(&mainPage, "page", false, "capture the session's page rather than a fresh one")
	return cmd
}
