// cmd/run.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser"
	"github.com/xkilldash9x/webharness/internal/observability"
	"github.com/xkilldash9x/webharness/internal/scenario"
)

// errScenariosFailed makes the process exit non-zero when any scenario did not pass.
var errScenariosFailed = errors.New("one or more scenarios did not pass")

func newRunCmd() *cobra.Command {
	var (
		browsers    []string
		reportPath  string
		baseURL     string
		username    string
		password    string
		parallelism int
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the login scenario on one or more browser families",
		Long: `Run opens one browser session per family, logs in through the login page object and
reports the outcome. Families run in parallel. A failing scenario leaves a screenshot behind.`,
		Example: "  webharness run --browsers chrome,firefox --report reports/run.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			if len(browsers) == 0 {
				browsers = []string{cfg.Browser.Name}
			}
			for _, name := range browsers {
				if _, err := browser.LookupFamily(name); err != nil {
					return err
				}
			}
			if baseURL == "" {
				baseURL = cfg.Browser.BaseURL
			}
			if username == "" {
				username = cfg.Login.Username
			}
			if password == "" {
				password = cfg.Login.Password
			}

			runner := &scenario.Runner{
				Config: cfg,
				NewEngine: func(family string) (browser.Engine, error) {
					return newEngine(cfg.Browser, logger, family)
				},
				BaseURL:     baseURL,
				Reporter:    scenario.NewConsoleReporter(cmd.OutOrStdout(), noColor),
				Logger:      logger,
				Parallelism: parallelism,
			}
			results, runErr := runner.Run(cmd.Context(), browsers, []scenario.Scenario{
				scenario.LoginScenario(username, password),
			})

			if reportPath != "" {
				if err := scenario.WriteReport(reportPath, results); err != nil {
					return err
				}
				logger.Info("Report written.", zap.String("path", reportPath))
				fmt.Fprintf(cmd.OutOrStdout(), "report: %s\n", reportPath)
			}
			if runErr != nil {
				return runErr
			}
			if !results.OK() {
				return errScenariosFailed
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&browsers, "browsers", "b", nil, "browser families to run on (default: the configured browser)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML report to this path")
	cmd.Flags().StringVar(&baseURL, "url", "", "base URL of the application (default: URL / browser.base_url)")
	cmd.Flags().StringVar(&username, "username", "", "login username (default: LOGIN_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "login password (default: LOGIN_PASSWORD)")
	cmd.Flags().IntVar(&parallelism, "parallel", 0, "maximum families running at once (0: all)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
