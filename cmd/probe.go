// cmd/probe.go
package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/webharness/internal/devtools"
	"github.com/xkilldash9x/webharness/internal/observability"
)

// probeBrowser is replaced in tests.
var probeBrowser = devtools.Probe

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [endpoint]",
		Short: "Inspect a browser through its remote-debugging endpoint",
		Long: `Probe attaches to a Chromium-family browser over the DevTools protocol and prints its
version and open targets as YAML. The endpoint may be a port, host:port or URL; it defaults to
DEBUG_PORT, then 9222.`,
		Example: "  webharness probe 9222\n  webharness probe http://grid-node:9222",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}

			endpoint := "9222"
			if cfg.Browser.DebugPort > 0 {
				endpoint = strconv.Itoa(cfg.Browser.DebugPort)
			}
			if len(args) == 1 {
				endpoint = args[0]
			}

			info, err := probeBrowser(cmd.Context(), endpoint, observability.GetLogger())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(info); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
