// internal/browser/options.go
package browser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/config"
)

// DefaultHubURL is the remote grid endpoint used when remote mode is on and no hub is configured.
const DefaultHubURL = "http://localhost:4444"

// launchOptionsHeader is how a Playwright run-server receives launch options from a client.
const launchOptionsHeader = "x-playwright-launch-options"

// LaunchFlags are the environment switches the option builder reads.
type LaunchFlags struct {
	Headless  bool
	Incognito bool
	Remote    bool
	HubURL    string
	DebugPort int
	Args      []string
	Channel   string
	Timeout   time.Duration
}

// FlagsFromConfig extracts the launch switches from the harness configuration.
func FlagsFromConfig(cfg *config.Config) LaunchFlags {
	return LaunchFlags{
		Headless:  cfg.Browser.Headless,
		Incognito: cfg.Browser.Incognito,
		Remote:    cfg.Remote.Enabled,
		HubURL:    cfg.Remote.HubURL,
		DebugPort: cfg.Browser.DebugPort,
		Args:      cfg.Browser.Args,
		Channel:   cfg.Browser.Channel,
		Timeout:   cfg.Browser.LaunchTimeout,
	}
}

// LaunchConfig is the resolved set of options used to start or connect to a browser.
// It is immutable once built; the slice accessor returns a copy.
type LaunchConfig struct {
	family         Family
	headless       bool
	privacyMode    bool
	extraArgs      []string
	remoteEndpoint string
	channel        string
	timeout        time.Duration
}

func (c LaunchConfig) Family() Family         { return c.family }
func (c LaunchConfig) Headless() bool         { return c.headless }
func (c LaunchConfig) PrivacyMode() bool      { return c.privacyMode }
func (c LaunchConfig) RemoteEndpoint() string { return c.remoteEndpoint }
func (c LaunchConfig) Channel() string        { return c.channel }
func (c LaunchConfig) Remote() bool           { return c.remoteEndpoint != "" }

// ExtraArgs returns the browser command-line arguments in the order they were added.
func (c LaunchConfig) ExtraArgs() []string {
	return append([]string(nil), c.extraArgs...)
}

// BuildLaunchConfig turns the launch flags into a LaunchConfig for family. It has no side
// effects beyond advisory debug logging through logger, which may be nil.
func BuildLaunchConfig(family Family, flags LaunchFlags, logger *zap.Logger) LaunchConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("family", family.Name))

	cfg := LaunchConfig{
		family:  family,
		channel: family.Channel,
		timeout: flags.Timeout,
	}

	if flags.Headless {
		log.Debug("Running headless.")
		cfg.headless = true
	}

	if flags.Incognito {
		log.Debug("Running in private browsing mode.")
		cfg.privacyMode = true
		if family.PrivacyFlag != "" {
			cfg.extraArgs = append(cfg.extraArgs, family.PrivacyFlag)
		}
	}

	if flags.Remote {
		hub := flags.HubURL
		if hub == "" {
			hub = DefaultHubURL
		}
		cfg.remoteEndpoint = NormalizeEndpoint(hub)
		log.Debug("Running on a remote browser.", zap.String("endpoint", cfg.remoteEndpoint))
		cfg.extraArgs = append(cfg.extraArgs, family.RemoteDebugArgs...)
	} else if flags.DebugPort > 0 && family.SupportsCDP {
		cfg.extraArgs = append(cfg.extraArgs, "--remote-debugging-port="+strconv.Itoa(flags.DebugPort))
	}

	cfg.extraArgs = append(cfg.extraArgs, flags.Args...)
	if flags.Channel != "" {
		cfg.channel = flags.Channel
	}
	return cfg
}

// NormalizeEndpoint converts an http(s) hub address into the ws(s) form Playwright connects to.
// Addresses without a scheme are treated as plain ws.
func NormalizeEndpoint(hub string) string {
	hub = strings.TrimSpace(hub)
	switch {
	case strings.HasPrefix(hub, "https://"):
		return "wss://" + strings.TrimPrefix(hub, "https://")
	case strings.HasPrefix(hub, "http://"):
		return "ws://" + strings.TrimPrefix(hub, "http://")
	case strings.HasPrefix(hub, "ws://"), strings.HasPrefix(hub, "wss://"):
		return hub
	default:
		return "ws://" + hub
	}
}

// LaunchOptions converts the configuration into Playwright launch options.
func (c LaunchConfig) LaunchOptions() playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(c.headless),
		Args:     c.ExtraArgs(),
	}
	if c.channel != "" {
		opts.Channel = playwright.String(c.channel)
	}
	if c.timeout > 0 {
		opts.Timeout = playwright.Float(float64(c.timeout.Milliseconds()))
	}
	return opts
}

// remoteLaunchOptions is the JSON body of the launch options header.
type remoteLaunchOptions struct {
	Headless bool     `json:"headless"`
	Args     []string `json:"args,omitempty"`
	Channel  string   `json:"channel,omitempty"`
}

// ConnectOptions converts the configuration into Playwright connect options. The launch
// options travel to the remote server as a JSON header so the grid starts the same browser a
// local run would.
func (c LaunchConfig) ConnectOptions(timeout time.Duration) (playwright.BrowserTypeConnectOptions, error) {
	body, err := json.Marshal(remoteLaunchOptions{
		Headless: c.headless,
		Args:     c.extraArgs,
		Channel:  c.channel,
	})
	if err != nil {
		return playwright.BrowserTypeConnectOptions{}, fmt.Errorf("failed to encode remote launch options: %w", err)
	}

	opts := playwright.BrowserTypeConnectOptions{
		Headers: map[string]string{launchOptionsHeader: string(body)},
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}
	return opts, nil
}
