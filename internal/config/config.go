// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for namespaced environment overrides, e.g. WEBHARNESS_LOGGER_LEVEL.
const EnvPrefix = "WEBHARNESS"

// Config holds the entire harness configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Remote      RemoteConfig      `mapstructure:"remote" yaml:"remote"`
	Environment EnvironmentConfig `mapstructure:"environment" yaml:"environment"`
	Screenshots ScreenshotConfig  `mapstructure:"screenshots" yaml:"screenshots"`
	Login       LoginConfig       `mapstructure:"login" yaml:"login"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color used for each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for locally launched browsers and the pages they open.
type BrowserConfig struct {
	Name              string         `mapstructure:"name" yaml:"name"`
	BaseURL           string         `mapstructure:"base_url" yaml:"base_url"`
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	Incognito         bool           `mapstructure:"incognito" yaml:"incognito"`
	Highlight         bool           `mapstructure:"highlight" yaml:"highlight"`
	Channel           string         `mapstructure:"channel" yaml:"channel"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	DebugPort         int            `mapstructure:"debug_port" yaml:"debug_port"`
	SkipInstall       bool           `mapstructure:"skip_install" yaml:"skip_install"`
	InstallTimeout    time.Duration  `mapstructure:"install_timeout" yaml:"install_timeout"`
	LaunchTimeout     time.Duration  `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ElementTimeout    time.Duration  `mapstructure:"element_timeout" yaml:"element_timeout"`
	Viewport          ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
}

// ViewportConfig is the fixed page size applied after the first navigation.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// RemoteConfig selects a remote Playwright server (a browser grid) instead of a local launch.
type RemoteConfig struct {
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
	HubURL         string        `mapstructure:"hub_url" yaml:"hub_url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// EnvironmentConfig names the logical environment the suite runs against.
type EnvironmentConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	ProfilesDir string `mapstructure:"profiles_dir" yaml:"profiles_dir"`
}

// ScreenshotConfig controls where captured screenshots are written.
type ScreenshotConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	FullPage bool   `mapstructure:"full_page" yaml:"full_page"`
}

// LoginConfig carries the credentials used by the login scenario.
type LoginConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
}

// envBindings maps config keys to the bare environment variable names the harness has
// always honored. The prefixed form (WEBHARNESS_BROWSER_NAME) works as well via AutomaticEnv.
var envBindings = map[string]string{
	"browser.name":       "BROWSER",
	"browser.base_url":   "URL",
	"browser.headless":   "HEADLESS",
	"browser.incognito":  "INCOGNITO",
	"browser.highlight":  "HIGHLIGHT",
	"browser.debug_port": "DEBUG_PORT",
	"remote.enabled":     "REMOTE",
	"remote.hub_url":     "HUB_URL",
	"environment.name":   "ENV_NAME",
	"login.username":     "LOGIN_USERNAME",
	"login.password":     "LOGIN_PASSWORD",
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webharness")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.name", "chrome")
	v.SetDefault("browser.base_url", "http://localhost")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.incognito", false)
	v.SetDefault("browser.highlight", true)
	v.SetDefault("browser.channel", "")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.debug_port", 0)
	v.SetDefault("browser.skip_install", false)
	v.SetDefault("browser.install_timeout", "5m")
	v.SetDefault("browser.launch_timeout", "60s")
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.element_timeout", "5s")
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)

	// -- Remote --
	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.hub_url", "http://localhost:4444")
	v.SetDefault("remote.connect_timeout", "30s")

	// -- Environment --
	v.SetDefault("environment.name", "qa")
	v.SetDefault("environment.profiles_dir", "profiles")

	// -- Screenshots --
	v.SetDefault("screenshots.dir", "screenshots")
	v.SetDefault("screenshots.full_page", false)

	// -- Login --
	v.SetDefault("login.username", "")
	v.SetDefault("login.password", "")
}

// BindEnvironment wires the bare environment variable names and the prefixed overrides into v.
func BindEnvironment(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		// The prefixed name stays first so it wins over the bare one.
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load builds a Config from defaults, an optional config file and the process environment.
// A missing file at configFile is not an error when configFile is empty.
func Load(configFile string) (*Config, *viper.Viper, error) {
	v, err := ReadViper(configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// ReadViper layers defaults, the config file and the environment without validating, so
// callers can apply overrides before NewConfigFromViper checks the result.
func ReadViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	if err := BindEnvironment(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("webharness")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

func (c *Config) normalize() {
	c.Browser.Name = strings.ToLower(strings.TrimSpace(c.Browser.Name))
	c.Environment.Name = strings.ToLower(strings.TrimSpace(c.Environment.Name))
	c.Browser.BaseURL = strings.TrimSpace(c.Browser.BaseURL)
	c.Remote.HubURL = strings.TrimSpace(c.Remote.HubURL)
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport width and height must be positive")
	}
	if c.Browser.ElementTimeout <= 0 {
		return fmt.Errorf("browser.element_timeout must be a positive duration")
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if c.Browser.DebugPort < 0 || c.Browser.DebugPort > 65535 {
		return fmt.Errorf("browser.debug_port must be between 0 and 65535")
	}
	if c.Remote.Enabled && c.Remote.HubURL == "" {
		return fmt.Errorf("remote.hub_url is required when remote.enabled is set")
	}
	if _, err := ValidateEnvironment(c.Environment.Name); err != nil {
		return err
	}
	return nil
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment. Variables that are
// already set are left alone, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	// viper lower-cases keys; the environment wants them upper-cased.
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return nil
}
