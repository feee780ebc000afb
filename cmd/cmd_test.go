// cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webharness/internal/browser"
	"github.com/xkilldash9x/webharness/internal/config"
	"github.com/xkilldash9x/webharness/internal/devtools"
	"github.com/xkilldash9x/webharness/internal/mocks"
	"github.com/xkilldash9x/webharness/internal/observability"
	"github.com/xkilldash9x/webharness/internal/scenario"
)

// testFiles writes a quiet config file into a temp dir and returns the flags pointing at it.
func testFiles(t *testing.T, extraConfig string) (dir string, flags []string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath := filepath.Join(dir, "webharness.yaml")
	body := "logger:\n  level: error\nscreenshots:\n  dir: " + filepath.Join(dir, "shots") + "\n" + extraConfig
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return dir, []string{"--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env")}
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// unsetEnv clears name for the test and restores it afterwards.
func unsetEnv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "webharness version dev\n", out)

	out, err = execute(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "webharness version dev\n", out)
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "webharness drives browser UI tests across browser families.")
	for _, sub := range []string{"run", "screenshot", "probe", "fixture", "config", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestConfigCmd(t *testing.T) {
	t.Run("FileAndDotEnv", func(t *testing.T) {
		unsetEnv(t, "LOGIN_USERNAME")
		unsetEnv(t, "LOGIN_PASSWORD")
		dir, flags := testFiles(t, "browser:\n  name: Firefox\n")
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("LOGIN_USERNAME=dotenv-user\nLOGIN_PASSWORD=hunter2\n"), 0o644))
		flags[3] = envFile

		out, err := execute(t, context.Background(), append(flags, "config")...)
		require.NoError(t, err)
		assert.Contains(t, out, "name: firefox")
		assert.Contains(t, out, "username: dotenv-user")
		assert.NotContains(t, out, "hunter2")
	})

	t.Run("EnvironmentProfile", func(t *testing.T) {
		unsetEnv(t, "ENV_NAME")
		dir, flags := testFiles(t, "")
		profiles := filepath.Join(dir, "profiles")
		require.NoError(t, os.MkdirAll(profiles, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(profiles, "uat.yaml"),
			[]byte("browser:\n  base_url: https://uat.example.com\n"), 0o644))
		require.NoError(t, os.WriteFile(flags[1],
			[]byte("logger:\n  level: error\nenvironment:\n  profiles_dir: "+profiles+"\n"), 0o644))

		out, err := execute(t, context.Background(), append(flags, "--env", "UAT", "config")...)
		require.NoError(t, err)
		assert.Contains(t, out, "base_url: https://uat.example.com")
		assert.Contains(t, out, "name: uat")
	})

	t.Run("InvalidEnvironment", func(t *testing.T) {
		_, flags := testFiles(t, "")
		_, err := execute(t, context.Background(), append(flags, "--env", "staging", "config")...)
		var envErr *config.InvalidEnvironmentError
		assert.True(t, errors.As(err, &envErr), "got %v", err)
	})

	t.Run("FlagOverridesInvalidEnvVar", func(t *testing.T) {
		t.Setenv("ENV_NAME", "staging")
		_, flags := testFiles(t, "")
		out, err := execute(t, context.Background(), append(flags, "--env", "qa", "config")...)
		require.NoError(t, err)
		assert.Contains(t, out, "name: qa")
	})

	t.Run("InvalidEnvVarWithoutFlag", func(t *testing.T) {
		t.Setenv("ENV_NAME", "staging")
		_, flags := testFiles(t, "")
		_, err := execute(t, context.Background(), append(flags, "config")...)
		var envErr *config.InvalidEnvironmentError
		assert.True(t, errors.As(err, &envErr), "got %v", err)
	})

	t.Run("MissingConfigFile", func(t *testing.T) {
		_, err := execute(t, context.Background(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config")
		assert.ErrorContains(t, err, "failed to load configuration")
	})
}

func withEngine(t *testing.T, fn func(cfg config.BrowserConfig, logger *zap.Logger, family string) (browser.Engine, error)) {
	t.Helper()
	orig := newEngine
	newEngine = fn
	t.Cleanup(func() { newEngine = orig })
}

func TestRunCmd(t *testing.T) {
	t.Run("LaunchFailureIsReported", func(t *testing.T) {
		var requested []string
		withEngine(t, func(_ config.BrowserConfig, _ *zap.Logger, family string) (browser.Engine, error) {
			requested = append(requested, family)
			e := new(mocks.MockEngine)
			e.Mock.On("BrowserType", mock.Anything, mock.Anything).Return(nil, errors.New("driver unavailable"))
			e.Mock.On("Stop").Return(nil)
			return e, nil
		})
		dir, flags := testFiles(t, "")
		report := filepath.Join(dir, "reports", "run.yaml")

		out, err := execute(t, context.Background(), append(flags, "run", "--browsers", "chrome", "--report", report, "--no-color")...)
		assert.ErrorIs(t, err, errScenariosFailed)
		assert.Equal(t, []string{"chrome"}, requested)
		assert.Contains(t, out, "ERROR [chrome] login")
		assert.Contains(t, out, "driver unavailable")
		assert.Contains(t, out, "report: "+report)

		results, rerr := scenario.ReadReport(report)
		require.NoError(t, rerr)
		require.Len(t, results.Results, 1)
		assert.Equal(t, scenario.StatusError, results.Results[0].Status)
	})

	t.Run("UnknownBrowser", func(t *testing.T) {
		withEngine(t, func(config.BrowserConfig, *zap.Logger, string) (browser.Engine, error) {
			t.Fatal("no engine should be created")
			return nil, nil
		})
		_, flags := testFiles(t, "")
		_, err := execute(t, context.Background(), append(flags, "run", "--browsers", "chrome,netscape")...)
		var unsupported *browser.UnsupportedBrowserError
		require.True(t, errors.As(err, &unsupported), "got %v", err)
		assert.Equal(t, "netscape", unsupported.Name)
	})
}

func TestScreenshotCmd(t *testing.T) {
	page := mocks.NewFakePage("about:blank")
	bctx := new(mocks.MockBrowserContext)
	bctx.Mock.On("NewPage").Return(page, nil)
	bctx.Mock.On("Close").Return(nil)
	b := new(mocks.MockBrowser)
	b.Mock.On("NewContext", mock.Anything).Return(bctx, nil)
	b.Mock.On("Version").Return("1.0")
	b.Mock.On("Close").Return(nil)
	bt := new(mocks.MockBrowserType)
	bt.Mock.On("Launch", mock.Anything).Return(b, nil)

	withEngine(t, func(_ config.BrowserConfig, _ *zap.Logger, family string) (browser.Engine, error) {
		e := new(mocks.MockEngine)
		e.Mock.On("BrowserType", mock.Anything, browser.EngineWebKit).Return(bt, nil)
		e.Mock.On("Stop").Return(nil)
		return e, nil
	})
	dir, flags := testFiles(t, "")

	out, err := execute(t, context.Background(), append(flags, "screenshot", "home page", "--browser", "safari", "--page", "--url", "http://fixture.local")...)
	require.NoError(t, err)

	require.Len(t, page.Screenshots, 1)
	shot := page.Screenshots[0]
	assert.Equal(t, shot+"\n", out)
	assert.Equal(t, filepath.Join(dir, "shots"), filepath.Dir(shot))
	assert.Regexp(t, `^home_page_\d+\.png$`, filepath.Base(shot))
	assert.Equal(t, []string{"http://fixture.local"}, page.Gotos)
	assert.True(t, page.IsClosed(), "session is closed on exit")
}

func TestProbeCmd(t *testing.T) {
	orig := probeBrowser
	t.Cleanup(func() { probeBrowser = orig })

	var gotEndpoint string
	probeBrowser = func(_ context.Context, endpoint string, _ *zap.Logger) (*devtools.BrowserInfo, error) {
		gotEndpoint = endpoint
		return &devtools.BrowserInfo{
			Endpoint: "http://127.0.0.1:9333",
			Product:  "HeadlessChrome/129.0.6668.29",
			Protocol: "1.3",
			Targets:  []devtools.Target{{ID: "A1", Type: "page", Title: "Sign In", URL: "http://fixture.local/"}},
		}, nil
	}

	_, flags := testFiles(t, "browser:\n  debug_port: 9333\n")
	out, err := execute(t, context.Background(), append(flags, "probe")...)
	require.NoError(t, err)
	assert.Equal(t, "9333", gotEndpoint)
	assert.Contains(t, out, "product: HeadlessChrome/129.0.6668.29")
	assert.Contains(t, out, "title: Sign In")

	_, err = execute(t, context.Background(), append(flags, "probe", "ws://remote:9222")...)
	require.NoError(t, err)
	assert.Equal(t, "ws://remote:9222", gotEndpoint)
}

func TestFixtureCmd_StopsWithContext(t *testing.T) {
	_, flags := testFiles(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(t, ctx, append(flags, "fixture", "--addr", "127.0.0.1:0")...)
	assert.NoError(t, err)
}
