// internal/scenario/runner.go
package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/webharness/internal/browser"
	"github.com/xkilldash9x/webharness/internal/config"
)

const closeTimeout = 30 * time.Second

// Status is the outcome of one scenario on one browser family.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Env is what a scenario gets to work with: the live session of its family plus the manager
// that owns it.
type Env struct {
	Session *browser.Session
	Manager *browser.Manager
	Config  *config.Config
	Logger  *zap.Logger
}

// Scenario is a named unit of browser work. Returning an error fails it.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// Result records one scenario run.
type Result struct {
	Family     string        `yaml:"family"`
	Scenario   string        `yaml:"scenario"`
	Status     Status        `yaml:"status"`
	Error      string        `yaml:"error,omitempty"`
	Screenshot string        `yaml:"screenshot,omitempty"`
	StartedAt  time.Time     `yaml:"started_at"`
	Duration   time.Duration `yaml:"duration"`
}

// Results is the outcome of one Runner.Run, ordered by family and then by scenario as given.
type Results struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Results    []Result  `yaml:"results"`
}

// Count returns how many results have status s.
func (r Results) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether every scenario passed.
func (r Results) OK() bool {
	return len(r.Results) > 0 && r.Count(StatusPassed) == len(r.Results)
}

// Runner runs scenarios across browser families. Each family gets its own engine, manager and
// session; families run in parallel, the scenarios of one family run in order on its session.
type Runner struct {
	Config *config.Config
	// NewEngine returns the engine for one family's manager. The manager stops it on shutdown.
	NewEngine func(family string) (browser.Engine, error)
	BaseURL   string
	Reporter  Reporter
	Logger    *zap.Logger
	// Parallelism caps how many families run at once; zero means no cap.
	Parallelism int

	now func() time.Time
}

// Run executes scenarios on every family. A family whose session cannot start reports each of
// its scenarios as errored; it does not stop the other families. The returned error is non-nil
// only for invalid input or when ctx ends the run early.
func (r *Runner) Run(ctx context.Context, families []string, scenarios []Scenario) (Results, error) {
	if len(families) == 0 {
		return Results{}, errors.New("no browser families to run")
	}
	if len(scenarios) == 0 {
		return Results{}, errors.New("no scenarios to run")
	}
	if r.NewEngine == nil {
		return Results{}, errors.New("runner has no engine factory")
	}
	cfg := r.Config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := r.now
	if now == nil {
		now = time.Now
	}

	results := Results{RunID: uuid.NewString(), StartedAt: now()}
	logger = logger.Named("scenario").With(zap.String("run_id", results.RunID))
	logger.Info("Starting scenario run.", zap.Strings("families", families), zap.Int("scenarios", len(scenarios)))

	perFamily := make([][]Result, len(families))
	g, gctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}
	for i, family := range families {
		i, family := i, strings.TrimSpace(family)
		g.Go(func() error {
			perFamily[i] = r.runFamily(gctx, cfg, logger.With(zap.String("family", family)), now, family, scenarios)
			return nil
		})
	}
	_ = g.Wait()

	for _, rs := range perFamily {
		results.Results = append(results.Results, rs...)
	}
	results.FinishedAt = now()

	if r.Reporter != nil {
		r.Reporter.Summary(results)
	}
	logger.Info("Scenario run finished.",
		zap.Int("passed", results.Count(StatusPassed)),
		zap.Int("failed", results.Count(StatusFailed)),
		zap.Int("errored", results.Count(StatusError)),
		zap.Int("skipped", results.Count(StatusSkipped)),
	)
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("scenario run interrupted: %w", err)
	}
	return results, nil
}

func (r *Runner) runFamily(ctx context.Context, cfg *config.Config, logger *zap.Logger, now func() time.Time, family string, scenarios []Scenario) []Result {
	out := make([]Result, 0, len(scenarios))
	fail := func(status Status, err error) []Result {
		for _, sc := range scenarios[len(out):] {
			res := Result{Family: family, Scenario: sc.Name, Status: status, StartedAt: now()}
			if err != nil {
				res.Error = err.Error()
			}
			r.report(res)
			out = append(out, res)
		}
		return out
	}

	if err := ctx.Err(); err != nil {
		return fail(StatusSkipped, err)
	}
	engine, err := r.NewEngine(family)
	if err != nil {
		logger.Error("Could not create browser engine.", zap.Error(err))
		return fail(StatusError, fmt.Errorf("failed to create engine: %w", err))
	}
	mgr := browser.NewManager(cfg, logger, engine)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := mgr.Shutdown(closeCtx); err != nil {
			logger.Warn("Failed to shut down browser.", zap.Error(err))
		}
	}()
	if err := mgr.ConfigureEnvironmentProfile(cfg.Environment.Name); err != nil {
		return fail(StatusError, err)
	}

	session, err := mgr.InitSession(ctx, family, r.BaseURL)
	if err != nil {
		logger.Error("Could not start browser session.", zap.Error(err))
		return fail(StatusError, err)
	}
	env := &Env{Session: session, Manager: mgr, Config: cfg, Logger: logger}

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			return fail(StatusSkipped, ctx.Err())
		}
		res := Result{Family: family, Scenario: sc.Name, StartedAt: now()}
		err := runOne(ctx, sc, env)
		res.Duration = now().Sub(res.StartedAt)

		if err == nil {
			res.Status = StatusPassed
			logger.Info("Scenario passed.", zap.String("scenario", sc.Name), zap.Duration("duration", res.Duration))
		} else {
			res.Status = StatusFailed
			res.Error = err.Error()
			logger.Error("Scenario failed.", zap.String("scenario", sc.Name), zap.Error(err))
			if path, serr := mgr.CapturePageScreenshot(family + "_" + sc.Name); serr != nil {
				logger.Warn("Could not capture failure screenshot.", zap.Error(serr))
			} else {
				res.Screenshot = path
			}
		}
		r.report(res)
		out = append(out, res)
	}
	return out
}

// runOne turns a panicking scenario into a failure so the rest of the family still runs.
func runOne(ctx context.Context, sc Scenario, env *Env) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scenario panicked: %v", p)
		}
	}()
	if sc.Run == nil {
		return errors.New("scenario has no body")
	}
	return sc.Run(ctx, env)
}

func (r *Runner) report(res Result) {
	if r.Reporter != nil {
		r.Reporter.ScenarioFinished(res)
	}
}
