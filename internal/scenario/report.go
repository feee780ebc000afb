// internal/scenario/report.go
package scenario

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Reporter receives results as scenarios finish and a summary at the end. Implementations
// must be safe for concurrent use: families report in parallel.
type Reporter interface {
	ScenarioFinished(res Result)
	Summary(results Results)
}

// ConsoleReporter prints one colored line per scenario and a summary line.
type ConsoleReporter struct {
	out io.Writer
	mu  sync.Mutex

	pass, fail, errc, skip, dim *color.Color
}

// NewConsoleReporter writes to out. With noColor set the output is plain text.
func NewConsoleReporter(out io.Writer, noColor bool) *ConsoleReporter {
	c := &ConsoleReporter{
		out:  out,
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		errc: color.New(color.FgMagenta, color.Bold),
		skip: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
	}
	if noColor {
		for _, col := range []*color.Color{c.pass, c.fail, c.errc, c.skip, c.dim} {
			col.DisableColor()
		}
	}
	return c
}

func (c *ConsoleReporter) badge(s Status) string {
	switch s {
	case StatusPassed:
		return c.pass.Sprint("PASS")
	case StatusFailed:
		return c.fail.Sprint("FAIL")
	case StatusError:
		return c.errc.Sprint("ERROR")
	default:
		return c.skip.Sprint("SKIP")
	}
}

func (c *ConsoleReporter) ScenarioFinished(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%-5s [%s] %s %s\n", c.badge(res.Status), res.Family, res.Scenario, c.dim.Sprintf("(%s)", res.Duration.Round(time.Millisecond)))
	if res.Error != "" {
		fmt.Fprintf(c.out, "      %s\n", res.Error)
	}
	if res.Screenshot != "" {
		fmt.Fprintf(c.out, "      screenshot: %s\n", res.Screenshot)
	}
}

func (c *ConsoleReporter) Summary(results Results) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("%d passed, %d failed, %d errored, %d skipped",
		results.Count(StatusPassed), results.Count(StatusFailed), results.Count(StatusError), results.Count(StatusSkipped))
	if results.OK() {
		fmt.Fprintln(c.out, c.pass.Sprint(line))
	} else {
		fmt.Fprintln(c.out, c.fail.Sprint(line))
	}
}

// WriteReport writes results as YAML to path, creating parent directories.
func WriteReport(path string, results Results) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (Results, error) {
	var results Results
	data, err := os.ReadFile(path)
	if err != nil {
		return results, err
	}
	if err := yaml.Unmarshal(data, &results); err != nil {
		return results, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return results, nil
}
