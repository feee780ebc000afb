// internal/devtools/probe.go
package devtools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultProbeTimeout bounds a probe when the caller's context has no deadline.
const DefaultProbeTimeout = 10 * time.Second

// BrowserInfo describes a browser reachable over its remote-debugging port.
type BrowserInfo struct {
	Endpoint  string   `json:"endpoint" yaml:"endpoint"`
	Product   string   `json:"product" yaml:"product"`
	Protocol  string   `json:"protocol" yaml:"protocol"`
	Revision  string   `json:"revision" yaml:"revision"`
	UserAgent string   `json:"user_agent" yaml:"user_agent"`
	JSVersion string   `json:"js_version" yaml:"js_version"`
	Targets   []Target `json:"targets" yaml:"targets"`
}

// Target is one debuggable target (page, worker, extension) of the browser.
type Target struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// NormalizeEndpoint turns a port ("9222"), a host:port or a full URL into an endpoint chromedp
// can dial. Bare ports and host:port pairs get an http scheme, which makes chromedp discover
// the websocket URL through /json/version.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("empty devtools endpoint")
	}
	if port, err := strconv.Atoi(endpoint); err == nil {
		if port <= 0 || port > 65535 {
			return "", fmt.Errorf("devtools port %d out of range", port)
		}
		return "http://127.0.0.1:" + endpoint, nil
	}
	if strings.Contains(endpoint, "://") {
		return endpoint, nil
	}
	return "http://" + endpoint, nil
}

// Probe attaches to the browser at endpoint and reads its version and target list. It opens
// no pages of its own beyond the tab chromedp needs to attach, which is closed on return.
func Probe(ctx context.Context, endpoint string, logger *zap.Logger) (*BrowserInfo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	url, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	logger = logger.Named("devtools").With(zap.String("endpoint", url))

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultProbeTimeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, url)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	info := &BrowserInfo{Endpoint: url}
	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		info.Protocol, info.Product, info.Revision, info.UserAgent, info.JSVersion, err = browser.GetVersion().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read browser version from %s: %w", url, err)
	}

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets of %s: %w", url, err)
	}
	for _, t := range targets {
		info.Targets = append(info.Targets, Target{ID: string(t.TargetID), Type: t.Type, Title: t.Title, URL: t.URL})
	}

	logger.Info("Probed browser.", zap.String("product", info.Product), zap.Int("targets", len(info.Targets)))
	return info, nil
}
