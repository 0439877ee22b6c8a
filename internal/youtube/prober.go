package youtube

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skillsprint/video-library-go/internal/metrics"
	"github.com/skillsprint/video-library-go/pkg/logger"
	"go.uber.org/zap"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Prober checks whether a canonical embed URL can actually be embedded.
// Implementations are best-effort boolean oracles: they never return an
// error, and any failure resolves to false. Callers decide how much weight
// a false result carries.
type Prober interface {
	Probe(ctx context.Context, embedURL string) bool
}

// OEmbedProber probes embeddability through YouTube's oEmbed endpoint.
// oEmbed answers 200 for embeddable resources, 401 for videos whose owner
// disabled embedding and 404 for resources that do not exist.
type OEmbedProber struct {
	client  HTTPClient
	timeout time.Duration
}

// NewOEmbedProber creates an OEmbedProber with the given request timeout.
func NewOEmbedProber(client HTTPClient, timeout time.Duration) *OEmbedProber {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OEmbedProber{
		client:  client,
		timeout: timeout,
	}
}

// Probe reports whether the resource behind embedURL appears embeddable.
// The check is bounded by the configured timeout so a hanging remote never
// stalls the enclosing request.
func (p *OEmbedProber) Probe(ctx context.Context, embedURL string) (available bool) {
	timer := prometheus.NewTimer(metrics.ProbeDuration)
	defer func() {
		timer.ObserveDuration()
		if !available {
			metrics.ProbeFailures.Inc()
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	probeURL := oembedEndpoint + "?format=json&url=" + url.QueryEscape(embedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		logger.Log.Warn("failed to build probe request",
			zap.String("embedUrl", embedURL),
			zap.Error(err),
		)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Log.Debug("embed probe request failed",
			zap.String("embedUrl", embedURL),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Log.Debug("embed probe returned non-success status",
			zap.String("embedUrl", embedURL),
			zap.Int("status", resp.StatusCode),
		)
		return false
	}

	return true
}

// StaticProber always answers with a fixed result. It backs deployments
// with probing disabled ("true" keeps the strict single-video admission
// path open) and deterministic tests.
type StaticProber struct {
	Available bool
}

// Probe returns the configured result.
func (p StaticProber) Probe(_ context.Context, _ string) bool {
	return p.Available
}
