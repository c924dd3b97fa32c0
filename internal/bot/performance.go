package bot

import (
	"context"
	"discord-giveaways/internal/metrics"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PerfTransport wraps http.RoundTripper to track REST latency
type PerfTransport struct {
	Base    http.RoundTripper
	Metrics *metrics.Metrics
}

func (t *PerfTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	t.Metrics.ObserveREST(req.Method, time.Since(start))
	return resp, err
}

// newHTTPClient is the pooled REST client handed to discordgo.
func newHTTPClient(m *metrics.Metrics) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       120 * time.Second,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: &PerfTransport{Base: tr, Metrics: m},
		Timeout:   20 * time.Second,
	}
}

// monitorHeartbeat reports the gateway heartbeat latency every interval.
func (b *Bot) monitorHeartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			latency := b.Session.HeartbeatLatency()
			b.Metrics.SetGatewayLatency(latency)
			if latency > time.Second {
				b.Logger.Warn("high gateway latency", zap.Duration("latency", latency))
			}
		}
	}
}
