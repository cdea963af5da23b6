package httputil

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport logs every round trip at debug level. Query strings and
// headers are left out so tokens never reach the log.
type LoggingTransport struct {
	Base http.RoundTripper
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		slog.Debug("HTTP request failed",
			"method", req.Method,
			"host", req.URL.Host,
			"path", req.URL.Path,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	slog.Debug("HTTP request",
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", elapsed,
	)
	return resp, nil
}

// NewClient returns an http.Client that logs through LoggingTransport. A zero
// timeout means no client-side deadline, which is what large transfers need.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &LoggingTransport{Base: http.DefaultTransport},
	}
}
