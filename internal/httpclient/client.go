// Package httpclient provides the HTTP client factory for upstream calls.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config holds transport options for the upstream metadata client.
type Config struct {
	// Timeout specifies a time limit for requests made by the client.
	Timeout time.Duration

	// DialTimeout is the maximum amount of time a dial will wait for a connect.
	DialTimeout time.Duration

	// MaxIdleConnsPerHost controls keep-alive connections to the CRUD backend.
	MaxIdleConnsPerHost int

	// ResponseHeaderTimeout bounds the wait for upstream response headers.
	ResponseHeaderTimeout time.Duration
}

// DefaultConfig returns transport defaults sized for the internal CRUD API:
// metadata lookups are small and fast, so timeouts are short.
func DefaultConfig() Config {
	return Config{
		Timeout:               10 * time.Second,
		DialTimeout:           5 * time.Second,
		MaxIdleConnsPerHost:   32,
		ResponseHeaderTimeout: 10 * time.Second,
	}
}

// New creates an HTTP client with the provided configuration.
// If cfg is nil, DefaultConfig() is used.
func New(cfg *Config) *http.Client {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
