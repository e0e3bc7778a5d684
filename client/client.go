// Package client provides the high-level API for vCenter connectivity
// validation and name-based virtual machine search.
package client

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"

	"github.com/vctools/vcsearch/internal/log"
	"github.com/vctools/vcsearch/inventory"
	"github.com/vctools/vcsearch/vim"
	"github.com/vctools/vcsearch/vim/transport"
)

// Client is a high-level vCenter search client. One client owns one session;
// concurrent invocations against a single client are not a supported
// configuration.
type Client struct {
	config   Config
	endpoint string
	vim      *vim.Client
}

// New creates a client from the given configuration. The server address is
// normalized and validated before any network call; an invalid address or
// trust anchor fails with a *vim.ConfigurationError.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	endpoint, err := vim.NormalizeEndpoint(cfg.Server)
	if err != nil {
		return nil, err
	}

	trOpts := []transport.Option{
		transport.WithTimeout(cfg.Timeout()),
		transport.WithInsecureSkipVerify(cfg.Insecure),
	}
	if cfg.CACertPEM != "" {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM([]byte(cfg.CACertPEM)) {
			return nil, &vim.ConfigurationError{Reason: "ca_cert contains no usable PEM certificate"}
		}
		trOpts = append(trOpts, transport.WithRootCAs(pool))
	}
	tr := transport.New(trOpts...)

	c := &Client{config: cfg, endpoint: endpoint}
	settings := options{logger: defaultLogger(cfg.Debug)}
	for _, opt := range opts {
		opt(&settings)
	}

	if cfg.Insecure {
		settings.logger.Warn("TLS certificate verification disabled", "server", cfg.Server)
	}

	c.vim = vim.NewClient(endpoint, tr,
		vim.WithLogger(settings.logger),
		vim.WithDebug(cfg.Debug),
	)
	return c, nil
}

// options holds injectable collaborators.
type options struct {
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithLogger overrides the default logger. Sensitive attributes are still
// redacted by the caller's handler if it wraps log.NewRedactingHandler.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// defaultLogger builds the instance logger: debug level when enabled, with
// credential attributes redacted.
func defaultLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(log.NewRedactingHandler(h))
}

// Endpoint returns the normalized SDK endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// TestConnection validates connectivity: service descriptor, login, and a
// second descriptor fetch confirming the authenticated identity. Any step
// failure propagates unchanged.
func (c *Client) TestConnection(ctx context.Context) (*vim.ConnectionInfo, error) {
	return c.vim.TestConnection(ctx, c.config.Username, c.config.Password)
}

// Search logs in when no session is active, then discovers and matches
// virtual machines per opts. Diagnostics are non-nil only when the debug
// flag is set.
func (c *Client) Search(ctx context.Context, opts inventory.Options) ([]inventory.Record, *inventory.Diagnostics, error) {
	if c.vim.Session() == "" {
		if err := c.vim.Login(ctx, c.config.Username, c.config.Password); err != nil {
			return nil, nil, err
		}
	}
	return inventory.Search(ctx, c.vim, opts)
}

// Close logs out the active session, if any. Idle sessions may also simply
// be abandoned; logout is best-effort hygiene.
func (c *Client) Close(ctx context.Context) error {
	if c.vim.Session() == "" {
		return nil
	}
	return c.vim.Logout(ctx)
}
