// Package transport implements the HTTPS transport layer for vim25 SOAP
// calls: protocol headers, TLS trust policy, session-cookie capture, and
// status-code handling.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ContentTypeXML is the content type for vim25 SOAP 1.1 messages.
	ContentTypeXML = "text/xml; charset=utf-8"

	// SOAPAction is the fixed action header value sent on every request.
	// The server tolerates a generic value regardless of operation.
	SOAPAction = "urn:vim25/6.0"

	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "vmware_soap_session"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxSnippet bounds response-body excerpts embedded in errors.
	maxSnippet = 512
)

// StatusError is returned for any non-200 response, including redirects,
// which indicate routing misconfiguration rather than an application-level
// condition. Body holds the full response for fault extraction upstream.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: HTTP %d: %s", e.Code, bounded(e.Body))
}

// TimeoutError is returned when a request exceeds the configured deadline.
type TimeoutError struct {
	URL string
}

func (e *TimeoutError) Error() string {
	return "transport: request to " + e.URL + " timed out"
}

func bounded(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippet {
		return s[:maxSnippet] + "..."
	}
	return s
}

// Transport handles HTTPS communication with a vim25 SDK endpoint. It owns
// the session token: every response's Set-Cookie header is scanned for the
// session cookie, and the captured value (last writer wins) is attached to
// every subsequent request.
type Transport struct {
	client  *http.Client
	session string
}

// Option configures a Transport.
type Option func(*Transport)

// New creates a transport with the given options. Redirects are never
// followed; a 3xx response surfaces as a StatusError.
func New(opts ...Option) *Transport {
	t := &Transport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification entirely.
// Lab use only.
func WithInsecureSkipVerify(skip bool) Option {
	return func(t *Transport) {
		t.ensureTLSConfig().InsecureSkipVerify = skip
	}
}

// WithRootCAs sets a custom trust anchor pool while keeping certificate
// verification enabled.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(t *Transport) {
		if pool != nil {
			t.ensureTLSConfig().RootCAs = pool
		}
	}
}

func (t *Transport) ensureTLSConfig() *tls.Config {
	ht, ok := t.client.Transport.(*http.Transport)
	if !ok {
		ht = &http.Transport{}
		t.client.Transport = ht
	}
	if ht.TLSClientConfig == nil {
		ht.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return ht.TLSClientConfig
}

// Session returns the captured session token, or "" before login.
func (t *Transport) Session() string {
	return t.session
}

// ClearSession drops the captured session token. Login clears it first so
// the post-call capture check reflects the current response, not a token
// left over from an earlier login.
func (t *Transport) ClearSession() {
	t.session = ""
}

// Post sends a SOAP request body to url and returns the raw response body.
// Protocol headers are fixed; once a session token has been captured it is
// sent as a cookie on every request.
func (t *Transport) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", ContentTypeXML)
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("SOAPAction", SOAPAction)
	if t.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: t.session})
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: url}
		}
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: url}
		}
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	// Cookie capture happens before the status check so a re-login on a
	// still-open client overwrites the prior token.
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			t.session = c.Value
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
