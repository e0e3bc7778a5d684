package vim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vctools/vcsearch/vim/transport"
)

// Client speaks the fixed vim25 operation set against one SDK endpoint.
// A client is not safe for concurrent use; callers needing concurrency
// should use independent client instances.
type Client struct {
	endpoint  string
	transport *transport.Transport
	content   *ServiceContent

	id       string
	logger   *slog.Logger
	debug    bool
	debugged bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDebug enables instance-scoped debug logging.
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.debug = debug
	}
}

// NewClient creates a client for the given normalized endpoint.
func NewClient(endpoint string, tr *transport.Transport, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:  endpoint,
		transport: tr,
		id:        uuid.NewString(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the SDK endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Session returns the captured session token, or "" before login.
func (c *Client) Session() string {
	return c.transport.Session()
}

// call wraps payload in an envelope, posts it, and returns the parsed body
// node. A 500 status carrying a fault body surfaces as *Fault; a fault in a
// 200 response likewise. op names the call for error context.
func (c *Client) call(ctx context.Context, op string, payload []byte) (*Node, error) {
	env := NewEnvelope().WithPayload(payload)
	body, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%s: marshal envelope: %w", op, err)
	}

	if c.debug && !c.debugged {
		c.debugged = true
		c.logger.Debug("vim transport", "client", c.id, "endpoint", c.endpoint)
	}

	raw, err := c.transport.Post(ctx, c.endpoint, body)
	if err != nil {
		if se, ok := asStatusError(err); ok && se.Code == http.StatusInternalServerError {
			if f := ParseFault(se.Body); f != nil {
				return nil, fmt.Errorf("%s: %w", op, f)
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	node, err := ParseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if f := FaultIn(node); f != nil {
		return nil, fmt.Errorf("%s: %w", op, f)
	}
	return node, nil
}

// result locates the <op>Response/returnval shape inside a body node.
// Operations without a return value (Logout) have no returnval; absent is
// reported through the boolean, not an error.
func result(body *Node, op string) (*Node, bool) {
	resp := body.First(op + "Response")
	if resp == nil {
		return nil, false
	}
	rv := resp.First("returnval")
	if rv == nil {
		return nil, false
	}
	return rv, true
}

func asStatusError(err error) (*transport.StatusError, bool) {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
