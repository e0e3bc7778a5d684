package vim

import (
	"errors"
	"strings"
)

// maxSnippet bounds the length of response-body excerpts embedded in errors.
const maxSnippet = 512

// snippet returns a bounded excerpt of a response body for diagnostics.
func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippet {
		return s[:maxSnippet] + "..."
	}
	return s
}

// ConfigurationError indicates invalid client configuration, such as a
// non-HTTPS server address. No network call is attempted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "vim: configuration error: " + e.Reason
}

// MalformedResponseError indicates the response body was not parseable XML
// or lacked the expected envelope/body shape.
type MalformedResponseError struct {
	Reason  string
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	msg := "vim: malformed response: " + e.Reason
	if e.Snippet != "" {
		msg += ": " + e.Snippet
	}
	return msg
}

// Fault is an application-level fault explicitly signaled by the server in
// an otherwise well-formed response (bad credentials, invalid reference).
// Message carries the server-supplied fault text verbatim.
type Fault struct {
	Message string
}

func (f *Fault) Error() string {
	return "vim: server fault: " + f.Message
}

// IsFault returns true if the error is a server Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// AuthenticationError indicates a login call returned success but no session
// token was captured from the response.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "vim: authentication failed: " + e.Reason
}

// ProtocolError indicates an expected result shape was absent from an
// otherwise well-formed response.
type ProtocolError struct {
	Missing string
}

func (e *ProtocolError) Error() string {
	return "vim: protocol error: missing " + e.Missing
}

// FaultIn inspects a parsed body node for a SOAP fault element and returns
// the corresponding *Fault, or nil when the body carries no fault.
func FaultIn(body *Node) *Fault {
	f := body.First("Fault")
	if f == nil {
		return nil
	}
	msg := ""
	if fs := f.First("faultstring"); fs != nil {
		msg = strings.TrimSpace(fs.Text)
	}
	if msg == "" {
		// SOAP 1.2 shape, tolerated even though vim25 speaks 1.1.
		if r := f.First("Reason"); r != nil {
			if t := r.First("Text"); t != nil {
				msg = strings.TrimSpace(t.Text)
			}
		}
	}
	if msg == "" {
		msg = "unspecified fault"
	}
	return &Fault{Message: msg}
}

// ParseFault parses a raw SOAP response and returns a Fault if present.
// Returns nil if the response does not contain a fault or is not parseable.
func ParseFault(raw []byte) *Fault {
	// Quick check before paying for a full parse.
	if !strings.Contains(string(raw), "Fault") {
		return nil
	}
	body, err := ParseEnvelope(raw)
	if err != nil {
		return nil
	}
	return FaultIn(body)
}
