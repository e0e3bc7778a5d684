package vim

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Envelope represents a SOAP 1.1 envelope for vim25 messages.
type Envelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`

	// Namespace declarations
	NsSoap string `xml:"xmlns:soapenv,attr"`
	NsVim  string `xml:"xmlns:vim25,attr"`

	Body *Body `xml:"soapenv:Body"`
}

// Body represents the SOAP body.
type Body struct {
	Content []byte `xml:",innerxml"`
}

// NewEnvelope creates a new SOAP envelope with the required namespace
// declarations.
func NewEnvelope() *Envelope {
	return &Envelope{
		NsSoap: NsSoapEnv,
		NsVim:  NsVim25,
		Body:   &Body{},
	}
}

// WithPayload sets the SOAP body content. The payload is the complete
// operation element, which declares the vim25 namespace as its default.
func (e *Envelope) WithPayload(content []byte) *Envelope {
	e.Body.Content = content
	return e
}

// Marshal serializes the envelope to XML, prefixed with the standard XML
// declaration.
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := xml.Marshal(e)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(data))
	out = append(out, xml.Header...)
	out = append(out, data...)
	return out, nil
}

// Node is a generic navigable XML element. Response envelopes are parsed
// into a Node tree so callers can locate elements by local name without
// caring which namespace prefix (or element-name casing) the server chose.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Node    `xml:",any"`
	Text     string     `xml:",chardata"`
}

// First returns the first direct child whose local name matches local,
// ignoring case and namespace prefix. Returns nil when absent.
func (n *Node) First(local string) *Node {
	for _, c := range n.Children {
		if strings.EqualFold(c.XMLName.Local, local) {
			return c
		}
	}
	return nil
}

// All returns every direct child whose local name matches local, ignoring
// case and namespace prefix.
func (n *Node) All(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if strings.EqualFold(c.XMLName.Local, local) {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the named attribute, matched by local name
// ignoring case. An unqualified attribute wins over a namespaced one with
// the same local name (type vs. xsi:type). Returns "" when absent.
func (n *Node) Attr(local string) string {
	var fallback string
	for _, a := range n.Attrs {
		if !strings.EqualFold(a.Name.Local, local) {
			continue
		}
		if a.Name.Space == "" {
			return a.Value
		}
		if fallback == "" {
			fallback = a.Value
		}
	}
	return fallback
}

// AttrNS returns the value of the attribute with the given namespace URI and
// local name. Returns "" when absent.
func (n *Node) AttrNS(space, local string) string {
	for _, a := range n.Attrs {
		if a.Name.Space == space && strings.EqualFold(a.Name.Local, local) {
			return a.Value
		}
	}
	return ""
}

// ParseEnvelope parses a raw SOAP response and returns the body node.
// It tolerates namespace-prefix variation and case differences in the
// Envelope and Body element names. A response without a recognizable body
// fails with a *MalformedResponseError carrying a bounded snippet.
func ParseEnvelope(raw []byte) (*Node, error) {
	var root Node
	dec := xml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&root); err != nil {
		return nil, &MalformedResponseError{Reason: "unparseable XML: " + err.Error(), Snippet: snippet(raw)}
	}
	if !strings.EqualFold(root.XMLName.Local, "Envelope") {
		return nil, &MalformedResponseError{Reason: "missing envelope element", Snippet: snippet(raw)}
	}
	body := root.First("Body")
	if body == nil {
		return nil, &MalformedResponseError{Reason: "missing body element", Snippet: snippet(raw)}
	}
	return body, nil
}

// escapeXML escapes a string for safe embedding as XML character data.
// Credentials pass through here before being placed in a Login payload.
func escapeXML(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails on writer errors, which bytes.Buffer never returns.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
