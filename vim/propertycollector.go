package vim

import (
	"context"
	"strings"
)

// MaxBatchRefs is the ceiling on object references per RetrieveProperties
// call. Larger batches are split to keep request size and server load
// manageable.
const MaxBatchRefs = 128

// Value is a normalized property value. The server represents values in
// several shapes depending on the property: a raw scalar, a single managed
// object reference (type tag as attribute), or an array wrapper holding
// reference children. Value exposes all three uniformly.
type Value struct {
	Scalar string
	Ref    *ObjectRef
	Refs   []ObjectRef
}

// String extracts the scalar from either representation: the raw scalar
// when present, otherwise the reference id. Applied uniformly everywhere a
// resolved property value is read.
func (v Value) String() string {
	if v.Scalar != "" {
		return v.Scalar
	}
	if v.Ref != nil {
		return v.Ref.Value
	}
	return ""
}

// Reference returns the value as a single object reference when it is one.
func (v Value) Reference() (ObjectRef, bool) {
	if v.Ref != nil {
		return *v.Ref, true
	}
	return ObjectRef{}, false
}

// References returns the value as a reference list: the array elements when
// the value is an array wrapper, or a one-element list for a bare reference.
func (v Value) References() []ObjectRef {
	if len(v.Refs) > 0 {
		return v.Refs
	}
	if v.Ref != nil {
		return []ObjectRef{*v.Ref}
	}
	return nil
}

// ObjectContent is the resolved property set of one object reference.
type ObjectContent struct {
	Ref   ObjectRef
	Props map[string]Value
}

// RetrieveProperties resolves the given property paths for a batch of object
// references of one managed object type. The type and paths apply uniformly
// to every reference in the batch; the server reply is normalized into one
// ObjectContent per object regardless of result cardinality. Callers are
// responsible for chunking; see RetrievePropertiesChunked.
func (c *Client) RetrieveProperties(ctx context.Context, objType string, paths []string, refs []string) ([]ObjectContent, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	if c.content == nil {
		if _, err := c.RetrieveServiceContent(ctx); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	b.WriteString(`<` + OpRetrieveProperties + ` xmlns="` + NsVim25 + `">`)
	b.WriteString(`<_this type="` + TypePropertyCollector + `">` + escapeXML(c.content.PropertyCollector.Value) + `</_this>`)
	b.WriteString(`<specSet>`)
	b.WriteString(`<propSet><type>` + escapeXML(objType) + `</type><all>false</all>`)
	for _, p := range paths {
		b.WriteString(`<pathSet>` + escapeXML(p) + `</pathSet>`)
	}
	b.WriteString(`</propSet>`)
	for _, ref := range refs {
		b.WriteString(`<objectSet><obj type="` + escapeXML(objType) + `">` + escapeXML(ref) + `</obj></objectSet>`)
	}
	b.WriteString(`</specSet>`)
	b.WriteString(`</` + OpRetrieveProperties + `>`)

	body, err := c.call(ctx, OpRetrieveProperties, []byte(b.String()))
	if err != nil {
		return nil, err
	}

	resp := body.First(OpRetrieveProperties + "Response")
	if resp == nil {
		return nil, &ProtocolError{Missing: "retrieve properties response"}
	}

	var out []ObjectContent
	for _, rv := range resp.All("returnval") {
		oc := ObjectContent{Props: make(map[string]Value)}
		if obj := rv.First("obj"); obj != nil {
			oc.Ref = refFrom(obj)
		}
		for _, ps := range rv.All("propSet") {
			name := textOf(ps.First("name"))
			if name == "" {
				continue
			}
			oc.Props[name] = valueFrom(ps.First("val"))
		}
		out = append(out, oc)
	}
	return out, nil
}

// RetrievePropertiesChunked is RetrieveProperties split into batches of at
// most MaxBatchRefs references, results concatenated in request order.
func (c *Client) RetrievePropertiesChunked(ctx context.Context, objType string, paths []string, refs []string) ([]ObjectContent, error) {
	var out []ObjectContent
	for start := 0; start < len(refs); start += MaxBatchRefs {
		end := start + MaxBatchRefs
		if end > len(refs) {
			end = len(refs)
		}
		chunk, err := c.RetrieveProperties(ctx, objType, paths, refs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// valueFrom normalizes a val node into a Value. Reference children named
// ManagedObjectReference make an array; an xsi:type of
// ManagedObjectReference (or a bare type attribute) makes a single
// reference; anything else is the scalar character data.
func valueFrom(n *Node) Value {
	if n == nil {
		return Value{}
	}
	if children := n.All("ManagedObjectReference"); len(children) > 0 {
		refs := make([]ObjectRef, 0, len(children))
		for _, c := range children {
			refs = append(refs, refFrom(c))
		}
		return Value{Refs: refs}
	}
	xsiType := n.AttrNS(NsXsi, "type")
	if xsiType == "" {
		// Tolerate responses that use the xsi prefix without declaring it.
		xsiType = n.AttrNS("xsi", "type")
	}
	plainType := ""
	for _, a := range n.Attrs {
		if a.Name.Space == "" && strings.EqualFold(a.Name.Local, "type") {
			plainType = a.Value
			break
		}
	}
	if xsiType == "ManagedObjectReference" || (xsiType == "" && plainType != "") {
		ref := ObjectRef{Type: plainType, Value: strings.TrimSpace(n.Text)}
		return Value{Ref: &ref}
	}
	return Value{Scalar: strings.TrimSpace(n.Text)}
}
