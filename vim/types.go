package vim

import "strings"

// ObjectRef is an opaque managed object reference: an identifier string
// tagged with the server's type classification. The value is never
// interpreted beyond its type tag and, as a documented fallback, a
// recognizable id prefix.
type ObjectRef struct {
	Type  string
	Value string
}

// ServiceInstanceRef is the well-known singleton entry point every call
// bootstraps from.
var ServiceInstanceRef = ObjectRef{Type: TypeServiceInstance, Value: TypeServiceInstance}

// About holds descriptive server metadata from the service descriptor.
type About struct {
	FullName string
	APIType  string
	Version  string
	Build    string
}

// ServiceContent is the bootstrap service descriptor: references to the
// inventory root, the property collector, and the session authority, plus
// server metadata. Immutable once fetched.
type ServiceContent struct {
	RootFolder        ObjectRef
	PropertyCollector ObjectRef
	SessionManager    ObjectRef
	About             About
}

// ConnectionInfo is the normalized summary returned by TestConnection.
type ConnectionInfo struct {
	Connected bool
	APIType   string
	Product   string
	Version   string
	Build     string
}

// Kind is the traversal-level classification of an inventory node.
type Kind int

const (
	// KindOther is any node that is neither container nor leaf.
	KindOther Kind = iota
	// KindFolder is a nested organizational container.
	KindFolder
	// KindDatacenter is a top-level inventory grouping.
	KindDatacenter
	// KindMachine is a leaf compute object.
	KindMachine
)

// Classify maps a reference to its traversal kind. The server's explicit
// type tag wins; the id-prefix convention is consulted only when the tag is
// missing or generic, since the naming scheme is not contractual.
func Classify(r ObjectRef) Kind {
	switch r.Type {
	case TypeFolder:
		return KindFolder
	case TypeDatacenter:
		return KindDatacenter
	case TypeVirtualMachine:
		return KindMachine
	}
	if r.Type != "" && r.Type != "ManagedEntity" && r.Type != "ManagedObjectReference" {
		return KindOther
	}
	switch {
	case strings.HasPrefix(r.Value, PrefixFolder):
		return KindFolder
	case strings.HasPrefix(r.Value, PrefixDatacenter):
		return KindDatacenter
	case strings.HasPrefix(r.Value, PrefixMachine):
		return KindMachine
	}
	return KindOther
}
