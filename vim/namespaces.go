package vim

// XML namespace URIs for vim25 SOAP messages.
const (
	// NsSoapEnv is the SOAP 1.1 envelope namespace.
	NsSoapEnv = "http://schemas.xmlsoap.org/soap/envelope/"

	// NsVim25 is the vSphere management operations namespace.
	NsVim25 = "urn:vim25"

	// NsXsi is the XML Schema Instance namespace (xsi:type attributes on
	// property values).
	NsXsi = "http://www.w3.org/2001/XMLSchema-instance"
)

// ServicePath is the fixed SDK endpoint path appended to every normalized
// server address.
const ServicePath = "/sdk"

// Operation names for the fixed set of supported remote calls.
const (
	// OpRetrieveServiceContent fetches the bootstrap service descriptor.
	OpRetrieveServiceContent = "RetrieveServiceContent"

	// OpLogin authenticates against the SessionManager.
	OpLogin = "Login"

	// OpLogout terminates the current session.
	OpLogout = "Logout"

	// OpRetrieveProperties resolves properties of managed object references
	// through the PropertyCollector.
	OpRetrieveProperties = "RetrieveProperties"

	// OpCurrentTime reads the server clock from the ServiceInstance.
	OpCurrentTime = "CurrentTime"
)

// Managed object type names returned in reference type tags.
const (
	// TypeServiceInstance is the singleton protocol entry point.
	TypeServiceInstance = "ServiceInstance"

	// TypeFolder is an organizational container node.
	TypeFolder = "Folder"

	// TypeDatacenter is a top-level inventory grouping.
	TypeDatacenter = "Datacenter"

	// TypeVirtualMachine is a leaf compute object.
	TypeVirtualMachine = "VirtualMachine"

	// TypeSessionManager is the session authority object.
	TypeSessionManager = "SessionManager"

	// TypePropertyCollector is the generic property resolution service.
	TypePropertyCollector = "PropertyCollector"
)

// Reference-id prefixes used as a classification fallback when the server
// omits or blanks the type tag. The naming convention is an implementation
// detail of vCenter, not a contractual guarantee; the explicit type tag is
// always preferred.
const (
	PrefixFolder     = "group-"
	PrefixDatacenter = "datacenter-"
	PrefixMachine    = "vm-"
)
