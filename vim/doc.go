// Package vim implements a client for the vSphere legacy SOAP interface
// (vim25), covering session lifecycle and generic property resolution.
//
// The message shapes are fixed, hand-built envelopes for a small, known
// operation set; there is no WSDL introspection.
//
// # Operations
//
//   - RetrieveServiceContent: fetch the bootstrap service descriptor
//   - Login / Logout: session lifecycle against the SessionManager
//   - CurrentTime: server clock liveness probe
//   - RetrieveProperties: batched property resolution via the
//     PropertyCollector
//   - TestConnection: composite connectivity validation
//
// # Subpackages
//
//   - transport: HTTPS transport, TLS trust policy, session cookie
package vim
