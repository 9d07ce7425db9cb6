// Package discovery registers this service with a discovery agent and
// deregisters it on shutdown.
//
// # Architecture
//
//   - Registry: Backend contract (register, deregister, list services)
//   - Registrar: Builds the registration from config, resolves the local
//     address and records metrics and spans around each backend call
//   - Component: Lifecycle wrapper that registers on Start and deregisters on Stop
//
// # Backends
//
//   - discovery/consul: HashiCorp Consul agent HTTP API
//   - discovery/static: In-memory registry for development and testing
//
// Backends self-register with RegisterProviderFactory in their init function,
// so callers blank-import the backends they want available.
package discovery
