// Package component defines the lifecycle contract shared by the long-running
// parts of the service: the discovery registration and the HTTP server.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse order.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Start/Stop/Health)
//   - Describable: Startup summary descriptions
//   - RouteProvider: HTTP routes for the startup summary
package component
