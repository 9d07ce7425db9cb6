// Package testutil provides test doubles for the discovery module.
//
// Agent is a fake Consul agent built on httptest.Server that speaks the
// register, deregister and list-services endpoints of the agent HTTP API.
// Registry is an in-memory discovery.Registry whose calls can be made to fail.
//
// # Quick Start
//
//	agent := testutil.NewAgent(t)
//	provider, _ := consul.NewProvider(agent.ConsulConfig(), nil)
//
//	agent.Fail(http.StatusServiceUnavailable) // every call now errors
package testutil
