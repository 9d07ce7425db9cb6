// Package api holds the application routes of consul-service: the greeting at
// "/" and the pass-through listing of the discovery agent's services at
// "/services".
package api
