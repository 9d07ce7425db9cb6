package testutil

import (
	"context"
	"net"
	"sync"

	"github.com/kbukum/consul-service/discovery"
)

// Registry is an in-memory discovery.Registry whose calls can be made to fail.
type Registry struct {
	mu sync.Mutex

	RegisterErr   error
	DeregisterErr error
	ServicesErr   error

	services     map[string]discovery.ServiceInfo
	registered   []string
	deregistered []string
	closed       bool
}

var _ discovery.Registry = (*Registry)(nil)

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]discovery.ServiceInfo)}
}

func (r *Registry) Register(_ context.Context, svc *discovery.ServiceInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.RegisterErr != nil {
		return r.RegisterErr
	}
	r.services[svc.ID] = *svc
	r.registered = append(r.registered, svc.ID)
	return nil
}

func (r *Registry) Deregister(_ context.Context, serviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeregisterErr != nil {
		return r.DeregisterErr
	}
	delete(r.services, serviceID)
	r.deregistered = append(r.deregistered, serviceID)
	return nil
}

func (r *Registry) Services(_ context.Context) (discovery.ServiceListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ServicesErr != nil {
		return nil, r.ServicesErr
	}
	out := make(discovery.ServiceListing, len(r.services))
	for id, svc := range r.services {
		out[id] = discovery.RegisteredService{
			ID: svc.ID, Service: svc.Name, Tags: svc.Tags, Meta: svc.Metadata,
			Port: svc.Port, Address: svc.Address,
			Weights: &discovery.ServiceWeights{Passing: 1, Warning: 1},
		}.Clone()
	}
	return out, nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Service returns the stored registration for id.
func (r *Registry) Service(id string) (discovery.ServiceInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	return svc, ok
}

// Registered returns the ids passed to successful Register calls.
func (r *Registry) Registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.registered...)
}

// Deregistered returns the ids passed to successful Deregister calls.
func (r *Registry) Deregistered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deregistered...)
}

// Closed reports whether Close was called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Resolver is a discovery.HostResolver returning fixed answers.
type Resolver struct {
	Host    string
	Addrs   []string
	HostErr error
	LookErr error
}

func (r Resolver) Hostname() (string, error) {
	if r.HostErr != nil {
		return "", r.HostErr
	}
	return r.Host, nil
}

func (r Resolver) LookupIPAddr(_ context.Context, _ string) ([]net.IPAddr, error) {
	if r.LookErr != nil {
		return nil, r.LookErr
	}
	out := make([]net.IPAddr, 0, len(r.Addrs))
	for _, a := range r.Addrs {
		out = append(out, net.IPAddr{IP: net.ParseIP(a)})
	}
	return out, nil
}
