package static

import (
	"context"
	"sync"

	"github.com/kbukum/consul-service/discovery"
	"github.com/kbukum/consul-service/logger"
)

// Provider implements discovery.Registry with an in-memory map keyed by
// service id. Useful for local development and testing.
type Provider struct {
	mu         sync.RWMutex
	datacenter string
	services   map[string]discovery.RegisteredService
}

func init() {
	discovery.RegisterProviderFactory(discovery.ProviderStatic, func(_ discovery.Config, _ any, _ *logger.Logger) (discovery.Registry, error) {
		return NewProvider(), nil
	})
}

// NewProvider creates an empty Provider.
func NewProvider() *Provider {
	return &Provider{
		datacenter: "local",
		services:   make(map[string]discovery.RegisteredService),
	}
}

// Register stores or replaces the service under its id.
func (s *Provider) Register(_ context.Context, svc *discovery.ServiceInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := discovery.RegisteredService{
		ID:         svc.ID,
		Service:    svc.Name,
		Tags:       svc.Tags,
		Meta:       svc.Metadata,
		Port:       svc.Port,
		Address:    svc.Address,
		Weights:    &discovery.ServiceWeights{Passing: 1, Warning: 1},
		Datacenter: s.datacenter,
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if entry.Meta == nil {
		entry.Meta = map[string]string{}
	}
	s.services[svc.ID] = entry.Clone()
	return nil
}

// Deregister removes a service by id. Unknown ids are ignored.
func (s *Provider) Deregister(_ context.Context, serviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.services, serviceID)
	return nil
}

// Services returns a deep copy of the registered services.
func (s *Provider) Services(_ context.Context) (discovery.ServiceListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(discovery.ServiceListing, len(s.services))
	for id, svc := range s.services {
		out[id] = svc.Clone()
	}
	return out, nil
}

// Close is a no-op for the static provider.
func (s *Provider) Close() error {
	return nil
}

// Compile-time check.
var _ discovery.Registry = (*Provider)(nil)
