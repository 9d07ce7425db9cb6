package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HealthCheck describes the HTTP probe the agent runs against the service.
type HealthCheck struct {
	HTTP            string
	Interval        time.Duration
	Timeout         time.Duration
	DeregisterAfter time.Duration
}

// ServiceInfo contains information about a service instance to register.
type ServiceInfo struct {
	ID       string
	Name     string
	Address  string
	Port     int
	Tags     []string
	Metadata map[string]string
	Check    *HealthCheck
}

// RegisteredService is one entry of the agent's service listing. The typed
// fields use the agent's JSON names. An entry decoded from agent JSON keeps
// the original bytes and marshals back to them unchanged, so fields the agent
// reports beyond the typed ones (Kind, TaggedAddresses, Proxy, ...) pass
// through to callers.
type RegisteredService struct {
	ID                string            `json:"ID"`
	Service           string            `json:"Service"`
	Tags              []string          `json:"Tags"`
	Meta              map[string]string `json:"Meta"`
	Port              int               `json:"Port"`
	Address           string            `json:"Address"`
	Weights           *ServiceWeights   `json:"Weights,omitempty"`
	EnableTagOverride bool              `json:"EnableTagOverride"`
	Datacenter        string            `json:"Datacenter,omitempty"`

	raw json.RawMessage
}

// ServiceWeights are the DNS weights the agent reports per health state.
type ServiceWeights struct {
	Passing int `json:"Passing"`
	Warning int `json:"Warning"`
}

// registeredServiceFields has the fields of RegisteredService without its
// JSON methods.
type registeredServiceFields RegisteredService

// UnmarshalJSON decodes the typed fields and keeps a copy of data.
func (s *RegisteredService) UnmarshalJSON(data []byte) error {
	var fields registeredServiceFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = RegisteredService(fields)
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the agent's original entry when there is one and the
// typed fields otherwise.
func (s RegisteredService) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	return json.Marshal(registeredServiceFields(s))
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s RegisteredService) Clone() RegisteredService {
	out := s
	if s.Tags != nil {
		out.Tags = append([]string{}, s.Tags...)
	}
	if s.Meta != nil {
		out.Meta = make(map[string]string, len(s.Meta))
		for k, v := range s.Meta {
			out.Meta[k] = v
		}
	}
	if s.Weights != nil {
		w := *s.Weights
		out.Weights = &w
	}
	if s.raw != nil {
		out.raw = append(json.RawMessage(nil), s.raw...)
	}
	return out
}

// ServiceListing maps service ids to the services known to the agent.
type ServiceListing map[string]RegisteredService

// Registry defines the contract for service registration and deregistration.
type Registry interface {
	// Register registers a service instance with the discovery backend.
	Register(ctx context.Context, service *ServiceInfo) error

	// Deregister removes a service instance from the discovery backend.
	Deregister(ctx context.Context, serviceID string) error

	// Services returns every service currently known to the backend.
	Services(ctx context.Context) (ServiceListing, error)

	// Close releases any resources held by the registry.
	Close() error
}

// RegistrationID returns the id a service registers under: "{name}-{port}".
func RegistrationID(serviceName string, servicePort int) string {
	return fmt.Sprintf("%s-%d", serviceName, servicePort)
}
