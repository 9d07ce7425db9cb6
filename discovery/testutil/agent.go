package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// AgentCheck is the health check part of a registration as received by the agent.
type AgentCheck struct {
	HTTP                           string `json:"HTTP"`
	Interval                       string `json:"Interval"`
	Timeout                        string `json:"Timeout"`
	DeregisterCriticalServiceAfter string `json:"DeregisterCriticalServiceAfter"`
}

// AgentAddress is one entry of a registration's tagged addresses.
type AgentAddress struct {
	Address string `json:"Address"`
	Port    int    `json:"Port"`
}

// AgentWeights are the DNS weights of a registration.
type AgentWeights struct {
	Passing int `json:"Passing"`
	Warning int `json:"Warning"`
}

// AgentRegistration is a registration as received by the agent.
type AgentRegistration struct {
	ID              string                  `json:"ID"`
	Name            string                  `json:"Name"`
	Kind            string                  `json:"Kind,omitempty"`
	Tags            []string                `json:"Tags"`
	Port            int                     `json:"Port"`
	Address         string                  `json:"Address"`
	TaggedAddresses map[string]AgentAddress `json:"TaggedAddresses,omitempty"`
	Meta            map[string]string       `json:"Meta"`
	Weights         *AgentWeights           `json:"Weights,omitempty"`
	Check           *AgentCheck             `json:"Check"`
}

// Agent is a fake Consul agent.
type Agent struct {
	server *httptest.Server

	mu         sync.Mutex
	services   map[string]AgentRegistration
	failStatus int
	requests   []string
}

// NewAgent starts a fake agent that is closed when the test ends.
func NewAgent(t testing.TB) *Agent {
	t.Helper()
	a := &Agent{services: make(map[string]AgentRegistration)}
	a.server = httptest.NewServer(http.HandlerFunc(a.serveHTTP))
	t.Cleanup(a.server.Close)
	return a
}

// URL returns the agent base URL.
func (a *Agent) URL() string { return a.server.URL }

// HostPort returns the agent host and port.
func (a *Agent) HostPort() (string, int) {
	u, _ := url.Parse(a.server.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// Close stops the agent; later calls fail with connection errors.
func (a *Agent) Close() { a.server.Close() }

// Fail makes every subsequent request answer with status. Zero restores normal behavior.
func (a *Agent) Fail(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failStatus = status
}

// Seed adds a registration as if another process had registered it.
func (a *Agent) Seed(reg AgentRegistration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.services[reg.ID] = reg
}

// Registration returns the stored registration for id.
func (a *Agent) Registration(id string) (AgentRegistration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	reg, ok := a.services[id]
	return reg, ok
}

// Len returns the number of stored registrations.
func (a *Agent) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.services)
}

// Requests returns "METHOD path" for every request received.
func (a *Agent) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requests...)
}

func (a *Agent) serveHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, r.Method+" "+r.URL.Path)
	if a.failStatus != 0 {
		http.Error(w, "agent unavailable", a.failStatus)
		return
	}

	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/v1/agent/service/register":
		var reg AgentRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if reg.ID == "" {
			reg.ID = reg.Name
		}
		a.services[reg.ID] = reg
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/")
		if _, ok := a.services[id]; !ok {
			http.Error(w, "Unknown service ID "+strconv.Quote(id), http.StatusNotFound)
			return
		}
		delete(a.services, id)
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodGet && r.URL.Path == "/v1/agent/services":
		out := make(map[string]map[string]any, len(a.services))
		for id, reg := range a.services {
			out[id] = agentEntry(reg)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)

	default:
		http.NotFound(w, r)
	}
}

// agentEntry renders a registration the way the agent lists it.
func agentEntry(reg AgentRegistration) map[string]any {
	tags := reg.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := reg.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	weights := AgentWeights{Passing: 1, Warning: 1}
	if reg.Weights != nil {
		weights = *reg.Weights
	}
	entry := map[string]any{
		"ID":                reg.ID,
		"Service":           reg.Name,
		"Tags":              tags,
		"Meta":              meta,
		"Port":              reg.Port,
		"Address":           reg.Address,
		"Weights":           weights,
		"EnableTagOverride": false,
		"ContentHash":       "4d3c2b1a" + strconv.Itoa(reg.Port),
		"Datacenter":        "dc1",
	}
	if reg.Kind != "" {
		entry["Kind"] = reg.Kind
	}
	if len(reg.TaggedAddresses) > 0 {
		entry["TaggedAddresses"] = reg.TaggedAddresses
	}
	return entry
}
