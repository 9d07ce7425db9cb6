package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/consul-service/component"
)

// InfrastructureInfo holds what a Describable component reports about itself.
type InfrastructureInfo struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// RouteInfo represents a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	routes          []RouteInfo
	out             io.Writer
}

// NewSummary creates a new bootstrap summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName:    serviceName,
		version:        version,
		infrastructure: make([]InfrastructureInfo, 0),
		routes:         make([]RouteInfo, 0),
		out:            os.Stdout,
	}
}

// SetWriter redirects the summary output. A nil writer disables rendering.
func (s *Summary) SetWriter(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure adds an infrastructure component.
func (s *Summary) TrackInfrastructure(name, componentType, details string, port int) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{
		Name:    name,
		Type:    componentType,
		Details: details,
		Port:    port,
	})
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

// Collect replaces the tracked infrastructure and routes with what the
// registered components report through Describable and RouteProvider.
func (s *Summary) Collect(registry *component.Registry) {
	s.infrastructure = s.infrastructure[:0]
	s.routes = s.routes[:0]
	if registry == nil {
		return
	}
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			name := desc.Name
			if name == "" {
				name = c.Name()
			}
			s.TrackInfrastructure(name, desc.Type, desc.Details, desc.Port)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			for _, r := range rp.Routes() {
				s.TrackRoute(r.Method, r.Path, r.Handler)
			}
		}
	}
}

// Render writes the summary with the given live health results.
func (s *Summary) Render(health []component.Health) {
	if s.out == nil {
		return
	}
	w := s.out

	fmt.Fprintf(w, "\n%s %s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "Infrastructure\n")
		for i, inf := range s.infrastructure {
			details := inf.Details
			if inf.Port > 0 && !strings.HasSuffix(details, fmt.Sprintf(":%d", inf.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s [%s] %s: %s\n", treePrefix(i, len(s.infrastructure)), inf.Type, inf.Name, details)
		}
		fmt.Fprintf(w, "\n")
	} else {
		fmt.Fprintf(w, "   └── No components registered\n")
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(health) > 0 {
		fmt.Fprintf(w, "Health\n")
		healthy := 0
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			if h.Status == component.StatusHealthy {
				healthy++
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
		if healthy == len(health) {
			fmt.Fprintf(w, "\nAll components healthy (%d/%d)\n", healthy, len(health))
		} else {
			fmt.Fprintf(w, "\nSome components have issues (%d/%d healthy)\n", healthy, len(health))
		}
	}

	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
