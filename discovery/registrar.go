package discovery

import (
	"context"
	"net"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/consul-service/errors"
	"github.com/kbukum/consul-service/logger"
	"github.com/kbukum/consul-service/observability"
)

// Operation names used for metrics labels and span names.
const (
	OpResolveAddress = "resolve_address"
	OpRegister       = "register"
	OpDeregister     = "deregister"
	OpListServices   = "list_services"
)

// Registrar turns the registration config into calls against a Registry.
// It performs no retries and no caching: every call is one round-trip.
type Registrar struct {
	registry Registry
	cfg      Config
	resolver HostResolver
	metrics  *observability.Metrics
	log      *logger.Logger
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithMetrics records operation counters and latencies on m.
func WithMetrics(m *observability.Metrics) RegistrarOption {
	return func(r *Registrar) { r.metrics = m }
}

// WithHostResolver replaces the operating system resolver.
func WithHostResolver(hr HostResolver) RegistrarOption {
	return func(r *Registrar) { r.resolver = hr }
}

// WithLogger sets the logger; the global logger is used otherwise.
func WithLogger(l *logger.Logger) RegistrarOption {
	return func(r *Registrar) { r.log = l }
}

// NewRegistrar creates a Registrar over registry. cfg is defaulted but not validated.
func NewRegistrar(registry Registry, cfg Config, opts ...RegistrarOption) *Registrar {
	cfg.ApplyDefaults()
	r := &Registrar{
		registry: registry,
		cfg:      cfg,
		resolver: SystemResolver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent("discovery")
	}
	return r
}

// Config returns the effective discovery configuration.
func (r *Registrar) Config() Config { return r.cfg }

// RegistrationID returns the id this service registers under.
func (r *Registrar) RegistrationID() string {
	return RegistrationID(r.cfg.Registration.ServiceName, r.cfg.Registration.ServicePort)
}

// ResolveLocalAddress returns the address advertised to the agent. A configured
// service address is returned as is; otherwise the host name is resolved.
func (r *Registrar) ResolveLocalAddress(ctx context.Context) (string, error) {
	if addr := r.cfg.Registration.ServiceAddress; addr != "" {
		return addr, nil
	}

	ctx, op := observability.StartRegistryOperation(ctx, r.metrics, OpResolveAddress)
	host, addr, err := lookupLocalAddress(ctx, r.resolver)
	if err != nil {
		appErr := apperrors.NetworkResolution(host, err)
		op.End(appErr)
		return "", appErr
	}
	op.SetAttributes(attribute.String("net.host.name", host), attribute.String("net.host.ip", addr))
	op.End(nil)
	return addr, nil
}

// ServiceInfo builds the registration payload for the given address.
func (r *Registrar) ServiceInfo(address string) *ServiceInfo {
	reg := r.cfg.Registration
	return &ServiceInfo{
		ID:       r.RegistrationID(),
		Name:     reg.ServiceName,
		Address:  address,
		Port:     reg.ServicePort,
		Tags:     reg.Tags,
		Metadata: reg.Metadata,
		Check: &HealthCheck{
			HTTP:            healthCheckURL(address, reg.ServicePort, reg.HealthCheckPath),
			Interval:        reg.HealthCheckInterval,
			Timeout:         reg.HealthCheckTimeout,
			DeregisterAfter: reg.DeregisterAfter,
		},
	}
}

// Register resolves the local address and registers the service with the
// agent. It returns the registration id on success.
func (r *Registrar) Register(ctx context.Context) (string, error) {
	id := r.RegistrationID()

	address, err := r.ResolveLocalAddress(ctx)
	if err != nil {
		r.log.Error("failed to resolve local address", logger.ErrorFields(OpRegister, err))
		return "", err
	}

	svc := r.ServiceInfo(address)
	ctx, op := observability.StartRegistryOperation(ctx, r.metrics, OpRegister,
		observability.Attrs(observability.AttrServiceID, id)...)
	err = r.registry.Register(ctx, svc)
	op.End(err)
	if err != nil {
		r.log.Error("failed to register service", map[string]interface{}{
			logger.FieldServiceID: id,
			logger.FieldError:     err.Error(),
		})
		return "", apperrors.Registration(id, err)
	}

	r.metrics.SetRegistered(true)
	r.log.Info("service registered", map[string]interface{}{
		logger.FieldServiceID: id,
		"address":             address,
		"port":                svc.Port,
		"check":               svc.Check.HTTP,
	})
	return id, nil
}

// Deregister removes the registration with the given id. An empty id is a no-op.
func (r *Registrar) Deregister(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ctx, op := observability.StartRegistryOperation(ctx, r.metrics, OpDeregister,
		observability.Attrs(observability.AttrServiceID, id)...)
	err := r.registry.Deregister(ctx, id)
	op.End(err)
	if err != nil {
		return apperrors.Deregistration(id, err)
	}

	r.metrics.SetRegistered(false)
	r.log.Info("service deregistered", logger.Fields(logger.FieldServiceID, id))
	return nil
}

// ListServices returns the agent's current service listing.
func (r *Registrar) ListServices(ctx context.Context) (ServiceListing, error) {
	ctx, op := observability.StartRegistryOperation(ctx, r.metrics, OpListServices)
	services, err := r.registry.Services(ctx)
	if err != nil {
		op.End(err)
		return nil, apperrors.RegistryQuery(err)
	}
	op.SetAttributes(attribute.Int("discovery.services.count", len(services)))
	op.End(nil)
	return services, nil
}

// Close releases the underlying registry.
func (r *Registrar) Close() error {
	return r.registry.Close()
}

func healthCheckURL(address string, port int, path string) string {
	return "http://" + net.JoinHostPort(address, strconv.Itoa(port)) + path
}
