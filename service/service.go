package service

import (
	"context"
	"net/http"

	"github.com/kbukum/consul-service/api"
	"github.com/kbukum/consul-service/bootstrap"
	"github.com/kbukum/consul-service/discovery"
	"github.com/kbukum/consul-service/logger"
	"github.com/kbukum/consul-service/observability"
	"github.com/kbukum/consul-service/server"

	// Registers the in-memory backend for DISCOVERY_PROVIDER=static.
	_ "github.com/kbukum/consul-service/discovery/static"
)

// Service wires settings, the discovery registration and the HTTP surface
// into one bootstrap.App.
type Service struct {
	App *bootstrap.App[*Settings]

	settings  *Settings
	metrics   *observability.Metrics
	registrar *discovery.Registrar
	discovery *discovery.Component
	server    *server.Server
}

// Option configures a Service.
type Option func(*options)

type options struct {
	registry discovery.Registry
	resolver discovery.HostResolver
	appOpts  []bootstrap.Option
}

// WithRegistry replaces the backend selected by discovery.provider.
func WithRegistry(r discovery.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithHostResolver replaces the operating system resolver used for the
// advertised address.
func WithHostResolver(hr discovery.HostResolver) Option {
	return func(o *options) { o.resolver = hr }
}

// WithLogger sets the application logger instead of initializing the global one.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.appOpts = append(o.appOpts, bootstrap.WithLogger(l)) }
}

// WithAppOptions forwards options to bootstrap.NewApp.
func WithAppOptions(opts ...bootstrap.Option) Option {
	return func(o *options) { o.appOpts = append(o.appOpts, opts...) }
}

// New builds the Service. Components are registered discovery first and the
// HTTP server second, so the service is registered before it listens and
// stops listening before it deregisters.
func New(settings *Settings, opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	app, err := bootstrap.NewApp(settings, o.appOpts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	var metrics *observability.Metrics
	if settings.Metrics.Enabled {
		metrics = observability.NewMetrics(settings.Metrics.Namespace)
	}

	registry := o.registry
	if registry == nil {
		registry, err = newRegistry(settings, log)
		if err != nil {
			return nil, err
		}
	}

	regOpts := []discovery.RegistrarOption{
		discovery.WithMetrics(metrics),
		discovery.WithLogger(log.WithComponent("discovery")),
	}
	if o.resolver != nil {
		regOpts = append(regOpts, discovery.WithHostResolver(o.resolver))
	}
	registrar := discovery.NewRegistrar(registry, settings.Discovery, regOpts...)
	disc := discovery.NewComponent(registrar, log)

	srv := server.New(settings.Server, log)
	srv.ApplyMiddleware(metrics)
	var metricsHandler http.Handler
	if metrics != nil {
		metricsHandler = metrics.Handler()
	}
	srv.RegisterDefaultEndpoints(settings.Name, settings.Version, app.Components.HealthAll, metricsHandler)
	api.NewHandler(settings.Name, registrar, log).RegisterRoutes(srv.GinEngine())

	if err := app.RegisterComponent(disc); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}

	return &Service{
		App:       app,
		settings:  settings,
		metrics:   metrics,
		registrar: registrar,
		discovery: disc,
		server:    srv,
	}, nil
}

// newRegistry builds the backend named by discovery.provider.
func newRegistry(settings *Settings, log *logger.Logger) (discovery.Registry, error) {
	var providerCfg any
	if settings.Discovery.Provider == discovery.ProviderConsul {
		providerCfg = settings.Consul
	}
	return discovery.NewRegistry(settings.Discovery, providerCfg, log)
}

// NewRegistrar builds a Registrar for one-shot agent queries outside of Run.
func NewRegistrar(settings *Settings, log *logger.Logger) (*discovery.Registrar, error) {
	registry, err := newRegistry(settings, log)
	if err != nil {
		return nil, err
	}
	return discovery.NewRegistrar(registry, settings.Discovery, discovery.WithLogger(log)), nil
}

// Run initializes tracing, runs the application until ctx is canceled or a
// shutdown signal arrives, then flushes pending spans. A failed flush is
// logged only.
func (s *Service) Run(ctx context.Context) error {
	shutdownTracer, err := observability.InitTracer(ctx, s.settings.Tracing)
	if err != nil {
		return err
	}

	runErr := s.App.Run(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), s.settings.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		s.App.Logger.Warn("failed to flush traces", logger.ErrorFields("tracer_shutdown", err))
	}
	return runErr
}

// Settings returns the settings the service was built with.
func (s *Service) Settings() *Settings { return s.settings }

// Registrar returns the registrar used for registration and listings.
func (s *Service) Registrar() *discovery.Registrar { return s.registrar }

// RegistrationID returns the id owned while running, "" otherwise.
func (s *Service) RegistrationID() string { return s.discovery.RegistrationID() }

// Addr returns the bound HTTP address while the server is running.
func (s *Service) Addr() string { return s.server.Addr() }

// Metrics returns the collectors, nil when metrics are disabled.
func (s *Service) Metrics() *observability.Metrics { return s.metrics }
