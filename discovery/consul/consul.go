package consul

import (
	"context"
	"fmt"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/consul-service/discovery"
	"github.com/kbukum/consul-service/logger"
)

// Provider implements discovery.Registry against a Consul agent.
type Provider struct {
	client *api.Client
	cfg    Config
	log    *logger.Logger
}

func init() {
	discovery.RegisterProviderFactory(discovery.ProviderConsul, func(_ discovery.Config, providerCfg any, log *logger.Logger) (discovery.Registry, error) {
		var cfg Config
		switch pc := providerCfg.(type) {
		case Config:
			cfg = pc
		case *Config:
			if pc != nil {
				cfg = *pc
			}
		case nil:
		default:
			return nil, fmt.Errorf("consul: unexpected provider config %T", providerCfg)
		}
		return NewProvider(cfg, log)
	})
}

// NewProvider creates a Provider from the given Config.
func NewProvider(cfg Config, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address()
	apiCfg.Scheme = cfg.Scheme
	apiCfg.Token = cfg.Token
	apiCfg.Datacenter = cfg.Datacenter
	apiCfg.TLSConfig = api.TLSConfig{
		CAFile:             cfg.TLS.CAFile,
		CertFile:           cfg.TLS.CertFile,
		KeyFile:            cfg.TLS.KeyFile,
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	return &Provider{
		client: client,
		cfg:    cfg,
		log:    log.WithComponent("consul"),
	}, nil
}

// Address returns the agent address the provider talks to.
func (c *Provider) Address() string { return c.cfg.Address() }

// Register registers a service instance with the agent.
func (c *Provider) Register(ctx context.Context, service *discovery.ServiceInfo) error {
	reg := &api.AgentServiceRegistration{
		ID:      service.ID,
		Name:    service.Name,
		Address: service.Address,
		Port:    service.Port,
		Tags:    service.Tags,
		Meta:    service.Metadata,
	}

	if chk := service.Check; chk != nil {
		reg.Check = &api.AgentServiceCheck{
			HTTP:     chk.HTTP,
			Interval: chk.Interval.String(),
			Timeout:  chk.Timeout.String(),
		}
		if chk.DeregisterAfter > 0 {
			reg.Check.DeregisterCriticalServiceAfter = chk.DeregisterAfter.String()
		}
	}

	if err := c.client.Agent().ServiceRegisterOpts(reg, api.ServiceRegisterOpts{}.WithContext(ctx)); err != nil {
		return fmt.Errorf("consul register %q: %w", service.ID, err)
	}

	c.log.Debug("agent accepted registration", map[string]interface{}{
		logger.FieldServiceID: service.ID,
		"agent":               c.cfg.Address(),
	})
	return nil
}

// Deregister removes a service instance from the agent.
func (c *Provider) Deregister(ctx context.Context, serviceID string) error {
	q := (&api.QueryOptions{}).WithContext(ctx)
	if err := c.client.Agent().ServiceDeregisterOpts(serviceID, q); err != nil {
		return fmt.Errorf("consul deregister %q: %w", serviceID, err)
	}
	return nil
}

// Services returns every service registered with the local agent. Entries
// keep the agent's JSON so every field it reports reaches the caller.
func (c *Provider) Services(ctx context.Context) (discovery.ServiceListing, error) {
	q := (&api.QueryOptions{}).WithContext(ctx)
	var listing discovery.ServiceListing
	if _, err := c.client.Raw().Query("/v1/agent/services", &listing, q); err != nil {
		return nil, fmt.Errorf("consul list services: %w", err)
	}
	if listing == nil {
		listing = discovery.ServiceListing{}
	}
	return listing, nil
}

// Close is a no-op; the HTTP client does not require explicit closing.
func (c *Provider) Close() error {
	return nil
}

// Compile-time check.
var _ discovery.Registry = (*Provider)(nil)
