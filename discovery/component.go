package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/consul-service/component"
	"github.com/kbukum/consul-service/logger"
)

// State is the lifecycle state of the discovery Component.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Component registers the service on Start and deregisters it on Stop.
// It implements component.Component for lifecycle management.
type Component struct {
	registrar *Registrar
	log       *logger.Logger

	mu             sync.Mutex
	state          State
	registrationID string
}

// NewComponent creates a discovery Component driving registrar.
func NewComponent(registrar *Registrar, log *logger.Logger) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Component{
		registrar: registrar,
		log:       log.WithComponent("discovery"),
		state:     StateStopped,
	}
}

// ensure Component satisfies component.Component.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Name returns the component name.
func (c *Component) Name() string { return "discovery" }

// Registrar returns the underlying Registrar.
func (c *Component) Registrar() *Registrar { return c.registrar }

// State returns the current lifecycle state.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RegistrationID returns the id owned by this process, or "" when stopped.
func (c *Component) RegistrationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registrationID
}

// Start registers the service with the agent. On failure the component stays
// stopped and the error is returned unchanged.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return nil
	}

	id, err := c.registrar.Register(ctx)
	if err != nil {
		return err
	}

	c.registrationID = id
	c.state = StateRunning
	c.log.Info("discovery component started", map[string]interface{}{
		"provider":            c.registrar.Config().Provider,
		logger.FieldServiceID: id,
	})
	return nil
}

// Stop deregisters the owned registration. A deregistration failure is logged
// and swallowed so shutdown always completes. Stopping a stopped component is
// a no-op.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStopped {
		return nil
	}

	id := c.registrationID
	if err := c.registrar.Deregister(ctx, id); err != nil {
		c.log.Warn("failed to deregister on stop", map[string]interface{}{
			logger.FieldServiceID: id,
			logger.FieldError:     err.Error(),
		})
	}
	if err := c.registrar.Close(); err != nil {
		c.log.Warn("failed to close registry", logger.Fields(logger.FieldError, err.Error()))
	}

	c.registrationID = ""
	c.state = StateStopped
	c.log.Info("discovery component stopped", logger.Fields(logger.FieldServiceID, id))
	return nil
}

// Health reports healthy while the service holds a registration.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "not registered",
		}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: "registered as " + c.registrationID,
	}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	cfg := c.registrar.Config()
	return component.Description{
		Name:    "Discovery",
		Type:    "discovery",
		Details: fmt.Sprintf("provider=%s id=%s", cfg.Provider, c.registrar.RegistrationID()),
		Port:    cfg.Registration.ServicePort,
	}
}
