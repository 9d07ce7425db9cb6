package discovery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/consul-service/component"
	"github.com/kbukum/consul-service/discovery"
	dtest "github.com/kbukum/consul-service/discovery/testutil"
	apperrors "github.com/kbukum/consul-service/errors"
	"github.com/kbukum/consul-service/logger"
)

func newComponent(t *testing.T, reg *dtest.Registry) *discovery.Component {
	t.Helper()
	r, _ := newRegistrar(t, reg, testConfig())
	return discovery.NewComponent(r, logger.NewNop())
}

func TestComponentLifecycle(t *testing.T) {
	reg := dtest.NewRegistry()
	c := newComponent(t, reg)
	ctx := context.Background()

	if c.State() != discovery.StateStopped {
		t.Fatalf("expected stopped, got %s", c.State())
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.State() != discovery.StateRunning {
		t.Errorf("expected running, got %s", c.State())
	}
	if c.RegistrationID() != "fastapi-service-8000" {
		t.Errorf("unexpected registration id %q", c.RegistrationID())
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy while running, got %s", h.Status)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if c.State() != discovery.StateStopped || c.RegistrationID() != "" {
		t.Errorf("expected stopped with no id, got %s %q", c.State(), c.RegistrationID())
	}
	if got := reg.Deregistered(); len(got) != 1 || got[0] != "fastapi-service-8000" {
		t.Errorf("expected one deregistration, got %v", got)
	}
	if !reg.Closed() {
		t.Error("expected registry to be closed on stop")
	}
}

func TestComponentStartFailureStaysStopped(t *testing.T) {
	reg := dtest.NewRegistry()
	reg.RegisterErr = errors.New("connection refused")
	c := newComponent(t, reg)

	err := c.Start(context.Background())
	if !apperrors.IsCode(err, apperrors.ErrCodeRegistration) {
		t.Fatalf("expected REGISTRATION_ERROR, got %v", err)
	}
	if c.State() != discovery.StateStopped {
		t.Errorf("expected stopped after failed start, got %s", c.State())
	}
	if c.RegistrationID() != "" {
		t.Errorf("expected no id, got %q", c.RegistrationID())
	}
}

func TestComponentStopWhenStoppedIsNoop(t *testing.T) {
	reg := dtest.NewRegistry()
	c := newComponent(t, reg)

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if len(reg.Deregistered()) != 0 {
		t.Error("expected no deregistration without registration")
	}
}

func TestComponentStopSwallowsDeregisterFailure(t *testing.T) {
	reg := dtest.NewRegistry()
	c := newComponent(t, reg)
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	reg.DeregisterErr = errors.New("agent gone")

	if err := c.Stop(ctx); err != nil {
		t.Errorf("expected deregistration failure to be swallowed, got %v", err)
	}
	if c.State() != discovery.StateStopped {
		t.Errorf("expected stopped, got %s", c.State())
	}
}

func TestComponentStartTwiceKeepsOneRegistration(t *testing.T) {
	reg := dtest.NewRegistry()
	c := newComponent(t, reg)
	ctx := context.Background()

	c.Start(ctx)
	c.Start(ctx)
	if got := reg.Registered(); len(got) != 1 {
		t.Errorf("expected a single registration, got %v", got)
	}
}

func TestComponentDescribe(t *testing.T) {
	c := newComponent(t, dtest.NewRegistry())
	d := c.Describe()
	if d.Type != "discovery" || d.Port != 8000 {
		t.Errorf("unexpected description %+v", d)
	}
}
