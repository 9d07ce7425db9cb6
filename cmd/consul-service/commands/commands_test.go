package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/kbukum/consul-service/discovery"
	dtest "github.com/kbukum/consul-service/discovery/testutil"
	apperrors "github.com/kbukum/consul-service/errors"
	"github.com/kbukum/consul-service/version"
)

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// pointAt directs the settings loader at agent and keeps logs quiet.
func pointAt(t *testing.T, agent *dtest.Agent) {
	t.Helper()
	host, port := agent.HostPort()
	t.Setenv("DISCOVERY_PROVIDER", "consul")
	t.Setenv("CONSUL_HOST", host)
	t.Setenv("CONSUL_PORT", strconv.Itoa(port))
	t.Setenv("CONSUL_SCHEME", "http")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
}

func seededAgent(t *testing.T) *dtest.Agent {
	t.Helper()
	agent := dtest.NewAgent(t)
	agent.Seed(dtest.AgentRegistration{ID: "orders-9000", Name: "orders", Address: "10.0.0.2", Port: 9000, Tags: []string{"go", "api"}})
	agent.Seed(dtest.AgentRegistration{ID: "billing-9100", Name: "billing", Address: "10.0.0.3", Port: 9100})
	return agent
}

func TestServicesCommandTable(t *testing.T) {
	pointAt(t, seededAgent(t))

	out, err := execute(t, "services")
	if err != nil {
		t.Fatalf("services failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("expected header row first, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "billing-9100") || !strings.HasPrefix(lines[2], "orders-9000") {
		t.Errorf("expected rows sorted by id, got %q", out)
	}
	if !strings.Contains(lines[2], "go,api") {
		t.Errorf("expected joined tags, got %q", lines[2])
	}
}

func TestServicesCommandJSON(t *testing.T) {
	pointAt(t, seededAgent(t))

	out, err := execute(t, "services", "--json")
	if err != nil {
		t.Fatalf("services --json failed: %v", err)
	}
	var listing discovery.ServiceListing
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("output is not a listing: %v (%q)", err, out)
	}
	if len(listing) != 2 || listing["orders-9000"].Port != 9000 {
		t.Errorf("unexpected listing %+v", listing)
	}
}

func TestServicesCommandAgentFailure(t *testing.T) {
	agent := dtest.NewAgent(t)
	agent.Fail(http.StatusInternalServerError)
	pointAt(t, agent)

	out, err := execute(t, "services")
	if !apperrors.IsCode(err, apperrors.ErrCodeRegistryQuery) {
		t.Fatalf("expected REGISTRY_QUERY_ERROR, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no partial output, got %q", out)
	}
}

func TestInvalidSettingsFailBeforeServing(t *testing.T) {
	t.Setenv("PORT", "abc")

	_, err := execute(t, "serve")
	if !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "Version") || !strings.Contains(out, version.Version) {
		t.Errorf("expected version table, got %q", out)
	}

	out, err = execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version --short failed: %v", err)
	}
	if !strings.HasPrefix(out, version.Version) || strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single version line, got %q", out)
	}
}

func TestPrintServicesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printServices(&buf, discovery.ServiceListing{}); err != nil {
		t.Fatalf("printServices: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "ID") {
		t.Errorf("expected header only, got %q", buf.String())
	}
}
