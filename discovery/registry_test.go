package discovery

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRegisteredServiceKeepsAgentJSON(t *testing.T) {
	in := `{"ID":"web-80","Service":"web","Kind":"","Tags":["a"],"Meta":{},"Port":80,"Address":"10.0.0.1",` +
		`"TaggedAddresses":{"lan_ipv4":{"Address":"10.0.0.1","Port":80}},"Weights":{"Passing":2,"Warning":1},` +
		`"EnableTagOverride":true,"ContentHash":"abc","Proxy":{"Expose":{}},"Connect":{},"Datacenter":"dc1"}`

	var svc RegisteredService
	if err := json.Unmarshal([]byte(in), &svc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if svc.ID != "web-80" || svc.Port != 80 || !svc.EnableTagOverride || svc.Weights.Passing != 2 {
		t.Errorf("unexpected typed fields %+v", svc)
	}

	out, err := json.Marshal(svc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != in {
		t.Errorf("expected agent JSON unchanged\n got: %s\nwant: %s", out, in)
	}
}

func TestRegisteredServiceWithoutAgentJSON(t *testing.T) {
	svc := RegisteredService{ID: "web-80", Service: "web", Tags: []string{}, Meta: map[string]string{}, Port: 80}

	out, err := json.Marshal(svc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, want := range []string{`"ID":"web-80"`, `"Service":"web"`, `"Tags":[]`, `"Meta":{}`, `"EnableTagOverride":false`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
	if strings.Contains(string(out), "Weights") {
		t.Errorf("nil weights should be omitted: %s", out)
	}
}

func TestRegisteredServiceClone(t *testing.T) {
	var svc RegisteredService
	if err := json.Unmarshal([]byte(`{"ID":"a","Tags":["x"],"Meta":{"k":"v"},"Weights":{"Passing":1,"Warning":1}}`), &svc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	c := svc.Clone()
	c.Tags[0] = "y"
	c.Meta["k"] = "w"
	c.Weights.Passing = 5

	if svc.Tags[0] != "x" || svc.Meta["k"] != "v" || svc.Weights.Passing != 1 {
		t.Errorf("clone shares data with original: %+v", svc)
	}
	out, _ := json.Marshal(c)
	if !strings.Contains(string(out), `"Tags":["x"]`) {
		t.Errorf("clone should keep agent JSON, got %s", out)
	}
}
