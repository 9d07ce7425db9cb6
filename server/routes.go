package server

import "strings"

// System routes registered by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/info":    true,
	"/metrics": true,
}

// formatHandlerName extracts a clean handler name from Gin's full handler path.
// Gin stores handlers like:
//
//	"github.com/kbukum/consul-service/api.(*Handler).Services-fm"
//
// which becomes "Handler.Services".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	// "(*Handler).Services" -> "Handler.Services"
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures such as "endpoint.Readiness.func1" keep their constructor name.
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix: "api.Handler.Root" -> "Handler.Root".
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 && parts[1] != "" && strings.ToLower(parts[0]) == parts[0] {
		name = parts[1]
	}

	return name
}

// methodOrder returns a sort key for HTTP methods (GET first, DELETE last).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
