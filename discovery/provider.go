package discovery

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/consul-service/logger"
)

// ProviderFactory creates a Registry from a Config.
// providerCfg holds provider-specific configuration (e.g., consul.Config).
// Providers should type-assert providerCfg to their own config type.
type ProviderFactory func(cfg Config, providerCfg any, log *logger.Logger) (Registry, error)

var (
	factoriesMu       sync.RWMutex
	providerFactories = make(map[string]ProviderFactory)
)

// RegisterProviderFactory registers a discovery backend factory for the given
// provider name. Implementation packages call this (typically in an init
// function) to make themselves available.
func RegisterProviderFactory(name string, f ProviderFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	providerFactories[name] = f
}

// Providers returns the names of the registered backends, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(providerFactories))
	for name := range providerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRegistry builds the Registry for cfg.Provider.
func NewRegistry(cfg Config, providerCfg any, log *logger.Logger) (Registry, error) {
	factoriesMu.RLock()
	f, ok := providerFactories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported discovery provider %q (not registered)", cfg.Provider)
	}

	reg, err := f(cfg, providerCfg, log)
	if err != nil {
		return nil, fmt.Errorf("discovery provider %s: %w", cfg.Provider, err)
	}
	return reg, nil
}
