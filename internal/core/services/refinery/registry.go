package refinery

import (
	"sort"
	"sync"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// RefineryFactory creates a refinery instance. Construction can fail, e.g. when a stopword
// corpus is unavailable.
type RefineryFactory func(config map[string]interface{}) (BaseRefinery, error)

// Registry manages all available refinery implementations
type Registry struct {
	mu         sync.RWMutex
	refineries map[string]RefineryFactory
	aliases    map[string]string
}

var globalRegistry = &Registry{
	refineries: make(map[string]RefineryFactory),
	aliases:    make(map[string]string),
}

// Register adds a refinery to the registry with optional aliases
func Register(version string, factory RefineryFactory, aliases ...string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.refineries[version] = factory
	for _, alias := range aliases {
		globalRegistry.aliases[alias] = version
	}
}

// Get retrieves a refinery factory by version or alias
func Get(identifier string) (RefineryFactory, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	version := identifier
	if v, exists := globalRegistry.aliases[identifier]; exists {
		version = v
	}

	factory, exists := globalRegistry.refineries[version]
	if !exists {
		return nil, apperrors.RefineryNotFound(identifier, globalRegistry.versions())
	}

	return factory, nil
}

// Create creates a new refinery instance
func Create(identifier string, config map[string]interface{}) (BaseRefinery, error) {
	factory, err := Get(identifier)
	if err != nil {
		return nil, err
	}

	return factory(config)
}

// ListAvailable returns the registered versions, sorted
func ListAvailable() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	return globalRegistry.versions()
}

// ListAvailableWithMetadata returns detailed information about all refineries. Versions whose
// default construction fails are reported with an "error" entry.
func ListAvailableWithMetadata() map[string]map[string]interface{} {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	result := make(map[string]map[string]interface{})

	for version, factory := range globalRegistry.refineries {
		var versionAliases []string
		for alias, v := range globalRegistry.aliases {
			if v == version {
				versionAliases = append(versionAliases, alias)
			}
		}
		sort.Strings(versionAliases)

		instance, err := factory(nil)
		if err != nil {
			result[version] = map[string]interface{}{
				"aliases": versionAliases,
				"error":   err.Error(),
			}
			continue
		}

		result[version] = map[string]interface{}{
			"name":        instance.GetName(),
			"description": instance.GetDescription(),
			"aliases":     versionAliases,
			"steps":       instance.GetPipelineSteps(),
		}
	}

	return result
}

// versions must be called with mu held.
func (r *Registry) versions() []string {
	versions := make([]string, 0, len(r.refineries))
	for version := range r.refineries {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}

func init() {
	Register("v1", func(config map[string]interface{}) (BaseRefinery, error) {
		r, err := NewRefineryV1English(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	}, "english", "v1-english", "summarization", "inshorts")
}
