// Package provider describes the remote transcription backends: where they
// live, which models they accept and what their credentials look like.
package provider

import (
	"fmt"
	"sort"
)

// Provider defines a speech-to-text service reachable over HTTP.
type Provider interface {
	Name() string
	CheckAPIKey(key string) error
	DefaultModel() string
	Models() []Model
	Endpoint() EndpointConfig
}

// ValidateAPIKey reports whether key has an acceptable shape for p.
func ValidateAPIKey(p Provider, key string) bool {
	return p.CheckAPIKey(key) == nil
}

var registry = make(map[string]Provider)

func init() {
	Register(&GroqProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// Default is the provider used when the configuration names none.
func Default() Provider {
	return registry[ProviderGroq]
}

// ListProviders returns all registered provider names, sorted.
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindModel looks up a model by ID.
func FindModel(p Provider, id string) (Model, bool) {
	for _, m := range p.Models() {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// CheckModel returns an error naming the accepted models when id is unknown.
func CheckModel(p Provider, id string) error {
	if _, ok := FindModel(p, id); ok {
		return nil
	}
	return fmt.Errorf("unknown model %q (available: %v)", id, ModelIDs(p))
}

// ModelIDs lists model IDs in catalog order.
func ModelIDs(p Provider) []string {
	models := p.Models()
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}
