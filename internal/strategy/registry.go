package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/schema"
)

// Factory builds a strategy from a loosely typed parameter map.
type Factory func(params map[string]any) (Strategy, error)

// StrategyRegistry manages all available strategy families.
type StrategyRegistry interface {
	// RegisterStrategy adds a family. params is a zero value of its parameter
	// struct and is used to describe the parameters as a JSON schema.
	RegisterStrategy(name string, factory Factory, params any) error
	// NewStrategy builds a strategy of the named family.
	NewStrategy(name string, params map[string]any) (Strategy, error)
	// ListStrategies returns the registered names in sorted order.
	ListStrategies() []string
	// ParameterSchema returns the JSON schema of the named family's parameters.
	ParameterSchema(name string) (string, error)
	RemoveStrategy(name string) error
}

type registryEntry struct {
	factory Factory
	params  any
}

// StrategyRegistryV1 is a StrategyRegistry safe for concurrent use.
type StrategyRegistryV1 struct {
	strategies map[string]registryEntry
	mu         sync.RWMutex
}

// NewStrategyRegistry creates an empty strategy registry.
func NewStrategyRegistry() StrategyRegistry {
	return &StrategyRegistryV1{
		strategies: make(map[string]registryEntry),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding the crossover and mean reversion strategies.
func NewDefaultRegistry() StrategyRegistry {
	r := NewStrategyRegistry()

	// names are distinct, registration cannot fail
	_ = r.RegisterStrategy(CrossoverName, newCrossoverFromMap, CrossoverParams{})
	_ = r.RegisterStrategy(MeanReversionName, newMeanReversionFromMap, MeanReversionParams{})

	return r
}

// RegisterStrategy adds a strategy family to the registry.
func (r *StrategyRegistryV1) RegisterStrategy(name string, factory Factory, params any) error {
	if name == "" || factory == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "RegisterStrategy: name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "RegisterStrategy: strategy with name %s already registered", name)
	}

	r.strategies[name] = registryEntry{factory: factory, params: params}

	return nil
}

// NewStrategy builds a strategy by name.
func (r *StrategyRegistryV1) NewStrategy(name string, params map[string]any) (Strategy, error) {
	entry, err := r.get(name)
	if err != nil {
		return nil, err
	}

	return entry.factory(params)
}

// ListStrategies returns the sorted list of registered names.
func (r *StrategyRegistryV1) ListStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ParameterSchema returns the JSON schema of a family's parameters.
func (r *StrategyRegistryV1) ParameterSchema(name string) (string, error) {
	entry, err := r.get(name)
	if err != nil {
		return "", err
	}

	if entry.params == nil {
		return "", errors.Newf(errors.ErrCodeStrategyConfigError, "ParameterSchema: strategy %s has no parameter description", name)
	}

	return schema.ToJSONSchema(entry.params)
}

// RemoveStrategy removes a strategy family from the registry.
func (r *StrategyRegistryV1) RemoveStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; !exists {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "RemoveStrategy: strategy with name %s not found", name)
	}

	delete(r.strategies, name)

	return nil
}

func (r *StrategyRegistryV1) get(name string) (registryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.strategies[name]
	if !exists {
		return registryEntry{}, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy with name %s not found", name)
	}

	return entry, nil
}
