package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CategoryInfo contains display information about a lookup category.
type CategoryInfo struct {
	Key     string // Wire key: "tipos", "fornecedores", ...
	Label   string // Display name: "Tipo"
	Order   int    // Position inside the bundled response
	Bundled bool   // Served by the bundled options endpoint
}

// ListFunc returns the options of one category, in display order.
type ListFunc func(ctx context.Context, db DBTX) ([]Option, error)

// ExistsFunc reports whether id exists in the category.
type ExistsFunc func(ctx context.Context, db DBTX, id int32) (bool, error)

// CategoryDefinition contains everything needed to serve a category.
type CategoryDefinition struct {
	Info   CategoryInfo
	List   ListFunc
	Exists ExistsFunc
}

var (
	registry   = make(map[string]CategoryDefinition)
	registryMu sync.RWMutex
)

// Register adds a category definition to the registry.
// Panics if a category with the same key is already registered.
func Register(def CategoryDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Info.Key == "" || def.List == nil {
		panic("category definition requires a key and a list function")
	}
	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("category already registered: %s", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// Get returns a category definition by key.
func Get(key string) (CategoryDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns every registered category sorted by Order, then key.
func All() []CategoryDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]CategoryDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Order != result[j].Info.Order {
			return result[i].Info.Order < result[j].Info.Order
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Bundled returns the categories served together by the bundled endpoint.
func Bundled() []CategoryDefinition {
	var result []CategoryDefinition
	for _, def := range All() {
		if def.Info.Bundled {
			result = append(result, def)
		}
	}
	return result
}

// CategoryCount returns the number of registered categories.
func CategoryCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered categories.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]CategoryDefinition)
}
