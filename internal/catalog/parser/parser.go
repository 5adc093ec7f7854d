// Package parser holds the table of catalog payload parsers keyed by provider type.
// Parser implementations register themselves from init().
package parser

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nulzo/model-catalog-api/pkg/api"
)

// ParseFunc maps a raw catalog payload to models. It must be pure.
type ParseFunc func(payload []byte) ([]api.ModelInfo, error)

// Descriptor is what a parser may know about the provider it parses for.
type Descriptor struct {
	Key  string
	Name string
}

type Factory func(d Descriptor) (ParseFunc, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("catalog parser %s already registered", kind))
	}
	factories[kind] = f
}

func Get(kind string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("catalog parser not found for type: %s", kind)
	}
	return f, nil
}

// Kinds lists the registered provider types in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
