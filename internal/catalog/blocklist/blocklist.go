// Package blocklist loads the list of model ids known to have broken endpoints.
package blocklist

import (
	"fmt"
	"os"
	"time"

	"github.com/nulzo/model-catalog-api/pkg/api"
	"gopkg.in/yaml.v3"
)

// Entry records why a model was blocked.
type Entry struct {
	Reason    string    `yaml:"reason"`
	Provider  string    `yaml:"provider"`
	BlockedAt time.Time `yaml:"blocked_at"`
}

type file struct {
	Description string           `yaml:"description"`
	Models      map[string]Entry `yaml:"models"`
}

// List is an immutable set of blocked model ids. The zero value blocks nothing.
type List struct {
	models map[string]Entry
}

func New(entries map[string]Entry) *List {
	models := make(map[string]Entry, len(entries))
	for id, e := range entries {
		models[id] = e
	}
	return &List{models: models}
}

// Load reads a blocklist file. An empty path yields an empty list.
func Load(path string) (*List, error) {
	if path == "" {
		return New(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocklist %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*List, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid blocklist: %w", err)
	}
	return New(f.Models), nil
}

func (l *List) Contains(id string) bool {
	if l == nil {
		return false
	}
	_, ok := l.models[id]
	return ok
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.models)
}

// Filter returns the models that are not blocked, preserving order.
func (l *List) Filter(models []api.ModelInfo) []api.ModelInfo {
	if l.Len() == 0 {
		return models
	}
	kept := make([]api.ModelInfo, 0, len(models))
	for _, m := range models {
		if !l.Contains(m.ID) {
			kept = append(kept, m)
		}
	}
	return kept
}
