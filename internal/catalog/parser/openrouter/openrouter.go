// Package openrouter parses the OpenRouter /api/v1/models catalog.
package openrouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nulzo/model-catalog-api/internal/catalog/parser"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

const Kind = "openrouter"

func init() {
	parser.Register(Kind, New)
}

type catalog struct {
	Data *[]model `json:"data"`
}

type model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContextLength int    `json:"context_length"`
	Pricing       struct {
		Prompt     string `json:"prompt"`
		Completion string `json:"completion"`
		Request    string `json:"request"`
		Image      string `json:"image"`
		WebSearch  string `json:"web_search"`
	} `json:"pricing"`
	Architecture struct {
		Modality        string   `json:"modality"`
		InputModalities []string `json:"input_modalities"`
	} `json:"architecture"`
	SupportedParameters []string `json:"supported_parameters"`
}

// New returns the parse function for an OpenRouter-shaped catalog.
func New(d parser.Descriptor) (parser.ParseFunc, error) {
	prefix := d.Key
	if prefix == "" {
		prefix = Kind
	}

	return func(payload []byte) ([]api.ModelInfo, error) {
		var c catalog
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("openrouter: invalid catalog payload: %w", err)
		}
		if c.Data == nil {
			return nil, errors.New("openrouter: catalog payload has no data array")
		}

		models := make([]api.ModelInfo, 0, len(*c.Data))
		for _, m := range *c.Data {
			if m.ID == "" {
				continue
			}
			name := m.Name
			if name == "" {
				name = m.ID
			}

			models = append(models, api.ModelInfo{
				ID:                prefix + "/" + m.ID,
				Name:              name,
				Provider:          d.Name,
				Description:       m.Description,
				ContextLength:     m.ContextLength,
				Vision:            hasImageInput(m),
				SupportsWebSearch: slices.Contains(m.SupportedParameters, "web_search_options") || parser.IsPositive(m.Pricing.WebSearch),
				Premium:           parser.IsPremium(m.Pricing.Prompt, m.Pricing.Completion),
				Status:            api.ModelAvailable,
				Pricing: api.Pricing{
					Prompt:     m.Pricing.Prompt,
					Completion: m.Pricing.Completion,
					Request:    m.Pricing.Request,
					Image:      m.Pricing.Image,
				},
				APIVersion: m.ID,
			})
		}
		return models, nil
	}, nil
}

func hasImageInput(m model) bool {
	if slices.Contains(m.Architecture.InputModalities, "image") {
		return true
	}
	// older payloads only carry "text+image->text"
	input, _, _ := strings.Cut(m.Architecture.Modality, "->")
	return strings.Contains(input, "image")
}
