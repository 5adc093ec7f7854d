// Package requesty parses the Requesty router /v1/models catalog.
package requesty

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nulzo/model-catalog-api/internal/catalog/parser"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

const Kind = "requesty"

func init() {
	parser.Register(Kind, New)
}

type catalog struct {
	Data *[]model `json:"data"`
}

type model struct {
	ID                string      `json:"id"`
	OwnedBy           string      `json:"owned_by"`
	Description       string      `json:"description"`
	InputPrice        json.Number `json:"input_price"`
	OutputPrice       json.Number `json:"output_price"`
	ContextWindow     int         `json:"context_window"`
	SupportsVision    bool        `json:"supports_vision"`
	SupportsWebSearch bool        `json:"supports_web_search"`
}

func New(d parser.Descriptor) (parser.ParseFunc, error) {
	prefix := d.Key
	if prefix == "" {
		prefix = Kind
	}

	return func(payload []byte) ([]api.ModelInfo, error) {
		var c catalog
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("requesty: invalid catalog payload: %w", err)
		}
		if c.Data == nil {
			return nil, errors.New("requesty: catalog payload has no data array")
		}

		models := make([]api.ModelInfo, 0, len(*c.Data))
		for _, m := range *c.Data {
			if m.ID == "" {
				continue
			}
			input, output := m.InputPrice.String(), m.OutputPrice.String()

			models = append(models, api.ModelInfo{
				ID:                prefix + "/" + m.ID,
				Name:              m.ID,
				Provider:          d.Name,
				Description:       m.Description,
				ContextLength:     m.ContextWindow,
				Vision:            m.SupportsVision,
				SupportsWebSearch: m.SupportsWebSearch,
				Premium:           parser.IsPremium(input, output),
				Status:            api.ModelAvailable,
				Pricing: api.Pricing{
					Prompt:     input,
					Completion: output,
				},
				APIVersion: m.ID,
			})
		}
		return models, nil
	}, nil
}
