// Package openaicompat parses OpenAI-compatible GET /v1/models listings
// (OpenAI, Groq, xAI and similar).
package openaicompat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nulzo/model-catalog-api/internal/catalog/parser"
	"github.com/nulzo/model-catalog-api/pkg/api"
	openai "github.com/sashabaranov/go-openai"
)

const Kind = "openaicompat"

func init() {
	parser.Register(Kind, New)
}

// visionMarkers are id fragments of model families that accept image input.
var visionMarkers = []string{"vision", "4o", "gpt-4.1", "gpt-5", "llava"}

func New(d parser.Descriptor) (parser.ParseFunc, error) {
	if d.Key == "" {
		return nil, errors.New("openaicompat: provider key is required for id namespacing")
	}

	return func(payload []byte) ([]api.ModelInfo, error) {
		var list openai.ModelsList
		if err := json.Unmarshal(payload, &list); err != nil {
			return nil, fmt.Errorf("%s: invalid models payload: %w", d.Key, err)
		}
		if list.Models == nil {
			return nil, fmt.Errorf("%s: models payload has no data array", d.Key)
		}

		models := make([]api.ModelInfo, 0, len(list.Models))
		for _, m := range list.Models {
			if m.ID == "" {
				continue
			}
			models = append(models, api.ModelInfo{
				ID:         d.Key + "/" + m.ID,
				Name:       m.ID,
				Provider:   d.Name,
				Vision:     hasVisionMarker(m.ID),
				Status:     api.ModelAvailable,
				APIVersion: m.ID,
			})
		}
		return models, nil
	}, nil
}

func hasVisionMarker(id string) bool {
	id = strings.ToLower(id)
	for _, marker := range visionMarkers {
		if strings.Contains(id, marker) {
			return true
		}
	}
	return false
}
