package api

// ModelStatus is the availability of a model as reported by its provider.
type ModelStatus string

const (
	ModelAvailable   ModelStatus = "available"
	ModelUnavailable ModelStatus = "unavailable"
)

// Capability names a boolean model feature that callers can check for.
type Capability string

const (
	CapabilityVision    Capability = "vision"
	CapabilityWebSearch Capability = "webSearch"
	CapabilityPremium   Capability = "premium"
)

// ModelInfo describes a single model in the aggregated catalog.
// Values are produced by a provider's parse function only.
type ModelInfo struct {
	ID                string      `json:"id" jsonschema:"description=Provider-prefixed model identifier (e.g. openrouter/openai/gpt-4o)"`
	Name              string      `json:"name"`
	Provider          string      `json:"provider" jsonschema:"description=Display name of the provider that reported the model"`
	Description       string      `json:"description,omitempty"`
	ContextLength     int         `json:"context_length,omitempty"`
	Vision            bool        `json:"vision"`
	SupportsWebSearch bool        `json:"supports_web_search"`
	Premium           bool        `json:"premium"`
	Status            ModelStatus `json:"status" jsonschema:"enum=available,enum=unavailable"`
	Pricing           Pricing     `json:"pricing"`
	APIVersion        string      `json:"api_version,omitempty" jsonschema:"description=Raw upstream model id used for outbound calls"`
}

// Pricing holds upstream price strings (USD per token / request / image) as reported.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Request    string `json:"request,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Has reports whether the model advertises the given capability.
// Unknown capabilities are never supported.
func (m ModelInfo) Has(c Capability) bool {
	switch c {
	case CapabilityVision:
		return m.Vision
	case CapabilityWebSearch:
		return m.SupportsWebSearch
	case CapabilityPremium:
		return m.Premium
	default:
		return false
	}
}
