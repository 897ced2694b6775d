package core

// Provider names understood by the LLM router.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ModelInfo describes a foundation model the user may pick.
type ModelInfo struct {
	Key         string `json:"-" yaml:"key"`
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Provider    string `json:"-" yaml:"provider"`

	// Prices are USD per one million tokens. Zero means "use the fallback table".
	InputPricePerM  float64 `json:"-" yaml:"input_price_per_m"`
	OutputPricePerM float64 `json:"-" yaml:"output_price_per_m"`
}

// Usage is the token accounting returned by an LLM call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
