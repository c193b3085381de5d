// Package providers implements the text-generation provider interfaces and
// their concrete implementations. It supports Anthropic, OpenAI, DeepSeek,
// and Google Gemini, providing a unified request/response contract so the
// pipeline treats providers as interchangeable.
package providers

// Provider defines the interface every text-generation backend implements.
// A provider only prepares request bodies and parses response bodies; the
// HTTP call itself lives in the llm package.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	PrepareRequest(prompt string, options map[string]any) ([]byte, error)
	ParseResponse(body []byte) (string, error)
}

// Option keys recognized in the options map passed to PrepareRequest.
// Providers ignore keys they do not support.
const (
	// OptionSystemPrompt carries a role/system instruction (string).
	OptionSystemPrompt = "system_prompt"

	// OptionMaxTokens carries the maximum-output-length ceiling (int).
	OptionMaxTokens = "max_tokens"

	// OptionTemperature carries the sampling temperature (float64).
	OptionTemperature = "temperature"
)

// Constructor defines a function type for creating new provider instances.
type Constructor func(apiKey, model string) Provider
