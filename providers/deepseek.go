package providers

// DeepSeekProvider implements the Provider interface for DeepSeek's API.
// It embeds OpenAIProvider since DeepSeek exposes an OpenAI-compatible API;
// only the name and endpoint differ.
type DeepSeekProvider struct {
	OpenAIProvider
}

// NewDeepSeekProvider creates a new DeepSeek provider instance.
func NewDeepSeekProvider(apiKey, model string) Provider {
	return &DeepSeekProvider{
		OpenAIProvider: OpenAIProvider{
			apiKey: apiKey,
			model:  model,
		},
	}
}

func (p *DeepSeekProvider) Name() string {
	return "deepseek"
}

func (p *DeepSeekProvider) Endpoint() string {
	return "https://api.deepseek.com/chat/completions"
}
