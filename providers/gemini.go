package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// GeminiProvider implements the Provider interface for Google's Gemini API.
// Unlike the chat-completion providers it authenticates through a URL
// parameter and honors an explicit maximum-output-length option in its
// generation config.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a new Gemini provider instance.
func NewGeminiProvider(apiKey, model string) Provider {
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Endpoint() string {
	return fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		p.model, url.QueryEscape(p.apiKey),
	)
}

func (p *GeminiProvider) Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

func (p *GeminiProvider) PrepareRequest(prompt string, options map[string]any) ([]byte, error) {
	generationConfig := map[string]any{
		"maxOutputTokens": defaultMaxTokens,
	}
	if maxTokens, ok := options[OptionMaxTokens]; ok {
		generationConfig["maxOutputTokens"] = maxTokens
	}
	if temperature, ok := options[OptionTemperature]; ok {
		generationConfig["temperature"] = temperature
	}

	requestBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": generationConfig,
	}

	if system, ok := options[OptionSystemPrompt].(string); ok && system != "" {
		requestBody["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": system}},
		}
	}

	return json.Marshal(requestBody)
}

func (p *GeminiProvider) ParseResponse(body []byte) (string, error) {
	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 ||
		response.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("empty response from API")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
