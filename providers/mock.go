package providers

import (
	"encoding/json"
	"errors"
	"sync"
)

// MockProvider implements the Provider interface for testing purposes.
// It ignores response bodies and serves a scripted queue of responses.
type MockProvider struct {
	mu        sync.Mutex
	endpoint  string
	model     string
	responses []string
	index     int
	err       error
}

// NewMockProvider creates a new mock provider instance for testing.
func NewMockProvider(endpoint, model string) *MockProvider {
	return &MockProvider{
		endpoint: endpoint,
		model:    model,
	}
}

// SetResponses configures the queue of responses returned in sequence.
func (p *MockProvider) SetResponses(responses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = responses
	p.index = 0
}

// SetError makes every subsequent call fail with err.
func (p *MockProvider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *MockProvider) Name() string     { return "mock" }
func (p *MockProvider) Endpoint() string { return p.endpoint }

func (p *MockProvider) Headers() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func (p *MockProvider) PrepareRequest(prompt string, options map[string]any) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}

	requestBody := map[string]any{
		"model":  p.model,
		"prompt": prompt,
	}
	for k, v := range options {
		requestBody[k] = v
	}
	return json.Marshal(requestBody)
}

func (p *MockProvider) ParseResponse(body []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	if p.index >= len(p.responses) {
		return "", errors.New("mock responses exhausted")
	}
	response := p.responses[p.index]
	p.index++
	return response, nil
}
