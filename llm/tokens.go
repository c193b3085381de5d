package llm

import (
	"github.com/pkoukk/tiktoken-go"
)

// tokensPerWord is a deliberately generous upper bound so a word ceiling
// converted to a token ceiling never truncates mid-draft. English prose
// averages roughly 1.3 tokens per word.
const tokensPerWord = 2

// responseOverheadTokens leaves room for the JSON wrapper and the short
// explainer that accompany the main content of a structured response.
const responseOverheadTokens = 256

// TokenEstimator counts tokens with the encoding of a reference model.
// It is advisory only: counts feed debug logs and the output-length
// ceiling for providers that accept one.
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenEstimator creates an estimator using the encoding for the given
// model, falling back to the gpt-4o encoding for models tiktoken does not
// know about.
func NewTokenEstimator(model string) (*TokenEstimator, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return nil, NewError(ErrorTypeRequest, "failed to load token encoding", err)
		}
	}
	return &TokenEstimator{encoding: encoding}, nil
}

// Count returns the token count of text.
func (e *TokenEstimator) Count(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}

// OutputTokenBudget converts a word ceiling into a token ceiling suitable
// for a provider's maximum-output-length option.
func OutputTokenBudget(wordLimit int) int {
	return wordLimit*tokensPerWord + responseOverheadTokens
}
