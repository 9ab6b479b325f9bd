package deepseek

import (
	"liftlab/pkg/config"
	"liftlab/pkg/llm/openai"
	"liftlab/pkg/request"
)

const (
	// Root URL only. The openai client appends /chat/completions itself.
	deepseekBaseURL = "https://api.deepseek.com"
)

// NewClient creates a new DeepSeek client using the generic OpenAI provider.
func NewClient(cfg config.ProviderConfig, rc *request.Client) (*openai.Client, error) {
	return openai.NewClient(cfg, deepseekBaseURL, rc)
}
