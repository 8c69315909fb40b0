// Package processors contains the clip processing pipeline: extraction,
// summarization, naming, running-summary aggregation and the streaming
// orchestrator, plus the collaborator providers they call out to.
package processors

import (
	openai "github.com/sashabaranov/go-openai"

	"clipstream/config"
)

// newOpenAIClient builds a client from the process configuration,
// honoring a custom base URL for OpenAI-compatible endpoints.
func newOpenAIClient(cfg *config.Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}
