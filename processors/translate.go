package processors

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"clipstream/config"
)

// Translator renders text into a target language identified by an ISO
// code. Implementations must be safe for concurrent use.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// LLMTranslator translates through a chat completion.
type LLMTranslator struct {
	cli     *openai.Client
	model   string
	timeout time.Duration
}

func NewLLMTranslator(cfg *config.Config) *LLMTranslator {
	return &LLMTranslator{
		cli:     newOpenAIClient(cfg),
		model:   cfg.ChatModel,
		timeout: cfg.CollaboratorTimeout(),
	}
}

func (t *LLMTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Translate the following text into the language with ISO code %q. Return only the translation, no commentary.\n\n%s", targetLanguage, text)
	resp, err := t.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// MockTranslator passes text through unchanged.
type MockTranslator struct{}

func (MockTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// PickTranslator selects the translation provider the same way the ASR
// provider is picked.
func PickTranslator(cfg *config.Config) Translator {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TRANSLATOR")), "mock") {
		return MockTranslator{}
	}
	if cfg.HasValidAPI() {
		return NewLLMTranslator(cfg)
	}
	log.Println("Warning: API configuration not found, using mock translator")
	return MockTranslator{}
}
