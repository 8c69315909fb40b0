package processors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"clipstream/config"
)

// Transcriber converts an extracted audio track to plain text.
//
// A "no speech detected" outcome is reported as ErrNoSpeech so the
// caller can distinguish it from a service failure; the extractor maps
// the former to empty text and the latter to a sentinel string.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

var (
	ErrNoSpeech               = errors.New("no speech detected")
	ErrTranscriberUnavailable = errors.New("transcription service unavailable")
)

// WhisperTranscriber calls the Whisper transcription API.
type WhisperTranscriber struct {
	cli     *openai.Client
	model   string
	timeout time.Duration
}

func NewWhisperTranscriber(cfg *config.Config) *WhisperTranscriber {
	return &WhisperTranscriber{
		cli:     newOpenAIClient(cfg),
		model:   cfg.TranscribeModel,
		timeout: cfg.CollaboratorTimeout(),
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriberUnavailable, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// MockTranscriber produces a placeholder transcript from the file name.
// Used when no API is configured.
type MockTranscriber struct{}

func (MockTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	fi, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriberUnavailable, err)
	}
	if fi.Size() == 0 {
		return "", ErrNoSpeech
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return fmt.Sprintf("Placeholder transcript for %s", base), nil
}

// PickTranscriber selects the transcription provider. ASR=mock forces
// the mock; otherwise the API provider is used when configured.
func PickTranscriber(cfg *config.Config) Transcriber {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ASR"))) {
	case "mock":
		return MockTranscriber{}
	case "whisper":
		if cfg.HasValidAPI() {
			return NewWhisperTranscriber(cfg)
		}
		log.Println("Warning: API configuration not found for Whisper ASR, using mock transcriber")
		return MockTranscriber{}
	}
	if cfg.HasValidAPI() {
		return NewWhisperTranscriber(cfg)
	}
	return MockTranscriber{}
}
