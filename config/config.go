package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config is the process-wide configuration. Values come from
// config.json with environment variables taking precedence, so a bare
// environment is enough to run with mock collaborators.
type Config struct {
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url"`
	ChatModel       string `json:"chat_model"`
	TranscribeModel string `json:"transcribe_model"`
	PostgresURL     string `json:"postgres_url"`

	UploadFolder       string `json:"upload_folder"`
	OutputFolder       string `json:"output_folder"`
	SavedResultsFolder string `json:"saved_results_folder"`

	DefaultClipDuration   float64 `json:"default_clip_duration"`
	DefaultTargetLanguage string  `json:"default_target_language"`

	DetectionConfidence      float64 `json:"detection_confidence"`
	ClassificationConfidence float64 `json:"classification_confidence"`

	SegmentWorkers         int `json:"segment_workers"`
	CollaboratorTimeoutSec int `json:"collaborator_timeout_sec"`
}

// AllowedExtensions lists the upload formats the splitter understands.
var AllowedExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".webm": true,
}

var (
	mu     sync.Mutex
	global *Config
)

// Load returns the cached process configuration, reading config.json
// and the environment on first use.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return global, nil
	}

	cfg := defaults()
	if data, err := os.ReadFile("config.json"); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config.json: %w", err)
		}
	}
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	global = cfg
	return global, nil
}

// Reset clears the cached configuration. Test helper.
func Reset() {
	mu.Lock()
	global = nil
	mu.Unlock()
}

func defaults() *Config {
	wd, _ := os.Getwd()
	return &Config{
		ChatModel:                "gpt-4o-mini",
		TranscribeModel:          "whisper-1",
		UploadFolder:             filepath.Join(wd, "uploads"),
		OutputFolder:             filepath.Join(wd, "output"),
		SavedResultsFolder:       filepath.Join(wd, "saved_results"),
		DefaultClipDuration:      30,
		DefaultTargetLanguage:    "en",
		DetectionConfidence:      0.5,
		ClassificationConfidence: 0.3,
		SegmentWorkers:           4,
		CollaboratorTimeoutSec:   120,
	}
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("API_KEY", &cfg.APIKey)
	set("BASE_URL", &cfg.BaseURL)
	set("CHAT_MODEL", &cfg.ChatModel)
	set("TRANSCRIBE_MODEL", &cfg.TranscribeModel)
	set("POSTGRES_URL", &cfg.PostgresURL)
	set("UPLOAD_FOLDER", &cfg.UploadFolder)
	set("OUTPUT_FOLDER", &cfg.OutputFolder)
	set("SAVED_RESULTS_FOLDER", &cfg.SavedResultsFolder)
	set("TARGET_LANGUAGE", &cfg.DefaultTargetLanguage)

	if v := os.Getenv("CLIP_DURATION"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultClipDuration = d
		}
	}
	if v := os.Getenv("SEGMENT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SegmentWorkers = n
		}
	}
	if v := os.Getenv("COLLABORATOR_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CollaboratorTimeoutSec = n
		}
	}
}

func (c *Config) validate() error {
	var problems []string
	if c.DefaultClipDuration <= 0 {
		problems = append(problems, "default_clip_duration must be positive")
	}
	if c.SegmentWorkers < 1 {
		problems = append(problems, "segment_workers must be at least 1")
	}
	if c.CollaboratorTimeoutSec < 1 {
		problems = append(problems, "collaborator_timeout_sec must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HasValidAPI reports whether API-backed collaborators can be used.
func (c *Config) HasValidAPI() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// CollaboratorTimeout is the bound applied to blocking collaborator
// calls (transcription, translation, NLP).
func (c *Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutSec) * time.Second
}

// EnsureFolders creates the working directories if missing.
func (c *Config) EnsureFolders() error {
	for _, dir := range []string{c.UploadFolder, c.OutputFolder, c.SavedResultsFolder} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
