package config

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFresh(t *testing.T) *Config {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestDefaults(t *testing.T) {
	chdirTemp(t)
	cfg := loadFresh(t)

	if cfg.DefaultClipDuration != 30 {
		t.Errorf("clip duration = %v, want 30", cfg.DefaultClipDuration)
	}
	if cfg.DefaultTargetLanguage != "en" {
		t.Errorf("target language = %q, want en", cfg.DefaultTargetLanguage)
	}
	if cfg.DetectionConfidence != 0.5 || cfg.ClassificationConfidence != 0.3 {
		t.Errorf("confidence thresholds = %v/%v", cfg.DetectionConfidence, cfg.ClassificationConfidence)
	}
	if cfg.SegmentWorkers < 1 {
		t.Errorf("segment workers = %d", cfg.SegmentWorkers)
	}
	if cfg.HasValidAPI() {
		t.Error("no API key configured, HasValidAPI must be false")
	}
}

func TestConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	data := `{"default_clip_duration": 45, "chat_model": "gpt-4o"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := loadFresh(t)

	if cfg.DefaultClipDuration != 45 {
		t.Errorf("clip duration = %v, want 45 from config.json", cfg.DefaultClipDuration)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Errorf("chat model = %q, want gpt-4o", cfg.ChatModel)
	}
	// Untouched values keep their defaults.
	if cfg.TranscribeModel != "whisper-1" {
		t.Errorf("transcribe model = %q", cfg.TranscribeModel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	data := `{"default_clip_duration": 45, "default_target_language": "de"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLIP_DURATION", "15")
	t.Setenv("TARGET_LANGUAGE", "fr")
	cfg := loadFresh(t)

	if cfg.DefaultClipDuration != 15 {
		t.Errorf("clip duration = %v, want env override 15", cfg.DefaultClipDuration)
	}
	if cfg.DefaultTargetLanguage != "fr" {
		t.Errorf("target language = %q, want env override fr", cfg.DefaultTargetLanguage)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CLIP_DURATION", "-5")
	Reset()
	t.Cleanup(Reset)
	if _, err := Load(); err == nil {
		t.Error("want validation error for negative clip duration")
	}
}

func TestLoadIsCached(t *testing.T) {
	chdirTemp(t)
	first := loadFresh(t)
	second, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("Load must return the cached instance")
	}
}

func TestAllowedExtensions(t *testing.T) {
	for _, ext := range []string{".mp4", ".avi", ".mov", ".mkv", ".webm"} {
		if !AllowedExtensions[ext] {
			t.Errorf("%s should be allowed", ext)
		}
	}
	for _, ext := range []string{".exe", ".txt", ".mp3", ""} {
		if AllowedExtensions[ext] {
			t.Errorf("%s should not be allowed", ext)
		}
	}
}
