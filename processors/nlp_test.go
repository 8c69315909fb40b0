package processors

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestEngineCacheInitializesOnce(t *testing.T) {
	var builds int32
	c := NewEngineCache()
	c.build = func(string) (NLPEngine, error) {
		atomic.AddInt32(&builds, 1)
		return fakeEngine{tagAll: "NN"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Engine("en"); err != nil {
				t.Errorf("Engine: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("engine built %d times, want 1", n)
	}
}

func TestEngineCachePerLanguage(t *testing.T) {
	var builds int32
	c := NewEngineCache()
	c.build = func(string) (NLPEngine, error) {
		atomic.AddInt32(&builds, 1)
		return fakeEngine{}, nil
	}

	for _, lang := range []string{"en", "fr", "en", "FR", " en "} {
		if _, err := c.Engine(lang); err != nil {
			t.Fatalf("Engine(%q): %v", lang, err)
		}
	}
	if n := atomic.LoadInt32(&builds); n != 2 {
		t.Errorf("engine built %d times, want 2 (en, fr)", n)
	}
}

func TestEngineCacheFailureSticks(t *testing.T) {
	var builds int32
	c := NewEngineCache()
	c.build = func(string) (NLPEngine, error) {
		atomic.AddInt32(&builds, 1)
		return nil, errors.New("model missing")
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Engine("de"); err == nil {
			t.Fatal("want error from failed init")
		}
	}
	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("failed init retried %d times, want 1 attempt", n)
	}
}

func TestDetectLanguageFallback(t *testing.T) {
	if got := DetectLanguage("", "en"); got != "en" {
		t.Errorf("empty text: got %q, want fallback", got)
	}
	if got := DetectLanguage("   ", "fr"); got != "fr" {
		t.Errorf("blank text: got %q, want fallback", got)
	}
}

func TestDetectLanguageEnglish(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the river bank."
	if got := DetectLanguage(text, "xx"); got != "en" {
		t.Errorf("got %q, want en", got)
	}
}

func TestHasContentWord(t *testing.T) {
	if !hasContentWord([]TokenTag{{Text: "runs", Tag: "VBZ"}}) {
		t.Error("verb not recognized")
	}
	if !hasContentWord([]TokenTag{{Text: "dog", Tag: "NN"}}) {
		t.Error("noun not recognized")
	}
	if hasContentWord([]TokenTag{{Text: "wow", Tag: "UH"}, {Text: "the", Tag: "DT"}}) {
		t.Error("interjections and determiners are not content words")
	}
}
