package processors

import (
	"strings"
	"testing"

	"clipstream/core"
)

// stubRanker returns canned phrases and sentences.
type stubRanker struct {
	phrases   []string
	sentences []string
}

func (r stubRanker) Phrases(_ string, limit int) []string {
	if limit < len(r.phrases) {
		return r.phrases[:limit]
	}
	return r.phrases
}

func (r stubRanker) Sentences(string, float64) []string { return r.sentences }

func TestNameShortText(t *testing.T) {
	n := ClipNamer{Ranker: stubRanker{}}
	for _, text := range []string{"", "hi", "...!!!", "ab cd"} {
		if got := n.Name(text, core.VisualRecognition{}); got != core.ShortClipName {
			t.Errorf("Name(%q) = %q, want %q", text, got, core.ShortClipName)
		}
	}
}

func TestNameShortTextIgnoresVisualLabels(t *testing.T) {
	n := ClipNamer{Ranker: stubRanker{}}
	visual := core.VisualRecognition{
		Classifications: []core.Classification{{Label: "street scene", Confidence: 0.8}},
		Detections:      []core.Detection{{Class: "car", Confidence: 0.9}},
	}
	// The sentinel wins over visual labels when the text is too short.
	for _, text := range []string{"", "hmm", "..."} {
		if got := n.Name(text, visual); got != core.ShortClipName {
			t.Errorf("Name(%q) = %q, want %q", text, got, core.ShortClipName)
		}
	}
}

func TestNameFromKeyphrases(t *testing.T) {
	n := ClipNamer{Ranker: stubRanker{phrases: []string{"weather forecast", "heavy rain"}}}
	got := n.Name("the weather forecast predicts heavy rain tomorrow", core.VisualRecognition{})
	want := "weather_forecast_heavy_rain"
	if got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
}

func TestNameDeterministic(t *testing.T) {
	n := ClipNamer{Ranker: stubRanker{phrases: []string{"city traffic"}}}
	text := "city traffic was unusually light this morning"
	first := n.Name(text, core.VisualRecognition{})
	for i := 0; i < 5; i++ {
		if got := n.Name(text, core.VisualRecognition{}); got != first {
			t.Fatalf("name changed between calls: %q vs %q", first, got)
		}
	}
}

func TestNameFallsBackToFirstWords(t *testing.T) {
	n := ClipNamer{Ranker: stubRanker{}}
	got := n.Name("quick brown fox jumps over", core.VisualRecognition{})
	if got != "quick_brown_fox" {
		t.Errorf("Name = %q, want quick_brown_fox", got)
	}
}

func TestVisualWordsPicksStrongestLabels(t *testing.T) {
	visual := core.VisualRecognition{
		Classifications: []core.Classification{
			{Label: "street scene", Confidence: 0.8},
			{Label: "daytime", Confidence: 0.6},
			{Label: "blurry", Confidence: 0.1},
		},
		Detections: []core.Detection{
			{Class: "car", Confidence: 0.9},
			{Class: "person", Confidence: 0.7},
			{Class: "dog", Confidence: 0.2},
		},
	}
	got := finishName(visualWords(visual))
	want := "car_person_street_scene_daytime"
	if got != want {
		t.Errorf("visual name = %q, want %q", got, want)
	}
}

func TestNameLengthCap(t *testing.T) {
	long := strings.Repeat("verylongphrase ", 10)
	n := ClipNamer{Ranker: stubRanker{phrases: []string{long, long, long}}}
	got := n.Name(long+long, core.VisualRecognition{})
	if len(got) > 50 {
		t.Errorf("name length %d exceeds cap: %q", len(got), got)
	}
}
