package processors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipstream/core"
	"clipstream/media"
)

// fakeOps simulates the ffmpeg toolkit without running it.
type fakeOps struct {
	audioErr   error
	ocrFrames  int
	uniformErr error
}

func (f fakeOps) ExtractAudio(_ context.Context, _, audioPath string) error {
	if f.audioErr != nil {
		return f.audioErr
	}
	return os.WriteFile(audioPath, []byte("RIFF"), 0o644)
}

func (f fakeOps) SampleEvery(_ context.Context, _, dir string, intervalSec float64) ([]media.Frame, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	frames := make([]media.Frame, 0, f.ocrFrames)
	for i := 0; i < f.ocrFrames; i++ {
		p := filepath.Join(dir, "frame.jpg")
		if err := os.WriteFile(p, []byte{0xff}, 0o644); err != nil {
			return nil, err
		}
		frames = append(frames, media.Frame{Timestamp: float64(i) * intervalSec, Path: p})
	}
	return frames, nil
}

func (f fakeOps) SampleUniform(_ context.Context, _, dir string, n int, duration float64) ([]media.Frame, error) {
	if f.uniformErr != nil {
		return nil, f.uniformErr
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	frames := make([]media.Frame, 0, n)
	for i := 0; i < n; i++ {
		ts := 0.0
		if n > 1 {
			ts = duration * float64(i) / float64(n-1)
		}
		p := filepath.Join(dir, "frame.jpg")
		if err := os.WriteFile(p, []byte{0xff}, 0o644); err != nil {
			return nil, err
		}
		frames = append(frames, media.Frame{Timestamp: ts, Path: p})
	}
	return frames, nil
}

type fixedTranscriber struct {
	text string
	err  error
}

func (f fixedTranscriber) Transcribe(context.Context, string) (string, error) {
	return f.text, f.err
}

type fixedOCR struct{ text string }

func (f fixedOCR) Recognize(context.Context, string) (string, error) { return f.text, nil }

type fixedVisual struct {
	cls []core.Classification
	det []core.Detection
}

func (f fixedVisual) RecognizeFrame(context.Context, string) ([]core.Classification, []core.Detection, error) {
	return f.cls, f.det, nil
}

func TestExtractAudioFailureSentinel(t *testing.T) {
	e := NewClipExtractor(
		fakeOps{audioErr: errors.New("no audio stream"), ocrFrames: 1},
		fixedTranscriber{text: "never called"},
		fixedOCR{text: "on screen"},
		fixedVisual{},
	)
	got := e.Extract(context.Background(), "clip_001.mp4", t.TempDir(), 30)
	if got.SpeechText != core.SpeechExtractionFailed {
		t.Errorf("speech = %q, want sentinel", got.SpeechText)
	}
	// OCR must proceed despite the audio failure.
	if got.OCRText != "on screen" {
		t.Errorf("ocr = %q, want %q", got.OCRText, "on screen")
	}
}

func TestExtractNoSpeechIsEmpty(t *testing.T) {
	e := NewClipExtractor(
		fakeOps{ocrFrames: 1},
		fixedTranscriber{err: ErrNoSpeech},
		fixedOCR{},
		fixedVisual{},
	)
	got := e.Extract(context.Background(), "clip_001.mp4", t.TempDir(), 30)
	if got.SpeechText != "" {
		t.Errorf("speech = %q, want empty for silence", got.SpeechText)
	}
}

func TestExtractServiceFailureSentinel(t *testing.T) {
	e := NewClipExtractor(
		fakeOps{ocrFrames: 1},
		fixedTranscriber{err: errors.New("timeout")},
		fixedOCR{},
		fixedVisual{},
	)
	got := e.Extract(context.Background(), "clip_001.mp4", t.TempDir(), 30)
	if got.SpeechText != core.SpeechServiceUnavailable {
		t.Errorf("speech = %q, want service sentinel", got.SpeechText)
	}
}

func TestExtractClassificationAveraging(t *testing.T) {
	e := NewClipExtractor(
		fakeOps{},
		fixedTranscriber{text: "hello"},
		fixedOCR{},
		fixedVisual{cls: []core.Classification{{Label: "street", Confidence: 0.8}}},
	)
	e.VisualSamples = 10
	got := e.Extract(context.Background(), "clip_001.mp4", t.TempDir(), 30)
	if len(got.Visual.Classifications) != 1 {
		t.Fatalf("classifications = %v", got.Visual.Classifications)
	}
	c := got.Visual.Classifications[0]
	// 10 frames each contributing 0.8, divided by the sample count.
	if c.Label != "street" || c.Confidence < 0.79 || c.Confidence > 0.81 {
		t.Errorf("classification = %+v, want street/0.8", c)
	}
}

func TestExtractDetectionTimestamps(t *testing.T) {
	e := NewClipExtractor(
		fakeOps{},
		fixedTranscriber{text: "hello"},
		fixedOCR{},
		fixedVisual{det: []core.Detection{{Class: "car", Confidence: 0.9}}},
	)
	e.VisualSamples = 3
	got := e.Extract(context.Background(), "clip_001.mp4", t.TempDir(), 30)
	if len(got.Visual.Detections) != 3 {
		t.Fatalf("detections = %v", got.Visual.Detections)
	}
	want := []float64{0, 15, 30}
	for i, d := range got.Visual.Detections {
		if d.Timestamp != want[i] {
			t.Errorf("detection %d timestamp = %v, want %v", i, d.Timestamp, want[i])
		}
	}
}

func TestExtractCleansWorkFiles(t *testing.T) {
	dir := t.TempDir()
	e := NewClipExtractor(
		fakeOps{ocrFrames: 2},
		fixedTranscriber{text: "hello"},
		fixedOCR{text: "text"},
		fixedVisual{},
	)
	e.Extract(context.Background(), "clip_001.mp4", dir, 30)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("work dir not cleaned: %v", names)
	}
}
