package processors

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clipstream/core"
	"clipstream/media"
)

// Extraction is the raw per-clip evidence before summarization.
type Extraction struct {
	SpeechText string
	OCRText    string
	Visual     core.VisualRecognition
}

// ClipExtractor pulls speech, on-screen text and visual labels out of
// one clip file. Each modality degrades independently: an audio failure
// never blocks OCR, and vice versa.
type ClipExtractor struct {
	Media  media.Ops
	Speech Transcriber
	OCR    TextRecognizer
	Visual VisualRecognizer

	// OCRIntervalSec spaces the OCR frame samples; VisualSamples is the
	// number of uniformly spread frames fed to the recognizer.
	OCRIntervalSec float64
	VisualSamples  int
}

func NewClipExtractor(ops media.Ops, speech Transcriber, ocr TextRecognizer, visual VisualRecognizer) *ClipExtractor {
	return &ClipExtractor{
		Media:          ops,
		Speech:         speech,
		OCR:            ocr,
		Visual:         visual,
		OCRIntervalSec: 5,
		VisualSamples:  10,
	}
}

// Extract runs all three modalities over the clip at clipPath. workDir
// receives temporary audio and frame files and is expected to exist;
// everything written under it is removed before returning.
func (e *ClipExtractor) Extract(ctx context.Context, clipPath, workDir string, duration float64) Extraction {
	var out Extraction
	out.SpeechText = e.extractSpeech(ctx, clipPath, workDir)
	out.OCRText = e.extractOCR(ctx, clipPath, workDir)
	out.Visual = e.extractVisual(ctx, clipPath, workDir, duration)
	return out
}

func (e *ClipExtractor) extractSpeech(ctx context.Context, clipPath, workDir string) string {
	wavPath := filepath.Join(workDir, strings.TrimSuffix(filepath.Base(clipPath), filepath.Ext(clipPath))+".wav")
	if err := e.Media.ExtractAudio(ctx, clipPath, wavPath); err != nil {
		log.Printf("audio extraction failed for %s: %v", filepath.Base(clipPath), err)
		return core.SpeechExtractionFailed
	}
	defer os.Remove(wavPath)

	text, err := e.Speech.Transcribe(ctx, wavPath)
	if err != nil {
		if errors.Is(err, ErrNoSpeech) {
			return ""
		}
		log.Printf("transcription failed for %s: %v", filepath.Base(clipPath), err)
		return core.SpeechServiceUnavailable
	}
	return text
}

func (e *ClipExtractor) extractOCR(ctx context.Context, clipPath, workDir string) string {
	frameDir := filepath.Join(workDir, "ocr_frames")
	defer os.RemoveAll(frameDir)

	interval := e.OCRIntervalSec
	if interval <= 0 {
		interval = 5
	}
	frames, err := e.Media.SampleEvery(ctx, clipPath, frameDir, interval)
	if err != nil {
		log.Printf("OCR frame sampling failed for %s: %v", filepath.Base(clipPath), err)
		return ""
	}

	var parts []string
	for _, frame := range frames {
		text, err := e.OCR.Recognize(ctx, frame.Path)
		if err != nil {
			log.Printf("OCR failed on frame %s: %v", filepath.Base(frame.Path), err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func (e *ClipExtractor) extractVisual(ctx context.Context, clipPath, workDir string, duration float64) core.VisualRecognition {
	frameDir := filepath.Join(workDir, "visual_frames")
	defer os.RemoveAll(frameDir)

	n := e.VisualSamples
	if n < 1 {
		n = 10
	}
	frames, err := e.Media.SampleUniform(ctx, clipPath, frameDir, n, duration)
	if err != nil {
		log.Printf("visual frame sampling failed for %s: %v", filepath.Base(clipPath), err)
		if len(frames) == 0 {
			return core.VisualRecognition{}
		}
	}

	sums := map[string]float64{}
	var detections []core.Detection
	for _, frame := range frames {
		cls, dets, err := e.Visual.RecognizeFrame(ctx, frame.Path)
		if err != nil {
			log.Printf("visual recognition failed on frame %s: %v", filepath.Base(frame.Path), err)
			continue
		}
		for _, c := range cls {
			sums[c.Label] += c.Confidence
		}
		for _, d := range dets {
			d.Timestamp = frame.Timestamp
			detections = append(detections, d)
		}
	}

	return core.VisualRecognition{
		Classifications: topClassifications(sums, len(frames), 5),
		Detections:      detections,
	}
}

// topClassifications averages summed confidences over the number of
// sampled frames and keeps the strongest labels. Ties break by label so
// the output is deterministic.
func topClassifications(sums map[string]float64, frames, keep int) []core.Classification {
	if frames < 1 || len(sums) == 0 {
		return nil
	}
	out := make([]core.Classification, 0, len(sums))
	for label, sum := range sums {
		out = append(out, core.Classification{Label: label, Confidence: sum / float64(frames)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > keep {
		out = out[:keep]
	}
	return out
}
