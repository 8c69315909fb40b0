package processors

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"clipstream/core"
	"clipstream/media"
)

// Prober and ClipCutter are the slices of the media package the
// streamer needs, split out so pipeline tests can run without ffmpeg.
type Prober interface {
	Probe(ctx context.Context, path string) (media.SourceMedia, error)
}

type ClipCutter interface {
	Segment(ctx context.Context, src media.SourceMedia, outDir string, clipDuration float64) ([]core.ClipSpec, error)
}

// Request describes one pipeline run. Exactly one of URL and LocalPath
// is set; zero ClipDuration and empty TargetLanguage fall back to the
// configured defaults.
type Request struct {
	URL            string
	LocalPath      string
	ClipDuration   float64
	TargetLanguage string
}

// Streamer runs the clip pipeline and reports progress as a stream of
// events. All collaborators are injected; the zero value is not usable.
type Streamer struct {
	Prober     Prober
	Cutter     ClipCutter
	Downloader media.Downloader
	Extractor  *ClipExtractor
	Summarizer *ContentSummarizer
	Namer      ClipNamer
	Aggregator SummaryAggregator
	Fake       FakeDetector

	WorkRoot       string
	ClipDuration   float64
	TargetLanguage string

	now func() time.Time
}

func (s *Streamer) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Run executes the pipeline for req and returns the event channel. The
// channel is always closed when the run ends, whether it completed,
// failed or was canceled, and every temporary file created for the run
// is removed before the close.
func (s *Streamer) Run(ctx context.Context, req Request) <-chan core.PipelineEvent {
	events := make(chan core.PipelineEvent, 4)
	go func() {
		defer close(events)
		s.run(ctx, req, events)
	}()
	return events
}

func (s *Streamer) run(ctx context.Context, req Request, events chan<- core.PipelineEvent) {
	runID := core.NewRunID()
	workDir := filepath.Join(s.WorkRoot, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		emit(ctx, events, core.PipelineEvent{Status: core.StatusError, Message: fmt.Sprintf("create work dir: %v", err), Fatal: true})
		return
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Printf("cleanup of %s failed: %v", workDir, err)
		}
	}()

	if !emit(ctx, events, core.PipelineEvent{Status: core.StatusStarted, Message: "Processing started"}) {
		return
	}

	sourcePath := req.LocalPath
	sourceURL := req.URL
	if sourceURL != "" {
		if !emit(ctx, events, core.PipelineEvent{Status: core.StatusDownloading, Message: "Downloading video"}) {
			return
		}
		sourcePath = filepath.Join(workDir, "temp_video.mp4")
		if err := s.Downloader.Download(ctx, sourceURL, sourcePath); err != nil {
			emit(ctx, events, core.PipelineEvent{Status: core.StatusError, Message: err.Error(), Fatal: true})
			return
		}
	}

	if !emit(ctx, events, core.PipelineEvent{Status: core.StatusSplitting, Message: "Splitting video into clips"}) {
		return
	}
	src, err := s.Prober.Probe(ctx, sourcePath)
	if err != nil {
		emit(ctx, events, core.PipelineEvent{Status: core.StatusError, Message: err.Error(), Fatal: true})
		return
	}
	clipDir := filepath.Join(workDir, "clips")
	clips, err := s.Cutter.Segment(ctx, src, clipDir, s.clipDuration(req))
	if err != nil {
		emit(ctx, events, core.PipelineEvent{Status: core.StatusError, Message: err.Error(), Fatal: true})
		return
	}
	if len(clips) == 0 {
		emit(ctx, events, core.PipelineEvent{Status: core.StatusError, Message: "no clips produced from source", Fatal: true})
		return
	}

	lang := s.targetLanguage(req)
	var summary core.RunningSummary
	for i, spec := range clips {
		if ctx.Err() != nil {
			return
		}
		if !emit(ctx, events, core.PipelineEvent{
			Status:  core.StatusProcessing,
			Message: fmt.Sprintf("Processing clip %d/%d", i+1, len(clips)),
		}) {
			return
		}

		result, err := s.processClip(ctx, filepath.Join(clipDir, spec.Filename), spec, sourceURL, lang)
		if err != nil {
			if !emit(ctx, events, core.PipelineEvent{
				Status:  core.StatusError,
				Message: fmt.Sprintf("clip %s: %v", spec.Filename, err),
			}) {
				return
			}
			continue
		}

		summary = s.Aggregator.Merge(summary, result, s.clock())
		if !emit(ctx, events, core.PipelineEvent{
			Status: core.StatusClipReady,
			Data: &core.ClipReadyData{
				Clip:           result,
				OutputFolder:   clipDir,
				RunningSummary: summary,
			},
		}) {
			return
		}
	}

	complete := core.PipelineEvent{Status: core.StatusComplete, Message: "Processing complete"}
	if s.Fake != nil {
		if fake, err := s.Fake.Inspect(sourcePath); err != nil {
			log.Printf("fake detection failed: %v", err)
		} else {
			complete.FakeDetection = fake
		}
	}
	emit(ctx, events, complete)
}

// processClip runs extraction, summarization and naming over one clip.
// A failure here is reported but never aborts the run.
func (s *Streamer) processClip(ctx context.Context, clipPath string, spec core.ClipSpec, sourceURL, lang string) (core.ClipResult, error) {
	if _, err := os.Stat(clipPath); err != nil {
		return core.ClipResult{}, &core.StageError{Stage: "extract", Err: err}
	}
	workDir := filepath.Dir(clipPath)

	extracted := s.Extractor.Extract(ctx, clipPath, workDir, spec.End-spec.Start)
	clipSummary, translated := s.Summarizer.Summarize(ctx, extracted.SpeechText, extracted.OCRText, lang)

	result := core.ClipResult{
		ClipSpec:         spec,
		ClipName:         s.Namer.Name(extracted.SpeechText+" "+extracted.OCRText, extracted.Visual),
		SpeechText:       extracted.SpeechText,
		OCRText:          extracted.OCRText,
		Summary:          clipSummary,
		ImageRecognition: extracted.Visual,
		SourceURL:        sourceURL,
		AccessTime:       s.clock(),
	}
	// The combined translation equals the speech translation when OCR
	// found nothing, so it can be reused without a second call.
	speechTranslated := ""
	if extracted.OCRText == "" {
		speechTranslated = translated
	}
	result.SpeechTranslated = s.translateField(ctx, extracted.SpeechText, speechTranslated, lang, "No speech to translate.")
	result.OCRTranslated = s.translateField(ctx, extracted.OCRText, "", lang, "No OCR text to translate.")
	return result, nil
}

// translateField translates one text field, reusing the combined
// translation when it already covers the field alone.
func (s *Streamer) translateField(ctx context.Context, text, combinedTranslation, lang, emptyMarker string) string {
	if text == "" {
		return emptyMarker
	}
	if combinedTranslation != "" {
		return combinedTranslation
	}
	out, err := s.Summarizer.Translator.Translate(ctx, text, lang)
	if err != nil {
		log.Printf("field translation failed: %v", err)
		return text
	}
	return out
}

func (s *Streamer) clipDuration(req Request) float64 {
	if req.ClipDuration > 0 {
		return req.ClipDuration
	}
	if s.ClipDuration > 0 {
		return s.ClipDuration
	}
	return 30
}

func (s *Streamer) targetLanguage(req Request) string {
	if req.TargetLanguage != "" {
		return req.TargetLanguage
	}
	if s.TargetLanguage != "" {
		return s.TargetLanguage
	}
	return "en"
}

// emit delivers one event unless the run is canceled. A false return
// means the consumer is gone and the run should stop.
func emit(ctx context.Context, events chan<- core.PipelineEvent, ev core.PipelineEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
