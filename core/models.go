package core

import "time"

// ClipSpec identifies one time-bounded segment of the source video.
// Specs are produced in order, contiguous and non-overlapping.
type ClipSpec struct {
	Filename string  `json:"filename"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}

// Classification is one scene-level label with averaged confidence.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Detection is one detected object in a sampled frame.
type Detection struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
	Timestamp  float64    `json:"timestamp"`
}

// VisualRecognition is the canonical structured shape for per-clip
// visual analysis: scene classifications plus timestamped detections.
type VisualRecognition struct {
	Classifications []Classification `json:"classifications"`
	Detections      []Detection      `json:"detections"`
}

// ClipSummary holds the derived content analysis for one clip. When no
// meaningful content exists the Error field carries the marker and the
// list fields stay empty.
type ClipSummary struct {
	Entities           []string `json:"entities,omitempty"`
	KeyPhrases         []string `json:"key_phrases,omitempty"`
	ImportantSentences []string `json:"important_sentences,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// ClipResult is the complete output for one processed clip. It is built
// by the clip processing step and immutable once emitted.
type ClipResult struct {
	ClipSpec
	ClipName         string            `json:"clip_name"`
	SpeechText       string            `json:"speech_text"`
	OCRText          string            `json:"ocr_text"`
	SpeechTranslated string            `json:"speech_translated"`
	OCRTranslated    string            `json:"ocr_translated"`
	Summary          ClipSummary       `json:"summary"`
	ImageRecognition VisualRecognition `json:"image_recognition"`
	SourceURL        string            `json:"source_url"`
	AccessTime       time.Time         `json:"access_time"`
}

// SummaryMetadata tracks how many clips fed the running summary.
type SummaryMetadata struct {
	ClipCount   int       `json:"clip_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// RunningSummary is the capped, deduplicated aggregate accumulated
// across a run. Field sizes never exceed their caps after a merge.
type RunningSummary struct {
	KeyPhrases         []string        `json:"key_phrases"`
	Entities           []string        `json:"entities"`
	RecognizedObjects  []string        `json:"recognized_objects"`
	ImportantSentences []string        `json:"important_sentences"`
	Metadata           SummaryMetadata `json:"metadata"`
}

// FakeDetectionResult is the whole-source manipulation heuristic output.
type FakeDetectionResult struct {
	PotentialManipulation bool     `json:"potential_manipulation"`
	Reasons               []string `json:"reasons"`
}

// Pipeline event statuses, in lifecycle order.
const (
	StatusStarted     = "started"
	StatusDownloading = "downloading"
	StatusSplitting   = "splitting"
	StatusProcessing  = "processing"
	StatusClipReady   = "clip_ready"
	StatusError       = "error"
	StatusComplete    = "complete"
)

// ClipReadyData carries one finished clip plus the summary state after
// merging it.
type ClipReadyData struct {
	Clip           ClipResult     `json:"clip"`
	OutputFolder   string         `json:"output_folder"`
	RunningSummary RunningSummary `json:"running_summary"`
}

// PipelineEvent is one tagged progress record on the event stream. It is
// serialized as a single NDJSON object and never persisted.
type PipelineEvent struct {
	Status        string               `json:"status"`
	Message       string               `json:"message,omitempty"`
	Fatal         bool                 `json:"fatal,omitempty"`
	Data          *ClipReadyData       `json:"data,omitempty"`
	FakeDetection *FakeDetectionResult `json:"fake_detection_result,omitempty"`
}

// Sentinel texts substituted when a stage cannot produce real output.
// Fixed strings so downstream consumers can tell them from real output.
const (
	SpeechExtractionFailed    = "Audio extraction failed. No speech recognition performed."
	SpeechServiceUnavailable  = "Could not request results from speech recognition service"
	NoMeaningfulContentMarker = "No meaningful content found"
	ShortClipName             = "short_clip"
	UnnamedClipName           = "unnamed_clip"
)
