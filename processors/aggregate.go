package processors

import (
	"strings"
	"time"

	"clipstream/core"
)

// Running summary caps. The aggregate keeps the earliest-seen entries
// and never grows past these sizes.
const (
	maxSummaryKeyPhrases = 10
	maxSummaryEntities   = 10
	maxSummaryObjects    = 10
	maxSummarySentences  = 20
)

// SummaryAggregator folds finished clips into a running summary. Merge
// is pure: it returns a new summary and never mutates its inputs, so
// emitted clip_ready events stay stable.
type SummaryAggregator struct {
	DetectionConfidence      float64
	ClassificationConfidence float64
}

func NewSummaryAggregator(detectionConf, classificationConf float64) SummaryAggregator {
	return SummaryAggregator{
		DetectionConfidence:      detectionConf,
		ClassificationConfidence: classificationConf,
	}
}

// Merge adds one clip's output to the running summary. Duplicate
// entries (case-insensitive) are dropped, keeping the first occurrence.
func (a SummaryAggregator) Merge(current core.RunningSummary, clip core.ClipResult, now time.Time) core.RunningSummary {
	next := core.RunningSummary{
		KeyPhrases:         mergeCapped(current.KeyPhrases, clip.Summary.KeyPhrases, maxSummaryKeyPhrases),
		Entities:           mergeCapped(current.Entities, clip.Summary.Entities, maxSummaryEntities),
		ImportantSentences: mergeCapped(current.ImportantSentences, clip.Summary.ImportantSentences, maxSummarySentences),
		RecognizedObjects:  mergeCapped(current.RecognizedObjects, a.confidentObjects(clip.ImageRecognition), maxSummaryObjects),
	}
	next.Metadata = core.SummaryMetadata{
		ClipCount:   current.Metadata.ClipCount + 1,
		LastUpdated: now,
	}
	return next
}

// confidentObjects collects the visual labels strong enough to surface
// in the summary: detections above the detection threshold, then
// classifications above the classification threshold.
func (a SummaryAggregator) confidentObjects(visual core.VisualRecognition) []string {
	var out []string
	for _, d := range visual.Detections {
		if d.Confidence > a.DetectionConfidence {
			out = append(out, d.Class)
		}
	}
	for _, c := range visual.Classifications {
		if c.Confidence > a.ClassificationConfidence {
			out = append(out, c.Label)
		}
	}
	return out
}

func mergeCapped(current, incoming []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]bool, limit)
	add := func(items []string) {
		for _, item := range items {
			if len(out) >= limit {
				return
			}
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	add(current)
	add(incoming)
	return out
}
