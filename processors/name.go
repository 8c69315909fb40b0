package processors

import (
	"regexp"
	"sort"
	"strings"

	"clipstream/core"
)

// ClipNamer derives a short descriptive name for one clip from its
// extracted text, falling back to visual labels when the text carries
// nothing usable.
type ClipNamer struct {
	Ranker KeyphraseRanker
}

var namePunct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

const maxNameLength = 50

// Name builds the clip name. Cleaned text under ten characters gets
// the fixed short-clip sentinel; longer text goes through keyphrases,
// then its leading words, then the strongest visual labels. Every path
// yields a deterministic lowercase underscore-joined name.
func (n ClipNamer) Name(text string, visual core.VisualRecognition) string {
	cleaned := strings.TrimSpace(namePunct.ReplaceAllString(text, " "))
	if len(cleaned) < 10 {
		return core.ShortClipName
	}

	var words []string
	if n.Ranker != nil {
		words = n.Ranker.Phrases(cleaned, 3)
	}
	if len(words) == 0 {
		fields := strings.Fields(cleaned)
		if len(fields) > 3 {
			fields = fields[:3]
		}
		words = fields
	}
	if len(words) == 0 {
		words = visualWords(visual)
	}
	if len(words) == 0 {
		return core.UnnamedClipName
	}
	return finishName(words)
}

// visualWords picks the two strongest detections and the two strongest
// classifications as naming material.
func visualWords(visual core.VisualRecognition) []string {
	dets := append([]core.Detection(nil), visual.Detections...)
	sort.Slice(dets, func(i, j int) bool { return dets[i].Confidence > dets[j].Confidence })
	if len(dets) > 2 {
		dets = dets[:2]
	}
	cls := append([]core.Classification(nil), visual.Classifications...)
	sort.Slice(cls, func(i, j int) bool { return cls[i].Confidence > cls[j].Confidence })
	if len(cls) > 2 {
		cls = cls[:2]
	}

	var words []string
	for _, d := range dets {
		words = append(words, d.Class)
	}
	for _, c := range cls {
		words = append(words, c.Label)
	}
	return words
}

func finishName(words []string) string {
	name := strings.ToLower(strings.Join(words, "_"))
	name = strings.ReplaceAll(name, " ", "_")
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	name = strings.Trim(name, "_")
	if name == "" {
		return core.UnnamedClipName
	}
	return name
}
