package processors

import (
	"context"
	"log"
	"strings"
	"unicode"

	"clipstream/core"
)

// ContentSummarizer turns extracted text into a per-clip summary:
// translation, entity extraction, keyphrases and important sentences.
// Sub-analyses degrade independently; only an empty combination
// produces the no-content marker.
type ContentSummarizer struct {
	Translator Translator
	Ranker     KeyphraseRanker
	Engines    *EngineCache

	// SentenceRatio is the share of sentences kept as important;
	// PhraseLimit caps the keyphrase list.
	SentenceRatio float64
	PhraseLimit   int
}

func NewContentSummarizer(translator Translator, ranker KeyphraseRanker, engines *EngineCache) *ContentSummarizer {
	return &ContentSummarizer{
		Translator:    translator,
		Ranker:        ranker,
		Engines:       engines,
		SentenceRatio: 0.3,
		PhraseLimit:   5,
	}
}

// Summarize analyzes the combined speech and OCR text of one clip. The
// returned translated string is the combined text rendered into
// targetLanguage, reused by the caller for per-field translations.
//
// Only an empty combination yields the no-content marker; any other
// input is analyzed, with each candidate sentence individually checked
// for meaningfulness before it enters the summary.
func (s *ContentSummarizer) Summarize(ctx context.Context, speechText, ocrText, targetLanguage string) (core.ClipSummary, string) {
	combined := joinNonEmpty(speechText, ocrText)
	if combined == "" {
		return core.ClipSummary{Error: core.NoMeaningfulContentMarker}, ""
	}

	translated, err := s.Translator.Translate(ctx, combined, targetLanguage)
	if err != nil {
		log.Printf("translation failed, analyzing original text: %v", err)
		translated = ""
	}
	analyzeText := translated
	if strings.TrimSpace(analyzeText) == "" {
		analyzeText = combined
	}

	// The dominant language is detected over original and translated
	// text together.
	engine := s.engineFor(joinNonEmpty(combined, translated), targetLanguage)

	var summary core.ClipSummary
	if engine != nil {
		if analysis, err := engine.Analyze(analyzeText); err != nil {
			log.Printf("entity extraction failed: %v", err)
		} else {
			summary.Entities = analysis.Entities
		}
	}
	if s.Ranker != nil {
		summary.KeyPhrases = s.Ranker.Phrases(analyzeText, s.phraseLimit())
		for _, sentence := range s.Ranker.Sentences(analyzeText, s.sentenceRatio()) {
			if isMeaningful(sentence, engine) {
				summary.ImportantSentences = append(summary.ImportantSentences, sentence)
			}
		}
	}
	return summary, translated
}

func (s *ContentSummarizer) phraseLimit() int {
	if s.PhraseLimit > 0 {
		return s.PhraseLimit
	}
	return 5
}

func (s *ContentSummarizer) sentenceRatio() float64 {
	if s.SentenceRatio > 0 && s.SentenceRatio <= 1 {
		return s.SentenceRatio
	}
	return 0.3
}

// engineFor resolves the NLP engine for the detected language of text.
// A nil return means analysis proceeds permissively without tagging.
func (s *ContentSummarizer) engineFor(text, fallbackLanguage string) NLPEngine {
	if s.Engines == nil {
		return nil
	}
	lang := DetectLanguage(text, fallbackLanguage)
	engine, err := s.Engines.Engine(lang)
	if err != nil {
		log.Printf("no NLP engine for language %q: %v", lang, err)
		return nil
	}
	return engine
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// isMeaningful gates candidate sentences: fewer than five words,
// mostly special characters, or no verb or noun disqualifies one.
// Without a tagging engine the content-word check is skipped.
func isMeaningful(text string, engine NLPEngine) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	words := strings.Fields(text)
	if len(words) < 5 {
		return false
	}
	var special, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			special++
		}
	}
	if total > 0 && float64(special)/float64(total) > 0.3 {
		return false
	}
	if engine != nil {
		analysis, err := engine.Analyze(text)
		if err == nil && !hasContentWord(analysis.Tokens) {
			return false
		}
	}
	return true
}
