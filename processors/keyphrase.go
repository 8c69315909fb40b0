package processors

import (
	"math"
	"strings"

	textrank "github.com/DavidBelicza/TextRank/v2"
)

// KeyphraseRanker extracts ranked keyphrases and the most important
// sentences from free text.
type KeyphraseRanker interface {
	// Phrases returns up to limit keyphrases, best first.
	Phrases(text string, limit int) []string
	// Sentences returns the top share of sentences by rank, where ratio
	// is the fraction of the text's sentences to keep (at least one).
	Sentences(text string, ratio float64) []string
}

// TextRankRanker ranks with the TextRank graph algorithm.
type TextRankRanker struct{}

func (TextRankRanker) Phrases(text string, limit int) []string {
	if strings.TrimSpace(text) == "" || limit <= 0 {
		return nil
	}
	tr := textrank.NewTextRank()
	tr.Populate(text, textrank.NewDefaultLanguage(), textrank.NewDefaultRule())
	tr.Ranking(textrank.NewDefaultAlgorithm())

	var out []string
	seen := map[string]bool{}
	for _, phrase := range textrank.FindPhrases(tr) {
		words := []string{phrase.Left, phrase.Right}
		key := strings.ToLower(strings.Join(words, " "))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.Join(words, " "))
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (TextRankRanker) Sentences(text string, ratio float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if ratio <= 0 || ratio > 1 {
		ratio = 0.3
	}
	tr := textrank.NewTextRank()
	tr.Populate(text, textrank.NewDefaultLanguage(), textrank.NewDefaultRule())
	tr.Ranking(textrank.NewDefaultAlgorithm())

	total := len(tr.GetRankData().SentenceMap)
	if total == 0 {
		return nil
	}
	limit := int(math.Ceil(float64(total) * ratio))
	if limit < 1 {
		limit = 1
	}

	var out []string
	for _, sentence := range textrank.FindSentencesByRelationWeight(tr, limit) {
		value := strings.TrimSpace(sentence.Value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
