package processors

import (
	"strings"
	"sync"

	"github.com/abadojack/whatlanggo"
	prose "github.com/jdkato/prose/v2"
)

// TokenTag is one tagged token from part-of-speech analysis.
type TokenTag struct {
	Text string
	Tag  string
}

// TextAnalysis is the linguistic view of a piece of text: named
// entities and POS-tagged tokens.
type TextAnalysis struct {
	Entities []string
	Tokens   []TokenTag
}

// NLPEngine performs entity extraction and POS tagging.
type NLPEngine interface {
	Analyze(text string) (*TextAnalysis, error)
}

type proseEngine struct{}

func (proseEngine) Analyze(text string) (*TextAnalysis, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}
	out := &TextAnalysis{}
	seen := map[string]bool{}
	for _, ent := range doc.Entities() {
		name := strings.TrimSpace(ent.Text)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out.Entities = append(out.Entities, name)
	}
	for _, tok := range doc.Tokens() {
		out.Tokens = append(out.Tokens, TokenTag{Text: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}

// engineSlot holds one lazily built engine. Init runs at most once even
// when several clips ask for the same language concurrently.
type engineSlot struct {
	once   sync.Once
	engine NLPEngine
	err    error
}

// EngineCache hands out NLP engines keyed by language code. A language
// whose engine failed to initialize stays failed; callers degrade to
// permissive analysis instead of retrying per clip.
type EngineCache struct {
	mu    sync.Mutex
	slots map[string]*engineSlot

	// build is swappable for tests.
	build func(lang string) (NLPEngine, error)
}

func NewEngineCache() *EngineCache {
	return &EngineCache{
		slots: make(map[string]*engineSlot),
		build: func(string) (NLPEngine, error) { return proseEngine{}, nil },
	}
}

// Engine returns the engine for lang, initializing it on first use.
func (c *EngineCache) Engine(lang string) (NLPEngine, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = "en"
	}
	c.mu.Lock()
	slot, ok := c.slots[lang]
	if !ok {
		slot = &engineSlot{}
		c.slots[lang] = slot
	}
	c.mu.Unlock()

	slot.once.Do(func() {
		slot.engine, slot.err = c.build(lang)
	})
	return slot.engine, slot.err
}

// DetectLanguage guesses the ISO 639-1 code of text, defaulting to the
// configured language when detection is inconclusive.
func DetectLanguage(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	info := whatlanggo.Detect(text)
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return fallback
}

// hasContentWord reports whether the tagged tokens contain at least one
// verb or noun.
func hasContentWord(tokens []TokenTag) bool {
	for _, tok := range tokens {
		if strings.HasPrefix(tok.Tag, "VB") || strings.HasPrefix(tok.Tag, "NN") {
			return true
		}
	}
	return false
}
