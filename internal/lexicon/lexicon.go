// Package lexicon turns raw post text into ticker hits and a sentiment sample.
//
// Suppression is a coarse substring heuristic, not contextual NLP: it misses
// genuine mentions in texts that happen to contain a disambiguating phrase,
// and lets through collisions the table does not list.
package lexicon

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Per-call cost bounds
const (
	DefaultMaxTextLen = 2000
	DefaultMaxTokens  = 50
)

var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// Lexicon holds the static vocabularies. Immutable after construction.
type Lexicon struct {
	universe       map[string]struct{}
	names          map[string]string
	positive       []string
	negative       []string
	falsePositives map[string][]string

	maxTextLen int
	maxTokens  int
}

// Options overrides parts of the default vocabulary. Nil fields keep defaults.
type Options struct {
	Universe       []string
	Names          map[string]string
	Positive       []string
	Negative       []string
	FalsePositives map[string][]string
	MaxTextLen     int
	MaxTokens      int
}

// ScanResult is the outcome of scanning one text
type ScanResult struct {
	// Hits lists every accepted ticker token in encounter order (a multiset)
	Hits []string

	// Sentiment is valid only when HasSentiment is true
	Sentiment    float64
	HasSentiment bool
}

// Counts folds Hits into per-ticker counts
func (r ScanResult) Counts() map[string]int {
	out := make(map[string]int, len(r.Hits))
	for _, t := range r.Hits {
		out[t]++
	}
	return out
}

// Default returns the built-in lexicon
func Default() *Lexicon {
	return New(Options{})
}

// New builds a lexicon from opts, falling back to the defaults per field
func New(opts Options) *Lexicon {
	universe := opts.Universe
	if universe == nil {
		universe = defaultUniverse
	}
	names := opts.Names
	if names == nil {
		names = defaultNames
	}
	positive := opts.Positive
	if positive == nil {
		positive = defaultPositive
	}
	negative := opts.Negative
	if negative == nil {
		negative = defaultNegative
	}
	fps := opts.FalsePositives
	if fps == nil {
		fps = defaultFalsePositives
	}

	l := &Lexicon{
		universe:       make(map[string]struct{}, len(universe)),
		names:          make(map[string]string, len(names)),
		positive:       lowerAll(positive),
		negative:       lowerAll(negative),
		falsePositives: make(map[string][]string, len(fps)),
		maxTextLen:     opts.MaxTextLen,
		maxTokens:      opts.MaxTokens,
	}
	if l.maxTextLen <= 0 {
		l.maxTextLen = DefaultMaxTextLen
	}
	if l.maxTokens <= 0 {
		l.maxTokens = DefaultMaxTokens
	}

	for _, t := range universe {
		l.universe[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	for t, n := range names {
		l.names[strings.ToUpper(t)] = n
	}
	for t, subs := range fps {
		l.falsePositives[strings.ToUpper(t)] = lowerAll(subs)
	}

	return l
}

// Scan extracts ticker hits and a sentiment sample from text.
// Empty text and text longer than the length cap yield an empty result.
func (l *Lexicon) Scan(text string) ScanResult {
	var res ScanResult
	if text == "" || utf8.RuneCountInString(text) > l.maxTextLen {
		return res
	}

	lower := strings.ToLower(text)

	suppressed := map[string]bool{}
	for _, tok := range tickerPattern.FindAllString(strings.ToUpper(text), l.maxTokens) {
		if _, ok := l.universe[tok]; !ok {
			continue
		}
		drop, seen := suppressed[tok]
		if !seen {
			drop = containsAny(lower, l.falsePositives[tok])
			suppressed[tok] = drop
		}
		if drop {
			continue
		}
		res.Hits = append(res.Hits, tok)
	}

	pos := countPresent(lower, l.positive)
	neg := countPresent(lower, l.negative)
	if total := pos + neg; total > 0 {
		res.Sentiment = float64(pos-neg) / float64(total)
		res.HasSentiment = true
	}

	return res
}

// Contains reports whether ticker is in the closed universe
func (l *Lexicon) Contains(ticker string) bool {
	_, ok := l.universe[strings.ToUpper(ticker)]
	return ok
}

// CompanyName returns the display name for ticker, or the ticker itself
func (l *Lexicon) CompanyName(ticker string) string {
	if n, ok := l.names[ticker]; ok {
		return n
	}
	return ticker
}

// Universe returns the sorted ticker universe
func (l *Lexicon) Universe() []string {
	out := make([]string, 0, len(l.universe))
	for t := range l.universe {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// countPresent counts lexicon words present at least once (substring match)
func countPresent(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func containsAny(lower string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
