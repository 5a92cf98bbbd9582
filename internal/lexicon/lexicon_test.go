package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_ClosedUniverse(t *testing.T) {
	lex := Default()

	texts := []string{
		"GME and AMC to the moon, XYZ is a scam, ABCDE too",
		"buy TSLA calls, LOL, YOLO, FOMO",
		"the SEC and the FDA are watching ZZZZ",
		"hold NVDA amd aapl",
		strings.Repeat("QWERT ", 30),
	}

	for _, text := range texts {
		res := lex.Scan(text)
		for _, hit := range res.Hits {
			assert.True(t, lex.Contains(hit), "hit %q from %q not in universe", hit, text)
		}
	}
}

func TestScan_UppercasesBeforeMatching(t *testing.T) {
	res := Default().Scan("hold nvda amd aapl")
	assert.Equal(t, []string{"NVDA", "AMD", "AAPL"}, res.Hits)
}

func TestScan_FalsePositiveSuppression(t *testing.T) {
	lex := Default()

	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{"greeting", "GM everyone, good morning", map[string]int{}},
		{"company", "GM earnings beat, Ford next", map[string]int{"GM": 1}},
		{"diamond hands", "DIA is fine but diamond hands on GME", map[string]int{"GME": 1}},
		{"case-insensitive", "Good Morning GM", map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				assert.Equal(t, tt.want, lex.Scan(tt.text).Counts(), "run %d", i)
			}
		})
	}
}

func TestScan_Sentiment(t *testing.T) {
	lex := New(Options{
		Universe:       []string{"GME"},
		Positive:       []string{"moon", "rocket"},
		Negative:       []string{"crash"},
		FalsePositives: map[string][]string{},
	})

	tests := []struct {
		name    string
		text    string
		want    float64
		present bool
	}{
		{"none", "GME is a company", 0, false},
		{"positive", "GME moon rocket", 1.0, true},
		{"negative", "GME crash", -1.0, true},
		{"mixed", "GME moon rocket crash", 1.0 / 3.0, true},
		{"counted once", "moon moon moon crash", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := lex.Scan(tt.text)
			assert.Equal(t, tt.present, res.HasSentiment)
			assert.InDelta(t, tt.want, res.Sentiment, 1e-9)
			assert.GreaterOrEqual(t, res.Sentiment, -1.0)
			assert.LessOrEqual(t, res.Sentiment, 1.0)
		})
	}
}

func TestScan_RepeatedTicker(t *testing.T) {
	lex := New(Options{
		Universe:       []string{"GME"},
		FalsePositives: map[string][]string{"GME": {}},
	})

	res := lex.Scan("GME GME GME GME GME")
	assert.Equal(t, 5, res.Counts()["GME"])
	assert.False(t, res.HasSentiment)
}

func TestScan_Bounds(t *testing.T) {
	lex := New(Options{Universe: []string{"GME"}, MaxTokens: 3, MaxTextLen: 100})

	assert.Empty(t, lex.Scan("").Hits)
	assert.Empty(t, lex.Scan(strings.Repeat("GME ", 30)).Hits, "text over the cap is skipped")
	assert.Len(t, lex.Scan("GME GME GME GME GME").Hits, 3, "token cap")
	// 90 characters, 180 bytes
	assert.Equal(t, []string{"GME"}, lex.Scan(strings.Repeat("é", 86)+" GME").Hits, "cap counts characters")

	def := Default()
	long := strings.Repeat("x", DefaultMaxTextLen+1)
	res := def.Scan("GME buy " + long)
	assert.Empty(t, res.Hits)
	assert.False(t, res.HasSentiment)
}

func TestCompanyName(t *testing.T) {
	lex := Default()
	assert.Equal(t, "GameStop Corp", lex.CompanyName("GME"))
	assert.Equal(t, "ZZZ", lex.CompanyName("ZZZ"))
}

func TestParse(t *testing.T) {
	lex, err := Parse([]byte(`
universe: [gme, amc]
positive: [moon]
false_positives:
  AMC: ["amc theatre"]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"AMC", "GME"}, lex.Universe())
	assert.Empty(t, lex.Scan("AMC theatre tonight").Hits)

	res := lex.Scan("GME moon TSLA")
	assert.Equal(t, []string{"GME"}, res.Hits)
	assert.Equal(t, 1.0, res.Sentiment)

	// negative keeps the default list
	assert.True(t, lex.Scan("GME crash").HasSentiment)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("universe: [BB]\n"), 0o600))

	lex, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BB"}, lex.Universe())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("universe: [unterminated"))
	assert.Error(t, err)

	def, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.True(t, def.Contains("GME"))
}
