package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk override format
type fileSchema struct {
	Universe       []string            `yaml:"universe"`
	Names          map[string]string   `yaml:"names"`
	Positive       []string            `yaml:"positive"`
	Negative       []string            `yaml:"negative"`
	FalsePositives map[string][]string `yaml:"false_positives"`
	MaxTextLen     int                 `yaml:"max_text_len"`
	MaxTokens      int                 `yaml:"max_tokens"`
}

// LoadFile builds a lexicon from a YAML file. Omitted sections keep the defaults.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes
func Parse(data []byte) (*Lexicon, error) {
	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon yaml: %w", err)
	}

	return New(Options{
		Universe:       f.Universe,
		Names:          f.Names,
		Positive:       f.Positive,
		Negative:       f.Negative,
		FalsePositives: f.FalsePositives,
		MaxTextLen:     f.MaxTextLen,
		MaxTokens:      f.MaxTokens,
	}), nil
}

// LoadOrDefault returns LoadFile(path) when path is set, else Default()
func LoadOrDefault(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
