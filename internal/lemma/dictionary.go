package lemma

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_dictionary.yaml
var defaultDictionaryYAML []byte

// DictionaryFile is the on-disk YAML layout of a dictionary.
type DictionaryFile struct {
	Lexicon    []string          `yaml:"lexicon"`
	Exceptions map[string]string `yaml:"exceptions"`
}

// Dictionary is a WordNet-morphy style lemmatizer: irregular forms come from
// an exception table, regular forms are found by detaching known suffixes
// and keeping the first candidate present in the lexicon.
type Dictionary struct {
	lexicon    map[string]struct{}
	exceptions map[string]string
}

type substitution struct{ suffix, ending string }

// Rule sets are tried noun, verb, adjective; within a set in order.
var detachmentRules = [][]substitution{
	{ // noun
		{"s", ""}, {"ses", "s"}, {"ves", "f"}, {"xes", "x"}, {"zes", "z"},
		{"ches", "ch"}, {"shes", "sh"}, {"men", "man"}, {"ies", "y"},
	},
	{ // verb
		{"s", ""}, {"ies", "y"}, {"ied", "y"}, {"es", "e"}, {"es", ""},
		{"ed", "e"}, {"ed", ""}, {"ing", "e"}, {"ing", ""},
	},
	{ // adjective
		{"er", ""}, {"est", ""}, {"er", "e"}, {"est", "e"},
	},
}

func NewDictionary(lexicon []string, exceptions map[string]string) *Dictionary {
	d := &Dictionary{
		lexicon:    make(map[string]struct{}, len(lexicon)),
		exceptions: make(map[string]string, len(exceptions)),
	}
	for _, w := range lexicon {
		if w = normalizeWord(w); w != "" {
			d.lexicon[w] = struct{}{}
		}
	}
	for form, base := range exceptions {
		form, base = normalizeWord(form), normalizeWord(base)
		if form != "" && base != "" {
			d.exceptions[form] = base
		}
	}
	return d
}

// ParseDictionary decodes a YAML dictionary.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var f DictionaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return NewDictionary(f.Lexicon, f.Exceptions), nil
}

// LoadDictionary reads a YAML dictionary from path.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return ParseDictionary(data)
}

// DefaultDictionary returns the small English dictionary compiled into the
// binary.
func DefaultDictionary() *Dictionary {
	d, err := ParseDictionary(defaultDictionaryYAML)
	if err != nil {
		panic(err)
	}
	return d
}

// Merge returns a new dictionary holding the entries of d and other; other
// wins on conflicting exceptions.
func (d *Dictionary) Merge(other *Dictionary) *Dictionary {
	out := &Dictionary{
		lexicon:    make(map[string]struct{}, len(d.lexicon)+len(other.lexicon)),
		exceptions: make(map[string]string, len(d.exceptions)+len(other.exceptions)),
	}
	for _, src := range []*Dictionary{d, other} {
		for w := range src.lexicon {
			out.lexicon[w] = struct{}{}
		}
		for f, b := range src.exceptions {
			out.exceptions[f] = b
		}
	}
	return out
}

// Len reports the number of lexicon entries.
func (d *Dictionary) Len() int { return len(d.lexicon) }

func (d *Dictionary) Lemmatize(word string) (string, bool) {
	w := normalizeWord(word)
	if w == "" {
		return "", false
	}
	if base, ok := d.exceptions[w]; ok {
		return base, true
	}
	if d.known(w) {
		return w, true
	}
	for _, rules := range detachmentRules {
		for _, r := range rules {
			if !strings.HasSuffix(w, r.suffix) || len(w) <= len(r.suffix) {
				continue
			}
			stem := w[:len(w)-len(r.suffix)]
			if cand := stem + r.ending; d.known(cand) {
				return cand, true
			}
			// running -> runn -> run
			if r.ending == "" && hasDoubledConsonant(stem) {
				if cand := stem[:len(stem)-1]; d.known(cand) {
					return cand, true
				}
			}
		}
	}
	return "", false
}

func (d *Dictionary) known(w string) bool {
	_, ok := d.lexicon[w]
	return ok
}

func hasDoubledConsonant(s string) bool {
	n := len(s)
	if n < 2 || s[n-1] != s[n-2] {
		return false
	}
	return !strings.ContainsRune("aeiou", rune(s[n-1]))
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
