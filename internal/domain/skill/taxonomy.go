package skill

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"skillbridge/internal/nlp"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

var (
	ErrEmptyTaxonomy    = errors.New("empty skill taxonomy")
	ErrInvalidEntry     = errors.New("invalid taxonomy entry")
	ErrAmbiguousSynonym = errors.New("ambiguous taxonomy synonym")
	ErrDuplicateSkill   = errors.New("duplicate taxonomy skill")
)

// TextNormalizer is the normalization step shared by the taxonomy and the
// documents it is matched against.
type TextNormalizer interface {
	Normalize(text string) []string
	Analyze(text string) []nlp.Token
}

type Entry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type taxonomyFile struct {
	Skills []Entry `yaml:"skills"`
}

// Taxonomy maps canonical skill names to their surface forms. It is
// immutable after construction and safe for concurrent use.
//
// Multi-token forms match on normalized terms. Single-token forms match on
// the exact lowercased word, so "express" is not found in "expressed".
type Taxonomy struct {
	normalizer   TextNormalizer
	names        []string
	synonyms     map[string][]string
	phrases      map[string]string
	words        map[string]string
	lower        map[string]string
	maxPhraseLen int
}

// NewTaxonomy builds a taxonomy. A surface form that normalizes to the same
// phrase as a form of another skill is rejected, so phrase lookups never tie.
func NewTaxonomy(entries []Entry, n TextNormalizer) (*Taxonomy, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTaxonomy
	}
	if n == nil {
		n = nlp.NewNormalizer()
	}

	t := &Taxonomy{
		normalizer: n,
		names:      make([]string, 0, len(entries)),
		synonyms:   make(map[string][]string, len(entries)),
		phrases:    make(map[string]string, len(entries)*2),
		words:      make(map[string]string, len(entries)*2),
		lower:      make(map[string]string, len(entries)*2),
	}

	for i, e := range entries {
		name := canonicalKey(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidEntry, i)
		}
		if _, exists := t.synonyms[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSkill, name)
		}

		forms := make([]string, 0, len(e.Aliases)+1)
		forms = append(forms, name)
		for _, a := range e.Aliases {
			if a = canonicalKey(a); a != "" {
				forms = append(forms, a)
			}
		}

		kept := make([]string, 0, len(forms))
		for _, form := range forms {
			analyzed := n.Analyze(form)
			if len(analyzed) == 0 {
				return nil, fmt.Errorf("%w: %q of %q normalizes to nothing", ErrInvalidEntry, form, name)
			}
			tokens := nlp.Terms(analyzed)
			phrase := nlp.Join(tokens)
			if owner, ok := t.phrases[phrase]; ok {
				if owner != name {
					return nil, fmt.Errorf("%w: %q is claimed by %q and %q", ErrAmbiguousSynonym, form, owner, name)
				}
				continue
			}
			if owner, ok := t.lower[form]; ok && owner != name {
				return nil, fmt.Errorf("%w: %q is claimed by %q and %q", ErrAmbiguousSynonym, form, owner, name)
			}

			t.phrases[phrase] = name
			t.lower[form] = name
			if len(analyzed) == 1 {
				t.words[analyzed[0].Surface] = name
			}
			kept = append(kept, form)
			if len(tokens) > t.maxPhraseLen {
				t.maxPhraseLen = len(tokens)
			}
		}

		t.names = append(t.names, name)
		t.synonyms[name] = kept
	}

	sort.Strings(t.names)
	return t, nil
}

// LoadTaxonomy parses a YAML document of the form
//
//	skills:
//	  - name: javascript
//	    aliases: [js, ecmascript]
func LoadTaxonomy(data []byte, n TextNormalizer) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return NewTaxonomy(f.Skills, n)
}

func LoadTaxonomyFile(path string, n TextNormalizer) (*Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return LoadTaxonomy(b, n)
}

// DefaultTaxonomy returns the taxonomy shipped with the binary.
func DefaultTaxonomy(n TextNormalizer) (*Taxonomy, error) {
	return LoadTaxonomy(defaultTaxonomyYAML, n)
}

// Canonical resolves a skill name or alias to its canonical name. Lookup is
// case-insensitive and falls back to comparing normalized phrases, so
// "Unit Tests" resolves to "unit testing".
func (t *Taxonomy) Canonical(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	key := canonicalKey(name)
	if key == "" {
		return "", false
	}
	if c, ok := t.lower[key]; ok {
		return c, true
	}
	tokens := t.normalizer.Normalize(key)
	if len(tokens) == 0 {
		return "", false
	}
	c, ok := t.phrases[nlp.Join(tokens)]
	return c, ok
}

// Names returns every canonical name in alphabetical order.
func (t *Taxonomy) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Synonyms returns the surface forms of a canonical skill, the name first.
func (t *Taxonomy) Synonyms(name string) []string {
	if t == nil {
		return nil
	}
	forms := t.synonyms[canonicalKey(name)]
	out := make([]string, len(forms))
	copy(out, forms)
	return out
}

func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

func (t *Taxonomy) lookupPhrase(tokens []nlp.Token) (string, bool) {
	if len(tokens) == 1 {
		c, ok := t.words[tokens[0].Surface]
		return c, ok
	}
	c, ok := t.phrases[nlp.Join(nlp.Terms(tokens))]
	return c, ok
}

func canonicalKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
