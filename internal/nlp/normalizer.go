// Package nlp turns free text into the token sequences used for skill
// matching and similarity scoring.
package nlp

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// maxStemPasses bounds the fixed-point loop in stem.
const maxStemPasses = 8

type Normalizer struct {
	stopwords map[string]struct{}
}

func NewNormalizer() *Normalizer {
	return NewNormalizerWithStopwords(defaultStopwords)
}

func NewNormalizerWithStopwords(words []string) *Normalizer {
	sw := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		sw[w] = struct{}{}
	}
	return &Normalizer{stopwords: sw}
}

// Token is one normalized token together with the lowercased text it came
// from.
type Token struct {
	Term    string
	Surface string
}

// Normalize lowercases text, tokenizes it, drops stopwords and stems plain
// alphabetic tokens. Order and duplicates are preserved. Technical tokens such
// as "c++", "c#", "full-stack" or "html5" are kept verbatim.
//
// Normalize(Join(Normalize(s))) == Normalize(s) for every s.
func (n *Normalizer) Normalize(text string) []string {
	return Terms(n.Analyze(text))
}

// Analyze is Normalize keeping each token's surface form.
func (n *Normalizer) Analyze(text string) []Token {
	if n == nil {
		n = NewNormalizer()
	}
	raw := Tokenize(strings.ToLower(text))
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if n.isStopword(tok) {
			continue
		}
		term := tok
		if isASCIIAlpha(tok) {
			term = stem(tok)
			if n.isStopword(term) {
				continue
			}
		}
		out = append(out, Token{Term: term, Surface: tok})
	}
	return out
}

// Terms returns the normalized terms of tokens.
func Terms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Term
	}
	return out
}

func (n *Normalizer) isStopword(tok string) bool {
	_, ok := n.stopwords[tok]
	return ok
}

// Join is the inverse rendering of a token sequence.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

// Tokenize splits text on whitespace and punctuation. A hyphen survives only
// between two word characters; '+' and '#' survive when they trail a word.
// '.' and '/' always separate ("node.js" -> "node", "js").
func Tokenize(text string) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/5+1)

	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
		case r == '-' && b.Len() > 0 && isWordRune(runes[i-1]) && i+1 < len(runes) && isWordRune(runes[i+1]):
			b.WriteRune(r)
		case (r == '+' || r == '#') && b.Len() > 0 && (isWordRune(runes[i-1]) || runes[i-1] == '+' || runes[i-1] == '#'):
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return out
}

func stem(tok string) string {
	cur := tok
	for i := 0; i < maxStemPasses; i++ {
		next := english.Stem(cur, true)
		if next == "" || next == cur {
			break
		}
		cur = next
	}
	return cur
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
