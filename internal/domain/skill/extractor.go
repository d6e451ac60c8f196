package skill

import "skillbridge/internal/nlp"

// Extractor finds taxonomy skills in free text.
type Extractor struct {
	taxonomy *Taxonomy
}

func NewExtractor(t *Taxonomy) *Extractor {
	return &Extractor{taxonomy: t}
}

// Extract normalizes raw with the taxonomy's normalizer and returns the
// skills it mentions.
func (e *Extractor) Extract(raw string) Set {
	if e == nil || e.taxonomy == nil {
		return NewSet()
	}
	return e.scan(e.taxonomy.normalizer.Analyze(raw))
}

// ExtractDocument returns the skills mentioned in an already normalized
// document.
func (e *Extractor) ExtractDocument(doc nlp.Document) Set {
	if e == nil || e.taxonomy == nil {
		return NewSet()
	}
	return e.scan(doc.Analyzed())
}

// scan walks the tokens left to right. At each position the longest taxonomy
// phrase starting there wins and its tokens are consumed, so "react native"
// never also reports "react".
func (e *Extractor) scan(tokens []nlp.Token) Set {
	found := NewSet()
	maxLen := e.taxonomy.maxPhraseLen
	for i := 0; i < len(tokens); {
		width := maxLen
		if rest := len(tokens) - i; rest < width {
			width = rest
		}

		consumed := 0
		for l := width; l >= 1; l-- {
			if name, ok := e.taxonomy.lookupPhrase(tokens[i : i+l]); ok {
				found.Add(name)
				consumed = l
				break
			}
		}
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
	}

	return found
}
