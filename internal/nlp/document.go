package nlp

// Document pairs raw text with its normalized tokens. The tokens are
// computed once and never handed out directly.
type Document struct {
	raw    string
	tokens []Token
}

// Analyzer produces the tokens of a Document. *Normalizer is the
// production Analyzer.
type Analyzer interface {
	Analyze(text string) []Token
}

func NewDocument(raw string, a Analyzer) Document {
	return Document{raw: raw, tokens: a.Analyze(raw)}
}

func (d Document) Raw() string {
	return d.raw
}

// Tokens returns the normalized terms in document order.
func (d Document) Tokens() []string {
	return Terms(d.tokens)
}

// Analyzed returns the tokens with their surface forms.
func (d Document) Analyzed() []Token {
	out := make([]Token, len(d.tokens))
	copy(out, d.tokens)
	return out
}

func (d Document) Len() int {
	return len(d.tokens)
}

func (d Document) Empty() bool {
	return len(d.tokens) == 0
}
