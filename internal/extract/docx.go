package extract

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	docxBreakRe = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	docxTagRe   = regexp.MustCompile(`<[^>]+>`)
	blankLineRe = regexp.MustCompile(`\n{3,}`)
)

// extractDOCX returns the body text of a Word document with paragraph
// breaks preserved.
func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrCorruptDocument)
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	defer doc.Close()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

func docxXMLToText(content string) string {
	s := docxBreakRe.ReplaceAllStringFunc(content, func(m string) string {
		if strings.HasPrefix(m, "<w:tab") {
			return "\t"
		}
		return "\n"
	})
	s = docxTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankLineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
