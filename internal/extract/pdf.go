package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the text of every page in order, one newline between
// pages. The pdf reader panics on some malformed streams, so panics are
// turned into ErrCorruptDocument.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrCorruptDocument)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(strings.ToLower(err.Error()), "encrypt") {
			return "", fmt.Errorf("%w: %v", ErrEncryptedDocument, err)
		}
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	n := reader.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrCorruptDocument, i, err)
		}
		// The reader opens every page with a newline.
		pages = append(pages, strings.Trim(pt, "\n"))
	}

	return strings.Join(pages, "\n"), nil
}
