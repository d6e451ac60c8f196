// Package extract converts résumé documents into plain text.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Kind is the closed set of document formats the extractor understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindText
	KindDOCX
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	case KindDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// Ext is the file extension stored documents of this kind get.
func (k Kind) Ext() string {
	switch k {
	case KindPDF:
		return ".pdf"
	case KindText:
		return ".txt"
	case KindDOCX:
		return ".docx"
	default:
		return ""
	}
}

// KindFromName maps a declared file name (or bare extension) to a Kind.
func KindFromName(name string) (Kind, error) {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(name)))
	if ext == "" {
		ext = "." + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	}
	switch ext {
	case ".pdf":
		return KindPDF, nil
	case ".txt", ".text":
		return KindText, nil
	case ".docx":
		return KindDOCX, nil
	default:
		return KindUnknown, newError(name, KindUnknown, "detect", fmt.Errorf("%w: %q", ErrUnsupportedKind, ext))
	}
}

// KindFromContentType maps a MIME type to a Kind.
func KindFromContentType(ct string) (Kind, error) {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "application/pdf":
		return KindPDF, nil
	case "text/plain":
		return KindText, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX, nil
	default:
		return KindUnknown, newError("", KindUnknown, "detect", fmt.Errorf("%w: %q", ErrUnsupportedKind, ct))
	}
}

type Extractor struct {
	maxBytes int64
}

// NewExtractor returns an extractor that refuses files larger than maxBytes.
// maxBytes <= 0 disables the limit.
func NewExtractor(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

// Extract reads the file at path and returns its text. Any failure is an
// *ExtractionError; partial text is never returned.
func (e *Extractor) Extract(ctx context.Context, path string, kind Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if kind == KindUnknown {
		return "", newError(path, kind, "detect", ErrUnsupportedKind)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", newError(path, kind, "open", fmt.Errorf("%w: %v", ErrUnreadable, err))
	}
	if info.IsDir() {
		return "", newError(path, kind, "open", fmt.Errorf("%w: is a directory", ErrUnreadable))
	}
	if e != nil && e.maxBytes > 0 && info.Size() > e.maxBytes {
		return "", newError(path, kind, "open", fmt.Errorf("%w: %d bytes exceeds limit %d", ErrUnreadable, info.Size(), e.maxBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", newError(path, kind, "read", fmt.Errorf("%w: %v", ErrUnreadable, err))
	}

	text, err := e.ExtractBytes(kind, data)
	if err != nil {
		if xe, ok := err.(*ExtractionError); ok {
			xe.Path = path
		}
		return "", err
	}
	return text, nil
}

// ExtractBytes is Extract for documents already in memory.
func (e *Extractor) ExtractBytes(kind Kind, data []byte) (string, error) {
	switch kind {
	case KindText:
		return decodeText(data), nil
	case KindPDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", newError("", kind, "decode", err)
		}
		return text, nil
	case KindDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", newError("", kind, "decode", err)
		}
		return text, nil
	default:
		return "", newError("", kind, "detect", ErrUnsupportedKind)
	}
}

// decodeText reads data as UTF-8, replacing invalid sequences with U+FFFD.
func decodeText(data []byte) string {
	s := string(data)
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
