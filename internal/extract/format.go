package extract

import (
	"path/filepath"
	"strings"
)

// Format identifies how a resolved file is decoded.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
	// FormatFallback covers every other suffix; such content is parsed as HTML.
	FormatFallback Format = "fallback"
)

// Known reports whether f is one of the dedicated document formats.
func (f Format) Known() bool {
	switch f {
	case FormatPDF, FormatDOC, FormatDOCX:
		return true
	default:
		return false
	}
}

func (f Format) String() string { return string(f) }

// Suffix returns the lowercase text after the last '.' of the final path segment.
// It returns "" when the segment has no dot.
func Suffix(p string) string {
	base := filepath.Base(p)
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// DetectFormat maps the path suffix onto a Format.
func DetectFormat(p string) Format {
	switch Suffix(p) {
	case "pdf":
		return FormatPDF
	case "doc":
		return FormatDOC
	case "docx":
		return FormatDOCX
	default:
		return FormatFallback
	}
}
