package constants

import "strings"

// AllowedExtensions holds the document types the upload endpoint accepts.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
}

// WordProcessorExtensions holds the formats that need PDF conversion before analysis.
var WordProcessorExtensions = map[string]struct{}{
	"doc":  {},
	"docx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether a file extension is in the allowed set.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsWordProcessorExt reports whether a file extension requires PDF conversion.
func IsWordProcessorExt(ext string) bool {
	_, ok := WordProcessorExtensions[NormalizeExt(ext)]
	return ok
}
