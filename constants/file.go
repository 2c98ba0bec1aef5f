package constants

import "strings"

// AllowedExtensions holds the default extensions of extractor output files picked up by ingestion.
var AllowedExtensions = map[string]struct{}{
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) is in exts, or in AllowedExtensions when exts is nil.
func IsAllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = AllowedExtensions
	}
	_, ok := exts[NormalizeExt(ext)]
	return ok
}
