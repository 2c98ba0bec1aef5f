// Package ingest discovers extractor output files on disk, either by walking a directory
// once or by watching directories for new and updated files.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/statement-tables/constants"
)

// ExtSet builds a lookup set from a list of extensions. An empty list yields nil, which
// means the default constants.AllowedExtensions.
func ExtSet(exts []string) map[string]struct{} {
	var set map[string]struct{}
	for _, e := range exts {
		e = constants.NormalizeExt(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if set == nil {
			set = map[string]struct{}{}
		}
		set[e] = struct{}{}
	}
	return set
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

func allowed(path string, exts map[string]struct{}) bool {
	return constants.IsAllowedExt(filepath.Ext(path), exts)
}
