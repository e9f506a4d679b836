package intake

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".pdf":  {},
}

// normalizeExt returns the lower-cased extension when it is an accepted
// upload format, "" otherwise.
func normalizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if _, ok := allowedExts[ext]; !ok {
		return ""
	}
	return ext
}

func isPDFExt(ext string) bool { return ext == ".pdf" }

// buildStoredName generates a collision-resistant filename that preserves the
// original extension.
func buildStoredName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

// displayName reduces an uploaded path to its base name for labels.
func displayName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "upload"
	}
	return name
}
