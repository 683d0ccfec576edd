package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems and object stores
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*#%&{}$!'@+=` + "`" + `]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`\s+`)
	// Runs of separators left behind after cleanup
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename turns an uploaded file name into a safe object name.
// The extension is kept (lower-cased), the rest is stripped of characters
// that break paths or URLs and whitespace becomes dashes.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(filename))
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = whitespaceChars.ReplaceAllString(strings.TrimSpace(name), "-")
	name = repeatedDashes.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")

	// Limit length (most filesystems support 255, leave room for prefixes)
	if len(name) > 100 {
		name = strings.Trim(name[:100], "-.")
	}

	if name == "" || name == "." {
		name = "file"
	}

	ext = invalidFilenameChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}

	return name + ext
}
