package mirror

import (
	"path/filepath"
	"strconv"
	"strings"
)

// illegalNameChars are the characters not legal in Windows file and folder
// names. Sanitized names are legal on every platform the mirror targets.
const illegalNameChars = `~#%&*{}/\:<>?|"`

// SanitizeName replaces every illegal character in a remote title with an
// underscore. Idempotent: no illegal character can reappear. No length
// truncation, no Unicode normalization.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalNameChars, r) {
			return '_'
		}

		return r
	}, name)
}

// BuildLocalPath synthesizes the local path a remote file downloads to.
// The title's own extension wins over the resolved suffix, even when the
// two disagree about the content format. When the disambiguation index i
// is greater than zero, "_<i>" is inserted between base name and extension
// to keep same-titled remote files from overwriting each other.
// Only the base name is sanitized; the extension is carried verbatim.
func BuildLocalPath(dir, title, suffix string, i int) string {
	base, ext := splitTitle(title)
	if ext == "" {
		ext = suffix
	}

	name := SanitizeName(base)
	if i > 0 {
		name += "_" + strconv.Itoa(i)
	}

	return filepath.Join(dir, name+ext)
}

// splitTitle splits a title into base name and extension at the last dot.
// A leading-dot name with no other dots (".bashrc") has no extension.
func splitTitle(title string) (string, string) {
	sep := strings.LastIndexByte(title, '/')

	dot := strings.LastIndexByte(title, '.')
	if dot <= sep {
		return title, ""
	}

	// All dots between the separator and the candidate means the name is
	// a dotfile, not a base+extension pair.
	for j := sep + 1; j < dot; j++ {
		if title[j] != '.' {
			return title[:dot], title[dot:]
		}
	}

	return title, ""
}
