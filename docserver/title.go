package docserver

import (
	"regexp"
	"strings"
)

var (
	unsafeTitleChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-\sçğıöşüÇĞİÖŞÜ]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	docExt           = regexp.MustCompile(`(?i)\.docx?$`)
)

// SanitizeTitle drops characters outside letters (Turkish included), digits,
// "_", ".", "-" and spaces, then collapses whitespace.
func SanitizeTitle(title string) string {
	s := unsafeTitleChars.ReplaceAllString(title, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ReplaceDocExt swaps a trailing .doc or .docx (any case) for ext.
func ReplaceDocExt(name, ext string) string {
	return docExt.ReplaceAllString(name, ext)
}

// TrimDocExt removes a trailing .doc or .docx (any case).
func TrimDocExt(name string) string {
	return docExt.ReplaceAllString(name, "")
}

// replaceExt swaps a trailing from extension (any case) for to.
func replaceExt(name, from, to string) string {
	if len(name) >= len(from) && strings.EqualFold(name[len(name)-len(from):], from) {
		return name[:len(name)-len(from)] + to
	}
	return name
}
