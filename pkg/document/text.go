package document

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// LoadText returns the whole UTF-8 file as a single section.
func LoadText(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, errors.New("text file is not valid UTF-8")
	}
	return []Section{{Index: 0, Content: normalizeWhitespace(string(data))}}, nil
}

var (
	reSpaces   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n+`)
)

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	// Preserve newlines but collapse runs
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
