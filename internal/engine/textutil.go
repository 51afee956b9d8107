package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// UserAgentBot identifies plain API requests.
const UserAgentBot = "GoNotes/1.0"

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
	newlineRunRe = regexp.MustCompile(`\n{2,}`)
)

// CleanHTML strips HTML tags, decodes entities and trims whitespace.
// Caption XML often carries double-escaped entities such as &amp;#39;.
func CleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(html.UnescapeString(s))
	return strings.TrimSpace(s)
}

// Normalize cleans a model response for display and export:
// non-ASCII bytes are dropped, **bold** spans are unwrapped and runs of
// blank lines collapse to a single newline.
//
// Non-ASCII is removed first so that stripping it can never join two
// asterisk pairs into a new span; unwrapping repeats until nothing matches.
// Together this makes Normalize idempotent.
func Normalize(s string) string {
	s = nonASCIIRe.ReplaceAllString(s, "")
	for boldRe.MatchString(s) {
		s = boldRe.ReplaceAllString(s, "${1}")
	}
	return newlineRunRe.ReplaceAllString(s, "\n")
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. limit <= 0 disables truncation.
func TruncateRunes(s string, limit int, suffix string) string {
	if limit <= 0 {
		return s
	}
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}
