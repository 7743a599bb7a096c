package parser

import (
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	numericRefRe  = regexp.MustCompile(`&#\d+;`)
	qpSoftBreakRe = regexp.MustCompile(`=\r?\n`)
	qpEscapeRunRe = regexp.MustCompile(`(?i)(?:=[0-9A-F]{2})+`)
	whitespaceRe  = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
)

// Normalize turns a raw email body (plain text, HTML or quoted-printable)
// into a single line of prose. It never fails.
func Normalize(raw string) string {
	text := styleBlockRe.ReplaceAllString(raw, "")
	text = scriptBlockRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, " ")

	// Order matters: "&amp;lt;" ends up as "<"
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = numericRefRe.ReplaceAllString(text, "")

	text = qpSoftBreakRe.ReplaceAllString(text, "")
	text = qpEscapeRunRe.ReplaceAllStringFunc(text, decodeQPRun)

	return whitespaceRe.ReplaceAllString(text, " ")
}

// decodeQPRun decodes a run of =XX escapes. Runs that form valid UTF-8
// are kept as is, anything else is read as Latin-1.
func decodeQPRun(run string) string {
	encoded := strings.ReplaceAll(run, "=", "")
	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		return run
	}
	if utf8.Valid(decoded) {
		return string(decoded)
	}

	var b strings.Builder
	for _, c := range decoded {
		b.WriteRune(rune(c))
	}
	return b.String()
}
