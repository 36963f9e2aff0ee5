package prompt

import (
	"regexp"
	"strings"
)

var (
	tableGlyphs   = regexp.MustCompile(`[|│┃─━┼┌┐└┘├┤┬┴╔╗╚╝║═]+|[-_=]{2,}`)
	splitThousand = regexp.MustCompile(`(\d)(?:, ?| )(\d{3})\b`)
	innerSpaces   = regexp.MustCompile(`[ \t]{2,}`)
	qtyAtPrice    = regexp.MustCompile(`^\d+([.,]\d+)?\s*[@xX*]\s*\d+([.,]\d+)?`)
)

// CleanReceiptText prepares OCR output of a receipt for the model: table
// glyphs become spaces, thousands split by OCR are rejoined ("1, 250" ->
// "1250"), blank lines are removed and "qty@price" continuation lines are
// merged into the product line above them.
func CleanReceiptText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = tableGlyphs.ReplaceAllString(s, " ")
	s = innerSpaces.ReplaceAllString(s, " ")
	s = splitThousand.ReplaceAllString(s, "$1$2")

	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if qtyAtPrice.MatchString(line) && len(out) > 0 {
			out[len(out)-1] += " " + line
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
