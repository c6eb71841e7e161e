package format

import "strings"

// MarkdownV2Reserved lists the characters escaped for Telegram MarkdownV2.
// '*' is left out so templates can use bold.
const MarkdownV2Reserved = "_[]()~`>#+-=|{}.!\\"

// EscapeMarkdownV2 prefixes every reserved character with a backslash.
// It is not idempotent: escaping already escaped text doubles the backslashes.
func EscapeMarkdownV2(text string) string {
	if !strings.ContainsAny(text, MarkdownV2Reserved) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if strings.ContainsRune(MarkdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
