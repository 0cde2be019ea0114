package presenter

import (
	"strings"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\._[](){}#|!+-=*~>` + "`"

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

// EscapeMarkdownV2 escapes every character Telegram reserves in MarkdownV2.
func EscapeMarkdownV2(input string) string {
	charsToEscape := 0

	for i := range len(input) {
		if mdV2Lookup[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if mdV2Lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Markdown renders the view as a Telegram MarkdownV2 message.
func Markdown(v View) string {
	switch v.Level {
	case LevelWarning:
		return "⚠️ " + EscapeMarkdownV2(v.Message)
	case LevelError:
		return "❌ " + EscapeMarkdownV2(v.Message)
	}

	var b strings.Builder

	b.WriteString("*")
	b.WriteString(EscapeMarkdownV2(v.Title))
	b.WriteString("*\n\n")
	b.WriteString(EscapeMarkdownV2(v.Summary))
	b.WriteString("\n\n")

	for i, metric := range v.Metrics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("_")
		b.WriteString(EscapeMarkdownV2(metric))
		b.WriteString("_")
	}

	return b.String()
}
