/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tokenize

import (
	"strings"
	"unicode"
)

// NormalizeName derives the key used to match a character name against the
// alias index. The result is never meant to be displayed.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if stripFromName(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.ToLower(b.String())
}

func stripFromName(r rune) bool {
	switch r {
	case '\'', '"', '`', '‘', '’', '“', '”',
		'\\', '·', '?', '？',
		'(', ')', '（', '）':
		return true
	}
	return unicode.IsSpace(r)
}
