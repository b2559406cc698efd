/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"slices"
	"strings"
)

var maskReplacer = strings.NewReplacer("[mask]", "", "[/mask]", "")

func isSentenceBreak(r rune) bool {
	switch r {
	case '。', '？', '！', '、', '，', ',', '「', '」', '“', '”', '"', '!', '?':
		return true
	}

	return false
}

// Sentences splits a character summary into the fragments used as hints.
func Sentences(summary string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(maskReplacer.Replace(summary), isSentenceBreak) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}

// pickHints draws up to n distinct sentences of summary, keeping them in the
// order they appear in the summary.
func pickHints(summary string, n int, r Rand) []string {
	sentences := Sentences(summary)
	if n <= 0 || len(sentences) == 0 {
		return nil
	}

	order := r.Perm(len(sentences))[:min(n, len(sentences))]
	slices.Sort(order)

	hints := make([]string, 0, len(order))
	for _, i := range order {
		hints = append(hints, "……"+sentences[i]+"……")
	}

	return hints
}
