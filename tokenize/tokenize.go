/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package tokenize splits loosely formatted dataset values into atomic
// tokens and derives the lookup keys used to match character names.
package tokenize

import (
	"fmt"
	"strings"
	"unicode"
)

// isDelimiter reports whether r separates two tokens: slashes, Chinese and
// Western commas, semicolons, middle dots and any whitespace.
func isDelimiter(r rune) bool {
	switch r {
	case '/', '、', '，', ',', '；', ';', '·':
		return true
	}
	return unicode.IsSpace(r)
}

// Tokenize flattens value and splits every string it contains into trimmed,
// non-empty tokens. Order is preserved and duplicates are kept.
func Tokenize(value any) []string {
	out := []string{}

	return appendTokens(out, value)
}

func appendTokens(out []string, value any) []string {
	switch v := value.(type) {
	case nil:
		return out
	case string:
		for _, part := range strings.FieldsFunc(v, isDelimiter) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	case []string:
		for _, s := range v {
			out = appendTokens(out, s)
		}
		return out
	case []any:
		for _, item := range v {
			out = appendTokens(out, item)
		}
		return out
	case fmt.Stringer:
		return appendTokens(out, v.String())
	default:
		return appendTokens(out, fmt.Sprint(v))
	}
}

// Unique returns tokens with later duplicates removed.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))

	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}

// Set builds a membership set from tokens.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}

	return set
}
