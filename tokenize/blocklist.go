/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tokenize

// Blocklist holds tag tokens that are never shown or compared.
// A nil *Blocklist blocks nothing.
type Blocklist struct {
	tokens map[string]struct{}
}

// NewBlocklist blocks the tokens found in tokens after tokenizing them.
func NewBlocklist(tokens ...string) *Blocklist {
	return &Blocklist{tokens: Set(Tokenize(tokens))}
}

// Has reports whether token is blocked.
func (b *Blocklist) Has(token string) bool {
	if b == nil {
		return false
	}
	_, ok := b.tokens[token]

	return ok
}

// Len returns the number of blocked tokens.
func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}

	return len(b.tokens)
}

// Filter returns the tokens that are not blocked, keeping their order.
func (b *Blocklist) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if b.Has(t) {
			continue
		}
		out = append(out, t)
	}

	return out
}
