/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feedback

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/Seednode/guessr/index"
	"github.com/Seednode/guessr/profile"
)

// NewRand returns a PCG-backed generator. A zero seed draws one from
// crypto/rand so that every game shuffles differently.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		seed = binary.LittleEndian.Uint64(b[:])
	}

	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator compares characters by name using a shared index. It is safe
// for concurrent use only when its Rand is.
type Generator struct {
	idx      *index.Index
	attrs    []profile.AttributeDef
	settings Settings
	rand     Rand
}

func NewGenerator(idx *index.Index, attrs []profile.AttributeDef, s Settings, r Rand) *Generator {
	return &Generator{
		idx:      idx,
		attrs:    attrs,
		settings: s.Normalize(),
		rand:     r,
	}
}

func (g *Generator) Settings() Settings {
	return g.settings
}

func (g *Generator) Attributes() []profile.AttributeDef {
	return g.attrs
}

func (g *Generator) Compare(guess, answer *profile.Profile) Record {
	return Compare(g.attrs, guess, answer, g.settings, g.rand)
}

// CompareNames resolves each side through the index, trying its candidate
// names in order. A side that resolves to nothing compares as unknown.
func (g *Generator) CompareNames(guess, answer []string) Record {
	gp, _ := g.idx.ResolveByName(guess...)
	ap, _ := g.idx.ResolveByName(answer...)

	return g.Compare(gp, ap)
}
