/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package index resolves player-entered names and ids to profiles.
package index

import (
	"strings"

	"github.com/Seednode/guessr/profile"
	"github.com/Seednode/guessr/tokenize"
)

const DefaultSearchLimit = 10

// Index is read-only once built and may be shared between goroutines.
type Index struct {
	profiles   []*profile.Profile
	byName     map[string]*profile.Profile
	byID       map[int]*profile.Profile
	keys       [][]string
	collisions int
}

// New registers every name of every profile under its normalized form.
// When two profiles share a name, the one registered first keeps it.
func New(profiles []*profile.Profile) *Index {
	idx := &Index{
		profiles: make([]*profile.Profile, 0, len(profiles)),
		byName:   make(map[string]*profile.Profile),
		byID:     make(map[int]*profile.Profile),
	}

	for _, p := range profiles {
		if p == nil {
			continue
		}
		idx.profiles = append(idx.profiles, p)

		var keys []string
		for _, name := range p.Names() {
			key := tokenize.NormalizeName(name)
			if key == "" {
				continue
			}
			keys = append(keys, key)

			if owner, ok := idx.byName[key]; ok {
				if owner != p {
					idx.collisions++
				}
				continue
			}
			idx.byName[key] = p
		}
		idx.keys = append(idx.keys, tokenize.Unique(keys))

		if p.HasID {
			if _, ok := idx.byID[p.ID]; !ok {
				idx.byID[p.ID] = p
			}
		}
	}

	return idx
}

// Len returns the number of registered profiles.
func (idx *Index) Len() int {
	return len(idx.profiles)
}

// Collisions counts names that were already taken by an earlier profile.
func (idx *Index) Collisions() int {
	return idx.collisions
}

// Profiles returns the profiles in registration order.
func (idx *Index) Profiles() []*profile.Profile {
	out := make([]*profile.Profile, len(idx.profiles))
	copy(out, idx.profiles)

	return out
}

// ResolveByName tries each candidate in order and returns the first hit.
func (idx *Index) ResolveByName(candidates ...string) (*profile.Profile, bool) {
	for _, c := range candidates {
		key := tokenize.NormalizeName(c)
		if key == "" {
			continue
		}
		if p, ok := idx.byName[key]; ok {
			return p, true
		}
	}

	return nil, false
}

// ResolveByID finds a profile by its numeric id. Profiles loaded from
// name-only datasets have no id and are never returned.
func (idx *Index) ResolveByID(id int) (*profile.Profile, bool) {
	p, ok := idx.byID[id]

	return p, ok
}

// Canonical reports whether p is what its own primary name resolves to.
func (idx *Index) Canonical(p *profile.Profile) bool {
	if p == nil {
		return false
	}
	owner, ok := idx.ResolveByName(p.DisplayName())

	return ok && owner == p
}

// Search returns profiles with a name containing keyword, one entry per
// display name, in registration order. The bool reports whether results
// remain past the returned page.
func (idx *Index) Search(keyword string, limit, offset int) ([]*profile.Profile, bool) {
	needle := tokenize.NormalizeName(keyword)
	if needle == "" {
		return nil, false
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	var (
		matched []*profile.Profile
		seen    = make(map[string]struct{})
	)
	for i, p := range idx.profiles {
		if !containsAny(idx.keys[i], needle) {
			continue
		}

		display := tokenize.NormalizeName(p.DisplayName())
		if _, ok := seen[display]; ok {
			continue
		}
		seen[display] = struct{}{}

		matched = append(matched, p)
	}

	if offset >= len(matched) {
		return nil, false
	}
	end := min(offset+limit, len(matched))

	return matched[offset:end], end < len(matched)
}

func containsAny(keys []string, needle string) bool {
	for _, k := range keys {
		if strings.Contains(k, needle) {
			return true
		}
	}

	return false
}
