/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feedback

import (
	"strings"

	"github.com/Seednode/guessr/profile"
	"github.com/Seednode/guessr/tokenize"
)

const (
	DefaultTagCap          = 5
	DefaultCharacterTagNum = 6
)

// Settings are the player-facing options of a game. The JSON field names
// are shared with browser clients.
type Settings struct {
	MetaTags        []string `json:"metaTags" yaml:"meta_tags"`
	SubjectTagNum   int      `json:"subjectTagNum" yaml:"subject_tag_num"`
	CharacterTagNum int      `json:"characterTagNum" yaml:"character_tag_num"`
	CommonTags      bool     `json:"commonTags" yaml:"common_tags"`
	IncludeGame     bool     `json:"includeGame" yaml:"include_game"`

	// StartYear and EndYear bound the years a candidate appeared in. Zero
	// leaves that end open.
	StartYear int `json:"startYear" yaml:"start_year"`
	EndYear   int `json:"endYear" yaml:"end_year"`
}

func DefaultSettings() Settings {
	return Settings{
		MetaTags:        []string{},
		SubjectTagNum:   DefaultTagCap,
		CharacterTagNum: DefaultCharacterTagNum,
		CommonTags:      true,
	}
}

// Normalize returns a copy with usable caps and trimmed, non-blank meta
// tags. A non-positive display cap falls back to DefaultTagCap. A negative
// character tag cap means no cap, and a negative year means no bound.
func (s Settings) Normalize() Settings {
	out := s
	if out.SubjectTagNum <= 0 {
		out.SubjectTagNum = DefaultTagCap
	}
	if out.CharacterTagNum < 0 {
		out.CharacterTagNum = 0
	}
	out.StartYear = max(out.StartYear, 0)
	out.EndYear = max(out.EndYear, 0)

	out.MetaTags = make([]string, 0, len(s.MetaTags))
	for _, tag := range s.MetaTags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out.MetaTags = append(out.MetaTags, tag)
		}
	}
	out.MetaTags = tokenize.Unique(out.MetaTags)

	return out
}

// TagPool lists the tags of p that take part in tag comparison: its own
// tags, capped at CharacterTagNum when positive, then the tags of its works
// when CommonTags is set. Work tags also stand in for a profile that has no
// tags of its own.
func TagPool(p *profile.Profile, s Settings) []string {
	if p == nil {
		return []string{}
	}

	tags := p.Tags
	if s.CharacterTagNum > 0 && len(tags) > s.CharacterTagNum {
		tags = tags[:s.CharacterTagNum]
	}

	pool := make([]string, 0, len(tags)+len(p.WorkTags))
	pool = append(pool, tags...)
	if s.CommonTags || len(pool) == 0 {
		pool = append(pool, p.WorkTags...)
	}

	return tokenize.Unique(pool)
}

// Satisfies reports whether the tag pool of p holds every meta tag and its
// appearances overlap the year range. With a year bound set, a profile of
// unknown years never qualifies.
func (s Settings) Satisfies(p *profile.Profile) bool {
	if !s.inYears(p) {
		return false
	}
	if len(s.MetaTags) == 0 {
		return true
	}

	pool := tokenize.Set(TagPool(p, s))
	for _, tag := range s.MetaTags {
		if _, ok := pool[tag]; !ok {
			return false
		}
	}

	return true
}

func (s Settings) inYears(p *profile.Profile) bool {
	if s.StartYear <= 0 && s.EndYear <= 0 {
		return true
	}
	if p == nil {
		return false
	}

	earliest, hasEarliest := p.EarliestAppearance.Get()
	latest, hasLatest := p.LatestAppearance.Get()
	switch {
	case !hasEarliest && !hasLatest:
		return false
	case !hasEarliest:
		earliest = latest
	case !hasLatest:
		latest = earliest
	}

	if s.StartYear > 0 && latest < float64(s.StartYear) {
		return false
	}
	if s.EndYear > 0 && earliest > float64(s.EndYear) {
		return false
	}

	return true
}
