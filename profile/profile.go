/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package profile turns heterogeneous character records into canonical
// profiles that the feedback engine can compare.
package profile

import (
	"github.com/Seednode/guessr/metric"
	"github.com/Seednode/guessr/tokenize"
)

// WorkKind mirrors the bangumi subject types a work can have.
type WorkKind string

const (
	KindUnknown WorkKind = ""
	KindBook    WorkKind = "book"
	KindAnime   WorkKind = "anime"
	KindMusic   WorkKind = "music"
	KindGame    WorkKind = "game"
	KindReal    WorkKind = "real"
)

func kindFromSubjectType(t int64) WorkKind {
	switch t {
	case 1:
		return KindBook
	case 2:
		return KindAnime
	case 3:
		return KindMusic
	case 4:
		return KindGame
	case 6:
		return KindReal
	default:
		return KindUnknown
	}
}

// Work is one title a character appears in.
type Work struct {
	Name string   `json:"name"`
	Kind WorkKind `json:"kind,omitempty"`
}

// Profile is the canonical form of one character. Profiles are built once
// by a Normalizer and never modified afterwards.
type Profile struct {
	ID             int                 `json:"id,omitempty"`
	HasID          bool                `json:"-"`
	Name           string              `json:"name"`
	PrimaryName    string              `json:"primaryName"`
	TranslatedName string              `json:"translatedName"`
	Aliases        []string            `json:"aliases"`
	Attributes     map[string][]string `json:"attributes"`
	Tags           []string            `json:"tags"`
	WorkTags       []string            `json:"workTags"`
	Works          []Work              `json:"works"`
	Summary        string              `json:"summary,omitempty"`
	Image          string              `json:"image,omitempty"`

	Popularity         metric.Value `json:"popularity"`
	HighestRating      metric.Value `json:"highestRating"`
	EarliestAppearance metric.Value `json:"earliestAppearance"`
	LatestAppearance   metric.Value `json:"latestAppearance"`
}

// Attribute returns the tokens stored for key, or nil for a nil profile.
func (p *Profile) Attribute(key string) []string {
	if p == nil {
		return nil
	}

	return p.Attributes[key]
}

// Names lists every name the profile can be found by: the raw name, the
// primary and translated names, then the aliases.
func (p *Profile) Names() []string {
	if p == nil {
		return nil
	}

	names := make([]string, 0, len(p.Aliases)+3)
	for _, n := range append([]string{p.Name, p.PrimaryName, p.TranslatedName}, p.Aliases...) {
		if n != "" {
			names = append(names, n)
		}
	}

	return tokenize.Unique(names)
}

// DisplayName picks the name shown to players.
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.PrimaryName != "":
		return p.PrimaryName
	case p.TranslatedName != "":
		return p.TranslatedName
	default:
		return p.Name
	}
}

// VisibleWorks returns the works shown for the includeGame setting, keeping
// duplicates. Game works are dropped when includeGame is false, unless every
// work is a game, in which case all works are kept.
func (p *Profile) VisibleWorks(includeGame bool) []Work {
	if p == nil {
		return nil
	}
	if includeGame {
		return p.Works
	}

	filtered := make([]Work, 0, len(p.Works))
	for _, w := range p.Works {
		if w.Kind != KindGame {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return p.Works
	}

	return filtered
}

// WorkNames returns the names of VisibleWorks.
func (p *Profile) WorkNames(includeGame bool) []string {
	works := p.VisibleWorks(includeGame)
	if works == nil {
		return nil
	}

	names := make([]string, 0, len(works))
	for _, w := range works {
		names = append(names, w.Name)
	}

	return names
}
