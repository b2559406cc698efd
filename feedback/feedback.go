/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package feedback compares a guessed character with the answer and builds
// the record shown to the player for that guess.
package feedback

import (
	"math/rand/v2"

	"github.com/Seednode/guessr/profile"
	"github.com/Seednode/guessr/tokenize"
)

// Unknown stands in for a value that neither profile can supply.
const Unknown = "unknown"

// Rand shuffles the non-matching tags shown for a guess. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

type Attribute struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Tokens []string `json:"tokens"`
	Match  bool     `json:"match"`
}

type Tags struct {
	Guess  []string `json:"guess"`
	Shared []string `json:"shared"`
}

type SharedWorks struct {
	First string   `json:"first"`
	Count int      `json:"count"`
	List  []string `json:"list"`
}

type WorkToken struct {
	Name  string           `json:"name"`
	Kind  profile.WorkKind `json:"kind,omitempty"`
	Match bool             `json:"match"`
}

type Works struct {
	Guess  []WorkToken `json:"guess"`
	Answer []string    `json:"answer"`
}

// Record is the feedback for one guess. Its JSON form is read directly by
// browser clients.
type Record struct {
	Attributes        []Attribute `json:"touhouAttributes"`
	MetaTags          Tags        `json:"metaTags"`
	SharedAppearances SharedWorks `json:"shared_appearances"`
	Works             Works       `json:"touhouWorks"`

	Popularity         TrendResult `json:"popularity"`
	HighestRating      TrendResult `json:"highestRating"`
	EarliestAppearance TrendResult `json:"earliestAppearance"`
	LatestAppearance   TrendResult `json:"latestAppearance"`
}

// Compare builds the feedback for guess against answer. A nil profile on
// either side yields a record where nothing matches and every value is
// unknown. A nil r uses the math/rand/v2 top-level generator.
func Compare(attrs []profile.AttributeDef, guess, answer *profile.Profile, s Settings, r Rand) Record {
	s = s.Normalize()
	if r == nil {
		r = globalRand{}
	}

	if guess == nil || answer == nil {
		return unknownRecord(attrs)
	}

	rec := Record{
		Attributes: make([]Attribute, 0, len(attrs)),

		Popularity:         Trend(guess.Popularity, answer.Popularity, PopularityPrecision),
		HighestRating:      Trend(guess.HighestRating, answer.HighestRating, RatingPrecision),
		EarliestAppearance: Trend(guess.EarliestAppearance, answer.EarliestAppearance, YearPrecision),
		LatestAppearance:   Trend(guess.LatestAppearance, answer.LatestAppearance, YearPrecision),
	}

	for _, def := range attrs {
		rec.Attributes = append(rec.Attributes, compareAttribute(def, guess.Attribute(def.Key), answer.Attribute(def.Key)))
	}

	answerTags := tokenize.Set(TagPool(answer, s))
	shown := DisplayTags(TagPool(guess, s), answerTags, s.SubjectTagNum, r)
	rec.MetaTags = Tags{Guess: shown, Shared: intersect(shown, answerTags)}

	rec.Works, rec.SharedAppearances = compareWorks(guess.VisibleWorks(s.IncludeGame), answer.WorkNames(s.IncludeGame))

	return rec
}

func unknownRecord(attrs []profile.AttributeDef) Record {
	rec := Record{
		Attributes:        make([]Attribute, 0, len(attrs)),
		MetaTags:          Tags{Guess: []string{}, Shared: []string{}},
		SharedAppearances: SharedWorks{List: []string{}},
		Works:             Works{Guess: []WorkToken{}, Answer: []string{}},

		Popularity:         unknownTrend(),
		HighestRating:      unknownTrend(),
		EarliestAppearance: unknownTrend(),
		LatestAppearance:   unknownTrend(),
	}

	for _, def := range attrs {
		rec.Attributes = append(rec.Attributes, Attribute{Key: def.Key, Label: def.Label, Tokens: []string{Unknown}})
	}

	return rec
}

// compareAttribute matches when the two token lists share any token.
func compareAttribute(def profile.AttributeDef, guess, answer []string) Attribute {
	a := Attribute{Key: def.Key, Label: def.Label}

	if len(guess) == 0 {
		a.Tokens = []string{Unknown}
		return a
	}
	a.Tokens = append([]string(nil), guess...)

	if len(answer) == 0 {
		return a
	}
	want := tokenize.Set(answer)
	for _, t := range guess {
		if _, ok := want[t]; ok {
			a.Match = true
			break
		}
	}

	return a
}

// DisplayTags picks at most limit tags of pool to show: those in answer
// first, in pool order, then non-matching tags in shuffled order. A nil r
// shuffles with the global source.
func DisplayTags(pool []string, answer map[string]struct{}, limit int, r Rand) []string {
	if limit <= 0 || len(pool) == 0 {
		return []string{}
	}
	if r == nil {
		r = globalRand{}
	}

	matches := make([]string, 0, len(pool))
	rest := make([]string, 0, len(pool))
	for _, tag := range pool {
		if _, ok := answer[tag]; ok {
			matches = append(matches, tag)
		} else {
			rest = append(rest, tag)
		}
	}

	if len(matches) >= limit {
		return matches[:limit]
	}

	r.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	return append(matches, rest[:min(limit-len(matches), len(rest))]...)
}

func intersect(tokens []string, set map[string]struct{}) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			out = append(out, t)
		}
	}

	return out
}

// compareWorks flags each guessed work found among the answer's works.
// Shared works are counted once each, in the order the guess lists them.
func compareWorks(guess []profile.Work, answer []string) (Works, SharedWorks) {
	answerSet := tokenize.Set(answer)

	works := Works{
		Guess:  make([]WorkToken, 0, len(guess)),
		Answer: append([]string{}, answer...),
	}

	var shared []string
	for _, w := range guess {
		_, ok := answerSet[w.Name]
		works.Guess = append(works.Guess, WorkToken{Name: w.Name, Kind: w.Kind, Match: ok})
		if ok {
			shared = append(shared, w.Name)
		}
	}

	list := tokenize.Unique(shared)
	summary := SharedWorks{Count: len(list), List: list}
	if len(list) > 0 {
		summary.First = list[0]
	}

	return works, summary
}
