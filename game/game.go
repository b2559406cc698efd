/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package game runs a single guessing session: one hidden answer, a fixed
// number of attempts and the history of guesses made so far.
package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/guessr/feedback"
	"github.com/Seednode/guessr/index"
	"github.com/Seednode/guessr/profile"
)

const DefaultMaxAttempts = 10

var (
	ErrNoCandidates     = errors.New("no character satisfies the game settings")
	ErrGameOver         = errors.New("game is over")
	ErrUnknownCharacter = errors.New("unknown character")
	ErrAlreadyGuessed   = errors.New("character already guessed")
)

type Status string

const (
	Playing     Status = "playing"
	Won         Status = "won"
	Lost        Status = "lost"
	Surrendered Status = "surrendered"
)

// Rand is the randomness a game draws from. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	feedback.Rand
	IntN(n int) int
	Perm(n int) []int
}

type Options struct {
	Settings    feedback.Settings
	Attributes  []profile.AttributeDef
	MaxAttempts int

	// HintThresholds reveals the i-th summary hint once the attempts left
	// drop to HintThresholds[i] or below.
	HintThresholds []int
	// ImageHintAt reveals the answer's image at that many attempts left.
	// Zero disables it.
	ImageHintAt int
	// TimeLimit is advisory; whoever drives the game calls TimeUp.
	TimeLimit time.Duration

	Rand   Rand
	Answer *profile.Profile
}

// GuessRecord is one accepted guess. It is never modified once recorded.
type GuessRecord struct {
	Turn     int             `json:"turn"`
	Player   string          `json:"player,omitempty"`
	ID       int             `json:"id,omitempty"`
	Name     string          `json:"name"`
	Image    string          `json:"image,omitempty"`
	Correct  bool            `json:"correct"`
	Feedback feedback.Record `json:"feedback"`
	At       time.Time       `json:"at"`
}

// State is a point-in-time view of a game that is safe to send to players.
type State struct {
	Status       Status            `json:"status"`
	AttemptsLeft int               `json:"attemptsLeft"`
	MaxAttempts  int               `json:"maxAttempts"`
	Guesses      int               `json:"guesses"`
	Hints        []string          `json:"hints"`
	Image        string            `json:"image,omitempty"`
	TimeLimit    int               `json:"timeLimit,omitempty"`
	Settings     feedback.Settings `json:"settings"`
	Answer       *profile.Profile  `json:"answer,omitempty"`
}

type Game struct {
	mu sync.Mutex

	idx    *index.Index
	answer *profile.Profile
	gen    *feedback.Generator
	opts   Options

	hints        []string
	status       Status
	attemptsLeft int
	history      []GuessRecord
	guessed      map[*profile.Profile]struct{}
}

// New starts a game. Unless opts.Answer is set, the answer is drawn from the
// canonical profiles of idx that satisfy opts.Settings.
func New(idx *index.Index, opts Options) (*Game, error) {
	opts.Settings = opts.Settings.Normalize()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Attributes == nil {
		opts.Attributes = profile.DefaultSchema().Attributes
	}
	if opts.Rand == nil {
		opts.Rand = feedback.NewRand(0)
	}

	answer := opts.Answer
	if answer == nil {
		candidates := Candidates(idx, opts.Settings)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: tags [%s], years %d-%d", ErrNoCandidates,
				strings.Join(opts.Settings.MetaTags, ", "), opts.Settings.StartYear, opts.Settings.EndYear)
		}
		answer = candidates[opts.Rand.IntN(len(candidates))]
	}

	g := &Game{
		idx:          idx,
		answer:       answer,
		gen:          feedback.NewGenerator(idx, opts.Attributes, opts.Settings, opts.Rand),
		opts:         opts,
		status:       Playing,
		attemptsLeft: opts.MaxAttempts,
		history:      []GuessRecord{},
		guessed:      make(map[*profile.Profile]struct{}),
	}
	g.hints = pickHints(answer.Summary, len(opts.HintThresholds), opts.Rand)

	return g, nil
}

// Candidates lists the profiles a game may pick as its answer.
func Candidates(idx *index.Index, s feedback.Settings) []*profile.Profile {
	var out []*profile.Profile
	for _, p := range idx.Profiles() {
		if idx.Canonical(p) && s.Satisfies(p) {
			out = append(out, p)
		}
	}

	return out
}

// Guess submits a guess by name.
func (g *Game) Guess(name string) (GuessRecord, error) {
	return g.GuessBy("", name)
}

// GuessBy submits a guess on behalf of player.
func (g *Game) GuessBy(player, name string) (GuessRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != Playing {
		return GuessRecord{}, ErrGameOver
	}

	p, ok := g.idx.ResolveByName(name)
	if !ok {
		return GuessRecord{}, fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
	}
	if _, ok := g.guessed[p]; ok {
		return GuessRecord{}, fmt.Errorf("%w: %s", ErrAlreadyGuessed, p.DisplayName())
	}
	g.guessed[p] = struct{}{}

	rec := GuessRecord{
		Turn:     len(g.history) + 1,
		Player:   player,
		ID:       p.ID,
		Name:     p.DisplayName(),
		Image:    p.Image,
		Correct:  p == g.answer,
		Feedback: g.gen.Compare(p, g.answer),
		At:       time.Now(),
	}
	g.history = append(g.history, rec)
	g.attemptsLeft--

	switch {
	case rec.Correct:
		g.status = Won
	case g.attemptsLeft <= 0:
		g.status = Lost
	}

	return rec, nil
}

// TimeUp spends an attempt without a guess.
func (g *Game) TimeUp() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != Playing {
		return ErrGameOver
	}

	g.attemptsLeft--
	if g.attemptsLeft <= 0 {
		g.status = Lost
	}

	return nil
}

func (g *Game) Surrender() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != Playing {
		return ErrGameOver
	}
	g.status = Surrendered

	return nil
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.status
}

func (g *Game) Over() bool {
	return g.Status() != Playing
}

// Answer returns the answer once the game is over.
func (g *Game) Answer() (*profile.Profile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == Playing {
		return nil, false
	}

	return g.answer, true
}

// Hints returns the summary hints unlocked so far. Every hint is shown once
// the game is over.
func (g *Game) Hints() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.revealedHints()
}

func (g *Game) revealedHints() []string {
	out := []string{}
	for i, h := range g.hints {
		if g.status != Playing || g.attemptsLeft <= g.opts.HintThresholds[i] {
			out = append(out, h)
		}
	}

	return out
}

func (g *Game) History() []GuessRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.history)
}

func (g *Game) Settings() feedback.Settings {
	return g.opts.Settings
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := State{
		Status:       g.status,
		AttemptsLeft: g.attemptsLeft,
		MaxAttempts:  g.opts.MaxAttempts,
		Guesses:      len(g.history),
		Hints:        g.revealedHints(),
		TimeLimit:    int(g.opts.TimeLimit / time.Second),
		Settings:     g.opts.Settings,
	}

	over := g.status != Playing
	if over || (g.opts.ImageHintAt > 0 && g.attemptsLeft <= g.opts.ImageHintAt) {
		s.Image = g.answer.Image
	}
	if over {
		s.Answer = g.answer
	}

	return s
}
