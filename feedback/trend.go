/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feedback

import (
	"strconv"

	"github.com/Seednode/guessr/metric"
)

// Direction points from the guessed value toward the answer's.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Equal   Direction = "equal"
	NoTrend Direction = "none"
)

const (
	HintHigher = "go higher"
	HintLower  = "go lower"
)

// Decimal places shown for each metric.
const (
	PopularityPrecision = 0
	RatingPrecision     = 1
	YearPrecision       = 0
)

type TrendResult struct {
	Display string    `json:"display"`
	Trend   Direction `json:"trend"`
	Hint    string    `json:"hint,omitempty"`
}

// Trend compares the guessed value of a metric with the answer's. Display
// always shows the guessed value, never the answer.
func Trend(guess, answer metric.Value, precision int) TrendResult {
	g, gok := guess.Get()
	a, aok := answer.Get()
	if !gok || !aok {
		return unknownTrend()
	}

	r := TrendResult{Display: strconv.FormatFloat(g, 'f', precision, 64)}
	switch {
	case a > g:
		r.Trend, r.Hint = Up, HintHigher
	case a < g:
		r.Trend, r.Hint = Down, HintLower
	default:
		r.Trend = Equal
	}

	return r
}

func unknownTrend() TrendResult {
	return TrendResult{Display: Unknown, Trend: NoTrend}
}
