/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package dataset reads character dataset files and turns their records
// into profiles.
package dataset

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/Seednode/guessr/profile"
	"github.com/tidwall/gjson"
)

//go:embed sample/*.json
var sample embed.FS

const sampleFile = "sample/characters.json"

var ErrMalformed = errors.New("malformed dataset")

// Stats describes one load.
type Stats struct {
	Files    int
	Records  int
	Profiles int
	Skipped  int
}

// Load reads every file in order and normalizes its records. A file may hold
// a top-level array of records or an object with a "data" array.
func Load(ctx context.Context, n *profile.Normalizer, paths ...string) ([]*profile.Profile, Stats, error) {
	var (
		profiles []*profile.Profile
		stats    Stats
	)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, stats, fmt.Errorf("read dataset %s: %w", path, err)
		}

		loaded, err := Parse(n, data, &stats)
		if err != nil {
			return nil, stats, fmt.Errorf("parse dataset %s: %w", path, err)
		}

		profiles = append(profiles, loaded...)
	}

	return profiles, stats, nil
}

// LoadSample returns the profiles of the dataset bundled with the binary.
func LoadSample(n *profile.Normalizer) ([]*profile.Profile, Stats, error) {
	var stats Stats

	data, err := sample.ReadFile(sampleFile)
	if err != nil {
		return nil, stats, fmt.Errorf("read sample dataset: %w", err)
	}

	profiles, err := Parse(n, data, &stats)
	if err != nil {
		return nil, stats, fmt.Errorf("parse sample dataset: %w", err)
	}

	return profiles, stats, nil
}

// Parse normalizes the records of one JSON document, adding to stats.
func Parse(n *profile.Normalizer, data []byte, stats *Stats) ([]*profile.Profile, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	records := gjson.ParseBytes(data)
	if records.IsObject() {
		records = records.Get("data")
	}
	if !records.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of records", ErrMalformed)
	}

	stats.Files++

	var profiles []*profile.Profile
	records.ForEach(func(_, raw gjson.Result) bool {
		stats.Records++

		p := n.Normalize(raw)
		if p == nil {
			stats.Skipped++
			return true
		}

		stats.Profiles++
		profiles = append(profiles, p)

		return true
	})

	return profiles, nil
}
