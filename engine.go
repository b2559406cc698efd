/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Seednode/guessr/dataset"
	"github.com/Seednode/guessr/feedback"
	"github.com/Seednode/guessr/index"
	"github.com/Seednode/guessr/profile"
)

// engine is everything built once at startup and shared, read-only, by all
// requests and games.
type engine struct {
	schema   profile.Schema
	index    *index.Index
	settings feedback.Settings
	stats    dataset.Stats
}

func loadSchema(cfg *Config) (profile.Schema, error) {
	schema := profile.DefaultSchema()

	if cfg.schema != "" {
		f, err := os.Open(cfg.schema)
		if err != nil {
			return profile.Schema{}, err
		}
		defer f.Close()

		schema, err = profile.LoadSchema(f)
		if err != nil {
			return profile.Schema{}, fmt.Errorf("%s: %w", cfg.schema, err)
		}
	}

	schema.BlockedTags = append(schema.BlockedTags, cfg.blockedTags...)

	return schema, nil
}

func loadEngine(ctx context.Context, cfg *Config) (*engine, error) {
	startTime := time.Now()

	schema, err := loadSchema(cfg)
	if err != nil {
		return nil, err
	}
	n := profile.NewNormalizer(schema)

	var (
		profiles []*profile.Profile
		stats    dataset.Stats
	)
	if len(cfg.datasets) > 0 {
		profiles, stats, err = dataset.Load(ctx, n, cfg.datasets...)
	} else {
		profiles, stats, err = dataset.LoadSample(n)
	}
	if err != nil {
		return nil, err
	}

	e := &engine{
		schema:   schema,
		index:    index.New(profiles),
		settings: cfg.settings(),
		stats:    stats,
	}

	logf(cfg, "DATA: Loaded %d characters from %d file(s) in %s (%d records skipped)",
		stats.Profiles,
		stats.Files,
		time.Since(startTime).Round(time.Microsecond),
		stats.Skipped,
	)

	if c := e.index.Collisions(); c > 0 {
		logf(cfg, "DATA: %d name(s) already belonged to an earlier character and were ignored", c)
	}

	return e, nil
}

func (e *engine) generator(r feedback.Rand) *feedback.Generator {
	return feedback.NewGenerator(e.index, e.schema.Attributes, e.settings, r)
}
