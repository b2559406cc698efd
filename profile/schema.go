/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package profile

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// AttributeDef names one categorical trait compared between two characters.
type AttributeDef struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// Schema lists the dataset keys the normalizer reads. Every key is probed
// under basic_info first and at the top level of a record second.
type Schema struct {
	Attributes        []AttributeDef `yaml:"attributes" json:"attributes"`
	TagKeys           []string       `yaml:"tags" json:"tags"`
	WorkTagKeys       []string       `yaml:"work_tags" json:"workTags"`
	WorkKeys          []string       `yaml:"works" json:"works"`
	PrimaryNameKey    string         `yaml:"primary_name" json:"primaryName"`
	TranslatedNameKey string         `yaml:"translated_name" json:"translatedName"`
	AliasKey          string         `yaml:"aliases" json:"aliases"`
	BlockedTags       []string       `yaml:"blocked_tags" json:"blockedTags"`
}

var ErrInvalidSchema = errors.New("invalid schema")

func DefaultSchema() Schema {
	return Schema{
		Attributes: []AttributeDef{
			{Key: "种族", Label: "族谱"},
			{Key: "发色", Label: "发色"},
			{Key: "瞳色", Label: "瞳色"},
			{Key: "活动范围", Label: "活动范围"},
			{Key: "所属团体", Label: "所属团体"},
		},
		TagKeys:           []string{"萌点"},
		WorkTagKeys:       []string{"metaTags", "meta_tags", "networkTags"},
		WorkKeys:          []string{"初登场作品"},
		PrimaryNameKey:    "本名",
		TranslatedNameKey: "译名",
		AliasKey:          "别名",
	}
}

// LoadSchema decodes a YAML schema. Keys missing from the document keep
// their DefaultSchema values.
func LoadSchema(r io.Reader) (Schema, error) {
	s := DefaultSchema()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Schema{}, fmt.Errorf("decode schema: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Schema{}, err
	}

	return s, nil
}

// Validate checks that attribute keys are present and unique, filling empty
// labels with their key.
func (s *Schema) Validate() error {
	if len(s.Attributes) == 0 {
		return fmt.Errorf("%w: no attributes", ErrInvalidSchema)
	}

	seen := make(map[string]struct{}, len(s.Attributes))
	for i, def := range s.Attributes {
		if def.Key == "" {
			return fmt.Errorf("%w: attribute %d has no key", ErrInvalidSchema, i)
		}
		if _, ok := seen[def.Key]; ok {
			return fmt.Errorf("%w: duplicate attribute %q", ErrInvalidSchema, def.Key)
		}
		seen[def.Key] = struct{}{}

		if def.Label == "" {
			s.Attributes[i].Label = def.Key
		}
	}

	return nil
}
