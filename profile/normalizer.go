/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package profile

import (
	"strconv"
	"strings"

	"github.com/Seednode/guessr/metric"
	"github.com/Seednode/guessr/tokenize"
	"github.com/tidwall/gjson"
)

const basicInfoKey = "basic_info"

// Fields that do not depend on the schema, in probe order.
var (
	idKeys          = []string{"id", "remoteId", "characterId"}
	nameKeys        = []string{"name", "角色", "remoteName", "localName"}
	summaryKeys     = []string{"summary", "简介"}
	imageKeys       = []string{"image", "avatar", "images.medium", "images.grid"}
	appearanceKeys  = []string{"appearances", "subjects"}
	popularityKeys  = []string{"popularity", "collects"}
	ratingKeys      = []string{"highestRating", "highest_rating"}
	earliestKeys    = []string{"earliestAppearance", "earliest_appearance"}
	latestKeys      = []string{"latestAppearance", "latest_appearance"}
	subjectNameKeys = []string{"name_cn", "nameCn", "name"}
)

// Normalizer converts raw dataset records into profiles. The probe paths
// for every schema field are resolved once, when the normalizer is built.
type Normalizer struct {
	schema  Schema
	blocked *tokenize.Blocklist

	primary    []string
	translated []string
	aliases    []string
	attributes map[string][]string
	tags       []string
	workTags   []string
	works      []string
}

func NewNormalizer(schema Schema) *Normalizer {
	n := &Normalizer{
		schema:     schema,
		blocked:    tokenize.NewBlocklist(schema.BlockedTags...),
		primary:    probePaths(schema.PrimaryNameKey),
		translated: probePaths(schema.TranslatedNameKey),
		aliases:    probePaths(schema.AliasKey),
		attributes: make(map[string][]string, len(schema.Attributes)),
	}

	for _, def := range schema.Attributes {
		n.attributes[def.Key] = probePaths(def.Key)
	}
	for _, key := range schema.TagKeys {
		n.tags = append(n.tags, probePaths(key)...)
	}
	for _, key := range schema.WorkTagKeys {
		n.workTags = append(n.workTags, probePaths(key)...)
	}
	for _, key := range schema.WorkKeys {
		n.works = append(n.works, probePaths(key)...)
	}

	return n
}

func (n *Normalizer) Schema() Schema {
	return n.schema
}

func (n *Normalizer) Blocklist() *tokenize.Blocklist {
	return n.blocked
}

// probePaths returns the gjson paths for key, nested location first.
func probePaths(key string) []string {
	if key == "" {
		return nil
	}
	esc := escapeKey(key)

	return []string{basicInfoKey + "." + esc, esc}
}

// escapeKey quotes gjson path syntax inside a dataset key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

// first returns the first path whose value is present.
func first(raw gjson.Result, paths []string) gjson.Result {
	for _, p := range paths {
		if r := raw.Get(p); present(r) {
			return r
		}
	}

	return gjson.Result{}
}

// all collects the values of every present path, in order.
func all(raw gjson.Result, paths []string) []string {
	var out []string
	for _, p := range paths {
		if r := raw.Get(p); present(r) {
			out = append(out, stringsOf(r)...)
		}
	}

	return out
}

func present(r gjson.Result) bool {
	switch {
	case !r.Exists(), r.Type == gjson.Null:
		return false
	case r.Type == gjson.String:
		return strings.TrimSpace(r.Str) != ""
	default:
		return true
	}
}

// stringsOf flattens a raw value into trimmed strings. Objects contribute
// their name field, which is how tag records are shaped.
func stringsOf(r gjson.Result) []string {
	var out []string

	switch {
	case r.IsArray():
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, stringsOf(v)...)
			return true
		})
	case r.IsObject():
		for _, key := range []string{"name", "value", "v"} {
			if v := r.Get(key); v.Type == gjson.String || v.Type == gjson.Number {
				out = append(out, stringsOf(v)...)
				break
			}
		}
	case r.Type == gjson.String, r.Type == gjson.Number:
		if s := strings.TrimSpace(r.String()); s != "" {
			out = append(out, s)
		}
	}

	return out
}

func firstString(raw gjson.Result, paths []string) string {
	if values := stringsOf(first(raw, paths)); len(values) > 0 {
		return values[0]
	}

	return ""
}

// Normalize builds the profile for one raw record. It returns nil when raw
// is not a JSON object.
func (n *Normalizer) Normalize(raw gjson.Result) *Profile {
	if !raw.IsObject() {
		return nil
	}

	p := &Profile{
		Name:       firstString(raw, expand(nameKeys)),
		Attributes: make(map[string][]string, len(n.schema.Attributes)),
		Summary:    firstString(raw, expand(summaryKeys)),
		Image:      firstString(raw, expand(imageKeys)),
	}

	if id := first(raw, expand(idKeys)); id.Exists() {
		if v, err := strconv.Atoi(strings.TrimSpace(id.String())); err == nil {
			p.ID, p.HasID = v, true
		}
	}

	primaries := stringsOf(first(raw, n.primary))
	translations := stringsOf(first(raw, n.translated))
	if len(primaries) > 0 {
		p.PrimaryName = primaries[0]
	} else {
		p.PrimaryName = p.Name
	}
	if len(translations) > 0 {
		p.TranslatedName = translations[0]
	}

	aliases := []string{p.Name}
	aliases = append(aliases, primaries...)
	aliases = append(aliases, translations...)
	aliases = append(aliases, stringsOf(first(raw, n.aliases))...)
	p.Aliases = tokenize.Unique(nonEmpty(aliases))

	for _, def := range n.schema.Attributes {
		p.Attributes[def.Key] = tokenize.Tokenize(stringsOf(first(raw, n.attributes[def.Key])))
	}

	p.Tags = n.blocked.Filter(tokenize.Unique(tokenize.Tokenize(all(raw, n.tags))))

	for _, w := range tokenize.Tokenize(all(raw, n.works)) {
		p.Works = append(p.Works, Work{Name: w})
	}

	workTags := tokenize.Tokenize(all(raw, n.workTags))
	workTags = append(workTags, applyAppearances(p, first(raw, expand(appearanceKeys)))...)
	p.WorkTags = n.blocked.Filter(tokenize.Unique(workTags))

	p.Popularity = metric.NonNegative(metric.ParseResult(first(raw, expand(popularityKeys)))).Or(p.Popularity)
	p.HighestRating = metric.NonNegative(metric.ParseResult(first(raw, expand(ratingKeys)))).Or(p.HighestRating)
	p.EarliestAppearance = metric.NonNegative(metric.ParseResult(first(raw, expand(earliestKeys)))).Or(p.EarliestAppearance)
	p.LatestAppearance = metric.NonNegative(metric.ParseResult(first(raw, expand(latestKeys)))).Or(p.LatestAppearance)

	return p
}

// applyAppearances adds subject records to the works, derives metrics from
// them and returns the subject tags. Only main and supporting roles count.
func applyAppearances(p *Profile, subjects gjson.Result) []string {
	if !subjects.IsArray() {
		return nil
	}

	var tags []string
	subjects.ForEach(func(_, s gjson.Result) bool {
		if !s.IsObject() {
			return true
		}
		if staff := s.Get("staff").String(); staff != "" && staff != "主角" && staff != "配角" {
			return true
		}

		name := firstString(s, subjectNameKeys)
		if name == "" {
			return true
		}
		p.Works = append(p.Works, Work{Name: name, Kind: kindFromSubjectType(s.Get("type").Int())})

		if year := subjectYear(s.Get("date").String()); year.Valid() {
			p.EarliestAppearance = metric.Min(p.EarliestAppearance, year)
			p.LatestAppearance = metric.Max(p.LatestAppearance, year)
		}

		rating := first(s, []string{"rating.score", "score"})
		p.HighestRating = metric.Max(p.HighestRating, metric.NonNegative(metric.ParseResult(rating)))

		votes := first(s, []string{"rating.total", "rating_count"})
		p.Popularity = metric.Max(p.Popularity, metric.NonNegative(metric.ParseResult(votes)))

		for _, tag := range append(stringsOf(s.Get("meta_tags")), stringsOf(s.Get("tags"))...) {
			if !yearTag(tag) {
				tags = append(tags, tag)
			}
		}

		return true
	})

	return tags
}

// yearTag reports whether a subject tag is an air-date tag such as
// "2005" or "2005年10月", which says nothing about the character.
func yearTag(tag string) bool {
	if len(tag) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if tag[i] < '0' || tag[i] > '9' {
			return false
		}
	}

	return true
}

func subjectYear(date string) metric.Value {
	year, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	if year == "" {
		return metric.None()
	}

	return metric.NonNegative(metric.Parse(year))
}

// expand probes fixed keys in both locations. Fixed keys are plain
// identifiers or gjson paths already, so they are not escaped.
func expand(keys []string) []string {
	out := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, basicInfoKey+"."+k, k)
	}

	return out
}

func nonEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
