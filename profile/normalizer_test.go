package profile

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
)

func normalize(t *testing.T, schema Schema, raw string) *Profile {
	t.Helper()

	if !gjson.Valid(raw) {
		t.Fatalf("invalid fixture: %s", raw)
	}

	return NewNormalizer(schema).Normalize(gjson.Parse(raw))
}

func TestNormalizeNestedBasicInfo(t *testing.T) {
	p := normalize(t, DefaultSchema(), `{
		"name": "Hakurei Reimu",
		"basic_info": {
			"本名": ["博丽灵梦"],
			"译名": "博丽灵梦 ",
			"别名": ["乐园的巫女", "红白"],
			"种族": "人类",
			"发色": "黑/茶",
			"萌点": ["巫女", "红白", "巫女", "大蝴蝶结"],
			"初登场作品": "东方灵异传"
		}
	}`)

	if p.PrimaryName != "博丽灵梦" {
		t.Fatalf("PrimaryName = %q, want 博丽灵梦", p.PrimaryName)
	}
	if p.TranslatedName != "博丽灵梦" {
		t.Fatalf("TranslatedName = %q, want 博丽灵梦", p.TranslatedName)
	}
	if diff := cmp.Diff([]string{"Hakurei Reimu", "博丽灵梦", "乐园的巫女", "红白"}, p.Aliases); diff != "" {
		t.Fatalf("Aliases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"黑", "茶"}, p.Attributes["发色"]); diff != "" {
		t.Fatalf("发色 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"巫女", "红白", "大蝴蝶结"}, p.Tags); diff != "" {
		t.Fatalf("Tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Work{{Name: "东方灵异传"}}, p.Works); diff != "" {
		t.Fatalf("Works mismatch (-want +got):\n%s", diff)
	}
	if p.HasID {
		t.Fatal("HasID should be false for a name-only record")
	}
}

func TestNormalizeEverySchemaAttributePresent(t *testing.T) {
	p := normalize(t, DefaultSchema(), `{"角色": "琪露诺"}`)

	for _, def := range DefaultSchema().Attributes {
		values, ok := p.Attributes[def.Key]
		if !ok {
			t.Fatalf("attribute %q missing", def.Key)
		}
		if values == nil || len(values) != 0 {
			t.Fatalf("attribute %q = %#v, want empty non-nil slice", def.Key, values)
		}
	}
	if p.PrimaryName != "琪露诺" {
		t.Fatalf("PrimaryName = %q, want 琪露诺 from the raw name", p.PrimaryName)
	}
	if diff := cmp.Diff([]string{"琪露诺"}, p.Aliases); diff != "" {
		t.Fatalf("Aliases mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeTopLevelFallback(t *testing.T) {
	p := normalize(t, DefaultSchema(), `{
		"id": 12,
		"name": "Kirisame Marisa",
		"本名": "雾雨魔理沙",
		"种族": "人类",
		"basic_info": {"种族": "魔法使", "瞳色": ""},
		"瞳色": "金"
	}`)

	if !p.HasID || p.ID != 12 {
		t.Fatalf("ID = %d (%v), want 12", p.ID, p.HasID)
	}
	if p.PrimaryName != "雾雨魔理沙" {
		t.Fatalf("PrimaryName = %q, want top-level 本名", p.PrimaryName)
	}
	if diff := cmp.Diff([]string{"魔法使"}, p.Attributes["种族"]); diff != "" {
		t.Fatalf("basic_info should win for 种族 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"金"}, p.Attributes["瞳色"]); diff != "" {
		t.Fatalf("blank basic_info value should fall through (-want +got):\n%s", diff)
	}
}

func TestNormalizeMalformedValues(t *testing.T) {
	p := normalize(t, DefaultSchema(), `{
		"name": 42,
		"basic_info": {
			"本名": null,
			"别名": [["a", ["b"]], null, "", {"name": "c"}],
			"发色": [{"name": "银"}, {"count": 3}, true],
			"萌点": null,
			"初登场作品": {"unexpected": 1}
		},
		"popularity": "NaN",
		"highestRating": -1
	}`)

	if p.Name != "42" {
		t.Fatalf("Name = %q, want 42", p.Name)
	}
	if diff := cmp.Diff([]string{"42", "a", "b", "c"}, p.Aliases); diff != "" {
		t.Fatalf("Aliases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"银"}, p.Attributes["发色"]); diff != "" {
		t.Fatalf("发色 mismatch (-want +got):\n%s", diff)
	}
	if len(p.Tags) != 0 || len(p.Works) != 0 {
		t.Fatalf("Tags = %v, Works = %v, want both empty", p.Tags, p.Works)
	}
	if p.Popularity.Valid() || p.HighestRating.Valid() {
		t.Fatalf("metrics should be unknown, got %v / %v", p.Popularity, p.HighestRating)
	}
}

func TestNormalizeNonObject(t *testing.T) {
	n := NewNormalizer(DefaultSchema())
	for _, raw := range []string{`"reimu"`, `[1,2]`, `null`, `3`} {
		if p := n.Normalize(gjson.Parse(raw)); p != nil {
			t.Fatalf("Normalize(%s) = %+v, want nil", raw, p)
		}
	}
}

func TestNormalizeAppearances(t *testing.T) {
	p := normalize(t, DefaultSchema(), `{
		"remoteId": "56822",
		"remoteName": "博麗霊夢",
		"metaTags": [{"name": "神社", "count": 10}],
		"subjects": [
			{"name": "東方紅魔郷", "name_cn": "东方红魔乡", "type": 4, "date": "2002-08-11",
			 "rating": {"score": 8.1, "total": 3000}, "staff": "主角",
			 "tags": [{"name": "弹幕"}, {"name": "2002"}], "meta_tags": ["STG"]},
			{"name": "東方香霖堂", "type": 1, "date": "2004-08-30", "rating": {"score": 7.4, "total": 500}},
			{"name": "客串", "type": 2, "date": "1999", "staff": "客串"},
			{"name": "", "type": 2, "date": "1990-01-01"}
		]
	}`)

	if !p.HasID || p.ID != 56822 {
		t.Fatalf("ID = %d (%v), want 56822 from a string id", p.ID, p.HasID)
	}
	wantWorks := []Work{{Name: "东方红魔乡", Kind: KindGame}, {Name: "東方香霖堂", Kind: KindBook}}
	if diff := cmp.Diff(wantWorks, p.Works); diff != "" {
		t.Fatalf("Works mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"神社", "STG", "弹幕"}, p.WorkTags); diff != "" {
		t.Fatalf("WorkTags mismatch (-want +got):\n%s", diff)
	}

	checks := map[string]struct {
		got  interface{ Get() (float64, bool) }
		want float64
	}{
		"earliest":   {p.EarliestAppearance, 2002},
		"latest":     {p.LatestAppearance, 2004},
		"rating":     {p.HighestRating, 8.1},
		"popularity": {p.Popularity, 3000},
	}
	for name, c := range checks {
		v, ok := c.got.Get()
		if !ok || v != c.want {
			t.Errorf("%s = %v (%v), want %v", name, v, ok, c.want)
		}
	}
}

func TestNormalizeExplicitMetricsWin(t *testing.T) {
	p := normalize(t, DefaultSchema(), `{
		"name": "x",
		"basic_info": {"popularity": "120"},
		"earliestAppearance": 1996,
		"appearances": [{"name": "w", "date": "2001-01-01", "rating": {"total": 5}}]
	}`)

	if v, _ := p.Popularity.Get(); v != 120 {
		t.Fatalf("Popularity = %v, want explicit 120", v)
	}
	if v, _ := p.EarliestAppearance.Get(); v != 1996 {
		t.Fatalf("EarliestAppearance = %v, want explicit 1996", v)
	}
	if v, _ := p.LatestAppearance.Get(); v != 2001 {
		t.Fatalf("LatestAppearance = %v, want derived 2001", v)
	}
}

func TestNormalizeBlockedTags(t *testing.T) {
	schema := DefaultSchema()
	schema.BlockedTags = []string{"东方Project"}

	p := normalize(t, schema, `{"name": "x", "萌点": "东方Project/巫女", "meta_tags": ["东方Project", "STG"]}`)
	if diff := cmp.Diff([]string{"巫女"}, p.Tags); diff != "" {
		t.Fatalf("Tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"STG"}, p.WorkTags); diff != "" {
		t.Fatalf("WorkTags mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeEscapedSchemaKey(t *testing.T) {
	schema := DefaultSchema()
	schema.Attributes = []AttributeDef{{Key: "ability.main"}}

	p := normalize(t, schema, `{"name": "x", "basic_info": {"ability.main": "操纵冷气"}}`)
	if diff := cmp.Diff([]string{"操纵冷气"}, p.Attributes["ability.main"]); diff != "" {
		t.Fatalf("dotted key mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkNames(t *testing.T) {
	p := &Profile{Works: []Work{{Name: "A"}, {Name: "B", Kind: KindGame}, {Name: "A", Kind: KindAnime}}}
	if diff := cmp.Diff([]string{"A", "A"}, p.WorkNames(false)); diff != "" {
		t.Fatalf("WorkNames(false) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, p.WorkNames(true)); diff != "" {
		t.Fatalf("WorkNames(true) mismatch (-want +got):\n%s", diff)
	}

	games := &Profile{Works: []Work{{Name: "G1", Kind: KindGame}, {Name: "G2", Kind: KindGame}}}
	if diff := cmp.Diff([]string{"G1", "G2"}, games.WorkNames(false)); diff != "" {
		t.Fatalf("all-game fallback mismatch (-want +got):\n%s", diff)
	}

	var none *Profile
	if none.WorkNames(true) != nil || none.Names() != nil || none.DisplayName() != "" {
		t.Fatal("nil profile accessors should return zero values")
	}
}

func TestLoadSchema(t *testing.T) {
	s, err := LoadSchema(strings.NewReader(`
attributes:
  - key: 种族
  - key: 能力
    label: 程度的能力
tags: [萌点, 性格]
blocked_tags: [东方Project]
`))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	want := []AttributeDef{{Key: "种族", Label: "种族"}, {Key: "能力", Label: "程度的能力"}}
	if diff := cmp.Diff(want, s.Attributes); diff != "" {
		t.Fatalf("Attributes mismatch (-want +got):\n%s", diff)
	}
	if s.PrimaryNameKey != "本名" {
		t.Fatalf("PrimaryNameKey = %q, want default 本名", s.PrimaryNameKey)
	}
	if diff := cmp.Diff([]string{"萌点", "性格"}, s.TagKeys); diff != "" {
		t.Fatalf("TagKeys mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadSchema(strings.NewReader("")); err != nil {
		t.Fatalf("empty document should give the default schema, got %v", err)
	}

	for name, doc := range map[string]string{
		"duplicate": "attributes: [{key: a}, {key: a}]",
		"empty key": "attributes: [{label: x}]",
		"none":      "attributes: []",
	} {
		if _, err := LoadSchema(strings.NewReader(doc)); !errors.Is(err, ErrInvalidSchema) {
			t.Errorf("%s: err = %v, want ErrInvalidSchema", name, err)
		}
	}

	if _, err := LoadSchema(strings.NewReader("unknown_field: 1")); err == nil {
		t.Fatal("unknown fields should be rejected")
	}
}
