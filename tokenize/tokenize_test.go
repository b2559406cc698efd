package tokenize

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "nil", value: nil, want: []string{}},
		{name: "empty string", value: "", want: []string{}},
		{name: "whitespace only", value: " \t\n　", want: []string{}},
		{name: "slash", value: "剧场版/大叔", want: []string{"剧场版", "大叔"}},
		{name: "mixed delimiters", value: "银、白，金,红；蓝;绿 紫·黑", want: []string{"银", "白", "金", "红", "蓝", "绿", "紫", "黑"}},
		{name: "repeated delimiters", value: "//a,, ;b", want: []string{"a", "b"}},
		{name: "keeps duplicates", value: "a/b/a", want: []string{"a", "b", "a"}},
		{name: "string slice", value: []string{"a/b", " ", "c"}, want: []string{"a", "b", "c"}},
		{name: "nested any", value: []any{"a", []any{"b/c", nil, []string{"d"}}, 3}, want: []string{"a", "b", "c", "d", "3"}},
		{name: "stringer", value: stringer("x y"), want: []string{"x", "y"}},
		{name: "number", value: 1.5, want: []string{"1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.value)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Tokenize(%#v) mismatch (-want +got):\n%s", tt.value, diff)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Unique mismatch (-want +got):\n%s", diff)
	}
}

func TestBlocklist(t *testing.T) {
	b := NewBlocklist("巫女/腋", "  ")
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	got := b.Filter([]string{"巫女", "蝴蝶结", "腋", "红白"})
	want := []string{"蝴蝶结", "红白"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Filter mismatch (-want +got):\n%s", diff)
	}

	var none *Blocklist
	if none.Has("巫女") {
		t.Fatal("nil blocklist should block nothing")
	}
	if got := none.Filter([]string{"a"}); len(got) != 1 {
		t.Fatalf("nil blocklist Filter = %v, want [a]", got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"":                        "",
		"Hakurei Reimu":           "hakureireimu",
		"博丽 灵梦":                   "博丽灵梦",
		"十六夜·咲夜":                  "十六夜咲夜",
		"琪露诺（⑨）":                  "琪露诺⑨",
		"Cirno (Baka)":            "cirnobaka",
		"\"Kirisame\" `Marisa`?":  "kirisamemarisa",
		"“雾雨”魔理沙？":                "雾雨魔理沙",
		"Remilia\\Scarlet":        "remiliascarlet",
		"  Flandre\tScarlet \n  ": "flandrescarlet",
	}

	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	for _, s := range []string{"", "A (B)", "ＡＢＣ", "İstanbul", "ΣΑΣ", "\xff\xfe", "a·b？c"} {
		once := NormalizeName(s)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func FuzzNormalizeName(f *testing.F) {
	for _, seed := range []string{"", "博丽 灵梦", "Cirno (Baka)", "“雾雨”魔理沙？", "\xff"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		once := NormalizeName(s)
		if twice := NormalizeName(once); twice != once {
			t.Fatalf("NormalizeName(%q) = %q, second pass = %q", s, once, twice)
		}
	})
}

func FuzzTokenize(f *testing.F) {
	for _, seed := range []string{"", "剧场版/大叔", " , ; ", "a·b、c"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		for _, value := range []any{s, []string{s, s}, []any{s, nil}} {
			for _, tok := range Tokenize(value) {
				if strings.TrimSpace(tok) == "" {
					t.Fatalf("Tokenize(%q) produced blank token %q", s, tok)
				}
			}
		}
	})
}
