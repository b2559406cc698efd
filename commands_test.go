package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newCmd(&Config{})
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestCompareCommand(t *testing.T) {
	out, err := execute(t, "compare", "雾雨魔理沙", "Hakurei Reimu", "--seed", "7")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	if !gjson.Valid(out) {
		t.Fatalf("output is not JSON:\n%s", out)
	}
	if !gjson.Get(out, "touhouAttributes.0.match").Bool() {
		t.Errorf("two humans should match on the first attribute:\n%s", out)
	}
	if got := gjson.Get(out, "earliestAppearance.display").String(); got == "" {
		t.Error("earliestAppearance has no display value")
	}

	again, err := execute(t, "compare", "雾雨魔理沙", "Hakurei Reimu", "--seed", "7")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if again != out {
		t.Error("the same seed produced different output")
	}
}

func TestCompareCommandErrors(t *testing.T) {
	if _, err := execute(t, "compare", "nobody", "博丽灵梦"); err == nil || !strings.Contains(err.Error(), "nobody") {
		t.Errorf("unknown guess error = %v", err)
	}
	if _, err := execute(t, "compare", "博丽灵梦"); err == nil {
		t.Error("compare accepted a single argument")
	}
	if _, err := execute(t, "compare", "博丽灵梦", "博丽灵梦", "--tag-cap", "0"); err == nil {
		t.Error("compare accepted an invalid tag cap")
	}
	if _, err := execute(t, "compare", "博丽灵梦", "博丽灵梦", "--dataset", "testdata/missing.json"); err == nil {
		t.Error("compare accepted a missing dataset")
	}
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, "search", "scarlet", "--limit", "1")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Remilia Scarlet") || strings.Contains(out, "Flandre") {
		t.Errorf("first page:\n%s", out)
	}
	if !strings.Contains(out, "more results") {
		t.Errorf("first page does not mention more results:\n%s", out)
	}

	out, err = execute(t, "search", "scarlet", "--offset", "1", "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := gjson.Get(out, "results.0.translatedName").String(); got != "Flandre Scarlet" {
		t.Errorf("results.0.translatedName = %q", got)
	}
	if gjson.Get(out, "hasMore").Bool() {
		t.Error("hasMore = true on the last page")
	}
}

func TestEnvironmentFlags(t *testing.T) {
	t.Setenv("GUESSR_LIMIT", "1")

	out, err := execute(t, "search", "scarlet", "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := gjson.Get(out, "results.#").Int(); got != 1 {
		t.Errorf("GUESSR_LIMIT=1 returned %d results", got)
	}

	out, err = execute(t, "search", "scarlet", "--json", "--limit", "5")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := gjson.Get(out, "results.#").Int(); got != 2 {
		t.Errorf("--limit 5 over GUESSR_LIMIT=1 returned %d results", got)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if out != "guessr v"+releaseVersion+"\n" {
		t.Errorf("--version = %q", out)
	}
}
