package main

import (
	"strings"
	"testing"

	"kestrel/internal/mono"
)

func sampleListing() mono.Listing {
	return mono.Listing{
		Entry: "main.main",
		Functions: []mono.FuncListing{
			{Name: "main.main", Type: "fn() void", Calls: []string{"main.rect{1}"}},
			{Name: "main.rect{1}", Type: "fn(int) int", Wrapper: true, Calls: []string{"main.area"}},
		},
		Types: []string{"int", "fn(int) int"},
	}
}

func TestPrintListing(t *testing.T) {
	var sb strings.Builder
	if err := printListing(&sb, sampleListing()); err != nil {
		t.Fatal(err)
	}
	want := "entry main.main\n" +
		"fn main.main: fn() void\n  -> main.rect{1}\n" +
		"fn main.rect{1}: fn(int) int (wrapper)\n  -> main.area\n" +
		"type #0 int\ntype #1 fn(int) int\n"
	if sb.String() != want {
		t.Fatalf("listing:\n%s", sb.String())
	}
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary(sampleListing(), false)
	for _, want := range []string{"INSTANCE", "main.rect{1}", "wrapper", "2 instances, 2 types, entry main.main"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
