package search

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.json")
	cfg := DefaultConfig()
	cfg.Parameters = cfg.Parameters[:2]
	cfg.KeepNoOpBirths = true
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("got %+v, want %+v", got, cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestScale(t *testing.T) {
	p := Parameters{DivisionSamples: 10, CombinationSamples: 10, BroadSearch: 3, DeepSearch: 1}
	got := p.Scale(0.1)
	want := Parameters{DivisionSamples: 1, CombinationSamples: 1, BroadSearch: 1, DeepSearch: 1}
	if got != want {
		t.Fatalf("got %+v", got)
	}
}

func TestScaleKeepsZeroDeepSearch(t *testing.T) {
	p := Parameters{DivisionSamples: 10, CombinationSamples: 10, BroadSearch: 3, DeepSearch: 0}
	for _, f := range []float64{0.1, 1, 3} {
		if got := p.Scale(f).DeepSearch; got != 0 {
			t.Fatalf("Scale(%v).DeepSearch = %d, want 0", f, got)
		}
	}
}
