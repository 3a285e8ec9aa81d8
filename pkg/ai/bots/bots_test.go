package bots

import (
	"path/filepath"
	"testing"

	"github.com/montplusa/golad-battle/pkg/ai/valuenet"
	"github.com/montplusa/golad-battle/pkg/game"
)

func TestNew(t *testing.T) {
	opts := Options{Rules: game.DefaultRules()}
	for _, name := range Names {
		ai, err := New(name, opts)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if ai.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, ai.Name())
		}
	}
	if _, err := New("oracle", opts); err == nil {
		t.Fatal("expected error for unknown AI")
	}
	opts.SearchConfig = filepath.Join(t.TempDir(), "missing.json")
	if _, err := New("search", opts); err == nil {
		t.Fatal("expected error for missing search config")
	}
}

func TestNewEvaluator(t *testing.T) {
	rules := game.DefaultRules()
	for _, desc := range []string{"", "domination"} {
		if _, err := NewEvaluator(desc, rules); err != nil {
			t.Errorf("%q: %v", desc, err)
		}
	}

	path := filepath.Join(t.TempDir(), "net.json")
	config := valuenet.DefaultNetworkConfig()
	config.HiddenLayers = []int{4}
	if err := valuenet.SaveConfig(config, path); err != nil {
		t.Fatal(err)
	}
	ev, err := NewEvaluator("valuenet:"+path, rules)
	if err != nil {
		t.Fatal(err)
	}
	if v := ev.Evaluate(game.NewRandomBoard(rules, game.Good, 20, nil), game.Good); v < -1 || v > 1 {
		t.Fatalf("score %v", v)
	}

	for _, desc := range []string{"onnx:" + filepath.Join(t.TempDir(), "missing.onnx"), "magic"} {
		if _, err := NewEvaluator(desc, rules); err == nil {
			t.Errorf("%q: expected error", desc)
		}
	}
}
