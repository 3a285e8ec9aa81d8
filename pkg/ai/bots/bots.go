// Package bots は名前から AI と評価器を組み立てる
package bots

import (
	"fmt"
	"strings"

	"github.com/montplusa/golad-battle/pkg/ai/domination"
	"github.com/montplusa/golad-battle/pkg/ai/greedy"
	"github.com/montplusa/golad-battle/pkg/ai/mcts"
	"github.com/montplusa/golad-battle/pkg/ai/onnxeval"
	"github.com/montplusa/golad-battle/pkg/ai/policy"
	"github.com/montplusa/golad-battle/pkg/ai/random"
	"github.com/montplusa/golad-battle/pkg/ai/trivial"
	"github.com/montplusa/golad-battle/pkg/ai/valuenet"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/montplusa/golad-battle/pkg/search"
)

// Options は AI の組み立て方
type Options struct {
	Rules game.Rules
	// Evaluator は "domination", "valuenet:<path>", "onnx:<path>" のいずれか
	Evaluator string
	// SearchConfig が空ならファイルを読まず search.DefaultConfig を使う
	SearchConfig string
	// NoPolicy なら探索の全深さで厳密な分割を使う
	NoPolicy bool
}

// Names は New が受け付ける名前
var Names = []string{"search", "greedy", "mcts", "random", "trivial"}

// New は name の AI を返す
func New(name string, opts Options) (game.AI, error) {
	switch name {
	case "random":
		return random.New(), nil
	case "trivial":
		return trivial.New(), nil
	case "greedy":
		ev, err := NewEvaluator(opts.Evaluator, opts.Rules)
		if err != nil {
			return nil, err
		}
		return greedy.New(ev), nil
	case "mcts":
		ev, err := NewEvaluator(opts.Evaluator, opts.Rules)
		if err != nil {
			return nil, err
		}
		return mcts.New(ev), nil
	case "search":
		ev, err := NewEvaluator(opts.Evaluator, opts.Rules)
		if err != nil {
			return nil, err
		}
		cfg := search.DefaultConfig()
		if opts.SearchConfig != "" {
			if cfg, err = search.LoadConfig(opts.SearchConfig); err != nil {
				return nil, fmt.Errorf("search config: %w", err)
			}
		}
		var pm search.PolicyModel
		if !opts.NoPolicy {
			pm = policy.NewFixed(opts.Rules)
		}
		return search.New(cfg, ev, pm), nil
	}
	return nil, fmt.Errorf("unknown AI %q (want one of %s)", name, strings.Join(Names, ", "))
}

// NewEvaluator は desc の評価器を返す。空なら domination。
func NewEvaluator(desc string, rules game.Rules) (game.Evaluator, error) {
	kind, path, _ := strings.Cut(desc, ":")
	switch kind {
	case "", "domination":
		return domination.New(), nil
	case "valuenet":
		config, err := valuenet.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		return valuenet.New(config)
	case "onnx":
		return onnxeval.Load(path, rules)
	}
	return nil, fmt.Errorf("unknown evaluator %q", desc)
}
