//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/montplusa/golad-battle/pkg/ai/domination"
	"github.com/montplusa/golad-battle/pkg/ai/greedy"
	"github.com/montplusa/golad-battle/pkg/ai/policy"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/montplusa/golad-battle/pkg/search"
)

func runBattle(this js.Value, args []js.Value) interface{} {
	rules := game.DefaultRules()

	// 1) AI の初期化 (ブラウザでは goroutine を増やさない)
	cfg := search.DefaultConfig()
	cfg.Async = false
	ai1 := search.New(cfg, domination.New(), policy.NewFixed(rules))
	ai2 := greedy.New(domination.New())

	// 2) GameRunner の実行
	gr := game.NewGameRunner(ai1, ai2, rules)
	result := gr.Run() // BattleResult 型を返す

	// 3) JSON 文字列にシリアライズ
	b, _ := json.Marshal(result)
	return string(b)
}

func main() {
	js.Global().Set("runBattle", js.FuncOf(runBattle))
	select {} // ブロック
}
