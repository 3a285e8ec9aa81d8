// Package domination は生存セルの占有率で盤面を評価する
package domination

import (
	"github.com/montplusa/golad-battle/pkg/game"
)

// DefaultWeights は 0, 1, 2 世代先の占有率に掛ける重み
var DefaultWeights = []float64{1.260, 0.946, 0.610}

// Evaluator は Pass を続けたときの各世代の占有率を重み付き平均する
type Evaluator struct {
	weights []float64
}

// New は重みを正規化した Evaluator を返す。weights が空なら DefaultWeights。
func New(weights ...float64) *Evaluator {
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	norm := make([]float64, len(weights))
	for i, w := range weights {
		if sum != 0 {
			norm[i] = w / sum
		}
	}
	return &Evaluator{weights: norm}
}

func (e *Evaluator) Name() string { return "domination" }

// Evaluate は終局していれば勝敗をそのまま返す
func (e *Evaluator) Evaluate(b game.Board, player game.Player) float64 {
	if b.IsTerminal() {
		return float64(b.Result()) * float64(player)
	}
	score := 0.0
	for i, f := range Features(b, player, len(e.weights)) {
		score += e.weights[i] * f
	}
	return score
}

// Features は 0..depth-1 世代先それぞれの (自分/(自分+相手) - 0.5) * 2。
// 途中で終局したらその盤面で止める。
func Features(b game.Board, player game.Player, depth int) []float64 {
	out := make([]float64, depth)
	for i := range out {
		out[i] = Share(b, player)
		if b.IsTerminal() {
			for j := i + 1; j < depth; j++ {
				out[j] = out[i]
			}
			break
		}
		b = b.Successor()
	}
	return out
}

// Share は生存セルのうち player が占める割合を [-1, 1] に写したもの
func Share(b game.Board, player game.Player) float64 {
	own := b.Count(player)
	total := own + b.Count(player.Opponent())
	if total == 0 {
		return 0
	}
	return (float64(own)/float64(total) - 0.5) * 2
}
