// Package greedy は 1 手先だけを読む AI
package greedy

import (
	"math"

	"github.com/montplusa/golad-battle/pkg/game"
	"lukechampine.com/frand"
)

// DefaultSampleBirths は評価する誕生手の数の初期値
const DefaultSampleBirths = 400

// GreedyAI は合法手をすべて 1 手進めて評価し、最も良い手を選ぶ
type GreedyAI struct {
	evaluator    game.Evaluator
	sampleBirths int
	base         int
	rng          game.Intner
}

// New は evaluator で採点する GreedyAI を返す
func New(evaluator game.Evaluator) *GreedyAI {
	return &GreedyAI{
		evaluator:    evaluator,
		sampleBirths: DefaultSampleBirths,
		base:         DefaultSampleBirths,
		rng:          frand.New(),
	}
}

// SetSampleBirths は誕生手の標本数を変える。-1 なら全列挙。
func (ai *GreedyAI) SetSampleBirths(n int) {
	ai.sampleBirths = n
	ai.base = n
}

func (ai *GreedyAI) SampleBirths() int { return ai.sampleBirths }

func (ai *GreedyAI) Name() string { return "greedy" }

// ChooseMove は同点なら先に列挙された手 (Pass, Kill, Birth の順) を選ぶ
func (ai *GreedyAI) ChooseMove(g *game.Game) game.Move {
	b := g.Last()
	best := game.Pass
	bestScore := math.Inf(-1)
	for _, m := range game.LegalMoves(b, ai.sampleBirths, ai.rng) {
		if s := ai.evaluator.Evaluate(b.Play(m), b.ToMove()); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best
}

// NotifyTimeFactor は標本数を factor 倍する (下限 1)
func (ai *GreedyAI) NotifyTimeFactor(factor float64) {
	if ai.base < 0 {
		return
	}
	ai.sampleBirths = max(int(float64(ai.base)*max(factor, 0.1)), 1)
}
