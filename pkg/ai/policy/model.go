// Package policy は 1 回の順伝播で全マスの操作を採点する手の方策モデル
package policy

import (
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/montplusa/golad-battle/pkg/nn"
	"github.com/montplusa/golad-battle/pkg/search"
	"lukechampine.com/frand"
)

// 出力面
const (
	outBirth = iota
	outKillSelf
	outKillEnemy
	numOutputs
)

// Model は入力面を半径 1 の畳み込みで 3 面に写し、占有率を足して tanh をかける
type Model struct {
	rules game.Rules
	net   *nn.Network
}

// NewFixed は学習なしで使える手作りの重みを持つ Model を返す。
// 各出力面は対応する近傍の面を 0.1 倍で足し、中心マスだけは *Here の面を読む。
func NewFixed(rules game.Rules) *Model {
	plane := rules.Cells()
	conv := nn.NewSparse(numPlanes*plane+1, numOutputs*plane+1)
	for row := 0; row < rules.Height; row++ {
		for col := 0; col < rules.Width; col++ {
			for depth := 0; depth < numOutputs; depth++ {
				for r := row - 1; r <= row+1; r++ {
					if r < 0 || r >= rules.Height {
						continue
					}
					for c := col - 1; c <= col+1; c++ {
						if c < 0 || c >= rules.Width {
							continue
						}
						in := depth
						if r == row && c == col {
							in = depth + birthHere
						}
						conv.Connect(depth*plane+row*rules.Width+col, in*plane+r*rules.Width+c, conv.Slot(0.1, true))
					}
				}
			}
		}
	}
	conv.Connect(numOutputs*plane, numPlanes*plane, conv.Slot(1, true))
	return newModel(rules, conv)
}

// NewTrainable は共有重みの畳み込みを乱数で初期化した Model を返す
func NewTrainable(rules game.Rules, rng *frand.RNG) *Model {
	if rng == nil {
		rng = frand.New()
	}
	init := func() float64 { return (rng.Float64()*2 - 1) * 0.1 }
	conv := nn.Conv(rules.Width, rules.Height, numPlanes, numOutputs, 1, 1, init)
	return newModel(rules, conv)
}

func newModel(rules game.Rules, conv *nn.Sparse) *Model {
	plane := rules.Cells()
	return &Model{
		rules: rules,
		net: nn.NewNetwork(
			conv,
			nn.Internalizer(numOutputs*plane, 1),
			nn.Tanh(numOutputs*plane),
		),
	}
}

func (m *Model) Rules() game.Rules { return m.rules }

// Scores implements search.PolicyModel. 盤面の大きさが違うときは空を返す
func (m *Model) Scores(b game.Board, player game.Player) search.PolicyScores {
	if !b.Rules().SameGrid(m.rules) {
		return search.PolicyScores{}
	}
	out := m.net.Forward(Features(b, player))
	plane := m.rules.Cells()
	return search.PolicyScores{
		Birth:     out[outBirth*plane : (outBirth+1)*plane],
		KillSelf:  out[outKillSelf*plane : (outKillSelf+1)*plane],
		KillEnemy: out[outKillEnemy*plane : (outKillEnemy+1)*plane],
	}
}

// Learn は厳密な分割の評価値に近づくよう 1 回勾配を適用し、適用前の損失を返す。
// 分割に現れないマスは損失に含めない。
func (m *Model) Learn(b game.Board, div search.Division, rate float64) float64 {
	plane := m.rules.Cells()
	target := make([]float64, numOutputs*plane)
	mask := make([]bool, numOutputs*plane)
	fill := func(depth int, entries []search.Entry) {
		for _, e := range entries {
			i := depth*plane + m.rules.Index(e.Square)
			target[i] = e.Score
			mask[i] = true
		}
	}
	fill(outBirth, div.Birth)
	fill(outKillSelf, div.KillSelf)
	fill(outKillEnemy, div.KillEnemy)
	return m.net.Learn(Features(b, b.ToMove()), target, mask, rate)
}
