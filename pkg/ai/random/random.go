package random

import (
	"github.com/montplusa/golad-battle/pkg/game"
	"lukechampine.com/frand"
)

// SampleBirths は候補に含める誕生手の数
const SampleBirths = 200

// RandomAI はランダムに行動を選ぶ実装
type RandomAI struct {
	rng *frand.RNG
}

// New は RandomAI を生成する
func New() *RandomAI { return &RandomAI{rng: frand.New()} }

// NewSeeded は再現可能な RandomAI を生成する
func NewSeeded(seed [32]byte) *RandomAI {
	return &RandomAI{rng: frand.NewCustom(seed[:], 1024, 12)}
}

func (r *RandomAI) Name() string { return "random" }

func (r *RandomAI) ChooseMove(g *game.Game) game.Move {
	moves := game.LegalMoves(g.Last(), SampleBirths, r.rng)
	return moves[r.rng.Intn(len(moves))]
}

func (r *RandomAI) NotifyTimeFactor(float64) {}
