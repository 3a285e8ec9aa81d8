package trivial

import (
	"github.com/montplusa/golad-battle/pkg/game"
)

// TrivialAI は常にパスする
type TrivialAI struct{}

func (ai *TrivialAI) Name() string {
	return "trivial"
}

func New() *TrivialAI {
	return &TrivialAI{}
}

// ChooseMove は盤面に関係なくパスを返します
func (ai *TrivialAI) ChooseMove(*game.Game) game.Move {
	return game.Pass
}

func (ai *TrivialAI) NotifyTimeFactor(float64) {}
