package game

import (
	"time"

	"github.com/montplusa/golad-battle/pkg/game/debug"
)

// BattleResult は対戦結果の記録
type BattleResult struct {
	Players [2]string `json:"players"` // [Good, Bad]
	Game    *Game     `json:"game"`
	Result  Result    `json:"result"`
}

// GameRunner は対戦を管理
type GameRunner struct {
	agents [2]AI // [Good, Bad]
	rules  Rules
	lives  int
	rng    Intner

	// MoveBudget が正なら 1 手ごとの消費時間から時間係数を通知する
	MoveBudget time.Duration
}

// NewGameRunner は good, bad の順に AI エージェントをセットして返す
func NewGameRunner(good, bad AI, rules Rules) *GameRunner {
	return &GameRunner{
		agents: [2]AI{good, bad},
		rules:  rules,
		lives:  DefaultStartLives,
	}
}

// SetStartLives は初期盤面の片側のセル数を変える
func (gr *GameRunner) SetStartLives(n int) { gr.lives = n }

// SetRand は初期盤面と先手決めに使う乱数源を差し替える
func (gr *GameRunner) SetRand(rng Intner) { gr.rng = rng }

func (gr *GameRunner) agent(p Player) AI {
	if p == Good {
		return gr.agents[0]
	}
	return gr.agents[1]
}

// Run はランダムな初期盤面から対戦を実行して BattleResult を返す
func (gr *GameRunner) Run() BattleResult {
	rng := gr.rng
	if rng == nil {
		rng = globalRNG{}
	}
	first := Good
	if rng.Intn(2) == 1 {
		first = Bad
	}
	return gr.RunFrom(NewRandomBoard(gr.rules, first, gr.lives, rng))
}

// RunFrom は start から終局まで対戦する
func (gr *GameRunner) RunFrom(start Board) BattleResult {
	g := NewGame(start)
	for g.Result() == Undetermined {
		b := g.Last()
		ai := gr.agent(b.ToMove())
		debug.Log("round %d: %s (%s) to move, %d vs %d", b.Round(), ai.Name(), b.ToMove(), b.Count(Good), b.Count(Bad))

		began := time.Now()
		m := ai.ChooseMove(g)
		elapsed := time.Since(began)
		if gr.MoveBudget > 0 && elapsed > 0 {
			ai.NotifyTimeFactor(float64(gr.MoveBudget) / float64(elapsed))
		}

		debug.Log("selected move: %s (%s)", m, elapsed)
		g.MakeMove(m)
	}
	return BattleResult{
		Players: [2]string{gr.agents[0].Name(), gr.agents[1].Name()},
		Game:    g,
		Result:  g.Result(),
	}
}
