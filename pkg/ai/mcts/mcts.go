// Package mcts は UCB1 で木を伸ばすモンテカルロ木探索の AI
package mcts

import (
	"math"

	"github.com/montplusa/golad-battle/pkg/game"
	"lukechampine.com/frand"
)

const (
	DefaultSimulations  = 300
	DefaultRolloutDepth = 4

	// sampleBirths は 1 ノードで展開する誕生手の数
	sampleBirths = 30
	exploration  = 1.414 // sqrt(2)
)

// node の reward は親の手番から見た報酬の合計
type node struct {
	board      game.Board
	move       game.Move
	parent     *node
	children   []*node
	visits     int
	reward     float64
	unexplored []game.Move
}

// AI はランダムに数手進めた盤面を evaluator で採点して報酬にする
type AI struct {
	evaluator    game.Evaluator
	rng          *frand.RNG
	simulations  int
	base         int
	RolloutDepth int
}

func New(evaluator game.Evaluator) *AI {
	return &AI{
		evaluator:    evaluator,
		rng:          frand.New(),
		simulations:  DefaultSimulations,
		base:         DefaultSimulations,
		RolloutDepth: DefaultRolloutDepth,
	}
}

// NewSeeded は再現可能な AI を返す
func NewSeeded(evaluator game.Evaluator, seed [32]byte) *AI {
	ai := New(evaluator)
	ai.rng = frand.NewCustom(seed[:], 1024, 12)
	return ai
}

func (ai *AI) Name() string { return "mcts" }

// SetSimulations は 1 手あたりのシミュレーション回数を変える
func (ai *AI) SetSimulations(n int) {
	ai.simulations = max(n, 1)
	ai.base = ai.simulations
}

func (ai *AI) Simulations() int { return ai.simulations }

// NotifyTimeFactor はシミュレーション回数を factor 倍する (下限 1)
func (ai *AI) NotifyTimeFactor(factor float64) {
	ai.simulations = max(int(float64(ai.base)*max(factor, 0.1)), 1)
}

// ChooseMove は平均報酬が最大の子への手を返す
func (ai *AI) ChooseMove(g *game.Game) game.Move {
	root := ai.newNode(g.Last(), nil, game.Pass)
	for i := 0; i < ai.simulations; i++ {
		n := ai.selectNode(root)
		ai.backpropagate(n, ai.simulate(n))
	}

	best := game.Pass
	bestScore := math.Inf(-1)
	for _, c := range root.children {
		if s := c.reward / float64(c.visits); s > bestScore {
			best, bestScore = c.move, s
		}
	}
	return best
}

func (ai *AI) newNode(b game.Board, parent *node, m game.Move) *node {
	n := &node{board: b, parent: parent, move: m}
	if !b.IsTerminal() {
		n.unexplored = game.LegalMoves(b, sampleBirths, ai.rng)
	}
	return n
}

// selectNode は未展開の手があれば 1 つ展開し、なければ UCB1 最大の子を降りる
func (ai *AI) selectNode(n *node) *node {
	if len(n.unexplored) > 0 {
		i := ai.rng.Intn(len(n.unexplored))
		m := n.unexplored[i]
		last := len(n.unexplored) - 1
		n.unexplored[i] = n.unexplored[last]
		n.unexplored = n.unexplored[:last]

		child := ai.newNode(n.board.Play(m), n, m)
		n.children = append(n.children, child)
		return child
	}
	if len(n.children) == 0 {
		return n // 終局
	}

	var best *node
	bestUCB := math.Inf(-1)
	logN := math.Log(float64(n.visits))
	for _, c := range n.children {
		ucb := c.reward/float64(c.visits) + exploration*math.Sqrt(logN/float64(c.visits))
		if ucb > bestUCB {
			best, bestUCB = c, ucb
		}
	}
	return ai.selectNode(best)
}

// simulate は n に至る手を指した側から見た報酬を返す
func (ai *AI) simulate(n *node) float64 {
	mover := n.board.ToMove().Opponent()
	b := n.board
	for d := 0; d < ai.RolloutDepth && !b.IsTerminal(); d++ {
		moves := game.LegalMoves(b, sampleBirths, ai.rng)
		b = b.Play(moves[ai.rng.Intn(len(moves))])
	}
	return ai.evaluator.Evaluate(b, mover)
}

// backpropagate は手番が替わるごとに符号を反転して報酬を積む
func (ai *AI) backpropagate(n *node, reward float64) {
	for ; n != nil; n = n.parent {
		n.visits++
		n.reward += reward
		reward = -reward
	}
}
