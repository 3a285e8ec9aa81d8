package search

import (
	"math"

	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/rs/zerolog/log"
)

// Engine picks moves with a width-limited alpha-beta search. Each depth has
// its own Parameters: candidates are ranked one ply deep, the best are
// deepened with a shallower search and the survivors are searched in full.
type Engine struct {
	evaluator game.Evaluator
	policy    PolicyModel
	divider   divider
	params    []Parameters
	async     bool

	// time budget state, see NotifyTimeFactor
	original    []Parameters
	totalFactor float64
}

// New returns an engine. policy may be nil, in which case every depth uses the
// exact division.
func New(cfg Config, evaluator game.Evaluator, policy PolicyModel) *Engine {
	return &Engine{
		evaluator:   evaluator,
		policy:      policy,
		divider:     divider{evaluator: evaluator, keepNoOp: cfg.KeepNoOpBirths},
		params:      append([]Parameters(nil), cfg.Parameters...),
		async:       cfg.Async,
		totalFactor: 1,
	}
}

func (e *Engine) Name() string { return "search" }

// Parameters returns a copy of the current (possibly rescaled) table.
func (e *Engine) Parameters() []Parameters {
	return append([]Parameters(nil), e.params...)
}

// SetParameters replaces the table and forgets the time budget history.
func (e *Engine) SetParameters(ps []Parameters) {
	e.params = append([]Parameters(nil), ps...)
	e.original = nil
	e.totalFactor = 1
}

// ChooseMove implements game.AI.
func (e *Engine) ChooseMove(g *game.Game) game.Move {
	m, _ := e.Search(g.Last())
	return m
}

// Search returns the best move for the side to move and its score from that
// side's point of view.
func (e *Engine) Search(b game.Board) (game.Move, float64) {
	if len(e.params) == 0 {
		return game.Pass, e.evaluator.Evaluate(b, b.ToMove())
	}
	if e.policy != nil && !policyFits(e.policy, b) {
		r := b.Rules()
		log.Warn().Int("width", r.Width).Int("height", r.Height).Msg("policy built for another board size, using exact division")
	}
	return e.chooseFromDivision(b, e.divider.divide(b), 0, -2, 2)
}

// Divide scores every single-square action of b exactly.
func (e *Engine) Divide(b game.Board) Division {
	return e.divider.divide(b)
}

func (e *Engine) divisionAt(b game.Board, depth int) Division {
	if depth == 0 || depth >= len(e.params) || !policyFits(e.policy, b) {
		return e.divider.divide(b)
	}
	return e.divider.divideFast(b, e.policy, e.params[depth].DivisionSamples)
}

func (e *Engine) chooseFromDivision(b game.Board, div Division, depth int, alpha, beta float64) (game.Move, float64) {
	if depth >= len(e.params) {
		return game.Pass, e.evaluator.Evaluate(b, b.ToMove())
	}
	p := e.params[depth]
	mover := b.ToMove()

	candidates := NewSelector[game.Move](p.BroadSearch)
	candidates.Propose(e.evaluator.Evaluate(b.Successor(), mover), game.Pass)
	for _, en := range div.KillSelf {
		candidates.Propose(en.Score, game.Kill(en.Square))
	}
	for _, en := range div.KillEnemy {
		candidates.Propose(en.Score, game.Kill(en.Square))
	}
	e.proposeCombinations(candidates, b, div, p.CombinationSamples)

	if depth < len(e.params)-2 {
		candidates = e.deepSearch(b, candidates, depth+1, p.DeepSearch, -1, 1, depth == 0)
	}
	best := e.deepSearch(b, candidates, depth, 1, alpha, beta, depth == 0).Get()
	if len(best) == 0 {
		return game.Pass, e.evaluator.Evaluate(b.Successor(), mover)
	}
	return best[0].Value, best[0].Score
}

// combinationBudget is the bound P for which the lattice b*s1*s2 <= P holds
// about 2n points.
func combinationBudget(n int) int {
	return int(math.Ceil(0.5852 * math.Pow(2*float64(n), 0.7042)))
}

// proposeCombinations scores birth moves built from the best birth targets and
// the best own sacrifices, favouring combinations of highly ranked parts.
func (e *Engine) proposeCombinations(sel *Selector[game.Move], b game.Board, div Division, samples int) {
	if samples <= 0 || len(div.KillSelf) < 2 {
		return
	}
	budget := combinationBudget(samples)
	mover := b.ToMove()
	for bi, birth := range div.Birth {
		maxS1 := min(len(div.KillSelf), budget/(1+bi))
		if maxS1 == 0 {
			break
		}
		for s1 := 0; s1 < maxS1; s1++ {
			maxS2 := min(len(div.KillSelf), 1+budget/((1+bi)*(1+s1)))
			for s2 := s1 + 1; s2 < maxS2; s2++ {
				m := game.Birth(birth.Square, div.KillSelf[s1].Square, div.KillSelf[s2].Square)
				sel.Propose(e.evaluator.Evaluate(b.Play(m), mover), m)
			}
		}
	}
}

type scored struct {
	move  game.Move
	score float64
}

// deepSearch re-scores suggested moves by searching their successors with the
// parameters of depth+1 and keeps the best width of them. At the root one
// candidate at a time may be searched on a second goroutine; the window used
// for it is the one current when it was started.
func (e *Engine) deepSearch(b game.Board, suggested *Selector[game.Move], depth, width int, alpha, beta float64, useAsync bool) *Selector[game.Move] {
	out := NewSelector[game.Move](width)
	next := 0
	if depth+1 < len(e.params) {
		next = e.params[depth+1].DeepSearch
	}
	mover := b.ToMove()

	search := func(c Candidate[game.Move], alpha, beta float64) scored {
		if next <= 0 {
			return scored{c.Value, c.Score}
		}
		sim := b.Play(c.Value)
		_, s := e.chooseFromDivision(sim, e.divisionAt(sim, depth+1), depth+1, alpha, beta)
		return scored{c.Value, -s}
	}
	// record reports whether the window has closed.
	record := func(r scored) bool {
		if r.score > out.LeastScore() {
			out.Propose(r.score, r.move)
			if mover == game.Good {
				alpha = max(alpha, out.LeastScore())
			} else {
				beta = min(beta, -out.LeastScore())
			}
		}
		return alpha >= beta
	}

	async := useAsync && e.async && next > 0
	var pending chan scored
	for _, c := range suggested.Get() {
		if async {
			if pending != nil {
				select {
				case r := <-pending:
					pending = nil
					if record(r) {
						return out
					}
				default:
				}
			}
			if pending == nil {
				ch := make(chan scored, 1)
				go func(c Candidate[game.Move], alpha, beta float64) {
					ch <- search(c, alpha, beta)
				}(c, alpha, beta)
				pending = ch
				continue
			}
		}
		if record(search(c, alpha, beta)) {
			break
		}
	}
	if pending != nil {
		record(<-pending)
	}
	return out
}
