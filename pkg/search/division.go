package search

import (
	"sort"

	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/rs/zerolog/log"
)

// Entry is a single-square action and the score of its successor.
type Entry struct {
	Score  float64
	Square game.Square
}

// Division splits the single-square actions of a position by kind, each list
// best first.
type Division struct {
	Birth     []Entry
	KillSelf  []Entry
	KillEnemy []Entry
}

// PolicyScores holds one score per square index (row-major) for each action
// kind. Only the entries matching the square's current owner are read.
type PolicyScores struct {
	Birth     []float64
	KillSelf  []float64
	KillEnemy []float64
}

// PolicyModel guesses action scores for every square in one pass.
type PolicyModel interface {
	Scores(b game.Board, player game.Player) PolicyScores
}

// gridModel is a PolicyModel built for one board size.
type gridModel interface {
	Rules() game.Rules
}

// policyFits reports whether policy can score boards shaped like b. Models
// that do not report their rules are trusted.
func policyFits(policy PolicyModel, b game.Board) bool {
	if policy == nil {
		return false
	}
	g, ok := policy.(gridModel)
	return !ok || g.Rules().SameGrid(b.Rules())
}

func (s PolicyScores) covers(cells int) bool {
	return len(s.Birth) >= cells && len(s.KillSelf) >= cells && len(s.KillEnemy) >= cells
}

type divider struct {
	evaluator game.Evaluator
	keepNoOp  bool
}

// divide scores every single-square action exactly. Births whose successor is
// the pass successor are collapsed to the first one in scan order.
func (d divider) divide(b game.Board) Division {
	var div Division
	mover := b.ToMove()
	passNext := b.Successor()
	seenNoOp := false
	rules := b.Rules()

	for i := 0; i < rules.Cells(); i++ {
		sq := rules.Square(i)
		if b.At(sq) != game.Nobody {
			continue
		}
		next := b.ApplyMove(game.Move{{Square: sq, Birth: true}}).Successor()
		if !d.keepNoOp && next == passNext {
			if seenNoOp {
				continue
			}
			seenNoOp = true
		}
		div.Birth = append(div.Birth, Entry{Score: d.evaluator.Evaluate(next, mover), Square: sq})
	}
	for i := 0; i < rules.Cells(); i++ {
		sq := rules.Square(i)
		own := b.At(sq)
		if own == game.Nobody {
			continue
		}
		e := Entry{Score: d.evaluator.Evaluate(b.Play(game.Kill(sq)), mover), Square: sq}
		if own == mover {
			div.KillSelf = append(div.KillSelf, e)
		} else {
			div.KillEnemy = append(div.KillEnemy, e)
		}
	}
	div.sort()
	return div
}

// divideFast lets the policy preselect a few squares per kind and scores only
// those exactly. A policy that cannot score b falls back to divide.
func (d divider) divideFast(b game.Board, policy PolicyModel, samples int) Division {
	mover := b.ToMove()
	rules := b.Rules()
	if !policyFits(policy, b) {
		return d.divide(b)
	}
	scores := policy.Scores(b, mover)
	if !scores.covers(rules.Cells()) {
		log.Warn().Int("cells", rules.Cells()).Int("births", len(scores.Birth)).Msg("policy scores do not cover the board, using exact division")
		return d.divide(b)
	}

	births := NewSelector[game.Square](max(samples/2, 2))
	killSelf := NewSelector[game.Square](max(samples/3, 4))
	killEnemy := NewSelector[game.Square](max(samples/6, 2))
	for i := 0; i < rules.Cells(); i++ {
		sq := rules.Square(i)
		switch b.At(sq) {
		case game.Nobody:
			births.Propose(scores.Birth[i], sq)
		case mover:
			killSelf.Propose(scores.KillSelf[i], sq)
		default:
			killEnemy.Propose(scores.KillEnemy[i], sq)
		}
	}

	var div Division
	passNext := b.Successor()
	seenNoOp := false
	for _, c := range births.Get() {
		next := b.ApplyMove(game.Move{{Square: c.Value, Birth: true}}).Successor()
		if !d.keepNoOp && next == passNext {
			if seenNoOp {
				continue
			}
			seenNoOp = true
		}
		div.Birth = append(div.Birth, Entry{Score: d.evaluator.Evaluate(next, mover), Square: c.Value})
	}
	for _, c := range killSelf.Get() {
		div.KillSelf = append(div.KillSelf, Entry{Score: d.evaluator.Evaluate(b.Play(game.Kill(c.Value)), mover), Square: c.Value})
	}
	for _, c := range killEnemy.Get() {
		div.KillEnemy = append(div.KillEnemy, Entry{Score: d.evaluator.Evaluate(b.Play(game.Kill(c.Value)), mover), Square: c.Value})
	}
	div.sort()
	return div
}

func (div *Division) sort() {
	for _, list := range [][]Entry{div.Birth, div.KillSelf, div.KillEnemy} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	}
}
