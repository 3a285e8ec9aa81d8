package search

import (
	"reflect"
	"testing"

	"github.com/montplusa/golad-battle/pkg/ai/domination"
	"github.com/montplusa/golad-battle/pkg/game"
)

func board(t *testing.T, rules game.Rules, toMove game.Player, rows ...string) game.Board {
	t.Helper()
	b := game.NewBoard(rules, toMove)
	for r, row := range rows {
		for c, ch := range row {
			switch ch {
			case '+':
				b = b.With(game.Square{Row: r, Col: c}, game.Good)
			case '-':
				b = b.With(game.Square{Row: r, Col: c}, game.Bad)
			}
		}
	}
	return b.Resolved()
}

func checkSorted(t *testing.T, name string, list []Entry) {
	t.Helper()
	for i := 1; i < len(list); i++ {
		if list[i-1].Score < list[i].Score {
			t.Fatalf("%s not sorted at %d: %v < %v", name, i, list[i-1].Score, list[i].Score)
		}
	}
}

func TestDivideClassifiesEverySquare(t *testing.T) {
	rules := game.Rules{Width: 5, Height: 4, MaxRounds: 100}
	b := board(t, rules, game.Bad,
		"+-...",
		".--..",
		"...+.",
		"+....",
	)
	ev := domination.New()
	div := divider{evaluator: ev, keepNoOp: true}.divide(b)
	if len(div.Birth) != b.Count(game.Nobody) || len(div.KillSelf) != 3 || len(div.KillEnemy) != 3 {
		t.Fatalf("got %d births, %d own kills, %d enemy kills", len(div.Birth), len(div.KillSelf), len(div.KillEnemy))
	}
	checkSorted(t, "births", div.Birth)
	checkSorted(t, "own kills", div.KillSelf)
	checkSorted(t, "enemy kills", div.KillEnemy)
	for _, e := range div.KillSelf {
		if b.At(e.Square) != game.Bad {
			t.Errorf("%v is not an own cell", e.Square)
		}
		if want := ev.Evaluate(b.Play(game.Kill(e.Square)), game.Bad); e.Score != want {
			t.Errorf("%v scored %v, want %v", e.Square, e.Score, want)
		}
	}
	for _, e := range div.KillEnemy {
		if b.At(e.Square) != game.Good {
			t.Errorf("%v is not an enemy cell", e.Square)
		}
	}
	for _, e := range div.Birth {
		if b.At(e.Square) != game.Nobody {
			t.Errorf("%v is not dead", e.Square)
		}
	}
}

func TestDivideCollapsesNoOpBirths(t *testing.T) {
	rules := game.Rules{Width: 8, Height: 8, MaxRounds: 100}
	// 2x2 のブロックだけ。遠くのマスへの誕生は何も変えない。
	b := board(t, rules, game.Good,
		"++......",
		"++......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	passNext := b.Successor()
	noOps := 0
	var firstNoOp game.Square
	for i := 0; i < rules.Cells(); i++ {
		sq := rules.Square(i)
		if b.At(sq) == game.Nobody && b.ApplyMove(game.Move{{Square: sq, Birth: true}}).Successor() == passNext {
			if noOps == 0 {
				firstNoOp = sq
			}
			noOps++
		}
	}
	if noOps < 2 {
		t.Fatalf("fixture has %d no-op births", noOps)
	}

	ev := domination.New()
	full := divider{evaluator: ev, keepNoOp: true}.divide(b)
	collapsed := divider{evaluator: ev}.divide(b)
	if got, want := len(collapsed.Birth), len(full.Birth)-noOps+1; got != want {
		t.Fatalf("%d births after collapsing, want %d", got, want)
	}
	first := true
	for _, e := range collapsed.Birth {
		if b.ApplyMove(game.Move{{Square: e.Square, Birth: true}}).Successor() != passNext {
			continue
		}
		if !first || e.Square != firstNoOp {
			t.Fatalf("kept no-op birth %v, want only %v", e.Square, firstNoOp)
		}
		first = false
	}
}

// indexPolicy は行優先で前のマスほど高く採点する
type indexPolicy struct{}

func (indexPolicy) Scores(b game.Board, _ game.Player) PolicyScores {
	n := b.Rules().Cells()
	s := make([]float64, n)
	for i := range s {
		s[i] = -float64(i)
	}
	return PolicyScores{Birth: s, KillSelf: s, KillEnemy: s}
}

func TestDivideFastIsBounded(t *testing.T) {
	rules := game.DefaultRules()
	b := game.NewRandomBoard(rules, game.Good, game.DefaultStartLives, testRNG(2))
	ev := domination.New()
	const samples = 24
	div := divider{evaluator: ev}.divideFast(b, indexPolicy{}, samples)
	if len(div.Birth) > samples/2 || len(div.KillSelf) > samples/3 || len(div.KillEnemy) > max(samples/6, 2) {
		t.Fatalf("got %d/%d/%d entries", len(div.Birth), len(div.KillSelf), len(div.KillEnemy))
	}
	if len(div.KillSelf) == 0 || len(div.KillEnemy) == 0 || len(div.Birth) == 0 {
		t.Fatalf("empty lists: %d/%d/%d", len(div.Birth), len(div.KillSelf), len(div.KillEnemy))
	}
	checkSorted(t, "births", div.Birth)
	checkSorted(t, "own kills", div.KillSelf)
	checkSorted(t, "enemy kills", div.KillEnemy)
	for _, e := range div.KillSelf {
		if b.At(e.Square) != game.Good {
			t.Errorf("%v is not an own cell", e.Square)
		}
		if want := ev.Evaluate(b.Play(game.Kill(e.Square)), game.Good); e.Score != want {
			t.Errorf("%v scored %v, want %v", e.Square, e.Score, want)
		}
	}
}

// farPolicy は 2x2 ブロックから遠い 4 行目以降への誕生を最も高く採点する
type farPolicy struct{}

func (farPolicy) Scores(b game.Board, _ game.Player) PolicyScores {
	rules := b.Rules()
	birth := make([]float64, rules.Cells())
	kill := make([]float64, rules.Cells())
	for i := range birth {
		birth[i] = -float64(i)
		if rules.Square(i).Row >= 4 {
			birth[i] += 1000
		}
		kill[i] = -float64(i)
	}
	return PolicyScores{Birth: birth, KillSelf: kill, KillEnemy: kill}
}

func TestDivideFastCollapsesNoOpBirths(t *testing.T) {
	rules := game.Rules{Width: 8, Height: 8, MaxRounds: 100}
	b := board(t, rules, game.Good,
		"++......",
		"++......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	passNext := b.Successor()
	const samples = 20
	ev := domination.New()

	full := divider{evaluator: ev, keepNoOp: true}.divideFast(b, farPolicy{}, samples)
	if len(full.Birth) != samples/2 {
		t.Fatalf("%d births kept without collapsing, want %d", len(full.Birth), samples/2)
	}
	for _, e := range full.Birth {
		if b.ApplyMove(game.Move{{Square: e.Square, Birth: true}}).Successor() != passNext {
			t.Fatalf("birth at %v is not a no-op", e.Square)
		}
	}

	div := divider{evaluator: ev}.divideFast(b, farPolicy{}, samples)
	if len(div.Birth) != 1 {
		t.Fatalf("%d births kept, want exactly one no-op birth", len(div.Birth))
	}
	if want := (game.Square{Row: 4, Col: 0}); div.Birth[0].Square != want {
		t.Fatalf("kept %v, want the best ranked %v", div.Birth[0].Square, want)
	}
}

// gridPolicy は rules の大きさの盤面しか採点できない
type gridPolicy struct {
	rules game.Rules
}

func (p gridPolicy) Rules() game.Rules { return p.rules }

func (p gridPolicy) Scores(b game.Board, player game.Player) PolicyScores {
	if !b.Rules().SameGrid(p.rules) {
		panic("scored a board of another size")
	}
	return indexPolicy{}.Scores(b, player)
}

// shortPolicy は大きさを報告せず、決まった長さの採点を返す
type shortPolicy struct {
	cells int
}

func (p shortPolicy) Scores(game.Board, game.Player) PolicyScores {
	s := make([]float64, p.cells)
	return PolicyScores{Birth: s, KillSelf: s, KillEnemy: s}
}

func TestDivideFastFallsBackOnForeignGrid(t *testing.T) {
	rules := game.Rules{Width: 10, Height: 8, MaxRounds: 100}
	b := game.NewRandomBoard(rules, game.Bad, 12, testRNG(5))
	d := divider{evaluator: domination.New()}
	exact := d.divide(b)
	for _, pm := range []PolicyModel{gridPolicy{rules: game.DefaultRules()}, shortPolicy{cells: 20}} {
		if got := d.divideFast(b, pm, 10); !reflect.DeepEqual(got, exact) {
			t.Fatalf("%T: fast division differs from the exact one", pm)
		}
	}
	// 大きさが合えば方策を使う
	if got := d.divideFast(b, gridPolicy{rules: rules}, 10); len(got.Birth) > 5 {
		t.Fatalf("matching policy kept %d births", len(got.Birth))
	}
}
