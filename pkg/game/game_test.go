package game

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
)

type passAI struct{ notified atomic.Int32 }

func (*passAI) Name() string               { return "pass" }
func (*passAI) ChooseMove(*Game) Move      { return Pass }
func (a *passAI) NotifyTimeFactor(float64) { a.notified.Add(1) }

// killFirstAI は最初に見つかった相手のセルを消す
type killFirstAI struct{}

func (killFirstAI) Name() string { return "kill-first" }
func (killFirstAI) ChooseMove(g *Game) Move {
	b := g.Last()
	for _, m := range LegalMoves(b, 0, nil) {
		if len(m) == 1 && b.At(m[0].Square) == b.ToMove().Opponent() {
			return m
		}
	}
	return Pass
}
func (killFirstAI) NotifyTimeFactor(float64) {}

func TestGameReplay(t *testing.T) {
	rules := Rules{Width: 8, Height: 8, MaxRounds: 30}
	g := NewGame(NewRandomBoard(rules, Good, 12, testRNG(6)))
	for g.Result() == Undetermined {
		g.MakeMove(killFirstAI{}.ChooseMove(g))
	}
	if err := g.Verify(); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	var back Game
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if err := back.Verify(); err != nil {
		t.Fatalf("replayed game: %v", err)
	}
	if back.Len() != g.Len() || back.Last() != g.Last() {
		t.Fatalf("replayed game ends at\n%s\nwant\n%s", back.Last(), g.Last())
	}
}

func TestNewRandomBoardIsPointSymmetric(t *testing.T) {
	rules := DefaultRules()
	b := NewRandomBoard(rules, Bad, DefaultStartLives, testRNG(7))
	if b.Count(Good) != DefaultStartLives || b.Count(Bad) != DefaultStartLives {
		t.Fatalf("got %d good, %d bad", b.Count(Good), b.Count(Bad))
	}
	for r := 0; r < rules.Height; r++ {
		for c := 0; c < rules.Width; c++ {
			mirror := Square{Row: rules.Height - 1 - r, Col: rules.Width - 1 - c}
			if b.At(Square{Row: r, Col: c}) != -b.At(mirror) {
				t.Fatalf("(%d,%d) is not mirrored", r, c)
			}
		}
	}
	if b.ToMove() != Bad || b.Result() != Undetermined {
		t.Errorf("to move %v, result %v", b.ToMove(), b.Result())
	}
}

func TestFieldString(t *testing.T) {
	rules := Rules{Width: 3, Height: 2, MaxRounds: 10}
	b, err := ParseField(rules, ".,0,1,1,.,.", Bad, 4)
	if err != nil {
		t.Fatal(err)
	}
	if b.At(Square{Row: 0, Col: 1}) != Bad || b.At(Square{Row: 1, Col: 0}) != Good {
		t.Fatalf("parsed:\n%s", b)
	}
	if got := b.FieldString(); got != ".,0,1,1,.,." {
		t.Errorf("FieldString() = %q", got)
	}
	if b.Round() != 4 || b.ToMove() != Bad {
		t.Errorf("round %d to move %v", b.Round(), b.ToMove())
	}

	b, err = ParseField(rules, ".,0,x,1", Good, 0)
	if err == nil {
		t.Fatal("want error for short field")
	}
	if b.Count(Good) != 1 || b.Count(Bad) != 1 {
		t.Errorf("best-effort parse kept %d good, %d bad", b.Count(Good), b.Count(Bad))
	}
}

func TestPlayMatch(t *testing.T) {
	cfg := MatchConfig{Games: 6, Workers: 3, Rules: Rules{Width: 8, Height: 8, MaxRounds: 20}, StartLives: 8}
	var played atomic.Int32
	stats, err := PlayMatch(context.Background(), cfg,
		func() AI { return killFirstAI{} },
		func() AI { return &passAI{} },
		func(i int, r BattleResult) error {
			played.Add(1)
			if err := r.Game.Verify(); err != nil {
				t.Errorf("game %d: %v", i, err)
			}
			if r.Result == Undetermined {
				t.Errorf("game %d unfinished", i)
			}
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if played.Load() != 6 || stats.Wins+stats.Losses+stats.Draws != 6 {
		t.Fatalf("played %d, stats %+v", played.Load(), stats)
	}
}

func TestRunnerNotifiesTimeFactor(t *testing.T) {
	a, b := &passAI{}, &passAI{}
	gr := NewGameRunner(a, b, Rules{Width: 4, Height: 4, MaxRounds: 6})
	gr.SetStartLives(3)
	gr.SetRand(testRNG(8))
	gr.MoveBudget = 1
	r := gr.Run()
	if r.Result == Undetermined {
		t.Fatal("game did not finish")
	}
	if a.notified.Load()+b.notified.Load() == 0 && r.Game.Len() > 0 {
		t.Skip("moves were too fast to measure")
	}
}
