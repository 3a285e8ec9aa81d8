package protocol

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/montplusa/golad-battle/pkg/game"
)

// killOwnAI は最初に見つけた自分のセルを消し、通知された係数を記録する
type killOwnAI struct {
	factors []float64
	seen    []game.Board
}

func (*killOwnAI) Name() string { return "kill-own" }

func (a *killOwnAI) ChooseMove(g *game.Game) game.Move {
	b := g.Last()
	a.seen = append(a.seen, b)
	rules := b.Rules()
	for i := 0; i < rules.Cells(); i++ {
		if sq := rules.Square(i); b.At(sq) == b.ToMove() {
			return game.Kill(sq)
		}
	}
	return game.Pass
}

func (a *killOwnAI) NotifyTimeFactor(f float64) { a.factors = append(a.factors, f) }

const script = `settings timebank 10000
settings time_per_move 100
settings player_names player0,player1
settings your_bot player0
settings your_botid 0
settings field_width 4
settings field_height 4
settings max_rounds 100
update game round 1
update game field .,.,.,.,.,0,0,.,.,0,1,.,.,.,1,.
action move 10000
this line is ignored
update game round 60
update player0 living_cells 3
action move 9000
`

func TestRunAnswersMoves(t *testing.T) {
	ai := &killOwnAI{}
	var out bytes.Buffer
	bot := New(ai, &out)
	if err := bot.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}

	s := bot.Settings()
	want := Settings{Me: game.Bad, Rules: game.Rules{Width: 4, Height: 4, MaxRounds: 200}, Timebank: 10000, TimePerMove: 100}
	if s != want {
		t.Fatalf("settings %+v", s)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output %q", out.String())
	}
	for i, line := range lines {
		m, err := game.ParseMove(line)
		if err != nil {
			t.Fatal(err)
		}
		b := ai.seen[i]
		if err := b.ValidateMove(m); err != nil {
			t.Fatalf("move %d %q: %v", i, line, err)
		}
		if b.ToMove() != game.Bad {
			t.Fatalf("board to move %v", b.ToMove())
		}
	}
	if r := ai.seen[0].Round(); r != 0 {
		t.Fatalf("first round %d", r)
	}
	if r := ai.seen[1].Round(); r != 118 {
		t.Fatalf("second round %d", r)
	}

	// 1 手目は残り手数が多すぎて通知しない
	if len(ai.factors) != 1 {
		t.Fatalf("factors %v", ai.factors)
	}
	wantFactor := float64(9000-500+100*21) / float64(41*1100)
	if math.Abs(ai.factors[0]-wantFactor) > 1e-12 {
		t.Fatalf("factor %v, want %v", ai.factors[0], wantFactor)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bot := New(&killOwnAI{}, &bytes.Buffer{})
	if err := bot.Run(ctx, strings.NewReader(script)); err != context.Canceled {
		t.Fatalf("got %v", err)
	}
}

func TestHandleErrors(t *testing.T) {
	bot := New(&killOwnAI{}, &bytes.Buffer{})
	for _, line := range []string{
		"settings field_width wide",
		"update game round x",
		"action move soon",
		"hello",
	} {
		if err := bot.Handle(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
	if err := bot.Handle(""); err != nil {
		t.Errorf("empty line: %v", err)
	}
}

func TestTimeFactor(t *testing.T) {
	tests := []struct {
		name                                 string
		left, last, bank, perMove, remaining int
		want                                 float64
		ok                                   bool
	}{
		{"regular", 9500, 10000, 10000, 100, 50, 11500.0 / (50 * 600), true},
		{"full bank", 10000, 10000, 10000, 100, 50, float64(10000-500+100*25) / (50 * 50), true},
		{"too many left", 9500, 10000, 10000, 100, 100, 0, false},
		{"no time used", 9800, 9000, 10000, 100, 50, 0, false},
		{"past limit", 9500, 10000, 10000, 100, 0, 0, false},
		{"capped", 9500, 10000, 10000, 100, 95, float64(9500-500+100*45) / (90 * 600), true},
		{"floored", 100, 5000, 10000, 100, 50, 0.1, true},
	}
	for _, tt := range tests {
		got, ok := TimeFactor(tt.left, tt.last, tt.bank, tt.perMove, tt.remaining)
		if ok != tt.ok || (ok && math.Abs(got-tt.want) > 1e-12) {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFactoryRebuildsForFieldSize(t *testing.T) {
	var built []game.Rules
	var ais []*killOwnAI
	build := func(rules game.Rules) (game.AI, error) {
		built = append(built, rules)
		ai := &killOwnAI{}
		ais = append(ais, ai)
		return ai, nil
	}
	var out bytes.Buffer
	bot, err := NewWithFactory(build, &out)
	if err != nil {
		t.Fatal(err)
	}
	if err := bot.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}

	// 既定の大きさで 1 回、4x4 の設定で 1 回。2 手目では作り直さない
	if len(built) != 2 {
		t.Fatalf("built %d times: %+v", len(built), built)
	}
	if !built[0].SameGrid(game.DefaultRules()) || !built[1].SameGrid(game.Rules{Width: 4, Height: 4}) {
		t.Fatalf("built for %+v", built)
	}
	if len(ais[0].seen) != 0 || len(ais[1].seen) != 2 {
		t.Fatalf("moves per AI: %d, %d", len(ais[0].seen), len(ais[1].seen))
	}
	for _, b := range ais[1].seen {
		if !b.Rules().SameGrid(built[1]) {
			t.Fatalf("AI saw a %dx%d board", b.Rules().Width, b.Rules().Height)
		}
	}
}

func TestFactoryFailureKeepsAI(t *testing.T) {
	first := &killOwnAI{}
	calls := 0
	build := func(rules game.Rules) (game.AI, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("no model for this size")
		}
		return first, nil
	}
	var out bytes.Buffer
	bot, err := NewWithFactory(build, &out)
	if err != nil {
		t.Fatal(err)
	}
	if err := bot.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}
	if len(first.seen) != 2 {
		t.Fatalf("old AI played %d moves", len(first.seen))
	}
	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); len(lines) != 2 {
		t.Fatalf("output %q", out.String())
	}
}

func TestNewWithFactoryError(t *testing.T) {
	build := func(game.Rules) (game.AI, error) { return nil, errors.New("broken") }
	if _, err := NewWithFactory(build, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}
