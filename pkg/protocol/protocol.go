// Package protocol drives a game.AI over the line-based engine protocol:
//
//	settings your_botid 0
//	settings field_width 18
//	update game round 3
//	update game field .,0,1,...
//	action move 9500
//
// Each "action move" is answered with one move name on the output.
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/rs/zerolog/log"
)

// Defaults used until the engine sends its settings.
const (
	DefaultTimebank    = 10000
	DefaultTimePerMove = 100
)

// Settings mirrors the "settings" lines. Times are in milliseconds.
type Settings struct {
	Me          game.Player
	Rules       game.Rules
	Timebank    int
	TimePerMove int
}

// Factory builds an AI for boards of the given size.
type Factory func(rules game.Rules) (game.AI, error)

// Bot answers protocol requests with moves from an AI.
type Bot struct {
	ai       game.AI
	out      io.Writer
	settings Settings

	// build が nil でなければ盤面の大きさが変わったとき ai を作り直す
	build    Factory
	builtFor game.Rules

	field        string
	round        int
	lastTimeLeft int
}

func New(ai game.AI, out io.Writer) *Bot {
	return &Bot{
		ai:  ai,
		out: out,
		settings: Settings{
			Me:          game.Good,
			Rules:       game.DefaultRules(),
			Timebank:    DefaultTimebank,
			TimePerMove: DefaultTimePerMove,
		},
		round:        1,
		lastTimeLeft: DefaultTimebank,
	}
}

// NewWithFactory builds the AI for the default board and rebuilds it whenever
// the field size settings change before a move.
func NewWithFactory(build Factory, out io.Writer) (*Bot, error) {
	rules := game.DefaultRules()
	ai, err := build(rules)
	if err != nil {
		return nil, err
	}
	b := New(ai, out)
	b.build = build
	b.builtFor = rules
	return b, nil
}

func (b *Bot) Settings() Settings { return b.settings }

// rebuild makes sure the AI was built for the current field size. A failed
// rebuild keeps the previous AI.
func (b *Bot) rebuild() {
	rules := b.settings.Rules
	if b.build == nil || rules.SameGrid(b.builtFor) {
		return
	}
	ai, err := b.build(rules)
	if err != nil {
		log.Warn().Err(err).Int("width", rules.Width).Int("height", rules.Height).Msg("rebuilding AI failed, keeping the old one")
		return
	}
	log.Info().Int("width", rules.Width).Int("height", rules.Height).Msg("rebuilt AI for new field size")
	b.ai = ai
	b.builtFor = rules
}

// Run handles lines until in is exhausted or ctx is done. Malformed lines are
// logged and skipped.
func (b *Bot) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.Handle(sc.Text()); err != nil {
			log.Warn().Err(err).Str("line", sc.Text()).Msg("ignoring input")
		}
	}
	return sc.Err()
}

// Handle processes one line.
func (b *Bot) Handle(line string) error {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	switch {
	case words[0] == "settings" && len(words) >= 3:
		return b.setting(words[1], words[2])
	case len(words) >= 4 && words[0] == "update" && words[1] == "game":
		switch words[2] {
		case "field":
			b.field = words[3]
		case "round":
			n, err := strconv.Atoi(words[3])
			if err != nil {
				return fmt.Errorf("round: %w", err)
			}
			b.round = n
			log.Debug().Int("round", n).Msg("new round")
		}
		return nil
	case words[0] == "update":
		return nil
	case words[0] == "action" && len(words) >= 3 && words[1] == "move":
		timeLeft, err := strconv.Atoi(words[2])
		if err != nil {
			return fmt.Errorf("action move: %w", err)
		}
		return b.move(timeLeft)
	}
	return fmt.Errorf("unknown command %q", words[0])
}

func (b *Bot) setting(key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("settings %s: %w", key, err)
		}
		return n, nil
	}
	var err error
	switch key {
	case "your_botid":
		b.settings.Me = game.Good
		if value == "0" {
			b.settings.Me = game.Bad
		}
	case "field_width":
		b.settings.Rules.Width, err = atoi()
	case "field_height":
		b.settings.Rules.Height, err = atoi()
	case "max_rounds":
		var n int
		n, err = atoi()
		b.settings.Rules.MaxRounds = 2 * n
	case "timebank":
		b.settings.Timebank, err = atoi()
		b.lastTimeLeft = b.settings.Timebank
	case "time_per_move":
		b.settings.TimePerMove, err = atoi()
	}
	return err
}

// ply converts the protocol round (both players move once per round, player
// 0 first) to the board's move counter.
func (b *Bot) ply() int {
	p := 2 * (b.round - 1)
	if b.settings.Me == game.Good {
		p++
	}
	return p
}

func (b *Bot) move(timeLeft int) error {
	s := b.settings
	if err := s.Rules.Validate(); err != nil {
		return err
	}
	b.rebuild()
	board, err := game.ParseField(s.Rules, b.field, s.Me, b.ply())
	if err != nil {
		log.Warn().Err(err).Msg("malformed field, playing on what was read")
	}
	log.Debug().Msgf("field:\n%s", board)

	remaining := (s.Rules.MaxRounds - board.Round() + 1) / 2
	if f, ok := TimeFactor(timeLeft, b.lastTimeLeft, s.Timebank, s.TimePerMove, remaining); ok {
		b.ai.NotifyTimeFactor(f)
	}
	b.lastTimeLeft = timeLeft

	m := b.ai.ChooseMove(game.NewGame(board))
	if err := board.ValidateMove(m); err != nil {
		log.Warn().Err(err).Str("move", m.String()).Msg("AI chose an illegal move")
	}
	_, err = fmt.Fprintln(b.out, m.String())
	return err
}

// TimeFactor estimates how much more (or less) time than usual each remaining
// move may take. It is only computed when fewer than 100 own moves remain;
// remaining is capped at 90 and the result floored at 0.1.
func TimeFactor(timeLeft, lastTimeLeft, timebank, timePerMove, remaining int) (float64, bool) {
	used := lastTimeLeft - timeLeft + timePerMove
	if timeLeft == timebank {
		used -= timePerMove / 2
	}
	if remaining <= 0 {
		log.Warn().Msg("asked to play past the round limit")
		return 0, false
	}
	if remaining >= 100 || used <= 0 {
		return 0, false
	}
	remaining = min(remaining, 90)
	reserve := 5 * timePerMove
	available := timeLeft - reserve + timePerMove*((1+remaining)/2)
	return max(float64(available)/float64(remaining*used), 0.1), true
}
