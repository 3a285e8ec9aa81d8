package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Game は盤面と着手の履歴。Boards[i+1] == Boards[i].Play(Moves[i]) を保つ。
type Game struct {
	Boards []Board `json:"boards"`
	Moves  []Move  `json:"moves"`
}

// NewGame は start から始まる対局を返す
func NewGame(start Board) *Game {
	return &Game{Boards: []Board{start}}
}

// Last は現在の盤面
func (g *Game) Last() Board {
	return g.Boards[len(g.Boards)-1]
}

// Len は着手数
func (g *Game) Len() int { return len(g.Moves) }

// Result は現在の盤面の終局判定
func (g *Game) Result() Result { return g.Last().Result() }

// MakeMove は m を記録して次の盤面を追加する。
// 不正な手は警告を出したうえでそのまま適用する。
func (g *Game) MakeMove(m Move) {
	b := g.Last()
	if err := b.ValidateMove(m); err != nil {
		log.Warn().Err(err).Str("move", m.String()).Int("round", b.Round()).Msg("illegal move applied")
	}
	g.Moves = append(g.Moves, m)
	g.Boards = append(g.Boards, b.Play(m))
}

// Verify は履歴の整合性を確かめる
func (g *Game) Verify() error {
	if len(g.Boards) != len(g.Moves)+1 {
		return fmt.Errorf("%d boards for %d moves", len(g.Boards), len(g.Moves))
	}
	for i, m := range g.Moves {
		if next := g.Boards[i].Play(m); next != g.Boards[i+1] {
			return fmt.Errorf("board %d does not follow %q", i+1, m)
		}
	}
	return nil
}

// NewRandomBoard は上半分に相手側 lives 個を置き、点対称に自分側を置いた初期盤面を返す
func NewRandomBoard(rules Rules, toMove Player, lives int, rng Intner) Board {
	if rng == nil {
		rng = globalRNG{}
	}
	b := NewBoard(rules, toMove)
	top := rules.Height / 2 * rules.Width
	lives = min(lives, top)
	for placed := 0; placed < lives; {
		sq := rules.Square(rng.Intn(top))
		if b.At(sq) != Nobody {
			continue
		}
		b.set(sq, toMove.Opponent())
		b.set(Square{Row: rules.Height - 1 - sq.Row, Col: rules.Width - 1 - sq.Col}, toMove)
		placed++
	}
	b.result = b.resolve()
	return b
}

type boardJSON struct {
	Rules  Rules    `json:"rules"`
	ToMove Player   `json:"toMove"`
	Round  int      `json:"round"`
	Result Result   `json:"result"`
	Rows   []string `json:"rows"`
}

func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([]string, b.rules.Height)
	for r := range rows {
		rows[r] = b.row(r)
	}
	return json.Marshal(boardJSON{
		Rules:  b.rules,
		ToMove: b.toMove,
		Round:  b.round,
		Result: b.result,
		Rows:   rows,
	})
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var bj boardJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return err
	}
	if err := bj.Rules.Validate(); err != nil {
		return err
	}
	if len(bj.Rows) != bj.Rules.Height {
		return fmt.Errorf("board has %d rows, want %d", len(bj.Rows), bj.Rules.Height)
	}
	nb := Board{rules: bj.Rules, toMove: bj.ToMove, round: bj.Round, result: bj.Result}
	for r, row := range bj.Rows {
		if len(row) != bj.Rules.Width {
			return fmt.Errorf("row %d has %d cells, want %d", r, len(row), bj.Rules.Width)
		}
		for c, ch := range []byte(row) {
			switch ch {
			case '+':
				nb.set(Square{Row: r, Col: c}, Good)
			case '-':
				nb.set(Square{Row: r, Col: c}, Bad)
			case '.':
			default:
				return fmt.Errorf("row %d: unknown cell %q", r, ch)
			}
		}
	}
	*b = nb
	return nil
}

// FieldString は "." / "0" (Bad) / "1" (Good) を行優先でカンマ区切りにした文字列
func (b Board) FieldString() string {
	cells := make([]string, 0, b.rules.Cells())
	for r := 0; r < b.rules.Height; r++ {
		for c := 0; c < b.rules.Width; c++ {
			switch b.At(Square{Row: r, Col: c}) {
			case Good:
				cells = append(cells, "1")
			case Bad:
				cells = append(cells, "0")
			default:
				cells = append(cells, ".")
			}
		}
	}
	return strings.Join(cells, ",")
}

// ParseField は FieldString の逆変換。
// 不明な記号やセル数の過不足はエラーにするが、読めた分は盤面に反映する。
func ParseField(rules Rules, field string, toMove Player, round int) (Board, error) {
	b := NewBoard(rules, toMove)
	b.round = round
	cells := strings.Split(strings.TrimSpace(field), ",")
	var err error
	if len(cells) != rules.Cells() {
		err = fmt.Errorf("field has %d cells, want %d", len(cells), rules.Cells())
	}
	for i, cell := range cells[:min(len(cells), rules.Cells())] {
		switch strings.TrimSpace(cell) {
		case "1":
			b.set(rules.Square(i), Good)
		case "0":
			b.set(rules.Square(i), Bad)
		case ".":
		default:
			if err == nil {
				err = fmt.Errorf("cell %d: unknown symbol %q", i, cell)
			}
		}
	}
	b.result = b.resolve()
	return b, err
}
