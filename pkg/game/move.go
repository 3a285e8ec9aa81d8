package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrBadShape     = errors.New("move must be pass, kill or birth")
	ErrOutOfRange   = errors.New("square out of range")
	ErrNotDead      = errors.New("birth target is not dead")
	ErrNotOwned     = errors.New("sacrifice is not owned by the mover")
	ErrNotAlive     = errors.New("kill target is not alive")
	ErrReusedSquare = errors.New("square used twice")
)

// Square はマスの座標
type Square struct {
	Row int
	Col int
}

// String は "x,y" (列,行) 形式
func (sq Square) String() string {
	return strconv.Itoa(sq.Col) + "," + strconv.Itoa(sq.Row)
}

// MovePart は手を構成する 1 マス分の操作
type MovePart struct {
	Square Square
	Birth  bool
}

// Move は Pass (空), Kill (1 要素), Birth (誕生 1 + 犠牲 2) のいずれか
type Move []MovePart

// Pass は何もしない手
var Pass Move

func Kill(sq Square) Move {
	return Move{{Square: sq}}
}

// Birth は target に誕生させ s1, s2 を犠牲にする手
func Birth(target, s1, s2 Square) Move {
	return Move{{Square: target, Birth: true}, {Square: s1}, {Square: s2}}
}

func (m Move) IsPass() bool { return len(m) == 0 }

// Equal は同じマス操作の列かどうか
func (m Move) Equal(o Move) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// String は "pass", "kill x,y", "birth x,y x,y x,y" を返す
func (m Move) String() string {
	switch {
	case len(m) == 0:
		return "pass"
	case len(m) == 1 && !m[0].Birth:
		return "kill " + m[0].Square.String()
	}
	parts := make([]string, 0, len(m)+1)
	parts = append(parts, "birth")
	for _, p := range m {
		if p.Birth {
			parts = append(parts, p.Square.String())
		}
	}
	for _, p := range m {
		if !p.Birth {
			parts = append(parts, p.Square.String())
		}
	}
	return strings.Join(parts, " ")
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	mv, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = mv
	return nil
}

// ParseMove は String の逆変換
func ParseMove(s string) (Move, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty move: %w", ErrBadShape)
	}
	squares := make([]Square, 0, len(fields)-1)
	for _, f := range fields[1:] {
		sq, err := parseSquare(f)
		if err != nil {
			return nil, fmt.Errorf("parse move %q: %w", s, err)
		}
		squares = append(squares, sq)
	}
	switch {
	case fields[0] == "pass" && len(squares) == 0:
		return Pass, nil
	case fields[0] == "kill" && len(squares) == 1:
		return Kill(squares[0]), nil
	case fields[0] == "birth" && len(squares) == 3:
		return Birth(squares[0], squares[1], squares[2]), nil
	}
	return nil, fmt.Errorf("parse move %q: %w", s, ErrBadShape)
}

func parseSquare(s string) (Square, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Square{}, fmt.Errorf("square %q: want x,y", s)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Square{}, fmt.Errorf("square %q: %w", s, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Square{}, fmt.Errorf("square %q: %w", s, err)
	}
	return Square{Row: y, Col: x}, nil
}

// ValidateMove は手番側にとって m が合法かを調べる
func (b Board) ValidateMove(m Move) error {
	seen := make(map[Square]bool, len(m))
	births := 0
	for _, p := range m {
		if !b.rules.Contains(p.Square) {
			return fmt.Errorf("%v: %w", p.Square, ErrOutOfRange)
		}
		if seen[p.Square] {
			return fmt.Errorf("%v: %w", p.Square, ErrReusedSquare)
		}
		seen[p.Square] = true
		if p.Birth {
			births++
		}
	}
	switch {
	case len(m) == 0:
		return nil
	case len(m) == 1 && births == 0:
		if b.At(m[0].Square) == Nobody {
			return fmt.Errorf("%v: %w", m[0].Square, ErrNotAlive)
		}
		return nil
	case len(m) == 3 && births == 1:
		for _, p := range m {
			own := b.At(p.Square)
			if p.Birth && own != Nobody {
				return fmt.Errorf("%v: %w", p.Square, ErrNotDead)
			}
			if !p.Birth && own != b.toMove {
				return fmt.Errorf("%v: %w", p.Square, ErrNotOwned)
			}
		}
		return nil
	}
	return ErrBadShape
}
