package game

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxWidth は列数の上限、MaxHeight は行数の上限 (列ごとに uint64 1 語)
const (
	MaxWidth  = 32
	MaxHeight = 64
)

// DefaultStartLives は初期盤面で各プレイヤーに置かれる生存セル数
const DefaultStartLives = 40

// Player はセルの所有者、または手番のプレイヤー
type Player int8

const (
	Bad    Player = -1
	Nobody Player = 0
	Good   Player = 1
)

// Opponent は相手プレイヤーを返す
func (p Player) Opponent() Player { return -p }

func (p Player) String() string {
	switch p {
	case Good:
		return "good"
	case Bad:
		return "bad"
	}
	return "nobody"
}

// Result は終局判定
type Result int8

const (
	Undetermined Result = -2
	NegativeWins Result = -1
	Draw         Result = 0
	PositiveWins Result = 1
)

func (r Result) String() string {
	switch r {
	case NegativeWins:
		return "bad wins"
	case Draw:
		return "draw"
	case PositiveWins:
		return "good wins"
	}
	return "undetermined"
}

// Rules は盤面サイズとラウンド上限
type Rules struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	MaxRounds int `json:"maxRounds"`
}

// DefaultRules は 18x16, 200 ラウンド
func DefaultRules() Rules {
	return Rules{Width: 18, Height: 16, MaxRounds: 200}
}

func (r Rules) Validate() error {
	if r.Width < 1 || r.Width > MaxWidth {
		return fmt.Errorf("width %d out of range [1,%d]", r.Width, MaxWidth)
	}
	if r.Height < 1 || r.Height > MaxHeight {
		return fmt.Errorf("height %d out of range [1,%d]", r.Height, MaxHeight)
	}
	if r.MaxRounds < 1 {
		return fmt.Errorf("max rounds must be positive, got %d", r.MaxRounds)
	}
	return nil
}

// Cells はマスの総数
func (r Rules) Cells() int { return r.Width * r.Height }

// SameGrid は盤面の大きさが同じかどうか。MaxRounds は見ない
func (r Rules) SameGrid(o Rules) bool { return r.Width == o.Width && r.Height == o.Height }

// Contains は sq が盤面内かどうか
func (r Rules) Contains(sq Square) bool {
	return sq.Col >= 0 && sq.Col < r.Width && sq.Row >= 0 && sq.Row < r.Height
}

// Index は行優先のマス番号
func (r Rules) Index(sq Square) int { return sq.Row*r.Width + sq.Col }

// Square は Index の逆変換
func (r Rules) Square(i int) Square { return Square{Row: i / r.Width, Col: i % r.Width} }

// Board is an immutable GOLAD position. Cells are stored column by column as
// two bitmasks; bit r of column c is the cell at row r. A cell is never set in
// both masks.
type Board struct {
	good   [MaxWidth]uint64
	bad    [MaxWidth]uint64
	rules  Rules
	toMove Player
	round  int
	result Result
}

// NewBoard は空の盤面を返す
func NewBoard(rules Rules, toMove Player) Board {
	return Board{rules: rules, toMove: toMove, result: Undetermined}
}

func (b Board) Rules() Rules     { return b.rules }
func (b Board) Width() int       { return b.rules.Width }
func (b Board) Height() int      { return b.rules.Height }
func (b Board) ToMove() Player   { return b.toMove }
func (b Board) Round() int       { return b.round }
func (b Board) Result() Result   { return b.result }
func (b Board) IsTerminal() bool { return b.result != Undetermined }

// At はマスの所有者を返す。盤外は Nobody。
func (b Board) At(sq Square) Player {
	if !b.rules.Contains(sq) {
		return Nobody
	}
	bit := uint64(1) << uint(sq.Row)
	switch {
	case b.good[sq.Col]&bit != 0:
		return Good
	case b.bad[sq.Col]&bit != 0:
		return Bad
	}
	return Nobody
}

// With は sq を p にした盤面を返す。終局判定は更新しない。
func (b Board) With(sq Square, p Player) Board {
	b.set(sq, p)
	return b
}

// WithToMove は手番とラウンドを差し替えた盤面を返す
func (b Board) WithToMove(p Player, round int) Board {
	b.toMove = p
	b.round = round
	return b
}

// Resolved は現在のセルから終局判定をやり直した盤面を返す
func (b Board) Resolved() Board {
	b.result = b.resolve()
	return b
}

func (b *Board) set(sq Square, p Player) {
	if !b.rules.Contains(sq) {
		return
	}
	bit := uint64(1) << uint(sq.Row)
	b.good[sq.Col] &^= bit
	b.bad[sq.Col] &^= bit
	switch p {
	case Good:
		b.good[sq.Col] |= bit
	case Bad:
		b.bad[sq.Col] |= bit
	}
}

// Count は p のセル数 (Nobody なら死んだセル数)
func (b Board) Count(p Player) int {
	n := 0
	for c := 0; c < b.rules.Width; c++ {
		switch p {
		case Good:
			n += bits.OnesCount64(b.good[c])
		case Bad:
			n += bits.OnesCount64(b.bad[c])
		default:
			n += bits.OnesCount64(b.rowMask() &^ (b.good[c] | b.bad[c]))
		}
	}
	return n
}

func (b Board) rowMask() uint64 {
	if b.rules.Height >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(b.rules.Height) - 1
}

// bitCounter は 8 近傍を carry-save で数える。s1, s2 は個数の下位 2 ビット。
type bitCounter struct {
	s1, s2, tooMany, enough, self uint64
}

func (c *bitCounter) add(x uint64) {
	c.tooMany |= c.s1 & c.s2 & x
	c.s2 ^= c.s1 & x
	c.s1 ^= x
	c.enough |= c.s2 & (c.s1 | c.self)
}

// majority は Good の近傍が 2 つ以上あるビットを立てる
type majority struct {
	g1, dominates uint64
}

func (m *majority) add(x uint64) {
	m.dominates |= m.g1 & x
	m.g1 ^= x
}

// Successor は 1 世代進めた盤面を返す。
// 生存セルは自身を含む 3x3 の生存数が 3 か 4 なら残り、死んだセルは周囲 3 つで誕生する。
// 誕生セルの所有者は周囲の多数派。
func (b Board) Successor() Board {
	next := b
	w := b.rules.Width
	mask := b.rowMask()
	for c := 0; c < w; c++ {
		self := b.good[c] | b.bad[c]
		cnt := bitCounter{self: self}
		cnt.add(self << 1)
		cnt.add(self >> 1)
		var maj majority
		maj.add(b.good[c] << 1)
		maj.add(b.good[c] >> 1)
		for _, n := range [2]int{c - 1, c + 1} {
			if n < 0 || n >= w {
				continue
			}
			alive := b.good[n] | b.bad[n]
			cnt.add(alive)
			cnt.add(alive << 1)
			cnt.add(alive >> 1)
			maj.add(b.good[n])
			maj.add(b.good[n] << 1)
			maj.add(b.good[n] >> 1)
		}
		live := cnt.enough &^ cnt.tooMany & mask
		next.good[c] = live &^ b.bad[c] & (maj.dominates | self)
		next.bad[c] = live &^ b.good[c] & (^maj.dominates | self)
	}
	next.round = b.round + 1
	next.toMove = b.toMove.Opponent()
	next.result = next.resolve()
	return next
}

// ReferenceSuccessor はマスごとに素朴に数える Successor の参照実装
func ReferenceSuccessor(b Board) Board {
	next := b
	for c := 0; c < b.rules.Width; c++ {
		next.good[c], next.bad[c] = 0, 0
	}
	for r := 0; r < b.rules.Height; r++ {
		for c := 0; c < b.rules.Width; c++ {
			alive, sum := 0, 0
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					p := b.At(Square{Row: r + dr, Col: c + dc})
					if p == Nobody {
						continue
					}
					alive++
					if dr != 0 || dc != 0 {
						sum += int(p)
					}
				}
			}
			sq := Square{Row: r, Col: c}
			switch own := b.At(sq); {
			case own != Nobody && (alive == 3 || alive == 4):
				next.set(sq, own)
			case own == Nobody && alive == 3:
				if sum > 0 {
					next.set(sq, Good)
				} else {
					next.set(sq, Bad)
				}
			}
		}
	}
	next.round = b.round + 1
	next.toMove = b.toMove.Opponent()
	next.result = next.resolve()
	return next
}

func (b Board) resolve() Result {
	var anyGood, anyBad bool
	for c := 0; c < b.rules.Width; c++ {
		anyGood = anyGood || b.good[c] != 0
		anyBad = anyBad || b.bad[c] != 0
	}
	switch {
	case anyGood && !anyBad:
		return PositiveWins
	case anyBad && !anyGood:
		return NegativeWins
	case !anyGood:
		return Draw
	case b.round >= b.rules.MaxRounds:
		return Draw
	}
	return Undetermined
}

// ApplyMove はセルだけを書き換える。世代は進めないので必ず Successor と組で使う。
// 盤外のマスは無視する。
func (b Board) ApplyMove(m Move) Board {
	for _, part := range m {
		if part.Birth {
			b.set(part.Square, b.toMove)
		} else {
			b.set(part.Square, Nobody)
		}
	}
	return b
}

// Play は ApplyMove の後に Successor を適用する
func (b Board) Play(m Move) Board {
	return b.ApplyMove(m).Successor()
}

// FlipColumns は左右反転
func (b Board) FlipColumns() Board {
	w := b.rules.Width
	for c := 0; c < w/2; c++ {
		o := w - 1 - c
		b.good[c], b.good[o] = b.good[o], b.good[c]
		b.bad[c], b.bad[o] = b.bad[o], b.bad[c]
	}
	return b
}

// FlipRows は上下反転
func (b Board) FlipRows() Board {
	shift := uint(64 - b.rules.Height)
	for c := 0; c < b.rules.Width; c++ {
		b.good[c] = bits.Reverse64(b.good[c]) >> shift
		b.bad[c] = bits.Reverse64(b.bad[c]) >> shift
	}
	return b
}

// Symmetries は自身と 3 つの鏡像を返す
func (b Board) Symmetries() [4]Board {
	return [4]Board{b, b.FlipRows(), b.FlipColumns(), b.FlipRows().FlipColumns()}
}

// String は '.', '+', '-' の行を改行区切りで返す
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.rules.Height; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.row(r))
	}
	return sb.String()
}

func (b Board) row(r int) string {
	buf := make([]byte, b.rules.Width)
	for c := range buf {
		switch b.At(Square{Row: r, Col: c}) {
		case Good:
			buf[c] = '+'
		case Bad:
			buf[c] = '-'
		default:
			buf[c] = '.'
		}
	}
	return string(buf)
}
