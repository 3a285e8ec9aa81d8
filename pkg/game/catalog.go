package game

import (
	"sort"

	"lukechampine.com/frand"
)

// Intner は乱数源。*frand.RNG と *rand.Rand が満たす。
type Intner interface {
	Intn(n int) int
}

type globalRNG struct{}

func (globalRNG) Intn(n int) int { return frand.Intn(n) }

// BirthCount は誕生手の総数 C(自セル数, 2) * 死セル数
func BirthCount(b Board) int {
	own := b.Count(b.toMove)
	return own * (own - 1) / 2 * b.Count(Nobody)
}

// LegalMoves は手番側の合法手を Pass, Kill, Birth の順に返す。
// 誕生手が maxBirths を超える場合は重複なしで一様に maxBirths 個だけ選ぶ。
// maxBirths が -1 なら全列挙する。rng が nil なら frand を使う。
func LegalMoves(b Board, maxBirths int, rng Intner) []Move {
	var alive, own, dead []Square
	for r := 0; r < b.rules.Height; r++ {
		for c := 0; c < b.rules.Width; c++ {
			sq := Square{Row: r, Col: c}
			switch b.At(sq) {
			case Nobody:
				dead = append(dead, sq)
			case b.toMove:
				own = append(own, sq)
				alive = append(alive, sq)
			default:
				alive = append(alive, sq)
			}
		}
	}

	total := len(own) * (len(own) - 1) / 2 * len(dead)
	moves := make([]Move, 0, 1+len(alive)+min(total, max(maxBirths, 0)))
	moves = append(moves, Pass)
	for _, sq := range alive {
		moves = append(moves, Kill(sq))
	}
	if total == 0 {
		return moves
	}

	unrank := func(idx int) Move {
		target := dead[idx%len(dead)]
		pair := idx / len(dead)
		s1 := 0
		for row := len(own) - 1; pair >= row; row-- {
			pair -= row
			s1++
		}
		return Birth(target, own[s1], own[s1+1+pair])
	}

	if maxBirths == -1 || maxBirths >= total {
		for i := 0; i < total; i++ {
			moves = append(moves, unrank(i))
		}
		return moves
	}
	if rng == nil {
		rng = globalRNG{}
	}
	for _, i := range sampleIndices(total, maxBirths, rng) {
		moves = append(moves, unrank(i))
	}
	return moves
}

// sampleIndices は [0,n) から k 個を重複なしで一様に選び昇順で返す (Floyd)
func sampleIndices(n, k int, rng Intner) []int {
	if k <= 0 {
		return nil
	}
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.Intn(j + 1)
		if _, ok := chosen[t]; ok {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}
