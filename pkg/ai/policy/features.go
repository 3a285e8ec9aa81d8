package policy

import (
	"github.com/montplusa/golad-battle/pkg/ai/domination"
	"github.com/montplusa/golad-battle/pkg/game"
)

// 入力面。*Near は近傍に 1 セル増減したときの影響、*Here はそのマスへの操作の影響。
const (
	birthNear = iota
	killSelfNear
	killEnemyNear
	birthHere
	killSelfHere
	killEnemyHere
	numPlanes
)

// impossible はそのマスで取れない操作
const impossible = -100000.0

// Features は numPlanes 面 (各 幅x高さ) と、Pass 後の占有率 1 つを並べた入力
func Features(b game.Board, player game.Player) []float64 {
	rules := b.Rules()
	plane := rules.Cells()
	x := make([]float64, numPlanes*plane+1)
	at := func(p, i int) *float64 { return &x[p*plane+i] }

	for row := 0; row < rules.Height; row++ {
		for col := 0; col < rules.Width; col++ {
			neighbors, dominant := 0, 0
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					if p := b.At(game.Square{Row: row + dr, Col: col + dc}); p != game.Nobody {
						neighbors++
						dominant += int(p) * int(player)
					}
				}
			}
			i := row*rules.Width + col
			self := float64(int(b.At(game.Square{Row: row, Col: col})) * int(player))

			if self != 0 {
				*at(birthHere, i) = impossible
				if self > 0 {
					*at(killEnemyHere, i) = impossible
					if neighbors == 2 {
						*at(killSelfHere, i) = -1
					} else if neighbors == 3 && dominant < 0 {
						*at(killSelfHere, i) = -2
					}
				} else {
					*at(killSelfHere, i) = impossible
					if neighbors == 2 {
						*at(killEnemyHere, i) = 1
					} else if neighbors == 3 && dominant > 0 {
						*at(killEnemyHere, i) = 2
					}
				}
				switch neighbors {
				case 1: // 2 に増えて生き残る
					*at(birthNear, i) = self
				case 3: // 4 に増えて死ぬ
					*at(birthNear, i) = -self
				case 4: // 3 に減って生き残る
					*at(killSelfNear, i) = self
					*at(killEnemyNear, i) = self
				case 2: // 1 に減って死ぬ
					*at(killSelfNear, i) = -self
					*at(killEnemyNear, i) = -self
				}
				continue
			}

			*at(killSelfHere, i) = impossible
			*at(killEnemyHere, i) = impossible
			switch neighbors {
			case 2:
				*at(birthHere, i) = 1
				*at(birthNear, i) = sign(dominant + 1)
			case 3:
				if dominant < 0 {
					*at(birthHere, i) = 2
				}
				*at(birthNear, i) = -sign(dominant)
				*at(killSelfNear, i) = -sign(dominant - 1)
				*at(killEnemyNear, i) = -sign(dominant + 1)
			case 4:
				*at(killSelfNear, i) = sign(dominant - 1)
				*at(killEnemyNear, i) = sign(dominant + 1)
			}
		}
	}
	x[numPlanes*plane] = domination.Share(b.Successor(), player)
	return x
}

// sign は正なら 1, それ以外は -1
func sign(v int) float64 {
	if v > 0 {
		return 1
	}
	return -1
}
