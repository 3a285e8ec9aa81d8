package game

// AI はゲーム用エージェントのインターフェース
type AI interface {
	Name() string
	// 現在の盤面から指す手を選ぶ
	ChooseMove(g *Game) Move
	// 使える時間と想定時間の比を通知する
	NotifyTimeFactor(factor float64)
}

// Evaluator は player から見た盤面の評価値を [-1, 1] で返す
type Evaluator interface {
	Evaluate(b Board, player Player) float64
}

// EvaluatorFunc は関数を Evaluator として使うためのアダプタ
type EvaluatorFunc func(b Board, player Player) float64

func (f EvaluatorFunc) Evaluate(b Board, player Player) float64 { return f(b, player) }
