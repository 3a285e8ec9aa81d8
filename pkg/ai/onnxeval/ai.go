// Package onnxeval は書き出し済みの ONNX モデルで盤面を評価する
package onnxeval

import (
	"fmt"
	"os"
	"sync"

	"github.com/montplusa/golad-battle/pkg/ai/domination"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"
)

// NUM_CHANNELS は自分, 相手, 手番の 3 面
const NUM_CHANNELS = 3

var fallback = domination.New()

// Evaluator は ONNX モデルを使用した評価器。
// gorgonnx のグラフは入力を共有するので推論は直列化する。
type Evaluator struct {
	mu      sync.Mutex
	model   *onnx.Model
	backend *gorgonnx.Graph
	rules   game.Rules

	warnGrid sync.Once
}

// Load はファイルからモデルを読み込む
func Load(path string, rules game.Rules) (*Evaluator, error) {
	modelData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("モデルファイルの読み込みに失敗: %w", err)
	}
	return New(modelData, rules)
}

// New はシリアライズ済みのモデルから Evaluator を作成します
func New(modelData []byte, rules game.Rules) (*Evaluator, error) {
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	if err := model.UnmarshalBinary(modelData); err != nil {
		return nil, fmt.Errorf("モデルのデシリアライズに失敗: %w", err)
	}
	return &Evaluator{model: model, backend: backend, rules: rules}, nil
}

func (e *Evaluator) Name() string { return "onnx" }

// Evaluate は player から見た評価値を返します。推論に失敗したら 0。
// モデルと大きさの違う盤面は domination で評価します。
func (e *Evaluator) Evaluate(b game.Board, player game.Player) float64 {
	if b.IsTerminal() {
		return float64(b.Result()) * float64(player)
	}
	if r := b.Rules(); !r.SameGrid(e.rules) {
		e.warnGrid.Do(func() {
			log.Warn().Int("width", r.Width).Int("height", r.Height).Msg("board size differs from the onnx model, using domination")
		})
		return fallback.Evaluate(b, player)
	}
	value, err := e.predict(createInputTensor(b, player))
	if err != nil {
		log.Warn().Err(err).Msg("onnx inference failed")
		return 0.0
	}
	return max(min(value, 1), -1)
}

func (e *Evaluator) predict(input tensor.Tensor) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.model.SetInput(0, input); err != nil {
		return 0, fmt.Errorf("入力の設定に失敗: %w", err)
	}
	if err := e.backend.Run(); err != nil {
		return 0, fmt.Errorf("推論の実行に失敗: %w", err)
	}
	outputs, err := e.model.GetOutputTensors()
	if err != nil {
		return 0, fmt.Errorf("出力の取得に失敗: %w", err)
	}
	if len(outputs) == 0 {
		return 0, fmt.Errorf("出力が空です")
	}
	return getScalarFromTensor(outputs[0])
}

// createInputTensor は盤面から NCHW (1, 3, H, W) の入力テンソルを作成します
func createInputTensor(b game.Board, player game.Player) tensor.Tensor {
	h, w := b.Height(), b.Width()
	plane := h * w
	inputData := make([]float32, NUM_CHANNELS*plane)
	toMove := float32(0)
	if b.ToMove() == player {
		toMove = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			switch b.At(game.Square{Row: y, Col: x}) {
			case player:
				inputData[idx] = 1.0
			case player.Opponent():
				inputData[plane+idx] = 1.0
			}
			inputData[2*plane+idx] = toMove
		}
	}
	return tensor.New(
		tensor.WithShape(1, NUM_CHANNELS, h, w),
		tensor.WithBacking(inputData),
	)
}

// getScalarFromTensor はテンソルから要素数 1 の値を取り出します
func getScalarFromTensor(t tensor.Tensor) (float64, error) {
	shape := t.Shape()
	var value interface{}
	switch {
	case len(shape) == 0:
		value = t.ScalarValue()
	case shape.TotalSize() == 1:
		coords := make([]int, len(shape))
		v, err := t.At(coords...)
		if err != nil {
			return 0, err
		}
		value = v
	default:
		return 0, fmt.Errorf("スカラー値を取得できません: %v", shape)
	}
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("未対応の型: %T", value)
}
