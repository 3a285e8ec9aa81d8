// Package valuenet は go-deep の全結合ネットワークで盤面を評価する
package valuenet

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/montplusa/golad-battle/pkg/ai/domination"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/patrikeh/go-deep"
	"github.com/rs/zerolog/log"
)

// dominationDepth は入力に含める占有率の世代数
const dominationDepth = 3

// NetworkConfig defines the neural network architecture
type NetworkConfig struct {
	Name         string
	Rules        game.Rules
	HiddenLayers []int
	LearningRate float64
	Weights      [][][]float64
}

func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Name:         "default",
		Rules:        game.DefaultRules(),
		HiddenLayers: []int{64, 32},
		LearningRate: 0.01,
	}
}

// InputSize はセル数 + 占有率 + 手番 + 進行度
func (c NetworkConfig) InputSize() int {
	return c.Rules.Cells() + dominationDepth + 2
}

// Network implements game.Evaluator with a tanh-output feed-forward net.
// go-deep keeps activations inside the neurons, so Predict is serialized.
type Network struct {
	mu      sync.Mutex
	network *deep.Neural
	config  NetworkConfig

	// 大きさの違う盤面は domination で評価する
	fallback game.Evaluator
	warnGrid sync.Once
}

// New creates a network, applying config.Weights when present
func New(config NetworkConfig) (*Network, error) {
	if err := config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("network %s: %w", config.Name, err)
	}
	network := deep.NewNeural(&deep.Config{
		Inputs:     config.InputSize(),
		Layout:     append(append([]int(nil), config.HiddenLayers...), 1),
		Activation: deep.ActivationTanh,
		Mode:       deep.ModeDefault, // 出力層も tanh で [-1, 1] に収める
		Weight:     deep.NewNormal(0.1, 0.0),
		Bias:       true,
	})
	if config.Weights != nil {
		network.ApplyWeights(config.Weights)
	}
	return &Network{network: network, config: config, fallback: domination.New()}, nil
}

func (n *Network) Name() string {
	return fmt.Sprintf("valuenet (%s)", n.config.Name)
}

// Config は現在の重みを含む設定を返す
func (n *Network) Config() NetworkConfig {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := n.config
	c.Weights = n.network.Dump().Weights
	return c
}

// Evaluate implements game.Evaluator
func (n *Network) Evaluate(b game.Board, player game.Player) float64 {
	if b.IsTerminal() {
		return float64(b.Result()) * float64(player)
	}
	if r := b.Rules(); !r.SameGrid(n.config.Rules) {
		n.warnGrid.Do(func() {
			log.Warn().Str("network", n.config.Name).Int("width", r.Width).Int("height", r.Height).Msg("board size differs from the network, using domination")
		})
		return n.fallback.Evaluate(b, player)
	}
	features := boardToFeatures(b, player)
	n.mu.Lock()
	prediction := n.network.Predict(features)
	n.mu.Unlock()
	return clamp(prediction[0])
}

func clamp(v float64) float64 {
	return max(min(v, 1), -1)
}

// Feature normalization: 特徴量を[-1, 1]の範囲に正規化
func normalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0.0
	}
	normalized := 2.0*(value-min)/(max-min) - 1.0
	if normalized < -1.0 {
		return -1.0
	}
	if normalized > 1.0 {
		return 1.0
	}
	return normalized
}

// boardToFeatures は player 視点の入力ベクトルを作る
func boardToFeatures(b game.Board, player game.Player) []float64 {
	rules := b.Rules()
	features := make([]float64, 0, rules.Cells()+dominationDepth+2)

	// 自分のセル 1, 相手のセル -1, 死んだセル 0
	for i := 0; i < rules.Cells(); i++ {
		switch b.At(rules.Square(i)) {
		case player:
			features = append(features, 1)
		case player.Opponent():
			features = append(features, -1)
		default:
			features = append(features, 0)
		}
	}

	features = append(features, domination.Features(b, player, dominationDepth)...)

	if b.ToMove() == player {
		features = append(features, 1)
	} else {
		features = append(features, -1)
	}
	features = append(features, normalizeFeature(float64(b.Round()), 0, float64(rules.MaxRounds)))
	return features
}

// LoadConfig は JSON の NetworkConfig を読む
func LoadConfig(path string) (NetworkConfig, error) {
	config := DefaultNetworkConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	return config, nil
}

// SaveConfig は重みを含めて JSON で書き出す
func SaveConfig(config NetworkConfig, path string) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("JSON変換エラー: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ファイル作成エラー: %w", err)
	}
	return nil
}
