package valuenet

import (
	"fmt"
	"time"

	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/patrikeh/go-deep/training"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

// TrainingConfig specifies parameters for training on recorded games
type TrainingConfig struct {
	Iterations      int     // Number of passes over the examples
	LearningRate    float64 // SGD learning rate
	Momentum        float64 // SGD momentum
	Decay           float64 // SGD learning rate decay
	ValidationShare float64 // Share of examples held out for validation
	Verbosity       int     // go-deep trainer verbosity (0 = silent)
}

func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:      10,
		LearningRate:    0.01,
		Momentum:        0.5,
		Decay:           1e-6,
		ValidationShare: 0.1,
		Verbosity:       1,
	}
}

// Examples は決着した対局の各局面を 4 つの鏡像と両視点に展開する。
// 教師値は player から見た最終結果 (+1, 0, -1)。
func Examples(games []*game.Game) training.Examples {
	var examples training.Examples
	for _, g := range games {
		result := g.Result()
		if result == game.Undetermined {
			continue
		}
		for _, b := range g.Boards {
			if b.IsTerminal() {
				continue
			}
			for _, sym := range b.Symmetries() {
				for _, p := range []game.Player{game.Good, game.Bad} {
					examples = append(examples, training.Example{
						Input:    boardToFeatures(sym, p),
						Response: []float64{float64(result) * float64(p)},
					})
				}
			}
		}
	}
	return examples
}

// Train fits the network to the outcome of the given games
func (n *Network) Train(games []*game.Game, config TrainingConfig) error {
	if config.Iterations <= 0 {
		return fmt.Errorf("iterations must be greater than 0")
	}
	for i, g := range games {
		if r := g.Boards[0].Rules(); r != n.config.Rules {
			return fmt.Errorf("game %d: rules %+v do not match network %+v", i, r, n.config.Rules)
		}
	}

	examples := Examples(games)
	if len(examples) == 0 {
		return fmt.Errorf("no decided positions in %d games", len(games))
	}
	frand.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
	nVal := int(float64(len(examples)) * config.ValidationShare)
	validation, train := examples[:nVal], examples[nVal:]

	log.Info().
		Int("games", len(games)).
		Int("examples", len(train)).
		Int("validation", len(validation)).
		Int("iterations", config.Iterations).
		Msg("starting training")

	trainStart := time.Now()
	trainer := training.NewTrainer(training.NewSGD(config.LearningRate, config.Momentum, config.Decay, false), config.Verbosity)
	n.mu.Lock()
	trainer.Train(n.network, train, validation, config.Iterations)
	n.config.LearningRate = config.LearningRate
	n.mu.Unlock()

	log.Info().Str("elapsed", formatDuration(time.Since(trainStart))).Msg("training done")
	return nil
}

// MeanSquaredError は examples に対する平均二乗誤差
func (n *Network) MeanSquaredError(examples training.Examples) float64 {
	if len(examples) == 0 {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	sum := 0.0
	for _, ex := range examples {
		d := n.network.Predict(ex.Input)[0] - ex.Response[0]
		sum += d * d
	}
	return sum / float64(len(examples))
}

// formatDuration returns a human-readable string for a duration
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
