package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/montplusa/golad-battle/pkg/ai/valuenet"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loadGames は battle-offline が書き出した対局を読み込む
func loadGames(pattern string) ([]*game.Game, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	games := make([]*game.Game, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		var r game.BattleResult
		if err := json.Unmarshal(data, &r); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("skipping unreadable record")
			continue
		}
		if r.Game == nil || len(r.Game.Boards) == 0 {
			continue
		}
		if err := r.Game.Verify(); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("skipping inconsistent record")
			continue
		}
		games = append(games, r.Game)
	}
	return games, nil
}

func main() {
	// Parse command line flags
	input := flag.String("games", "output/*.json", "Glob of recorded games")
	initial := flag.String("init", "", "Initial network config (JSON); default network if empty")
	output := flag.String("out", "valuenet.json", "Output network config")
	name := flag.String("name", "sample", "Name of output weights")
	iterations := flag.Int("iterations", 10, "Training iterations")
	learningRate := flag.Float64("lr", 0.01, "Learning rate for neural network training")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config := valuenet.DefaultNetworkConfig()
	if *initial != "" {
		var err error
		if config, err = valuenet.LoadConfig(*initial); err != nil {
			log.Fatal().Err(err).Msg("Failed to load network config")
		}
	}
	config.Name = *name

	games, err := loadGames(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read games")
	}
	if len(games) > 0 {
		config.Rules = games[0].Boards[0].Rules()
	}

	network, err := valuenet.New(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create network")
	}

	training := valuenet.DefaultTrainingConfig()
	training.Iterations = *iterations
	training.LearningRate = *learningRate
	if err := network.Train(games, training); err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}

	if err := valuenet.SaveConfig(network.Config(), *output); err != nil {
		log.Fatal().Err(err).Msg("Failed to save network")
	}
	log.Info().Str("name", *name).Str("file", *output).Msg("Training complete!")
}
