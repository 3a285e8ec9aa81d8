package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/montplusa/golad-battle/pkg/ai/bots"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/montplusa/golad-battle/pkg/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// コマンドライン引数の解析
	aiName := flag.String("ai", "search", "使用する AI (search, greedy, mcts, random, trivial)")
	evaluator := flag.String("eval", "domination", "評価器 (domination, valuenet:<path>, onnx:<path>)")
	searchConfig := flag.String("search-config", "", "探索パラメータの JSON")
	noPolicy := flag.Bool("no-policy", false, "方策モデルを使わない")
	verbose := flag.Bool("v", false, "デバッグログを出す")
	flag.Parse()

	// 標準出力はプロトコル用なのでログは標準エラーへ
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// 盤面の大きさが設定で変わったら方策モデルごと作り直す
	build := func(rules game.Rules) (game.AI, error) {
		return bots.New(*aiName, bots.Options{
			Rules:        rules,
			Evaluator:    *evaluator,
			SearchConfig: *searchConfig,
			NoPolicy:     *noPolicy,
		})
	}
	bot, err := protocol.NewWithFactory(build, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("AI の作成に失敗")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := bot.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("入力の読み込みに失敗")
	}
	log.Info().Msg("done with main loop")
}
