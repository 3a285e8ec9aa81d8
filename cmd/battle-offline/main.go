package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/montplusa/golad-battle/pkg/ai/bots"
	"github.com/montplusa/golad-battle/pkg/game"
	"github.com/montplusa/golad-battle/pkg/game/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// 指定されたディレクトリ内の同じプレフィックスを持つファイルの最大連番を取得する
func findMaxSequenceNumber(dir, prefix string) (int, error) {
	// ディレクトリが存在しない場合は0を返す
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	// プレフィックス_NNNNN.json の形式にマッチする正規表現
	pattern := regexp.MustCompile(fmt.Sprintf(`^%s_(\d{5})\.json$`, regexp.QuoteMeta(prefix)))
	maxSeq := 0

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		matches := pattern.FindStringSubmatch(file.Name())
		if len(matches) == 2 {
			seq, err := strconv.Atoi(matches[1])
			if err != nil {
				continue
			}
			if seq > maxSeq {
				maxSeq = seq
			}
		}
	}

	return maxSeq, nil
}

func main() {
	// コマンドライン引数の解析
	outputDir := flag.String("output", "output", "出力ディレクトリ名")
	outputPrefix := flag.String("output-prefix", "", "出力ファイル名のプレフィックス")
	noOutput := flag.Bool("no-output", false, "出力しない")
	games := flag.Int("games", 1, "実行する試合数")
	numWorkers := flag.Int("workers", runtime.NumCPU(), "ワーカー数")
	aiA := flag.String("a", "greedy", "AI A (search, greedy, mcts, random, trivial)")
	aiB := flag.String("b", "random", "AI B")
	evalA := flag.String("eval-a", "domination", "AI A の評価器")
	evalB := flag.String("eval-b", "domination", "AI B の評価器")
	searchConfig := flag.String("search-config", "", "探索パラメータの JSON")
	width := flag.Int("width", 18, "盤面の幅")
	height := flag.Int("height", 16, "盤面の高さ")
	maxRounds := flag.Int("max-rounds", 200, "手数の上限")
	lives := flag.Int("lives", game.DefaultStartLives, "初期セル数 (片側)")
	budget := flag.Duration("move-budget", 0, "1 手あたりの想定時間 (0 なら調整しない)")
	show := flag.Bool("show", false, "終局図を表示する")
	verbose := flag.Bool("v", false, "デバッグログを出す")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// 出力プレフィックスが指定されていない場合はエラー
	if !*noOutput && *outputPrefix == "" {
		fmt.Fprintln(os.Stderr, "エラー: --output-prefix は必須です")
		flag.Usage()
		os.Exit(1)
	}

	rules := game.Rules{Width: *width, Height: *height, MaxRounds: *maxRounds}
	if err := rules.Validate(); err != nil {
		log.Fatal().Err(err).Msg("盤面の設定が不正です")
	}

	newAI := func(name, eval string) func() game.AI {
		opts := bots.Options{Rules: rules, Evaluator: eval, SearchConfig: *searchConfig}
		// 設定の誤りは対戦前に検出する
		if _, err := bots.New(name, opts); err != nil {
			log.Fatal().Err(err).Str("ai", name).Msg("AI の作成に失敗")
		}
		return func() game.AI {
			ai, _ := bots.New(name, opts)
			return ai
		}
	}

	if !*noOutput {
		// 出力ディレクトリの作成
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatal().Err(err).Msg("出力ディレクトリの作成に失敗しました")
		}
	}

	// 既存ファイルの最大連番を取得
	maxSeq, err := findMaxSequenceNumber(*outputDir, *outputPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("既存ファイルの確認中にエラーが発生しました")
	}
	startSeq := maxSeq + 1
	log.Info().Msgf("連番 %05d から開始します", startSeq)
	log.Info().Msgf("%s vs %s を %d 回実行します（ワーカー数: %d）", *aiA, *aiB, *games, *numWorkers)

	var done atomic.Int32
	onGame := func(i int, r game.BattleResult) error {
		log.Info().Msgf("対戦 %d が完了しました (%d/%d): %s, %d 手", i, done.Add(1), *games, r.Result, r.Game.Len())
		if *show {
			fmt.Fprintln(os.Stderr, render.Board(r.Game.Last()))
		}
		if *noOutput {
			return nil
		}
		// 結果をJSONに変換（インデントなし）
		jsonData, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("JSONの変換に失敗しました: %w", err)
		}
		// ファイル名の生成（5桁のゼロ詰め連番）
		filename := filepath.Join(*outputDir, fmt.Sprintf("%s_%05d.json", *outputPrefix, startSeq+i))
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
		}
		return nil
	}

	stats, err := game.PlayMatch(context.Background(), game.MatchConfig{
		Games:      *games,
		Workers:    *numWorkers,
		Rules:      rules,
		StartLives: *lives,
		MoveBudget: *budget,
	}, newAI(*aiA, *evalA), newAI(*aiB, *evalB), onGame)
	if err != nil {
		log.Fatal().Err(err).Msg("対戦が中断されました")
	}

	log.Info().Msg("すべての対戦が完了しました")
	fmt.Printf("%s: %d 勝, %s: %d 勝, 引き分け: %d\n", *aiA, stats.Wins, *aiB, stats.Losses, stats.Draws)
}
