package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MatchConfig は複数局の対戦設定
type MatchConfig struct {
	Games      int
	Workers    int
	Rules      Rules
	StartLives int
	MoveBudget time.Duration
}

// MatchStats は A 側から見た勝敗
type MatchStats struct {
	Wins   int
	Losses int
	Draws  int
}

// PlayMatch は newA と newB の対戦を cfg.Games 局行う。偶数局は A が Good を持つ。
// onGame は局ごとに直列に呼ばれ、エラーを返すと残りの対局を打ち切る。
func PlayMatch(ctx context.Context, cfg MatchConfig, newA, newB func() AI, onGame func(i int, r BattleResult) error) (MatchStats, error) {
	var (
		mu    sync.Mutex
		stats MatchStats
	)
	lives := cfg.StartLives
	if lives <= 0 {
		lives = DefaultStartLives
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < cfg.Games; i++ {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, b := newA(), newB()
			aColor := Good
			gr := NewGameRunner(a, b, cfg.Rules)
			if i%2 == 1 {
				aColor = Bad
				gr = NewGameRunner(b, a, cfg.Rules)
			}
			gr.SetStartLives(lives)
			gr.MoveBudget = cfg.MoveBudget
			r := gr.Run()

			mu.Lock()
			defer mu.Unlock()
			switch {
			case r.Result == Draw:
				stats.Draws++
			case Player(r.Result) == aColor:
				stats.Wins++
			default:
				stats.Losses++
			}
			log.Debug().Int("game", i).Str("result", r.Result.String()).Int("moves", r.Game.Len()).Msg("game finished")
			if onGame != nil {
				return onGame(i, r)
			}
			return nil
		})
	}
	err := eg.Wait()
	return stats, err
}
