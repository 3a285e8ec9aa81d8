package search

import (
	"math"

	"github.com/rs/zerolog/log"
)

const minTimeFactor = 0.1

// NotifyTimeFactor rescales the parameter table. factor is the ratio of
// affordable to nominal time per move; it is floored at 0.1 and damped by a
// fourth root before it is folded into the cumulative factor. The table is
// always recomputed from the one in place at the first call.
func (e *Engine) NotifyTimeFactor(factor float64) {
	factor = max(factor, minTimeFactor)
	if e.original == nil || len(e.original) != len(e.params) {
		e.original = append([]Parameters(nil), e.params...)
		e.totalFactor = 1
	}
	e.totalFactor *= math.Pow(factor, 0.25)
	for i := range e.params {
		e.params[i] = e.original[i].Scale(e.totalFactor)
	}
	log.Info().Float64("factor", factor).Float64("total", e.totalFactor).Msg("total factor changed")
}

// ResetTimeBudget restores the table captured by the first NotifyTimeFactor.
func (e *Engine) ResetTimeBudget() {
	if e.original != nil {
		e.params = append([]Parameters(nil), e.original...)
	}
	e.original = nil
	e.totalFactor = 1
}

// TotalFactor is the cumulative scale applied to the original table.
func (e *Engine) TotalFactor() float64 { return e.totalFactor }
