package search

import (
	"reflect"
	"testing"

	"github.com/montplusa/golad-battle/pkg/ai/domination"
)

func TestNotifyTimeFactorCompounds(t *testing.T) {
	p := Parameters{DivisionSamples: 100, CombinationSamples: 100, BroadSearch: 200, DeepSearch: 10}
	e := New(Config{Parameters: []Parameters{p}}, domination.New(), nil)

	e.NotifyTimeFactor(0.5)
	if got := e.Parameters()[0].BroadSearch; got != 168 {
		t.Fatalf("after one call BroadSearch = %d, want 168", got)
	}
	e.NotifyTimeFactor(0.5)
	if got := e.Parameters()[0].BroadSearch; got != 141 {
		t.Fatalf("after two calls BroadSearch = %d, want 141", got)
	}

	e.ResetTimeBudget()
	if got := e.Parameters(); !reflect.DeepEqual(got, []Parameters{p}) {
		t.Fatalf("after reset: %+v", got)
	}
	if e.TotalFactor() != 1 {
		t.Fatalf("total factor %v after reset", e.TotalFactor())
	}
}

func TestNotifyTimeFactorFloors(t *testing.T) {
	p := Parameters{DivisionSamples: 4, CombinationSamples: 4, BroadSearch: 2, DeepSearch: 1}
	e := New(Config{Parameters: []Parameters{p, p}}, domination.New(), nil)
	for i := 0; i < 20; i++ {
		e.NotifyTimeFactor(0)
	}
	for _, got := range e.Parameters() {
		if got.BroadSearch != 1 || got.DeepSearch != 1 {
			t.Fatalf("widths %+v", got)
		}
		if got.DivisionSamples != 0 {
			t.Fatalf("division samples %d", got.DivisionSamples)
		}
	}
	// 0 は 0.1 として扱う
	e.ResetTimeBudget()
	e.NotifyTimeFactor(0)
	f := e.TotalFactor()
	e.ResetTimeBudget()
	e.NotifyTimeFactor(0.1)
	if e.TotalFactor() != f {
		t.Fatalf("factor 0 gives %v, factor 0.1 gives %v", f, e.TotalFactor())
	}
}

func TestSetParametersResetsBudget(t *testing.T) {
	p := Parameters{BroadSearch: 100, DeepSearch: 100}
	e := New(Config{Parameters: []Parameters{p}}, domination.New(), nil)
	e.NotifyTimeFactor(2)
	e.SetParameters([]Parameters{p})
	e.NotifyTimeFactor(1)
	if got := e.Parameters()[0]; got != p {
		t.Fatalf("got %+v", got)
	}
}

func TestNotifyTimeFactorKeepsRecursionOff(t *testing.T) {
	p := Parameters{DivisionSamples: 20, CombinationSamples: 20, BroadSearch: 5, DeepSearch: 0}
	e := New(Config{Parameters: []Parameters{p, p}}, domination.New(), nil)
	e.NotifyTimeFactor(0.5)
	e.NotifyTimeFactor(4)
	for i, got := range e.Parameters() {
		if got.DeepSearch != 0 {
			t.Fatalf("depth %d: DeepSearch = %d, want 0", i, got.DeepSearch)
		}
	}
}
