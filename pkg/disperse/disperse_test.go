package disperse

import (
	"testing"

	"github.com/jvogt/paritybak/pkg/unit"
)

type nilLogger struct{}

func (nilLogger) Warnf(format string, x ...interface{}) {}
func (nilLogger) Infof(format string, x ...interface{}) {}

func setOfLens(lens ...uint64) *unit.UnitSet {
	s := &unit.UnitSet{}
	for _, n := range lens {
		s.Units = append(s.Units, unit.New(unit.Unit{}.Path, 0, nil, n))
		s.TotalLen += n
	}
	return s
}

func TestRunReducesVariance(t *testing.T) {
	media := []*unit.UnitSet{setOfLens(100, 100), setOfLens(), setOfLens(100)}

	d := New(media, 1, nilLogger{})
	before := d.Measure()
	d.Run()
	after := d.Measure()

	if after >= before {
		t.Errorf("variance did not decrease: before=%.2f after=%.2f", before, after)
	}
	if !d.IsGoalMet() {
		t.Error("expected an even split across media to meet the goal")
	}
}

func TestIsGoalMet(t *testing.T) {
	media := []*unit.UnitSet{setOfLens(100), setOfLens(100), setOfLens(100)}
	d := New(media, 1, nilLogger{})
	if !d.IsGoalMet() {
		t.Error("expected a perfectly even split to already meet the goal")
	}
}

func TestMeasureUsesPopulationVarianceWithNMinus1(t *testing.T) {
	got := measure(10, []uint64{5, 15})
	want := 7.0710678118654755 // sqrt(((5-10)^2+(15-10)^2)/(2-1))
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}
