// Package disperse rearranges the trailing units of each medium's
// UnitSet onto the next medium, greedily shrinking the variance in
// medium sizes until it drops below a goal coefficient of variation or
// no further improvement is possible.
package disperse

import (
	"math"

	"github.com/jvogt/paritybak/pkg/unit"
)

// Logger is the minimal collaborator used to report discarded
// candidates and the end-of-dispersal reason.
type Logger interface {
	Warnf(format string, x ...interface{})
	Infof(format string, x ...interface{})
}

// Disperse holds the shared state of one dispersal run over media: the
// slice of per-medium UnitSets, the target mean (fixed for the run),
// and the goal coefficient of variation.
type Disperse struct {
	media []*unit.UnitSet
	mean  float64
	goal  float64
	log   Logger
}

// New computes the mean medium size across media and returns a
// Disperse ready to run. The mean is fixed at construction time and
// does not change as units move between media.
func New(media []*unit.UnitSet, goal float64, log Logger) *Disperse {
	var sum uint64
	for _, m := range media {
		sum += m.Len()
	}
	mean := float64(sum) / float64(len(media))
	return &Disperse{media: media, mean: mean, goal: goal, log: log}
}

// Mean returns the fixed target mean computed at construction.
func (d *Disperse) Mean() float64 {
	return d.mean
}

// Measure returns the current population standard deviation of medium
// sizes around the fixed mean, using an (N-1) denominator.
func (d *Disperse) Measure() float64 {
	lens := make([]uint64, len(d.media))
	for i, m := range d.media {
		lens[i] = m.Len()
	}
	return measure(d.mean, lens)
}

// IsGoalMet reports whether the coefficient of variation (Measure /
// Mean, as a percentage) has dropped below goal.
func (d *Disperse) IsGoalMet() bool {
	return d.Measure()/d.mean*100 < d.goal
}

// Run repeatedly shifts the best-improving trailing unit from one
// medium to the next until the goal is met, no candidate improves on
// the current measure, or no medium has a unit left to shift.
func (d *Disperse) Run() {
	iteration := 0

	for !d.IsGoalMet() {
		iteration++

		var candidates []candidate
		for i := 0; i < len(d.media)-1; i++ {
			if d.media[i].Len() == 0 {
				continue
			}
			c, ok := newCandidate(d.media, i, d.mean)
			if !ok {
				d.log.Warnf("discard candidate: results in an empty medium")
				continue
			}
			candidates = append(candidates, c)
		}

		if len(candidates) == 0 {
			d.log.Infof("no more candidates at iteration %d", iteration)
			return
		}

		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.value < best.value {
				best = c
			}
		}

		if best.value < d.Measure() {
			best.execute(d.media)
			continue
		}

		d.log.Infof("discard candidate: no improvement at iteration %d", iteration)
		return
	}
}

// candidate describes moving the trailing unit of fromMedium onto the
// next medium, and the resulting measure if it were applied.
type candidate struct {
	fromMedium int
	value      float64
}

// newCandidate evaluates the effect of shifting the last unit of
// media[fromMedium] onto media[fromMedium+1], without mutating either.
// ok is false if fromMedium's UnitSet has nothing left to shift.
func newCandidate(media []*unit.UnitSet, fromMedium int, mean float64) (candidate, bool) {
	lastUnit, exists := media[fromMedium].Last()
	if !exists {
		return candidate{}, false
	}

	newLens := make([]uint64, len(media))
	for i, m := range media {
		switch i {
		case fromMedium:
			newLens[i] = m.Len() - lastUnit.Len
		case fromMedium + 1:
			newLens[i] = m.Len() + lastUnit.Len
		default:
			newLens[i] = m.Len()
		}
	}

	return candidate{fromMedium: fromMedium, value: measure(mean, newLens)}, true
}

// execute applies the shift this candidate evaluated. It is only ever
// called immediately after newCandidate confirmed a unit exists to
// shift, so the error return from ShiftTo is not expected here.
func (c candidate) execute(media []*unit.UnitSet) {
	if err := media[c.fromMedium].ShiftTo(media[c.fromMedium+1]); err != nil {
		panic(err)
	}
}

// measure computes the population standard deviation of lens around
// mean, with an (N-1) denominator.
func measure(mean float64, lens []uint64) float64 {
	var sumSquares float64
	for _, l := range lens {
		d := float64(l) - mean
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(lens)-1))
}
