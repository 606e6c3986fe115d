package unit

import "github.com/pkg/errors"

// ErrEmptyUnitSet signals that a proposed operation would try to pop a
// unit from an empty UnitSet. The disperser treats this as a
// recoverable signal to discard a candidate, never as a fatal error.
var ErrEmptyUnitSet = errors.New("unit: empty unit set")

// UnitSet is an ordered sequence of Units with a cached total length;
// the placement currency the disperser rearranges.
type UnitSet struct {
	Units    []Unit
	TotalLen uint64
}

// Len returns the cached total length. Kept distinct from len(Units)
// so callers don't confuse unit count with byte count.
func (s *UnitSet) Len() uint64 {
	return s.TotalLen
}

// Last returns the final Unit without removing it, and whether one
// exists. Used by the disperser to evaluate a candidate shift without
// mutating any state.
func (s *UnitSet) Last() (Unit, bool) {
	if len(s.Units) == 0 {
		return Unit{}, false
	}
	return s.Units[len(s.Units)-1], true
}

// ShiftTo pops the last Unit off s and inserts it at the head of
// other, updating both cached totals. Returns ErrEmptyUnitSet if s has
// no units.
func (s *UnitSet) ShiftTo(other *UnitSet) error {
	if len(s.Units) == 0 {
		return ErrEmptyUnitSet
	}
	last := s.Units[len(s.Units)-1]
	s.Units = s.Units[:len(s.Units)-1]
	s.TotalLen -= last.Len

	other.Units = append([]Unit{last}, other.Units...)
	other.TotalLen += last.Len
	return nil
}

// ShiftFrom moves the first Unit of other onto the tail of s, the
// inverse of the tail taken by ShiftTo's source side: s.ShiftFrom(other)
// reverses a prior s.ShiftTo(other).
func (s *UnitSet) ShiftFrom(other *UnitSet) error {
	if len(other.Units) == 0 {
		return ErrEmptyUnitSet
	}
	first := other.Units[0]
	other.Units = other.Units[1:]
	other.TotalLen -= first.Len

	s.Units = append(s.Units, first)
	s.TotalLen += first.Len
	return nil
}

// UndoShift reverses a prior other.ShiftTo(s), called on the set that
// received the unit: it removes the first Unit of s and appends it to
// the tail of other.
func (s *UnitSet) UndoShift(other *UnitSet) error {
	return other.ShiftFrom(s)
}

// SmallUnits returns the index and Unit of every small unit in s,
// including the root at index 0 when it is small (PlanMerges is what
// skips the root).
func (s *UnitSet) SmallUnits() []IndexedUnit {
	var out []IndexedUnit
	for i, u := range s.Units {
		if u.IsSmall() {
			out = append(out, IndexedUnit{Index: i, Unit: u})
		}
	}
	return out
}

// IndexedUnit pairs a Unit with its position in the owning UnitSet.
type IndexedUnit struct {
	Index int
	Unit  Unit
}

// MergePair says the Unit at From should be folded into the Unit at
// Into.
type MergePair struct {
	From int
	Into int
}

// PlanMerges walks every small, non-root Unit up through its ancestors
// until it reaches either the root or the first non-small ancestor A.
// If A differs from the small unit itself, it records a merge pair
// (small -> A). Coalesces tiny-file subtrees into their smallest
// containing non-trivial parent.
func (s *UnitSet) PlanMerges() []MergePair {
	var plan []MergePair
	for _, small := range s.SmallUnits() {
		if small.Index == 0 {
			continue
		}
		ancestor := small.Unit.Parent
		for ancestor != 0 {
			if !s.Units[ancestor].IsSmall() {
				break
			}
			ancestor = s.Units[ancestor].Parent
		}
		if small.Index != ancestor {
			plan = append(plan, MergePair{From: small.Index, Into: ancestor})
		}
	}
	return plan
}

// ExecuteMerges applies plan in order (merging files forward), then
// removes the now-empty source units in reverse plan order so that
// earlier indices in the plan stay valid while later removals happen.
func (s *UnitSet) ExecuteMerges(plan []MergePair) {
	for _, pair := range plan {
		src := s.Units[pair.From]
		s.Units[pair.Into].Merge(&src)
		s.Units[pair.From] = src
	}

	for i := len(plan) - 1; i >= 0; i-- {
		from := plan[i].From
		s.Units = append(s.Units[:from], s.Units[from+1:]...)
		s.fixParentsAfterRemoval(from)
	}
}

// fixParentsAfterRemoval decrements every parent index greater than
// removed, since removing Units[removed] shifts every later index down
// by one.
func (s *UnitSet) fixParentsAfterRemoval(removed int) {
	for i := range s.Units {
		if s.Units[i].Parent > removed {
			s.Units[i].Parent--
		}
	}
}

// Files flattens every Unit's files into a single ordered slice,
// matching the order Units were scanned and merged in.
func (s *UnitSet) Files() []File {
	var files []File
	for _, u := range s.Units {
		files = append(files, u.Files...)
	}
	return files
}
