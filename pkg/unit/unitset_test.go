package unit

import (
	"testing"

	"github.com/jvogt/paritybak/pkg/path"
)

func fileOfLen(name string, n uint64) File {
	return NewFile(path.WithPrefix("/src").WithPath("/src/"+name), n)
}

func TestShiftToAndFrom(t *testing.T) {
	a := &UnitSet{Units: []Unit{New(path.WithPrefix("/src").WithPath("/src/a"), 0, []File{fileOfLen("a", 10)}, 10)}, TotalLen: 10}
	b := &UnitSet{}

	if err := a.ShiftTo(b); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 0 || b.Len() != 10 {
		t.Errorf("got a=%d b=%d, want a=0 b=10", a.Len(), b.Len())
	}

	if err := a.ShiftFrom(b); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 10 || b.Len() != 0 {
		t.Errorf("got a=%d b=%d, want a=10 b=0", a.Len(), b.Len())
	}
}

func TestShiftToEmpty(t *testing.T) {
	a := &UnitSet{}
	b := &UnitSet{}
	if err := a.ShiftTo(b); err != ErrEmptyUnitSet {
		t.Errorf("got %v, want ErrEmptyUnitSet", err)
	}
}

func TestPlanAndExecuteMerges(t *testing.T) {
	root := New(path.WithPrefix("/src").WithPath("/src"), 0, nil, 0)
	small := New(path.WithPrefix("/src").WithPath("/src/small"), 0, []File{fileOfLen("small/f", 10)}, 10)
	nested := New(path.WithPrefix("/src").WithPath("/src/small/nested"), 1, []File{fileOfLen("small/nested/g", 20)}, 20)

	s := &UnitSet{Units: []Unit{root, small, nested}, TotalLen: 30}

	plan := s.PlanMerges()
	if len(plan) != 2 {
		t.Fatalf("got %d merge pairs, want 2: %+v", len(plan), plan)
	}

	s.ExecuteMerges(plan)

	if len(s.Units) != 1 {
		t.Fatalf("got %d units after merge, want 1", len(s.Units))
	}
	if s.Units[0].Len != 30 {
		t.Errorf("got merged length %d, want 30", s.Units[0].Len)
	}
	if len(s.Units[0].Files) != 2 {
		t.Errorf("got %d files on merged unit, want 2", len(s.Units[0].Files))
	}
}

func TestLastOnEmpty(t *testing.T) {
	s := &UnitSet{}
	if _, ok := s.Last(); ok {
		t.Error("expected Last to report no unit on an empty set")
	}
}
