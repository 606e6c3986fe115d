package medium

import (
	"testing"

	"github.com/jvogt/paritybak/pkg/path"
	"github.com/jvogt/paritybak/pkg/unit"
)

func TestWithUnitSet(t *testing.T) {
	set := &unit.UnitSet{
		Units: []unit.Unit{
			unit.New(path.WithPrefix("/src").WithPath("/src"), 0, []unit.File{
				unit.NewFile(path.WithPrefix("/src").WithPath("/src/a"), 10),
			}, 10),
		},
		TotalLen: 10,
	}

	m := New("Apple", 1000).WithUnitSet(set)

	if m.Len != 10 {
		t.Errorf("got Len %d, want 10", m.Len)
	}
	if len(m.Files()) != 1 {
		t.Errorf("got %d files, want 1", len(m.Files()))
	}
}

func TestIDPanicsBeforeAssignment(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected ID() to panic before SetID is called")
		}
	}()
	New("Apple", 1000).ID()
}

func TestIDAfterAssignment(t *testing.T) {
	m := New("Apple", 1000)
	m.SetID(3)
	if m.ID() != 3 {
		t.Errorf("got %d, want 3", m.ID())
	}
}

func TestPushFile(t *testing.T) {
	m := New("Apple", 1000)
	m.PushFile(unit.NewFile(path.WithPrefix("/x").WithPath("/x/y"), 5))
	if len(m.Files()) != 1 {
		t.Fatalf("got %d files, want 1", len(m.Files()))
	}
}
