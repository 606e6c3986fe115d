package stats

import (
	"testing"

	"github.com/jvogt/paritybak/pkg/path"
	"github.com/jvogt/paritybak/pkg/unit"
)

func TestFromFiles(t *testing.T) {
	files := []unit.File{
		unit.NewFile(path.WithPrefix("/src").WithPath("/src/a.txt"), 10),
		unit.NewFile(path.WithPrefix("/src").WithPath("/src/dir/b.txt"), 20),
	}

	s, err := FromFiles(files)
	if err != nil {
		t.Fatal(err)
	}

	if s.FileSizes[0] != 10 || s.FileSizes[1] != 20 {
		t.Errorf("got sizes %v, want [10 20]", s.FileSizes)
	}
	if s.PathLens[0] != len("a.txt") || s.PathLens[1] != len("dir/b.txt") {
		t.Errorf("got path lens %v, want [%d %d]", s.PathLens, len("a.txt"), len("dir/b.txt"))
	}
}

func TestFromFilesRejectsPathOutsidePrefix(t *testing.T) {
	files := []unit.File{
		unit.NewFile(path.WithPrefix("/src").WithPath("/other/a.txt"), 10),
	}
	if _, err := FromFiles(files); err == nil {
		t.Error("expected an error for a file outside the prefix")
	}
}
