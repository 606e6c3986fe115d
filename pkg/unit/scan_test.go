package unit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jvogt/paritybak/pkg/path"
)

type testLogger struct {
	warnings []string
}

func (l *testLogger) Warnf(format string, x ...interface{}) {
	l.warnings = append(l.warnings, format)
}

func TestFromPathScansNestedDirectories(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("world!"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := &testLogger{}
	root := path.WithPrefix(dir).WithPath(dir)
	set, err := FromPath(root, log)
	if err != nil {
		t.Fatal(err)
	}

	if len(set.Units) != 2 {
		t.Fatalf("got %d units, want 2 (root + sub)", len(set.Units))
	}
	if set.Len() != uint64(len("hello")+len("world!")) {
		t.Errorf("got total length %d, want %d", set.Len(), len("hello")+len("world!"))
	}
}

func TestFromPathSkipsBrokenSymlink(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken")
	if err := os.Symlink(filepath.Join(dir, "does-not-exist"), broken); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	log := &testLogger{}
	root := path.WithPrefix(dir).WithPath(dir)
	set, err := FromPath(root, log)
	if err != nil {
		t.Fatal(err)
	}

	if len(log.warnings) == 0 {
		t.Error("expected a warning for the broken symlink")
	}
	if set.Len() != 0 {
		t.Errorf("got total length %d, want 0", set.Len())
	}
}

func TestFromPathDetectsSymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	loop := filepath.Join(sub, "loop")
	if err := os.Symlink(dir, loop); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	log := &testLogger{}
	root := path.WithPrefix(dir).WithPath(dir)
	set, err := FromPath(root, log)
	if err != nil {
		t.Fatal(err)
	}

	if len(log.warnings) == 0 {
		t.Error("expected a warning for the symlink cycle")
	}
	if len(set.Units) != 2 {
		t.Errorf("got %d units, want 2 (root + sub, cycle not descended into)", len(set.Units))
	}
}
