package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jvogt/paritybak/pkg/index"
)

type testLogger struct{}

func (testLogger) Warnf(format string, x ...interface{})  {}
func (testLogger) Infof(format string, x ...interface{})  {}
func (testLogger) Debugf(format string, x ...interface{}) {}
func (testLogger) Errorf(format string, x ...interface{}) {}

func TestBuildProducesAGroupPerPairOfMedia(t *testing.T) {
	source := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "a.txt"), []byte("aaaaaaaaaa"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(source, "b.txt"), []byte("bbbbbbbbbb"), 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := Build(Options{
		StartPath:  source,
		MediumSize: 1024,
		Goal:       1,
		Debug:      true,
		Encoding:   index.EncodingJSON,
	}, testLogger{})
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(ws.Root())

	apple := filepath.Join(ws.Root(), "layout", DefaultNames[0])
	avocado := filepath.Join(ws.Root(), "layout", DefaultNames[1])
	banana := filepath.Join(ws.Root(), "layout", DefaultNames[2])

	for _, dir := range []string{apple, avocado, banana} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected medium directory %q to exist", dir)
		}
		for _, table := range []string{"media-table", "file-table", "redun-table"} {
			if _, err := os.Stat(filepath.Join(dir, table)); err != nil {
				t.Errorf("expected %q to exist under %q", table, dir)
			}
		}
	}

	if _, err := os.Stat(filepath.Join(apple, "encryption-key")); err != nil {
		t.Error("expected a data medium to carry its encryption key")
	}
	if _, err := os.Stat(filepath.Join(banana, "encryption-key")); err == nil {
		t.Error("did not expect the redundancy medium to carry an encryption key")
	}

	if _, err := os.Stat(filepath.Join(apple, "files", "a.txt")); err != nil {
		if _, err2 := os.Stat(filepath.Join(avocado, "files", "a.txt")); err2 != nil {
			t.Error("expected a.txt to be staged on one of the data media")
		}
	}
}

func TestBuildRejectsOversizedUnit(t *testing.T) {
	source := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "huge.bin"), make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Build(Options{
		StartPath:  source,
		MediumSize: 1024,
		Goal:       1,
		Debug:      true,
	}, testLogger{})
	if err == nil {
		t.Error("expected an error when a unit is larger than the medium size")
	}
}
