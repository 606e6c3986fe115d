package block

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestIterSplitsFileIntoBlocks(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a", []byte("abcdefghij"))

	it, err := New(4, []File{{ID: 0, Path: p}})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	var blocks []*Block
	for {
		b, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if b == nil {
			break
		}
		blocks = append(blocks, b)
	}

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if string(blocks[0].Data) != "abcd" || string(blocks[1].Data) != "efgh" || string(blocks[2].Data) != "ij" {
		t.Errorf("unexpected block contents: %q %q %q", blocks[0].Data, blocks[1].Data, blocks[2].Data)
	}
	for i, b := range blocks {
		if b.BlockID != i {
			t.Errorf("block %d has BlockID %d, want %d", i, b.BlockID, i)
		}
	}
}

func TestIterSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty", nil)
	nonEmpty := writeFile(t, dir, "full", []byte("xy"))

	it, err := New(4, []File{{ID: 0, Path: empty}, {ID: 1, Path: nonEmpty}})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	b, err := it.Next()
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || b.FileID != 1 || string(b.Data) != "xy" {
		t.Fatalf("got %+v, want a single block from the non-empty file", b)
	}

	b, err = it.Next()
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("expected no further blocks, got %+v", b)
	}
}

func TestIterRestartsBlockIDPerFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("ab"))
	b := writeFile(t, dir, "b", []byte("cd"))

	it, err := New(2, []File{{ID: 0, Path: a}, {ID: 1, Path: b}})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	first, err := it.Next()
	if err != nil {
		t.Fatal(err)
	}
	second, err := it.Next()
	if err != nil {
		t.Fatal(err)
	}

	if first.BlockID != 0 || second.BlockID != 0 {
		t.Errorf("got block ids %d, %d, want both to start at 0", first.BlockID, second.BlockID)
	}
}
