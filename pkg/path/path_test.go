package path

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogical(t *testing.T) {
	p := WithPrefix("/tmp/source").WithPath("/tmp/source/a/b.txt")

	logical, err := p.Logical()
	assert.NoError(t, err)
	assert.Equal(t, "a/b.txt", logical)
}

func TestLogicalNotPrefixed(t *testing.T) {
	p := WithPrefix("/tmp/source").WithPath("/tmp/other/a/b.txt")

	_, err := p.Logical()
	assert.Error(t, err)
}

func TestIsAncestor(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	assert.NoError(t, os.Mkdir(sub, 0o755))

	parent := WithPrefix(dir).WithPath(dir)
	child := WithPrefix(dir).WithPath(sub)

	ok, err := parent.IsAncestor(child)
	assert.NoError(t, err)
	assert.True(t, ok, "expected dir to be an ancestor of sub")

	ok, err = child.IsAncestor(parent)
	assert.NoError(t, err)
	assert.False(t, ok, "did not expect sub to be an ancestor of dir")
}
