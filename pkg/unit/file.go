// Package unit scans a source directory into Units (one per
// directory's immediate non-directory contents) and UnitSets (ordered
// sequences of Units carrying a cached total length), then folds tiny
// subtrees into their nearest non-trivial ancestor.
package unit

import (
	"github.com/jvogt/paritybak/internal/consts"
	"github.com/jvogt/paritybak/pkg/path"
)

// SmallFileUpperBound is the largest a directly-contained, non-hidden
// file may be for its Unit to still count as "small".
const SmallFileUpperBound = consts.SmallFileUpperBound

// File is one scanned filesystem entry: its source location and
// length, immutable once recorded during the scan.
type File struct {
	Path path.Path
	Len  uint64
}

// NewFile records a scanned file.
func NewFile(p path.Path, length uint64) File {
	return File{Path: p, Len: length}
}
