// Package stats gathers the per-file size and logical-path-length
// figures the block-size optimizer needs, without coupling it to the
// unit package's scan or merge machinery.
package stats

import "github.com/jvogt/paritybak/pkg/unit"

// Stats holds one measurement per file, in file order: its size and
// the byte length of its logical (prefix-relative) path.
type Stats struct {
	FileSizes []uint64
	PathLens  []int
}

// FromFiles computes Stats over files, failing if any file's logical
// path cannot be computed (e.g. it falls outside the scanned prefix).
func FromFiles(files []unit.File) (Stats, error) {
	s := Stats{
		FileSizes: make([]uint64, len(files)),
		PathLens:  make([]int, len(files)),
	}
	for i, f := range files {
		s.FileSizes[i] = f.Len
		logical, err := f.Path.Logical()
		if err != nil {
			return Stats{}, err
		}
		s.PathLens[i] = len(logical)
	}
	return s, nil
}
