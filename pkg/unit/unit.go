package unit

import (
	"path/filepath"
	"strings"

	"github.com/jvogt/paritybak/pkg/path"
)

// Unit is one directory's immediate non-directory contents, treated as
// an atomic placement currency by the disperser. Parent is the index
// of the enclosing directory's Unit within the owning UnitSet; the
// root Unit is its own parent (index 0) by convention, used as a walk
// terminator.
type Unit struct {
	Parent int
	Path   path.Path
	Len    uint64
	Files  []File
}

// NewRoot builds the Unit for the backup's source directory itself.
func NewRoot(p path.Path, files []File, length uint64) Unit {
	return Unit{Parent: 0, Path: p, Len: length, Files: files}
}

// New builds a non-root Unit.
func New(p path.Path, parent int, files []File, length uint64) Unit {
	return Unit{Parent: parent, Path: p, Len: length, Files: files}
}

// IsSmall reports whether every non-hidden file directly contained in
// this Unit is at most SmallFileUpperBound bytes. Hidden files (dotfiles)
// are excluded from the check but still contribute to Len and still get
// moved along with the Unit during a merge.
func (u Unit) IsSmall() bool {
	for _, f := range u.Files {
		if strings.HasPrefix(filepath.Base(f.Path.String()), ".") {
			continue
		}
		if f.Len > SmallFileUpperBound {
			return false
		}
	}
	return true
}

// Merge moves src's files into u and zeroes src's length, leaving src
// an empty placeholder ready for removal by UnitSet.ExecuteMerges.
func (u *Unit) Merge(src *Unit) {
	u.Files = append(u.Files, src.Files...)
	u.Len += src.Len
	src.Len = 0
}
