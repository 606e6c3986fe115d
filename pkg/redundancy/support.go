package redundancy

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jvogt/paritybak/pkg/block"
	"github.com/jvogt/paritybak/pkg/index"
	"github.com/jvogt/paritybak/pkg/path"
)

// filesFor returns the block.File sequence for every file table entry
// belonging to mediumID, in file-table order.
func filesFor(fileTable *index.FileTable, mediumID int) []block.File {
	var files []block.File
	for _, entry := range fileTable.Table {
		if entry.MediumID != mediumID {
			continue
		}
		files = append(files, block.File{ID: entry.ID, Path: entry.ActualPath})
	}
	return files
}

func fileSize(p string) (uint64, error) {
	info, err := os.Stat(p)
	if err != nil {
		return 0, errors.Wrapf(err, "error getting metadata of %q", p)
	}
	return uint64(info.Size()), nil
}

// filePathOf builds a path.Path for a freshly written spill file,
// rooted at its own directory so its logical path is just its file
// name.
func filePathOf(p string) path.Path {
	return path.WithPrefix(filepath.Dir(p)).WithPath(p)
}
