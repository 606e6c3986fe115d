package unit

import (
	"os"
	"path/filepath"

	"github.com/jvogt/paritybak/pkg/path"
	"github.com/pkg/errors"
)

// Logger is the minimal collaborator the scanner needs to report
// symlink-cycle and broken-link warnings (spec §7: these are warnings,
// never errors).
type Logger interface {
	Warnf(format string, x ...interface{})
}

// FromPath performs an iterative depth-first walk of root, building
// one Unit per directory visited. Symlinks to files are recorded as
// files; symlinks to directories are descended into unless doing so
// would form a cycle; broken symlinks are skipped with a warning.
func FromPath(root path.Path, log Logger) (*UnitSet, error) {
	files, length, err := scanDirFiles(root, log)
	if err != nil {
		return nil, errors.Wrapf(err, "error scanning directory %q", root)
	}

	set := []Unit{NewRoot(root, files, length)}
	total := length

	stack := []*walkFrame{{index: 0, dir: root}}
	if err := loadFrame(stack[0]); err != nil {
		return nil, err
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.pos >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}

		entry := top.entries[top.pos]
		top.pos++

		entryPath := path.WithPrefix(root.Prefix()).WithPath(filepath.Join(top.dir.String(), entry.Name()))

		info, err := os.Lstat(entryPath.String())
		if err != nil {
			return nil, errors.Wrapf(err, "error reading directory %q", entryPath)
		}

		isDirLike := info.IsDir()
		isSymlink := info.Mode()&os.ModeSymlink != 0

		if isSymlink {
			target, statErr := os.Stat(entryPath.String())
			if statErr != nil {
				// broken symlink: already warned about during
				// scanDirFiles for the containing directory; here it
				// simply isn't a directory to descend into.
				isDirLike = false
			} else {
				isDirLike = target.IsDir()
			}
		}

		if !isDirLike {
			continue
		}

		parent := top.index
		if isSymlink {
			cycle, err := detectCycle(entryPath, parent, set)
			if err != nil {
				return nil, errors.Wrapf(err, "error detecting symlink cycle at %q", entryPath)
			}
			if cycle {
				log.Warnf("skip: symlink cycle detected at %q", entryPath.String())
				continue
			}
		}

		childFiles, childLen, err := scanDirFiles(entryPath, log)
		if err != nil {
			return nil, errors.Wrapf(err, "error scanning directory %q", entryPath)
		}
		unit := New(entryPath, parent, childFiles, childLen)
		set = append(set, unit)
		total += childLen

		frame := &walkFrame{index: len(set) - 1, dir: entryPath}
		if err := loadFrame(frame); err != nil {
			return nil, err
		}
		stack = append(stack, frame)
	}

	return &UnitSet{Units: set, TotalLen: total}, nil
}

type walkFrame struct {
	index   int
	dir     path.Path
	entries []os.DirEntry
	pos     int
}

func loadFrame(f *walkFrame) error {
	entries, err := os.ReadDir(f.dir.String())
	if err != nil {
		return errors.Wrapf(err, "error reading directory %q", f.dir)
	}
	f.entries = entries
	return nil
}

// scanDirFiles reads dir's immediate entries and returns the File
// records for every regular file (or symlink resolving to a regular
// file) directly inside it. Subdirectories are skipped; broken
// symlinks are skipped with a warning.
func scanDirFiles(dir path.Path, log Logger) ([]File, uint64, error) {
	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error reading directory %q", dir)
	}

	var files []File
	var total uint64

	for _, entry := range entries {
		entryPath := path.WithPrefix(dir.Prefix()).WithPath(filepath.Join(dir.String(), entry.Name()))

		info, err := os.Lstat(entryPath.String())
		if err != nil {
			return nil, 0, errors.Wrapf(err, "error getting metadata of %q", entryPath)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, statErr := os.Stat(entryPath.String())
			if statErr != nil {
				log.Warnf("skip: broken symlink at %q", entryPath.String())
				continue
			}
			if target.IsDir() {
				continue
			}
			files = append(files, NewFile(entryPath, uint64(target.Size())))
			total += uint64(target.Size())
		case info.IsDir():
			continue
		default:
			files = append(files, NewFile(entryPath, uint64(info.Size())))
			total += uint64(info.Size())
		}
	}

	return files, total, nil
}

// detectCycle walks the ancestor chain of the unit at index parent,
// declaring a cycle if candidate is a canonical-path ancestor of any
// ancestor, or canonically equal to one. Terminates when the walk
// reaches the root's self-parent sentinel.
func detectCycle(candidate path.Path, parent int, set []Unit) (bool, error) {
	finger := set[parent]

	for {
		isAncestor, err := candidate.IsAncestor(finger.Path)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}

		candidateCanon, err := candidate.Canonical()
		if err != nil {
			return false, err
		}
		fingerCanon, err := finger.Path.Canonical()
		if err != nil {
			return false, err
		}
		if candidateCanon == fingerCanon {
			return true, nil
		}

		prevParent := finger.Parent
		finger = set[finger.Parent]
		if prevParent == finger.Parent {
			break
		}
	}

	return false, nil
}
