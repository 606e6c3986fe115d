// Package workspace owns the scratch directory a backup run stages
// its output into before the caller decides what to do with it: a
// scoped, self-cleaning temp directory with a hard-link-or-copy Stage
// helper for populating the final layout.
package workspace

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jvogt/paritybak/internal/consts"
)

// Workspace is a scoped temporary directory with layout/index/
// redundancy/encryption-key subdirectories pre-created.
type Workspace struct {
	root  string
	debug bool
}

// Acquire picks a writable base directory (preferring one on the same
// filesystem as source, since hard-linking only works within a
// filesystem) and creates a new workspace under it. If debug is true,
// Close leaves the directory on disk instead of removing it.
func Acquire(source string, debug bool) (*Workspace, error) {
	base, err := pickBaseDir(source)
	if err != nil {
		return nil, err
	}

	root := filepath.Join(base, consts.WorkDirPrefix+"-"+uuid.NewString())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "error making workspace directory %q", root)
	}

	for _, sub := range []string{consts.LayoutSubdir, consts.IndexSubdir, consts.RedundancySubdir, consts.EncryptionKeySubdir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, errors.Wrapf(err, "error making workspace subdirectory %q", sub)
		}
	}

	return &Workspace{root: root, debug: debug}, nil
}

// AcquireAt creates a workspace rooted at a caller-chosen directory
// instead of letting Acquire pick one, for callers that force a
// specific work directory (e.g. a CLI flag).
func AcquireAt(dir string, debug bool) (*Workspace, error) {
	root := filepath.Join(dir, consts.WorkDirPrefix+"-"+uuid.NewString())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "error making workspace directory %q", root)
	}

	for _, sub := range []string{consts.LayoutSubdir, consts.IndexSubdir, consts.RedundancySubdir, consts.EncryptionKeySubdir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, errors.Wrapf(err, "error making workspace subdirectory %q", sub)
		}
	}

	return &Workspace{root: root, debug: debug}, nil
}

// pickBaseDir prefers os.TempDir() when it's writable and on the same
// filesystem as source, falling back to the source directory itself,
// then to os.TempDir() regardless of filesystem.
func pickBaseDir(source string) (string, error) {
	tmp := os.TempDir()
	tmpOK, tmpSameFS := probe(tmp, source)
	if tmpOK && tmpSameFS {
		return tmp, nil
	}

	sourceOK, _ := probe(source, source)
	if sourceOK {
		return source, nil
	}

	if tmpOK {
		return tmp, nil
	}

	return "", errors.New("workspace: no writable location found for a scratch directory")
}

// probe reports whether dir is writable, and whether it shares a
// filesystem (device id) with reference. Filesystem comparison is only
// implemented for linux and darwin; elsewhere sameFS is always false,
// so pickBaseDir never prefers os.TempDir() for sharing source's
// filesystem.
func probe(dir, reference string) (writable, sameFS bool) {
	info, err := os.Stat(dir)
	if err != nil {
		return false, false
	}
	if info.Mode().Perm()&0o200 == 0 {
		return false, false
	}
	writable = true

	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return writable, false
	}

	refInfo, err := os.Stat(reference)
	if err != nil {
		return writable, false
	}
	dirStat, ok1 := info.Sys().(*syscall.Stat_t)
	refStat, ok2 := refInfo.Sys().(*syscall.Stat_t)
	if !ok1 || !ok2 {
		return writable, false
	}
	return writable, dirStat.Dev == refStat.Dev
}

// Root returns the workspace's root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the absolute path to a subdirectory of the workspace,
// creating it (and any missing parents) if necessary.
func (w *Workspace) Dir(parts ...string) (string, error) {
	dir := filepath.Join(append([]string{w.root}, parts...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "error making directory %q", dir)
	}
	return dir, nil
}

// Stage places src at dst (under the workspace) by hard-linking,
// falling back to a byte copy if the two paths are on different
// filesystems (EXDEV).
func (w *Workspace) Stage(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "error making directory for %q", dst)
	}

	err := os.Link(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return errors.Wrapf(err, "error hard-linking %q to %q", src, dst)
	}

	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "error opening %q", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "error creating %q", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "error copying %q to %q", src, dst)
	}
	return nil
}

// Close removes the workspace directory, unless debug was set at
// Acquire time, in which case the directory is left on disk for
// inspection.
func (w *Workspace) Close() error {
	if w.debug {
		return nil
	}
	if err := os.RemoveAll(w.root); err != nil {
		return errors.Wrapf(err, "error removing workspace directory %q", w.root)
	}
	return nil
}
