// Package path implements the prefix/path model shared by every
// component that needs to turn a filesystem location into the logical,
// prefix-relative path recorded in the file table, or into the
// OS-canonicalized path used to detect symlink cycles.
package path

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Path pairs a shared root (prefix) with a location (path). Logical()
// strips the prefix to produce the path recorded in on-disk tables;
// Canonical() resolves symlinks to produce an identity usable for
// ancestor/cycle checks.
type Path struct {
	prefix string
	path   string
}

// WithPrefix returns a new Path rooted at prefix, with an empty path.
func WithPrefix(prefix string) Path {
	return Path{prefix: prefix}
}

// WithPath returns a copy of p with its path replaced, keeping prefix.
func (p Path) WithPath(path string) Path {
	p.path = path
	return p
}

// String returns the raw stored path (not the logical or canonical
// form).
func (p Path) String() string {
	return p.path
}

// Prefix returns the shared root.
func (p Path) Prefix() string {
	return p.prefix
}

// Logical strips prefix from path, returning the prefix-relative form
// recorded in FileTable entries. It fails if prefix is not a true
// prefix of path, or if the result is not valid UTF-8 (table encoding
// requires it).
func (p Path) Logical() (string, error) {
	rel, err := filepath.Rel(p.prefix, p.path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Errorf("%q does not start with %q", p.path, p.prefix)
	}
	rel = filepath.ToSlash(rel)
	if !utf8.ValidString(rel) {
		return "", errors.Errorf("utf8 encoding error in %q", rel)
	}
	return rel, nil
}

// Canonical resolves symlinks and returns the absolute, canonical form
// of path. Falls back to a cleaned absolute path if the target does
// not exist (e.g. a broken symlink already filtered out upstream).
func (p Path) Canonical() (string, error) {
	abs, err := filepath.Abs(p.path)
	if err != nil {
		return "", errors.Wrapf(err, "error making %q absolute", p.path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return filepath.Clean(abs), nil
	}
	if !utf8.ValidString(resolved) {
		return "", errors.Errorf("utf8 encoding error in %q", resolved)
	}
	return resolved, nil
}

// IsAncestor reports whether p is a canonical-path ancestor of other,
// i.e. other's canonical path starts with p's canonical path.
func (p Path) IsAncestor(other Path) (bool, error) {
	selfCanon, err := p.Canonical()
	if err != nil {
		return false, errors.Wrap(err, "path.IsAncestor")
	}
	otherCanon, err := other.Canonical()
	if err != nil {
		return false, errors.Wrap(err, "path.IsAncestor")
	}
	if selfCanon == otherCanon {
		return true, nil
	}
	return strings.HasPrefix(otherCanon, selfCanon+string(filepath.Separator)), nil
}
