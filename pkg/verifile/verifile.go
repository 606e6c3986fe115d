// Package verifile is a framed, self-verifying file format: every
// write goes to a ".tmp" sibling first and is only renamed into place
// once closed, and every close appends a trailing SHA-256 checksum of
// everything written so a later Open can detect truncation or
// corruption. Callers never need to know this framing exists; they
// just get a plain io.Writer/io.ReadCloser.
package verifile

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"
)

const checksumSize = sha256.Size

// Writer streams data to a temporary file and, once Close is called,
// appends a trailing checksum and atomically renames the temp file
// into its final location.
type Writer struct {
	path string
	tmp  *os.File
	sum  hash.Hash
}

// Create opens path for writing via a ".tmp" sibling.
func Create(path string) (*Writer, error) {
	tmp, err := os.OpenFile(path+".tmp", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating %q", path)
	}
	return &Writer{path: path, tmp: tmp, sum: sha256.New()}, nil
}

// Write implements io.Writer, feeding every byte into the running
// checksum as it's written.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.tmp.Write(p)
	if n > 0 {
		w.sum.Write(p[:n])
	}
	if err != nil {
		return n, errors.Wrapf(err, "error writing to %q", w.path+".tmp")
	}
	return n, nil
}

// Close appends the trailing checksum, closes the temp file, and
// renames it into place. The writer must not be used afterward.
func (w *Writer) Close() error {
	if _, err := w.tmp.Write(w.sum.Sum(nil)); err != nil {
		return errors.Wrapf(err, "error writing checksum trailer to %q", w.path+".tmp")
	}
	if err := w.tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %q", w.path+".tmp")
	}
	if err := os.Rename(w.path+".tmp", w.path); err != nil {
		return errors.Wrapf(err, "error moving temp file into place at %q", w.path)
	}
	return nil
}

// Open reads path back, verifying its trailing checksum covers
// everything preceding it, and returns a ReadCloser over just the
// payload (the checksum trailer stripped off).
func Open(path string) (io.ReadCloser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %q", path)
	}
	if len(data) < checksumSize {
		return nil, errors.Errorf("%q is too short to contain a checksum trailer", path)
	}

	payload := data[:len(data)-checksumSize]
	trailer := data[len(data)-checksumSize:]

	sum := sha256.Sum256(payload)
	if subtle.ConstantTimeCompare(sum[:], trailer) != 1 {
		return nil, errors.Errorf("checksum mismatch in %q: file is corrupt or truncated", path)
	}

	return io.NopCloser(bytes.NewReader(payload)), nil
}
