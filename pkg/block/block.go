// Package block streams a fixed-size sequence of blocks across an
// ordered list of files, numbering each block within its file so the
// redundancy engine can pair blocks up positionally across media.
package block

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Block is one fixed-size (or, for a file's final block, possibly
// shorter) chunk read from a file.
type Block struct {
	FileID  int
	BlockID int
	Data    []byte
}

// File names one entry in the ordered sequence Iter streams blocks
// from.
type File struct {
	ID   int
	Path string
}

// Iter streams Blocks across an ordered sequence of files, opening
// each file lazily as the previous one is exhausted.
type Iter struct {
	blockSize int
	fileID    int
	blockID   int
	path      string
	file      *os.File
	files     []File
	pos       int
}

// New returns an Iter over files, reading blockSize bytes at a time.
// It opens the first file immediately so a construction-time failure
// (e.g. permission denied) surfaces before the first call to Next.
func New(blockSize int, files []File) (*Iter, error) {
	it := &Iter{blockSize: blockSize, files: files}
	if _, err := it.openNext(); err != nil {
		return nil, err
	}
	return it, nil
}

// openNext advances to the next file in the sequence, if any.
func (it *Iter) openNext() (bool, error) {
	if it.pos >= len(it.files) {
		it.file = nil
		return false, nil
	}
	f := it.files[it.pos]
	it.pos++

	file, err := os.Open(f.Path)
	if err != nil {
		return false, errors.Wrapf(err, "error opening %q", f.Path)
	}
	it.fileID = f.ID
	it.file = file
	it.path = f.Path
	return true, nil
}

// Next returns the next Block in the stream, or nil if the sequence is
// exhausted. Block boundaries restart (BlockID resets to 0) at every
// file; an empty file produces no blocks at all.
func (it *Iter) Next() (*Block, error) {
	for {
		if it.file == nil {
			ok, err := it.openNext()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			it.blockID = 0
			continue
		}

		data := make([]byte, it.blockSize)
		read := 0
		for read < it.blockSize {
			n, err := it.file.Read(data[read:])
			if n > 0 {
				read += n
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrapf(err, "error reading from %q", it.path)
			}
			if n == 0 {
				break
			}
		}

		if read == 0 {
			if err := it.file.Close(); err != nil {
				return nil, errors.Wrapf(err, "error closing %q", it.path)
			}
			it.file = nil
			continue
		}

		block := &Block{FileID: it.fileID, BlockID: it.blockID, Data: data[:read]}
		if read == it.blockSize {
			it.blockID++
		} else {
			// end of file
			if err := it.file.Close(); err != nil {
				return nil, errors.Wrapf(err, "error closing %q", it.path)
			}
			it.file = nil
		}
		return block, nil
	}
}

// Close releases any file currently held open by the iterator. Safe to
// call after the stream is exhausted.
func (it *Iter) Close() error {
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file = nil
	return err
}
