// Package redundancy pairs up the block streams of two data media and
// produces a third stream of encrypted redundancy/replication blocks:
// an XOR of both sides where both have a block at a given position, or
// a zero-padded copy of whichever side is still producing blocks once
// the other has run out.
package redundancy

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // block integrity check, not a security boundary
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/jvogt/paritybak/internal/consts"
	"github.com/jvogt/paritybak/pkg/block"
	"github.com/jvogt/paritybak/pkg/index"
	"github.com/jvogt/paritybak/pkg/medium"
	"github.com/jvogt/paritybak/pkg/unit"
	"github.com/jvogt/paritybak/pkg/verifile"
	"github.com/jvogt/paritybak/pkg/vio"
)

// padToBlockSize returns data followed by enough of vio.Zeroes to
// reach size, without allocating a separate zero buffer to copy from.
func padToBlockSize(data []byte, size int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(data)
	if _, err := io.CopyN(buf, vio.Zeroes, int64(size-len(data))); err != nil {
		return nil, errors.Wrap(err, "error padding block")
	}
	return buf.Bytes(), nil
}

// EncKey is an AES-128 key.
type EncKey [16]byte

// Nonce is an AES-CTR nonce: 8 bytes of wall-clock time followed by 8
// bytes of OS randomness. The wall-clock half assumes the system clock
// does not run backwards between blocks written within the same
// second-and-nanosecond tick; the OS-random half is what actually
// prevents nonce reuse if it does.
type Nonce [16]byte

// XOR writes the byte-wise XOR of a and b into out. a, b, and out must
// be the same length.
func XOR(a, b, out []byte) {
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
}

// XORCopy writes the byte-wise XOR of the common prefix of a and b
// into the start of out, then copies the remaining tail of whichever
// of a/b is longer into the rest of out. out must be exactly
// max(len(a), len(b)) bytes.
func XORCopy(a, b, out []byte) {
	short, long := a, b
	if len(long) < len(short) {
		short, long = long, short
	}
	XOR(short, long[:len(short)], out[:len(short)])
	copy(out[len(short):], long[len(short):])
}

// PartialIndexKind distinguishes a pairwise redundancy block (both
// sides present) from a replication block (only one side present).
type PartialIndexKind struct {
	IsReplication bool
	Left          index.Block
	Right         index.Block
	Original      index.Block
}

// PartialIndex records everything about one generated block except
// its final position in the output file table, which isn't known
// until the redundancy medium's files are added to the file table.
type PartialIndex struct {
	Kind PartialIndexKind
	ID   int
	Len  uint32
	Hash index.Hash
}

// queuedBlock is one block awaiting encryption and write-out.
type queuedBlock struct {
	nonce Nonce
	data  []byte
}

// Logger is the minimal collaborator used to report spilled files.
type Logger interface {
	Infof(format string, x ...interface{})
}

// Builder builds the redundancy medium for one pair of data media: it
// streams blocks from both, produces redundancy/replication blocks,
// spills them to encrypted files every consts.MaxRedundancyBlocks
// blocks, and records each generated file on redun.
type Builder struct {
	blockSize  int
	workdir    string
	left       *medium.Medium
	right      *medium.Medium
	redun      *medium.Medium
	fileTable  *index.FileTable
	key        EncKey
	log        Logger
	partialIdx map[string][]PartialIndex
}

// New returns a Builder for the pair (left, right), writing the
// resulting redundancy medium's spill files into workdir.
func New(blockSize int, workdir string, left, right, redun *medium.Medium, fileTable *index.FileTable, key EncKey, log Logger) *Builder {
	return &Builder{
		blockSize:  blockSize,
		workdir:    workdir,
		left:       left,
		right:      right,
		redun:      redun,
		fileTable:  fileTable,
		key:        key,
		log:        log,
		partialIdx: make(map[string][]PartialIndex),
	}
}

// PartialIndices returns the partial index entries recorded during
// Build, keyed by the generated spill file's path.
func (b *Builder) PartialIndices() map[string][]PartialIndex {
	return b.partialIdx
}

// Build streams both media's files block by block, producing and
// spilling redundancy/replication blocks as it goes.
func (b *Builder) Build() error {
	leftIter, err := block.New(b.blockSize, filesFor(b.fileTable, b.left.ID()))
	if err != nil {
		return errors.Wrap(err, "error starting left block stream")
	}
	defer leftIter.Close()

	rightIter, err := block.New(b.blockSize, filesFor(b.fileTable, b.right.ID()))
	if err != nil {
		return errors.Wrap(err, "error starting right block stream")
	}
	defer rightIter.Close()

	var queue []queuedBlock
	var partials []PartialIndex
	counter := 0

	for {
		lblk, err := leftIter.Next()
		if err != nil {
			return errors.Wrap(err, "error reading left block stream")
		}
		rblk, err := rightIter.Next()
		if err != nil {
			return errors.Wrap(err, "error reading right block stream")
		}

		if lblk == nil && rblk == nil {
			break
		}

		if lblk == nil || rblk == nil {
			single := lblk
			if single == nil {
				single = rblk
			}
			hash := sha1.Sum(single.Data)

			idx := PartialIndex{
				Kind: PartialIndexKind{
					IsReplication: true,
					Original:      index.NewBlock(single.FileID, single.BlockID, uint32(len(single.Data)), hash[:]),
				},
				ID:   len(queue),
				Len:  uint32(len(single.Data)),
				Hash: hash,
			}
			partials = append(partials, idx)

			buf, err := padToBlockSize(single.Data, b.blockSize)
			if err != nil {
				return err
			}
			nonce, err := generateNonce()
			if err != nil {
				return err
			}
			queue = append(queue, queuedBlock{nonce: nonce, data: buf})
		} else {
			lhash := sha1.Sum(lblk.Data)
			rhash := sha1.Sum(rblk.Data)

			outLen := len(lblk.Data)
			if len(rblk.Data) > outLen {
				outLen = len(rblk.Data)
			}
			buf := make([]byte, outLen)
			XORCopy(lblk.Data, rblk.Data, buf)
			redunHash := sha1.Sum(buf)

			idx := PartialIndex{
				Kind: PartialIndexKind{
					Left:  index.NewBlock(lblk.FileID, lblk.BlockID, uint32(len(lblk.Data)), lhash[:]),
					Right: index.NewBlock(rblk.FileID, rblk.BlockID, uint32(len(rblk.Data)), rhash[:]),
				},
				ID:   len(queue),
				Len:  uint32(len(buf)),
				Hash: redunHash,
			}
			partials = append(partials, idx)

			if len(buf) < b.blockSize {
				padded, err := padToBlockSize(buf, b.blockSize)
				if err != nil {
					return err
				}
				buf = padded
			}
			nonce, err := generateNonce()
			if err != nil {
				return err
			}
			queue = append(queue, queuedBlock{nonce: nonce, data: buf})
		}

		if len(queue) >= consts.MaxRedundancyBlocks {
			if err := b.writeOutQueue(fmt.Sprintf("%010d", counter), queue, partials); err != nil {
				return err
			}
			queue = nil
			partials = nil
			counter++
		}
	}

	if len(queue) > 0 {
		if err := b.writeOutQueue(fmt.Sprintf("%010d", counter), queue, partials); err != nil {
			return err
		}
	}

	return nil
}

// writeOutQueue encrypts and writes queue to a new spill file named
// key under the workdir, records its partial indices, and pushes the
// resulting file onto the redundancy medium.
func (b *Builder) writeOutQueue(key string, queue []queuedBlock, partials []PartialIndex) error {
	path := filepath.Join(b.workdir, key)

	w, err := verifile.Create(path)
	if err != nil {
		return err
	}
	for _, blk := range queue {
		if _, err := w.Write(blk.nonce[:]); err != nil {
			return err
		}
		encrypted, err := encrypt(blk.data, b.key, blk.nonce)
		if err != nil {
			return err
		}
		if _, err := w.Write(encrypted); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	size, err := fileSize(path)
	if err != nil {
		return err
	}

	b.partialIdx[path] = partials
	b.redun.PushFile(unit.NewFile(filePathOf(path), size))
	b.log.Infof("wrote redundancy spill file %q with %d blocks", path, len(queue))
	return nil
}

func encrypt(data []byte, key EncKey, nonce Nonce) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "error creating AES cipher")
	}
	stream := cipher.NewCTR(block, nonce[:])
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out, nil
}

// generateRandom fills buf with OS randomness.
func generateRandom(buf []byte) error {
	_, err := rand.Read(buf)
	return errors.Wrap(err, "error reading OS random source")
}

// GenerateKey returns a fresh random AES-128 key.
func GenerateKey() (EncKey, error) {
	var key EncKey
	if err := generateRandom(key[:]); err != nil {
		return key, err
	}
	return key, nil
}

// generateNonce builds a nonce whose first 8 bytes encode the current
// wall-clock time (seconds truncated to 32 bits, high 32 bits, packed
// little-endian as sec<<32|nsec) and whose last 8 bytes are OS
// randomness.
func generateNonce() (Nonce, error) {
	var nonce Nonce
	now := time.Now()
	sec := uint64(uint32(now.Unix()))
	timePart := sec<<32 | uint64(uint32(now.Nanosecond()))
	for i := 0; i < 8; i++ {
		nonce[i] = byte(timePart >> (8 * i))
	}
	if err := generateRandom(nonce[8:]); err != nil {
		return nonce, err
	}
	return nonce, nil
}
