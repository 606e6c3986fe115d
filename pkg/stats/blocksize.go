package stats

import "github.com/jvogt/paritybak/internal/consts"

// blockSizeCandidates are the 19 power-of-two sizes the optimizer
// chooses among, from 512 bytes to 128 MiB.
var blockSizeCandidates = []uint64{
	0x200, 0x400, 0x800, 0x1000, 0x2000, 0x4000, 0x8000,
	0x10_000, 0x20_000, 0x40_000, 0x80_000, 0x100_000, 0x200_000,
	0x400_000, 0x800_000, 0x1_000_000, 0x2_000_000, 0x4_000_000, 0x8_000_000,
}

// Logger is the minimal collaborator used to report the per-candidate
// loss table and the final choice.
type Logger interface {
	Infof(format string, x ...interface{})
}

// candidateCost is one block size's total estimated cost: padding loss
// in the redundancy data, plus the record and index table overhead
// that size of block would require.
type candidateCost struct {
	blockSize     uint64
	paddingLoss   uint64
	tableOverhead uint64
}

func (c candidateCost) total() uint64 {
	return c.paddingLoss + c.tableOverhead
}

// BlockSize chooses the block size, among blockSizeCandidates, that
// minimizes total padding loss plus record/index table overhead over
// s. Ties are broken in favor of the smaller candidate, since the
// candidates are evaluated in ascending order and only a strictly
// smaller total replaces the current best.
func BlockSize(s Stats, log Logger) uint64 {
	log.Infof("for each block size, estimating bytes lost to redundancy padding and table overhead")

	var table []candidateCost
	for _, b := range blockSizeCandidates {
		loss := paddingLoss(s.FileSizes, b)
		overhead := tableOverhead(s.PathLens, s.FileSizes, b)
		log.Infof("block size: %d, loss: %d, record size: %d, table overhead: %d", b, loss, consts.RecordSize, overhead)
		table = append(table, candidateCost{blockSize: b, paddingLoss: loss, tableOverhead: overhead})
	}

	best := table[0]
	for _, c := range table[1:] {
		if c.total() < best.total() {
			best = c
		}
	}

	var sum uint64
	for _, sz := range s.FileSizes {
		sum += sz
	}
	if sum > 0 {
		log.Infof("optimal block size is %d bytes; loses %d bytes (%d%% of %d total bytes) to inefficiencies and tables",
			best.blockSize, best.total(), best.total()*100/sum, sum)
	}

	return best.blockSize
}

// paddingLoss is the bytes a redundancy file wastes padding each
// file's final block out to a full block of size b: a file whose size
// is an exact multiple of b still charges a full block, matching the
// underlying `b - size % b` formula exactly (size%b == 0 yields b, not
// 0).
func paddingLoss(sizes []uint64, b uint64) uint64 {
	var loss uint64
	for _, size := range sizes {
		loss += b - size%b
	}
	return loss
}

// tableOverhead estimates the combined record-table and index-table
// size for block size b: each file contributes ceil(size/b) records of
// RecordSize bytes, computed as (size+b-1)*RecordSize/b with integer
// truncation, plus its logical path length to the index table.
func tableOverhead(pathLens []int, sizes []uint64, b uint64) uint64 {
	var recordTable uint64
	for _, size := range sizes {
		recordTable += (size + b - 1) * consts.RecordSize / b
	}

	var indexTable uint64
	for _, pathLen := range pathLens {
		indexTable += uint64(pathLen)
	}

	return recordTable + indexTable
}
