package stats

import "testing"

type nilLogger struct{}

func (nilLogger) Infof(format string, x ...interface{}) {}

func TestPaddingLossChargesFullBlockForExactMultiple(t *testing.T) {
	got := paddingLoss([]uint64{0x1000}, 0x1000)
	if got != 0x1000 {
		t.Errorf("got %d, want %d (an exact multiple still charges a full block)", got, uint64(0x1000))
	}
}

func TestPaddingLossForPartialBlock(t *testing.T) {
	got := paddingLoss([]uint64{0x1001}, 0x1000)
	if got != 0x1000-1 {
		t.Errorf("got %d, want %d", got, uint64(0x1000-1))
	}
}

func TestBlockSizePicksSmallestOnTie(t *testing.T) {
	// All files empty: every candidate has zero padding loss and zero
	// table overhead, so the smallest candidate should win.
	s := Stats{FileSizes: []uint64{}, PathLens: []int{}}
	got := BlockSize(s, nilLogger{})
	if got != blockSizeCandidates[0] {
		t.Errorf("got %d, want smallest candidate %d", got, blockSizeCandidates[0])
	}
}

func TestBlockSizePrefersLargerBlocksForLargeFiles(t *testing.T) {
	s := Stats{FileSizes: []uint64{1 << 28}, PathLens: []int{10}}
	// Every candidate divides 1<<28 exactly, so the cost is
	// b + (1<<34)/b + 63 + 10, which is smallest at b = 1<<17.
	got := BlockSize(s, nilLogger{})
	if got != 1<<17 {
		t.Errorf("got %d, want %d for a very large file", got, uint64(1<<17))
	}
}
