package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import "io"

// zeroesReader is an infinite stream of zero bytes, doubling the
// filled prefix on each read so large reads don't cost one syscall
// per byte.
type zeroesReader struct{}

func (rdr *zeroesReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return
	}
	p[0] = 0
	for bp := 1; bp < len(p); bp *= 2 {
		copy(p[bp:], p[:bp])
	}
	return len(p), nil
}

// Zeroes is used by the redundancy engine to pad short final blocks
// out to block_size without allocating a fresh zero buffer at every
// call site.
var Zeroes = io.Reader(&zeroesReader{})
