/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package tleb3 implements TLEB3, a self-delimiting length-prefix integer
// encoding built from base-9 digits. Each digit contributes a continuation
// trit and two payload trits to a TritPack243-packed byte stream; decoding
// stops at the first digit whose continuation trit is 0, then advances to
// the next byte boundary.
package tleb3

import (
	"fmt"

	"github.com/SocioProphet/tritrpc/rpcerr"
	"github.com/SocioProphet/tritrpc/tritpack"
)

const base = 9

// EncodeLen encodes a non-negative integer n as TLEB3 bytes.
func EncodeLen(n uint64) []byte {
	var digits []uint8
	if n == 0 {
		digits = []uint8{0}
	} else {
		for n > 0 {
			digits = append(digits, uint8(n%base))
			n /= base
		}
	}
	trits := make([]uint8, 0, 3*len(digits))
	for i, d := range digits {
		c := uint8(0)
		if i < len(digits)-1 {
			c = 2
		}
		trits = append(trits, c, d/3, d%3)
	}
	// trits are always valid (c in {0,2}, p1/p0 in {0,1,2}); Pack cannot fail.
	return tritpack.MustPack(trits)
}

// DecodeLen reads one TLEB3 integer from frame starting at off, returning the
// decoded value and the offset of the byte immediately following the last
// byte whose trits contributed to the integer. Decoding is byte-aligned: a
// trailing partial group belonging to the consumed byte is always fully
// accounted for, even if not every trit of the final byte was needed by the
// terminating digit.
func DecodeLen(frame []byte, off int) (uint64, int, error) {
	var trits []uint8
	scanned := 0 // number of complete 3-trit digit groups already checked
	for {
		if off >= len(frame) {
			return 0, 0, fmt.Errorf("%w: EOF decoding TLEB3 integer", rpcerr.ErrMalformedBytes)
		}
		b := frame[off]
		groupLen := 1
		if b >= 243 && b <= 246 {
			groupLen = 2
		}
		if off+groupLen > len(frame) {
			return 0, 0, fmt.Errorf("%w: truncated TLEB3 tail marker", rpcerr.ErrMalformedBytes)
		}
		group, err := tritpack.Unpack(frame[off : off+groupLen])
		if err != nil {
			return 0, 0, err
		}
		trits = append(trits, group...)
		off += groupLen

		for ; (scanned+1)*3 <= len(trits); scanned++ {
			c := trits[scanned*3]
			if c != 0 && c != 2 {
				return 0, 0, fmt.Errorf("%w: invalid TLEB3 continuation trit %d", rpcerr.ErrMalformedBytes, c)
			}
			if c == 0 {
				return decodeValue(trits, scanned+1), off, nil
			}
		}
	}
}

// decodeValue reconstructs the integer from the first n digit-groups of
// trits (each 3 trits: continuation, p1, p0).
func decodeValue(trits []uint8, n int) uint64 {
	var val uint64
	var pow uint64 = 1
	for j := 0; j < n; j++ {
		p1, p0 := trits[3*j+1], trits[3*j+2]
		digit := uint64(p1)*3 + uint64(p0)
		val += digit * pow
		pow *= base
	}
	return val
}
