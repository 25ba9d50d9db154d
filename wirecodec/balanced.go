/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package wirecodec

import (
	"fmt"

	"github.com/SocioProphet/tritrpc/rpcerr"
	"github.com/SocioProphet/tritrpc/tleb3"
	"github.com/SocioProphet/tritrpc/tritpack"
)

// EncodeBalancedTernary encodes a signed integer as balanced-ternary digits
// in {-1,0,1}, remapped to the trit alphabet {0,1,2} for TritPack243
// storage, prefixed with a TLEB3 trit count. This is not part of the
// hypergraph wire shapes; it is carried forward from the original
// implementation as a general-purpose ternary primitive alongside TLEB3.
func EncodeBalancedTernary(n int64) []byte {
	var digits []int8
	if n == 0 {
		digits = []int8{0}
	} else {
		for n != 0 {
			rem := int8(n % 3)
			n /= 3
			// normalize the carry both ways so negative n round-trips too;
			// the source this was lifted from only handled the rem==2 case.
			if rem == 2 {
				rem = -1
				n++
			} else if rem == -2 {
				rem = 1
				n--
			}
			digits = append(digits, rem)
		}
	}
	// digits were accumulated least-significant first; store most
	// significant first so decode can fold left to right.
	trits := make([]uint8, len(digits))
	for i, d := range digits {
		trits[len(digits)-1-i] = uint8(d + 1)
	}
	out := tleb3.EncodeLen(uint64(len(trits)))
	return append(out, tritpack.MustPack(trits)...)
}

// DecodeBalancedTernary reads a balanced-ternary integer encoded by
// EncodeBalancedTernary, returning the value and the offset immediately
// past the bytes it consumed.
func DecodeBalancedTernary(b []byte, off int) (int64, int, error) {
	count, newOff, err := tleb3.DecodeLen(b, off)
	if err != nil {
		return 0, 0, err
	}
	off = newOff
	nbytes := int(count) / tritpack.GroupSize
	if int(count)%tritpack.GroupSize != 0 {
		nbytes += 2
	}
	if off+nbytes > len(b) {
		return 0, 0, fmt.Errorf("%w: balanced ternary value exceeds buffer", rpcerr.ErrMalformedBytes)
	}
	trits, err := tritpack.Unpack(b[off : off+nbytes])
	if err != nil {
		return 0, 0, err
	}
	if uint64(len(trits)) != count {
		return 0, 0, fmt.Errorf("%w: balanced ternary trit count mismatch", rpcerr.ErrMalformedBytes)
	}
	var val int64
	for _, t := range trits {
		if t > 2 {
			return 0, 0, fmt.Errorf("%w: balanced ternary trit %d out of range", rpcerr.ErrMalformedBytes, t)
		}
		val = val*3 + (int64(t) - 1)
	}
	return val, off + nbytes, nil
}
