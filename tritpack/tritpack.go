/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package tritpack implements TritPack243, the canonical packing of base-3
// digit ("trit") sequences into bytes. Every byte value is either a full
// group of 5 trits (0..=242), a tail marker declaring that 1..4 trits follow
// in the next byte (243..=246), or invalid (247..=255).
package tritpack

import (
	"fmt"

	"github.com/SocioProphet/tritrpc/rpcerr"
)

const (
	// GroupSize is the number of trits packed into one ordinary byte.
	GroupSize = 5

	// tailBase is the first tail-marker byte value; tailBase+k-1 declares
	// that k trits (1..4) follow in the next byte.
	tailBase uint8 = 243
	maxTail  uint8 = 246
)

// Pack packs a sequence of trits (each in {0,1,2}) into TritPack243 bytes.
// It returns an error if any trit value exceeds 2.
func Pack(trits []uint8) ([]byte, error) {
	out := make([]byte, 0, len(trits)/GroupSize+2)
	i := 0
	for ; i+GroupSize <= len(trits); i += GroupSize {
		var val uint32
		for _, t := range trits[i : i+GroupSize] {
			if t > 2 {
				return nil, fmt.Errorf("%w: trit value %d out of range", rpcerr.ErrMalformedBytes, t)
			}
			val = val*3 + uint32(t)
		}
		out = append(out, uint8(val))
	}
	if k := len(trits) - i; k > 0 {
		var val uint32
		for _, t := range trits[i:] {
			if t > 2 {
				return nil, fmt.Errorf("%w: trit value %d out of range", rpcerr.ErrMalformedBytes, t)
			}
			val = val*3 + uint32(t)
		}
		out = append(out, tailBase+uint8(k-1), uint8(val))
	}
	return out, nil
}

// MustPack is Pack but panics on error; it is only safe for callers that
// control the trit values directly (e.g. internal fixed-shape encoders).
func MustPack(trits []uint8) []byte {
	b, err := Pack(trits)
	if err != nil {
		panic(err)
	}
	return b
}

// Unpack expands TritPack243 bytes back into the original trit sequence.
// It rejects non-canonical input: bytes in 247..=255, and a tail marker
// with no following value byte.
func Unpack(b []byte) ([]uint8, error) {
	trits := make([]uint8, 0, len(b)/2*GroupSize)
	i := 0
	for i < len(b) {
		v := b[i]
		i++
		switch {
		case v <= 242:
			trits = append(trits, expandGroup(v, GroupSize)...)
		case v >= tailBase && v <= maxTail:
			k := int(v-tailBase) + 1
			if i >= len(b) {
				return nil, fmt.Errorf("%w: truncated tail marker", rpcerr.ErrMalformedBytes)
			}
			tv := b[i]
			i++
			if tv > 242 {
				return nil, fmt.Errorf("%w: tail value byte %d out of range", rpcerr.ErrMalformedBytes, tv)
			}
			trits = append(trits, expandGroup(tv, k)...)
		default:
			return nil, fmt.Errorf("%w: invalid byte %d in canonical stream", rpcerr.ErrMalformedBytes, v)
		}
	}
	return trits, nil
}

// expandGroup splits the base-3 value encoded in v into n right-justified
// trits, high-order first.
func expandGroup(v uint8, n int) []uint8 {
	out := make([]uint8, n)
	val := uint32(v)
	for j := n - 1; j >= 0; j-- {
		out[j] = uint8(val % 3)
		val /= 3
	}
	return out
}
