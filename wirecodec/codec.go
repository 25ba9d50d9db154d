/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package wirecodec implements the restricted Avro-subset structural
// primitives the hypergraph payload is built from: zig-zag varints, bool,
// length-prefixed string/bytes, single-block array/map, union index, and
// enum. Every decoder validates as it goes: negative lengths and block
// counts, invalid UTF-8, and out-of-range enum indices are all reported via
// rpcerr.ErrMalformedBytes. A non-zero byte where a block could end is read
// as the count of a further block, and DecodeUnionIndex does not check the
// index against an arity; callers that know the union's branches do that.
package wirecodec

import (
	"fmt"
	"unicode/utf8"

	"github.com/SocioProphet/tritrpc/rpcerr"
)

// EncodeLong encodes a signed 64-bit integer as a zig-zag varint.
func EncodeLong(n int64) []byte {
	return encodeVarint(zigzag(n))
}

// EncodeInt encodes a signed 32-bit integer the same way a long is encoded,
// narrowed to 32 bits.
func EncodeInt(n int32) []byte {
	return EncodeLong(int64(n))
}

// EncodeBool encodes a boolean as a single 0x00/0x01 byte.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// EncodeString encodes a UTF-8 string as a long length prefix followed by
// its raw bytes.
func EncodeString(s string) []byte {
	b := []byte(s)
	out := EncodeLong(int64(len(b)))
	return append(out, b...)
}

// EncodeBytes encodes a byte slice as a long length prefix followed by the
// raw bytes.
func EncodeBytes(b []byte) []byte {
	out := EncodeLong(int64(len(b)))
	return append(out, b...)
}

// EncodeArray encodes items as a single-block Avro array: empty arrays are a
// lone 0x00 byte; non-empty arrays are a long count, each encoded item, and
// a zero terminator.
func EncodeArray[T any](items []T, enc func(T) []byte) []byte {
	if len(items) == 0 {
		return []byte{0}
	}
	out := EncodeLong(int64(len(items)))
	for _, it := range items {
		out = append(out, enc(it)...)
	}
	out = append(out, 0)
	return out
}

// StringPair is a (key, value) entry of a map<string,string>.
type StringPair struct {
	Key, Value string
}

// EncodeStringMap encodes a map<string,string> using the same single-block
// shape as EncodeArray, with each entry as a (key, value) string pair. The
// iteration order is the order of pairs, so callers that need determinism
// must sort pairs themselves before calling.
func EncodeStringMap(pairs []StringPair) []byte {
	if len(pairs) == 0 {
		return []byte{0}
	}
	out := EncodeLong(int64(len(pairs)))
	for _, p := range pairs {
		out = append(out, EncodeString(p.Key)...)
		out = append(out, EncodeString(p.Value)...)
	}
	return append(out, 0)
}

// EncodeUnionIndex encodes the branch index of a union; the chosen branch's
// bytes (or nothing, for null) follow immediately after in the caller's
// output.
func EncodeUnionIndex(index int64) []byte {
	return EncodeLong(index)
}

// EncodeEnum encodes an enum value as its int index.
func EncodeEnum(index int32) []byte {
	return EncodeInt(index)
}

func zigzag(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func zigzagInv(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func encodeVarint(u uint64) []byte {
	var out []byte
	for u&^0x7F != 0 {
		out = append(out, byte(u&0x7F)|0x80)
		u >>= 7
	}
	return append(out, byte(u))
}

// DecodeVarint reads a base-128 varint from b starting at off.
func DecodeVarint(b []byte, off int) (uint64, int, error) {
	var out uint64
	var shift uint
	for {
		if off >= len(b) {
			return 0, 0, fmt.Errorf("%w: EOF in varint", rpcerr.ErrMalformedBytes)
		}
		v := b[off]
		off++
		out |= uint64(v&0x7F) << shift
		if v&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			return 0, 0, fmt.Errorf("%w: varint overflow", rpcerr.ErrMalformedBytes)
		}
	}
	return out, off, nil
}

// DecodeLong decodes a zig-zag varint as a signed 64-bit integer.
func DecodeLong(b []byte, off int) (int64, int, error) {
	u, newOff, err := DecodeVarint(b, off)
	if err != nil {
		return 0, 0, err
	}
	return zigzagInv(u), newOff, nil
}

// DecodeInt decodes a zig-zag varint narrowed to a signed 32-bit integer.
func DecodeInt(b []byte, off int) (int32, int, error) {
	v, newOff, err := DecodeLong(b, off)
	if err != nil {
		return 0, 0, err
	}
	return int32(v), newOff, nil
}

// DecodeBool decodes a single boolean byte.
func DecodeBool(b []byte, off int) (bool, int, error) {
	if off >= len(b) {
		return false, 0, fmt.Errorf("%w: EOF in bool", rpcerr.ErrMalformedBytes)
	}
	return b[off] != 0, off + 1, nil
}

// DecodeString decodes a length-prefixed UTF-8 string.
func DecodeString(b []byte, off int) (string, int, error) {
	l, newOff, err := DecodeLong(b, off)
	if err != nil {
		return "", 0, err
	}
	if l < 0 {
		return "", 0, fmt.Errorf("%w: negative string length", rpcerr.ErrMalformedBytes)
	}
	end := newOff + int(l)
	if end < newOff || end > len(b) {
		return "", 0, fmt.Errorf("%w: string length exceeds buffer", rpcerr.ErrMalformedBytes)
	}
	raw := b[newOff:end]
	if !utf8.Valid(raw) {
		return "", 0, fmt.Errorf("%w: string is not valid UTF-8", rpcerr.ErrMalformedBytes)
	}
	return string(raw), end, nil
}

// DecodeBytes decodes a length-prefixed byte slice.
func DecodeBytes(b []byte, off int) ([]byte, int, error) {
	l, newOff, err := DecodeLong(b, off)
	if err != nil {
		return nil, 0, err
	}
	if l < 0 {
		return nil, 0, fmt.Errorf("%w: negative bytes length", rpcerr.ErrMalformedBytes)
	}
	end := newOff + int(l)
	if end < newOff || end > len(b) {
		return nil, 0, fmt.Errorf("%w: bytes length exceeds buffer", rpcerr.ErrMalformedBytes)
	}
	out := make([]byte, end-newOff)
	copy(out, b[newOff:end])
	return out, end, nil
}

// DecodeArray decodes a single- or multi-block Avro array, calling dec for
// each item. Per spec this codec only ever emits single-block arrays, but
// the decoder accepts the general multi-block form for robustness.
func DecodeArray[T any](b []byte, off int, dec func([]byte, int) (T, int, error)) ([]T, int, error) {
	var out []T
	for {
		count, newOff, err := DecodeLong(b, off)
		if err != nil {
			return nil, 0, err
		}
		off = newOff
		if count == 0 {
			return out, off, nil
		}
		if count < 0 {
			return nil, 0, fmt.Errorf("%w: negative array block count", rpcerr.ErrMalformedBytes)
		}
		for i := int64(0); i < count; i++ {
			var item T
			item, off, err = dec(b, off)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, item)
		}
	}
}

// DecodeStringMap decodes a single- or multi-block map<string,string>.
func DecodeStringMap(b []byte, off int) ([]StringPair, int, error) {
	var out []StringPair
	for {
		count, newOff, err := DecodeLong(b, off)
		if err != nil {
			return nil, 0, err
		}
		off = newOff
		if count == 0 {
			return out, off, nil
		}
		if count < 0 {
			return nil, 0, fmt.Errorf("%w: negative map block count", rpcerr.ErrMalformedBytes)
		}
		for i := int64(0); i < count; i++ {
			var k, v string
			if k, off, err = DecodeString(b, off); err != nil {
				return nil, 0, err
			}
			if v, off, err = DecodeString(b, off); err != nil {
				return nil, 0, err
			}
			out = append(out, StringPair{Key: k, Value: v})
		}
	}
}

// DecodeUnionIndex decodes a union branch index.
func DecodeUnionIndex(b []byte, off int) (int64, int, error) {
	return DecodeLong(b, off)
}

// DecodeEnum decodes an enum index, validating it against [0, arity).
func DecodeEnum(b []byte, off int, arity int32) (int32, int, error) {
	v, newOff, err := DecodeInt(b, off)
	if err != nil {
		return 0, 0, err
	}
	if v < 0 || v >= arity {
		return 0, 0, fmt.Errorf("%w: enum index %d outside arity %d", rpcerr.ErrMalformedBytes, v, arity)
	}
	return v, newOff, nil
}
