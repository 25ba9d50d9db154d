/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tleb3

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestEncodeLenMicroVectors(t *testing.T) {
	enc := EncodeLen(0)
	if !reflect.DeepEqual(enc, []byte{0xF5, 0x00}) {
		t.Fatalf("encode_len(0) = %x, want f500", enc)
	}
	n, off, err := DecodeLen(enc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || off != len(enc) {
		t.Fatalf("decode_len(encode_len(0)) = (%d, %d), want (0, %d)", n, off, len(enc))
	}

	enc = EncodeLen(9)
	if !reflect.DeepEqual(enc, []byte{0xA2, 0xF3, 0x01}) {
		t.Fatalf("encode_len(9) = %x, want a2f301", enc)
	}
	n, off, err = DecodeLen(enc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 9 || off != len(enc) {
		t.Fatalf("decode_len(encode_len(9)) = (%d, %d), want (9, %d)", n, off, len(enc))
	}
	if len(enc) <= 1 {
		t.Fatal("encode_len(9) should span more than one trit-digit worth of bytes")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 8, 9, 80, 81, 65535, 1 << 20, 1<<63 - 1}
	for _, v := range values {
		enc := EncodeLen(v)
		n, off, err := DecodeLen(enc, 0)
		if err != nil {
			t.Fatalf("decode of encode_len(%d) failed: %v", v, err)
		}
		if n != v || off != len(enc) {
			t.Fatalf("round trip mismatch for %d: got (%d, %d) want (%d, %d)", v, n, off, v, len(enc))
		}
	}
}

func TestEncodeDecodeFuzz(t *testing.T) {
	for i := 0; i < 512; i++ {
		v := rand.Uint64() % (1 << 40)
		enc := EncodeLen(v)
		n, off, err := DecodeLen(enc, 0)
		if err != nil {
			t.Fatalf("decode failed for %d: %v", v, err)
		}
		if n != v || off != len(enc) {
			t.Fatalf("round trip mismatch for %d: got (%d,%d)", v, n, off)
		}
	}
}

func TestDecodeLenWithinLargerBuffer(t *testing.T) {
	// TLEB3 integers are read from arbitrary offsets inside an envelope;
	// confirm offset tracking is correct when embedded with trailing bytes.
	enc := EncodeLen(12345)
	buf := append([]byte{0xAB, 0xCD}, enc...)
	buf = append(buf, 0xEE, 0xFF)
	n, off, err := DecodeLen(buf, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 12345 {
		t.Fatalf("got %d, want 12345", n)
	}
	if off != 2+len(enc) {
		t.Fatalf("got offset %d, want %d", off, 2+len(enc))
	}
}

func TestDecodeLenEOF(t *testing.T) {
	if _, _, err := DecodeLen(nil, 0); err == nil {
		t.Fatal("expected error on empty buffer")
	}
	// a continuation trit of 2 with nothing following must EOF
	enc := EncodeLen(9)
	if _, _, err := DecodeLen(enc[:1], 0); err == nil {
		t.Fatal("expected error on truncated buffer")
	}
}
