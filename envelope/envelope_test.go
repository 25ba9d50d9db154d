/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package envelope

import (
	"bytes"
	"testing"

	"github.com/SocioProphet/tritrpc/tleb3"
)

func TestBuildDecodeRoundTripNoAead(t *testing.T) {
	frame := Build("HG", "HG.QueryNeighbors.REQ", []byte{1, 2, 3}, nil, false, false)
	env, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if env.AeadOn || env.Compress {
		t.Fatal("flags should both be off")
	}
	if env.Service != "HG" || env.Method != "HG.QueryNeighbors.REQ" {
		t.Fatalf("unexpected service/method: %+v", env)
	}
	if !bytes.Equal(env.Payload, []byte{1, 2, 3}) {
		t.Fatalf("unexpected payload: %x", env.Payload)
	}
	if env.Aux != nil || env.Tag != nil {
		t.Fatal("aux and tag must be absent")
	}
	if env.TagStart != len(frame) {
		t.Fatalf("tag_start = %d, want %d (end of frame)", env.TagStart, len(frame))
	}
}

func TestBuildDecodeWithAux(t *testing.T) {
	frame := Build("HG", "HG.AddHyperedge.REQ", []byte{9}, []byte("extra"), false, false)
	env, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(env.Aux, []byte("extra")) {
		t.Fatalf("unexpected aux: %q", env.Aux)
	}
	if env.Tag != nil {
		t.Fatal("tag must be absent when aead is off")
	}
}

func TestBuildAppendTagDecode(t *testing.T) {
	withoutTag := Build("HG", "HG.QueryNeighbors.REQ", []byte{1, 2, 3}, nil, true, false)
	tag := bytes.Repeat([]byte{0xAB}, 16)
	frame, err := AppendTag(withoutTag, tag)
	if err != nil {
		t.Fatal(err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !env.AeadOn {
		t.Fatal("aead flag should be on")
	}
	if !bytes.Equal(env.Tag, tag) {
		t.Fatalf("unexpected tag: %x", env.Tag)
	}
	aad := AADForTag(withoutTag)
	if env.TagStart != len(aad) {
		t.Fatalf("tag_start = %d, want %d", env.TagStart, len(aad))
	}
	if !bytes.Equal(frame[:env.TagStart], aad) {
		t.Fatal("frame prefix up to tag_start must equal AADForTag(withoutTag)")
	}
}

func TestBuildAppendTagWithAuxDecode(t *testing.T) {
	withoutTag := Build("HG", "HG.AddHyperedge.REQ", []byte{9}, []byte("extra"), true, true)
	tag := bytes.Repeat([]byte{0x11}, 16)
	frame, err := AppendTag(withoutTag, tag)
	if err != nil {
		t.Fatal(err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(env.Aux, []byte("extra")) {
		t.Fatalf("unexpected aux: %q", env.Aux)
	}
	if !bytes.Equal(env.Tag, tag) {
		t.Fatalf("unexpected tag: %x", env.Tag)
	}
	if !env.Compress {
		t.Fatal("compress flag should be on")
	}
}

func TestDecodeReEncodeBitExact(t *testing.T) {
	withoutTag := Build("HG", "HG.QueryNeighbors.REQ", []byte{1, 2, 3}, nil, true, false)
	tag := bytes.Repeat([]byte{0xCD}, 16)
	frame, err := AppendTag(withoutTag, tag)
	if err != nil {
		t.Fatal(err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	var aux []byte
	if env.Aux != nil {
		aux = env.Aux
	}
	rebuiltWithoutTag := Build(env.Service, env.Method, env.Payload, aux, env.AeadOn, env.Compress)
	rebuilt, err := AppendTag(rebuiltWithoutTag, env.Tag)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rebuilt, frame) {
		t.Fatalf("re-encoded frame differs from original:\n got %x\nwant %x", rebuilt, frame)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	frame := Build("HG", "M", []byte{1}, nil, false, false)
	frame[2] = 0x00 // first byte of the magic field's value
	if _, err := Decode(frame); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeRejectsZeroedSchema(t *testing.T) {
	frame := Build("HG", "M", []byte{1}, nil, false, false)
	// Locate F4 (schema) by walking the same fields Decode walks.
	off := 0
	skip := func() {
		_, newOff, err := tleb3.DecodeLen(frame, off)
		if err != nil {
			t.Fatal(err)
		}
		n, _, _ := tleb3.DecodeLen(frame, off)
		off = newOff + int(n)
	}
	skip() // magic
	skip() // version
	skip() // mode
	skip() // flags
	// off now points at the start of the schema field; zero its value bytes.
	schemaLen, valueOff, err := tleb3.DecodeLen(frame, off)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < int(schemaLen); i++ {
		frame[valueOff+i] = 0
	}
	if _, err := Decode(frame); err == nil {
		t.Fatal("expected error for zeroed schema identifier")
	}
}

func TestDecodeRejectsMalformedFlagTrit(t *testing.T) {
	frame := Build("HG", "M", []byte{1}, nil, false, false)
	off := 0
	skipMagic := func() {
		n, newOff, err := tleb3.DecodeLen(frame, off)
		if err != nil {
			t.Fatal(err)
		}
		off = newOff + int(n)
	}
	skipMagic() // magic
	skipMagic() // version
	skipMagic() // mode
	// off now points at the flags field; corrupt its packed value so the
	// first trit decodes to 1, which is not in {0,2}.
	_, valueOff, err := tleb3.DecodeLen(frame, off)
	if err != nil {
		t.Fatal(err)
	}
	// The flags value currently packs trits [0,0,0] as marker 0xF5
	// (243+3-1=245) followed by value byte 0x00; keep the marker and
	// overwrite the value with the packing of [1,0,0], which is 1*9 = 9.
	frame[valueOff] = 0xF5
	frame[valueOff+1] = 9
	if _, err := Decode(frame); err == nil {
		t.Fatal("expected error for malformed flag trit")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	// aead=on with aux present already uses both allowed trailing slots
	// (aux, tag); one more length-prefixed field is never valid.
	withoutTag := Build("HG", "M", []byte{1}, []byte("aux"), true, false)
	tag := bytes.Repeat([]byte{0x22}, 16)
	frame, err := AppendTag(withoutTag, tag)
	if err != nil {
		t.Fatal(err)
	}
	frame = append(frame, 0x00)
	if _, err := Decode(frame); err == nil {
		t.Fatal("expected error for trailing bytes")
	}
}
