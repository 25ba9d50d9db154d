/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package envelope assembles and parses the ordered, length-prefixed field
// sequence that carries one TritRPC frame. Every field, including the
// magic, version, mode, and flag fields, is emitted as TLEB3(len) || bytes;
// the builder is a pure function of its arguments and the decoder checks
// each field as it reads it (see Decode). The decoder does not check that
// TLEB3 length prefixes and packed trit fields use the exact byte form the
// builder emits.
package envelope

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/SocioProphet/tritrpc/rpcerr"
	"github.com/SocioProphet/tritrpc/tleb3"
	"github.com/SocioProphet/tritrpc/tritpack"
)

// Magic is the two-byte frame marker, fixed across all versions.
var Magic = []byte{0xF3, 0x2A}

const (
	// Version is the only version this decoder accepts.
	Version = 1
	// Mode is the only mode this decoder accepts.
	Mode = 0
	// TagLen is the required length of the AEAD tag field.
	TagLen = 16
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	if len(b) != 32 {
		panic(fmt.Sprintf("envelope: fixed identifier %q is not 32 bytes", s))
	}
	return b
}

// SchemaID and ContextID pin the protocol version and semantic context;
// Decode rejects any frame whose F4/F5 fields do not match exactly.
var (
	SchemaID  = mustHex("b2ab814588f99c875d37bb7546d0df4369c28bc5f60ce38a6607dac468034352")
	ContextID = mustHex("e6572c0e618f18d572d4c2969db4909659f09eaef32ec66fbb804bad9d89aacd")
)

// Envelope is the decoded form of a frame up to (and, if present,
// including) its tag.
type Envelope struct {
	AeadOn   bool
	Compress bool
	Service  string
	Method   string
	Payload  []byte
	Aux      []byte // nil if absent
	Tag      []byte // nil if absent
	// TagStart is the byte offset, within the frame Decode was given,
	// where the tag field's value begins. It is the AAD/tag boundary.
	TagStart int
}

func field(payload []byte) []byte {
	out := tleb3.EncodeLen(uint64(len(payload)))
	return append(out, payload...)
}

// Build assembles F0..F9: magic, version, mode, flags, the two fixed
// identifiers, service, method, payload, and optional aux. It never emits
// a tag; callers that want an authenticated frame compute the tag over
// this output as AAD and append it with AppendTag.
func Build(service, method string, payload, aux []byte, aeadOn, compress bool) []byte {
	var out []byte
	out = append(out, field(Magic)...)
	out = append(out, field(tritpack.MustPack([]uint8{1}))...)
	out = append(out, field(tritpack.MustPack([]uint8{0}))...)
	out = append(out, field(tritpack.MustPack(flagTrits(aeadOn, compress)))...)
	out = append(out, field(SchemaID)...)
	out = append(out, field(ContextID)...)
	out = append(out, field([]byte(service))...)
	out = append(out, field([]byte(method))...)
	out = append(out, field(payload)...)
	if aux != nil {
		out = append(out, field(aux)...)
	}
	return out
}

// AppendTag appends a 16-byte AEAD tag as F10 to a frame produced by
// Build with aeadOn=true.
func AppendTag(withoutTag []byte, tag []byte) ([]byte, error) {
	if len(tag) != TagLen {
		return nil, fmt.Errorf("%w: tag length %d != %d", rpcerr.ErrPolicyViolation, len(tag), TagLen)
	}
	return append(append([]byte(nil), withoutTag...), field(tag)...), nil
}

// AADForTag returns the associated data an AEAD tag must be computed over:
// withoutTag (the frame built by Build) followed by the tag field's length
// prefix. Because the tag length is always 16, that prefix is fixed and
// known before the tag itself is computed, so this can run before the tag
// exists. This is exactly the frame AppendTag would produce minus the
// trailing 16 tag bytes.
func AADForTag(withoutTag []byte) []byte {
	prefix := tleb3.EncodeLen(TagLen)
	return append(append([]byte(nil), withoutTag...), prefix...)
}

func flagTrits(aeadOn, compress bool) []uint8 {
	trit := func(b bool) uint8 {
		if b {
			return 2
		}
		return 0
	}
	return []uint8{trit(aeadOn), trit(compress), 0}
}

func readField(frame []byte, off int) ([]byte, int, error) {
	n, off, err := tleb3.DecodeLen(frame, off)
	if err != nil {
		return nil, 0, err
	}
	end := off + int(n)
	if end < off || end > len(frame) {
		return nil, 0, fmt.Errorf("%w: field length %d exceeds remaining buffer", rpcerr.ErrMalformedBytes, n)
	}
	return frame[off:end], end, nil
}

// Decode parses frame into an Envelope, validating magic, version, mode,
// flags, the fixed schema/context identifiers, UTF-8 in service/method,
// the F9/F10 presence rule, and that no bytes remain unconsumed.
func Decode(frame []byte) (*Envelope, error) {
	off := 0

	magic, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("%w: bad magic %x", rpcerr.ErrPolicyViolation, magic)
	}

	verBytes, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	verTrits, err := tritpack.Unpack(verBytes)
	if err != nil {
		return nil, err
	}
	if len(verTrits) != 1 || verTrits[0] != Version {
		return nil, fmt.Errorf("%w: unsupported version %v", rpcerr.ErrPolicyViolation, verTrits)
	}

	modeBytes, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	modeTrits, err := tritpack.Unpack(modeBytes)
	if err != nil {
		return nil, err
	}
	if len(modeTrits) != 1 || modeTrits[0] != Mode {
		return nil, fmt.Errorf("%w: unknown mode %v", rpcerr.ErrPolicyViolation, modeTrits)
	}

	flagBytes, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	flagTritsDecoded, err := tritpack.Unpack(flagBytes)
	if err != nil {
		return nil, err
	}
	if len(flagTritsDecoded) != 3 {
		return nil, fmt.Errorf("%w: flags field has %d trits, want 3", rpcerr.ErrPolicyViolation, len(flagTritsDecoded))
	}
	for i, tr := range flagTritsDecoded[:2] {
		if tr != 0 && tr != 2 {
			return nil, fmt.Errorf("%w: flag trit %d has value %d, want 0 or 2", rpcerr.ErrPolicyViolation, i, tr)
		}
	}
	if flagTritsDecoded[2] != 0 {
		return nil, fmt.Errorf("%w: reserved flag trit is %d, want 0", rpcerr.ErrPolicyViolation, flagTritsDecoded[2])
	}

	var env Envelope
	env.AeadOn = flagTritsDecoded[0] == 2
	env.Compress = flagTritsDecoded[1] == 2

	schemaID, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(schemaID, SchemaID) {
		return nil, fmt.Errorf("%w: schema identifier mismatch", rpcerr.ErrPolicyViolation)
	}

	contextID, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(contextID, ContextID) {
		return nil, fmt.Errorf("%w: context identifier mismatch", rpcerr.ErrPolicyViolation)
	}

	serviceBytes, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(serviceBytes) {
		return nil, fmt.Errorf("%w: service name is not valid UTF-8", rpcerr.ErrMalformedBytes)
	}
	env.Service = string(serviceBytes)

	methodBytes, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(methodBytes) {
		return nil, fmt.Errorf("%w: method name is not valid UTF-8", rpcerr.ErrMalformedBytes)
	}
	env.Method = string(methodBytes)

	payload, off, err := readField(frame, off)
	if err != nil {
		return nil, err
	}
	env.Payload = payload

	// Presence rule for F9/F10: count remaining length-prefixed fields
	// and interpret according to the aead flag.
	var remaining [][]byte
	remainingOffsets := []int{}
	scanOff := off
	for scanOff < len(frame) {
		var f []byte
		start := scanOff
		f, scanOff, err = readField(frame, scanOff)
		if err != nil {
			return nil, err
		}
		remaining = append(remaining, f)
		remainingOffsets = append(remainingOffsets, start)
		if len(remaining) > 2 {
			return nil, fmt.Errorf("%w: more than two fields follow payload", rpcerr.ErrMalformedBytes)
		}
	}

	switch {
	case !env.AeadOn && len(remaining) == 0:
		env.TagStart = len(frame)
	case !env.AeadOn && len(remaining) == 1:
		env.Aux = remaining[0]
		env.TagStart = len(frame)
	case env.AeadOn && len(remaining) == 1:
		if len(remaining[0]) != TagLen {
			return nil, fmt.Errorf("%w: tag length %d != %d", rpcerr.ErrPolicyViolation, len(remaining[0]), TagLen)
		}
		env.Tag = remaining[0]
		env.TagStart = tagValueOffset(frame, remainingOffsets[0])
	case env.AeadOn && len(remaining) == 2:
		env.Aux = remaining[0]
		if len(remaining[1]) != TagLen {
			return nil, fmt.Errorf("%w: tag length %d != %d", rpcerr.ErrPolicyViolation, len(remaining[1]), TagLen)
		}
		env.Tag = remaining[1]
		env.TagStart = tagValueOffset(frame, remainingOffsets[1])
	default:
		return nil, fmt.Errorf("%w: invalid aux/tag field combination (aead=%v, %d fields)", rpcerr.ErrMalformedBytes, env.AeadOn, len(remaining))
	}

	return &env, nil
}

// tagValueOffset re-reads the TLEB3 length prefix at fieldStart to find
// where the tag's value bytes begin; that boundary is what the AEAD
// binder treats as the end of the AAD.
func tagValueOffset(frame []byte, fieldStart int) int {
	_, valueOff, err := tleb3.DecodeLen(frame, fieldStart)
	if err != nil {
		// readField already validated this field decodes cleanly.
		panic(err)
	}
	return valueOff
}
