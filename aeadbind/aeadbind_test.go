/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package aeadbind

import (
	"bytes"
	"testing"
)

func zeros(n int) []byte { return make([]byte, n) }

func TestSealVerifyRoundTrip(t *testing.T) {
	key := zeros(KeySize)
	nonce := zeros(NonceSize)
	frame, err := Seal("HG", "HG.QueryNeighbors.REQ", []byte{1, 2, 3}, nil, key, nonce, false)
	if err != nil {
		t.Fatal(err)
	}
	env, err := Verify(frame, key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	if !env.AeadOn {
		t.Fatal("expected aead flag on")
	}
	if len(env.Tag) != 16 {
		t.Fatalf("expected 16-byte tag, got %d", len(env.Tag))
	}
}

func TestVerifyFailsOnTamperedPayload(t *testing.T) {
	key := zeros(KeySize)
	nonce := zeros(NonceSize)
	frame, err := Seal("HG", "HG.QueryNeighbors.REQ", []byte{1, 2, 3}, nil, key, nonce, false)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), frame...)
	// flip the last payload byte, which sits just before the 19-byte tag
	// field (3-byte length prefix plus the 16-byte tag).
	tampered[len(tampered)-20] ^= 0xFF
	if _, err := Verify(tampered, key, nonce); err == nil {
		t.Fatal("expected authentication failure on tampered payload")
	}
}

func TestVerifyFailsOnWrongKey(t *testing.T) {
	key := zeros(KeySize)
	nonce := zeros(NonceSize)
	frame, err := Seal("HG", "HG.QueryNeighbors.REQ", []byte{1, 2, 3}, nil, key, nonce, false)
	if err != nil {
		t.Fatal(err)
	}
	otherKey := zeros(KeySize)
	otherKey[0] = 1
	if _, err := Verify(frame, otherKey, nonce); err == nil {
		t.Fatal("expected authentication failure with wrong key")
	}
}

func TestSealVerifyWithAuxAndCompress(t *testing.T) {
	key := zeros(KeySize)
	nonce := zeros(NonceSize)
	withAux, err := Seal("HG", "M", []byte{1}, []byte("aux"), key, nonce, true)
	if err != nil {
		t.Fatal(err)
	}
	env, err := Verify(withAux, key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(env.Aux, []byte("aux")) {
		t.Fatalf("unexpected aux: %q", env.Aux)
	}
	if !env.Compress {
		t.Fatal("expected compress flag on")
	}
}

func TestComputeTagRejectsBadKeyNonceLengths(t *testing.T) {
	if _, err := ComputeTag(zeros(KeySize-1), zeros(NonceSize), nil); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := ComputeTag(zeros(KeySize), zeros(NonceSize-1), nil); err == nil {
		t.Fatal("expected error for short nonce")
	}
}
