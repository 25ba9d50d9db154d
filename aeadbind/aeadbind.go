/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package aeadbind computes and verifies the envelope's authentication
// tag. The construction is AAD-only: the AEAD plaintext is always empty,
// so the ciphertext the cipher produces IS the tag, and the "message"
// being authenticated is entirely carried as associated data.
package aeadbind

import (
	"crypto/subtle"
	"fmt"

	"github.com/SocioProphet/tritrpc/envelope"
	"github.com/SocioProphet/tritrpc/rpcerr"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the required XChaCha20-Poly1305 key length.
	KeySize = chacha20poly1305.KeySize
	// NonceSize is the required XChaCha20-Poly1305 nonce length.
	NonceSize = chacha20poly1305.NonceSizeX
)

// ComputeTag seals an empty plaintext under key/nonce with aad as
// associated data, returning the resulting 16-byte tag.
func ComputeTag(key, nonce, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key length %d != %d", rpcerr.ErrPolicyViolation, len(key), KeySize)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce length %d != %d", rpcerr.ErrPolicyViolation, len(nonce), NonceSize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rpcerr.ErrPolicyViolation, err)
	}
	return aead.Seal(nil, nonce, nil, aad), nil
}

// Seal builds an authenticated frame: it computes the AAD for aeadOn=true
// over service/method/payload/aux, seals the tag, and appends it as F10.
func Seal(service, method string, payload, aux, key, nonce []byte, compress bool) ([]byte, error) {
	withoutTag := envelope.Build(service, method, payload, aux, true, compress)
	tag, err := ComputeTag(key, nonce, envelope.AADForTag(withoutTag))
	if err != nil {
		return nil, err
	}
	return envelope.AppendTag(withoutTag, tag)
}

// Verify decodes frame and, if its aead flag is on, recomputes the tag
// over the AAD prefix ending at env.TagStart and compares it to the
// stored tag in constant time. A frame with aead off is returned
// unauthenticated; callers that require authentication must check
// env.AeadOn themselves.
func Verify(frame, key, nonce []byte) (*envelope.Envelope, error) {
	env, err := envelope.Decode(frame)
	if err != nil {
		return nil, err
	}
	if !env.AeadOn {
		return env, nil
	}
	want, err := ComputeTag(key, nonce, frame[:env.TagStart])
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(want, env.Tag) != 1 {
		return nil, fmt.Errorf("%w: tag verification failed", rpcerr.ErrAuthFailure)
	}
	return env, nil
}
