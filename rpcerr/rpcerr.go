/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package rpcerr defines the abstract error taxonomy shared by every layer
// of the TritRPC wire codec: malformed bytes, disallowed field values,
// failed authentication, and unsupported request operations. Lower packages
// wrap one of these four sentinels so callers can test the taxonomy with
// errors.Is regardless of which layer raised the error.
package rpcerr

import "errors"

var (
	// ErrMalformedBytes covers TritPack243/TLEB3 violations, truncated
	// fields, non-UTF-8 names, invalid union indices, bad block
	// terminators, negative lengths, and trailing bytes.
	ErrMalformedBytes = errors.New("tritrpc: malformed bytes")

	// ErrPolicyViolation covers disallowed values in constrained fields:
	// bad flag trits, schema/context mismatch, wrong magic, unknown
	// version or mode, wrong tag/nonce length.
	ErrPolicyViolation = errors.New("tritrpc: policy violation")

	// ErrAuthFailure is a tag mismatch under constant-time compare. It is
	// terminal for the frame; the core never retries or re-parses under a
	// different schema.
	ErrAuthFailure = errors.New("tritrpc: authentication failure")

	// ErrUnsupportedOp is a hypergraph request op outside 0..5 at encode
	// time.
	ErrUnsupportedOp = errors.New("tritrpc: unsupported operation")
)
