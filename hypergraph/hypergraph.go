/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package hypergraph implements the fixed-schema Request and Response
// record shapes carried as an envelope payload, encoded with the
// primitives in wirecodec. Op obligations (which fields must be null or
// non-null for a given operation) are enforced on encode so malformed
// requests never reach the wire.
package hypergraph

import (
	"fmt"

	"github.com/SocioProphet/tritrpc/rpcerr"
	"github.com/SocioProphet/tritrpc/wirecodec"
)

// Op is the hypergraph request operation code.
type Op int32

const (
	AddVertex Op = iota
	AddHyperedge
	RemoveVertex
	RemoveHyperedge
	QueryNeighbors
	GetSubgraph
)

const opArity = 6

func (op Op) String() string {
	switch op {
	case AddVertex:
		return "AddVertex"
	case AddHyperedge:
		return "AddHyperedge"
	case RemoveVertex:
		return "RemoveVertex"
	case RemoveHyperedge:
		return "RemoveHyperedge"
	case QueryNeighbors:
		return "QueryNeighbors"
	case GetSubgraph:
		return "GetSubgraph"
	default:
		return fmt.Sprintf("Op(%d)", int32(op))
	}
}

// Vertex is a named graph node with an optional label and a string
// attribute bag.
type Vertex struct {
	Vid   string
	Label *string
	Attrs []wirecodec.StringPair
}

// Hyperedge is a named hyperedge connecting an ordered set of vertex ids,
// with an optional integer weight and a string attribute bag.
type Hyperedge struct {
	Eid     string
	Members []string
	Weight  *int64
	Attrs   []wirecodec.StringPair
}

// Request is the six-field hypergraph request record. Every field is
// always present on the wire; unused fields for a given Op are encoded as
// null.
type Request struct {
	Op        Op
	Vertex    *Vertex
	Hyperedge *Hyperedge
	Vid       *string
	Eid       *string
	K         *int32
}

// Response is the four-field hypergraph response record.
type Response struct {
	Ok       bool
	Err      *string
	Vertices []Vertex
	Edges    []Hyperedge
}

// obligation describes which of the five optional Request fields must be
// present (true) or absent (false) for a given Op.
type obligation struct {
	vertex, hyperedge, vid, eid, k bool
}

var obligations = map[Op]obligation{
	AddVertex:       {vertex: true},
	AddHyperedge:    {hyperedge: true},
	RemoveVertex:    {vid: true},
	RemoveHyperedge: {eid: true},
	QueryNeighbors:  {vid: true, k: true},
	GetSubgraph:     {vid: true, k: true},
}

// Validate checks r against the per-op field obligation table: the fields
// the op requires must be non-null, and every other field must be null.
func (r *Request) Validate() error {
	ob, ok := obligations[r.Op]
	if !ok {
		return fmt.Errorf("%w: op %d outside 0..5", rpcerr.ErrUnsupportedOp, r.Op)
	}
	check := func(name string, present, want bool) error {
		if present != want {
			if want {
				return fmt.Errorf("%w: op %s requires field %s", rpcerr.ErrPolicyViolation, r.Op, name)
			}
			return fmt.Errorf("%w: op %s requires field %s to be null", rpcerr.ErrPolicyViolation, r.Op, name)
		}
		return nil
	}
	if err := check("vertex", r.Vertex != nil, ob.vertex); err != nil {
		return err
	}
	if err := check("hyperedge", r.Hyperedge != nil, ob.hyperedge); err != nil {
		return err
	}
	if err := check("vid", r.Vid != nil, ob.vid); err != nil {
		return err
	}
	if err := check("eid", r.Eid != nil, ob.eid); err != nil {
		return err
	}
	if err := check("k", r.K != nil, ob.k); err != nil {
		return err
	}
	return nil
}

func encodeVertex(v Vertex) []byte {
	out := wirecodec.EncodeString(v.Vid)
	out = append(out, encodeNullableString(v.Label)...)
	out = append(out, wirecodec.EncodeStringMap(v.Attrs)...)
	return out
}

func decodeVertex(b []byte, off int) (Vertex, int, error) {
	var v Vertex
	var err error
	if v.Vid, off, err = wirecodec.DecodeString(b, off); err != nil {
		return Vertex{}, 0, err
	}
	if v.Label, off, err = decodeNullableString(b, off); err != nil {
		return Vertex{}, 0, err
	}
	if v.Attrs, off, err = wirecodec.DecodeStringMap(b, off); err != nil {
		return Vertex{}, 0, err
	}
	return v, off, nil
}

func encodeHyperedge(h Hyperedge) []byte {
	out := wirecodec.EncodeString(h.Eid)
	out = append(out, wirecodec.EncodeArray(h.Members, wirecodec.EncodeString)...)
	out = append(out, encodeNullableLong(h.Weight)...)
	out = append(out, wirecodec.EncodeStringMap(h.Attrs)...)
	return out
}

func decodeHyperedge(b []byte, off int) (Hyperedge, int, error) {
	var h Hyperedge
	var err error
	if h.Eid, off, err = wirecodec.DecodeString(b, off); err != nil {
		return Hyperedge{}, 0, err
	}
	if h.Members, off, err = wirecodec.DecodeArray(b, off, wirecodec.DecodeString); err != nil {
		return Hyperedge{}, 0, err
	}
	if h.Weight, off, err = decodeNullableLong(b, off); err != nil {
		return Hyperedge{}, 0, err
	}
	if h.Attrs, off, err = wirecodec.DecodeStringMap(b, off); err != nil {
		return Hyperedge{}, 0, err
	}
	return h, off, nil
}

func encodeNullableString(s *string) []byte {
	if s == nil {
		return wirecodec.EncodeUnionIndex(0)
	}
	out := wirecodec.EncodeUnionIndex(1)
	return append(out, wirecodec.EncodeString(*s)...)
}

func decodeNullableString(b []byte, off int) (*string, int, error) {
	idx, off, err := wirecodec.DecodeUnionIndex(b, off)
	if err != nil {
		return nil, 0, err
	}
	switch idx {
	case 0:
		return nil, off, nil
	case 1:
		s, off, err := wirecodec.DecodeString(b, off)
		if err != nil {
			return nil, 0, err
		}
		return &s, off, nil
	default:
		return nil, 0, fmt.Errorf("%w: nullable string union index %d outside 0..1", rpcerr.ErrMalformedBytes, idx)
	}
}

func encodeNullableLong(n *int64) []byte {
	if n == nil {
		return wirecodec.EncodeUnionIndex(0)
	}
	out := wirecodec.EncodeUnionIndex(1)
	return append(out, wirecodec.EncodeLong(*n)...)
}

func decodeNullableLong(b []byte, off int) (*int64, int, error) {
	idx, off, err := wirecodec.DecodeUnionIndex(b, off)
	if err != nil {
		return nil, 0, err
	}
	switch idx {
	case 0:
		return nil, off, nil
	case 1:
		n, off, err := wirecodec.DecodeLong(b, off)
		if err != nil {
			return nil, 0, err
		}
		return &n, off, nil
	default:
		return nil, 0, fmt.Errorf("%w: nullable long union index %d outside 0..1", rpcerr.ErrMalformedBytes, idx)
	}
}

func encodeNullableInt(n *int32) []byte {
	if n == nil {
		return wirecodec.EncodeUnionIndex(0)
	}
	out := wirecodec.EncodeUnionIndex(1)
	return append(out, wirecodec.EncodeInt(*n)...)
}

func decodeNullableInt(b []byte, off int) (*int32, int, error) {
	idx, off, err := wirecodec.DecodeUnionIndex(b, off)
	if err != nil {
		return nil, 0, err
	}
	switch idx {
	case 0:
		return nil, off, nil
	case 1:
		n, off, err := wirecodec.DecodeInt(b, off)
		if err != nil {
			return nil, 0, err
		}
		return &n, off, nil
	default:
		return nil, 0, fmt.Errorf("%w: nullable int union index %d outside 0..1", rpcerr.ErrMalformedBytes, idx)
	}
}

func encodeNullableVertex(v *Vertex) []byte {
	if v == nil {
		return wirecodec.EncodeUnionIndex(0)
	}
	out := wirecodec.EncodeUnionIndex(1)
	return append(out, encodeVertex(*v)...)
}

func decodeNullableVertex(b []byte, off int) (*Vertex, int, error) {
	idx, off, err := wirecodec.DecodeUnionIndex(b, off)
	if err != nil {
		return nil, 0, err
	}
	switch idx {
	case 0:
		return nil, off, nil
	case 1:
		v, off, err := decodeVertex(b, off)
		if err != nil {
			return nil, 0, err
		}
		return &v, off, nil
	default:
		return nil, 0, fmt.Errorf("%w: nullable vertex union index %d outside 0..1", rpcerr.ErrMalformedBytes, idx)
	}
}

func encodeNullableHyperedge(h *Hyperedge) []byte {
	if h == nil {
		return wirecodec.EncodeUnionIndex(0)
	}
	out := wirecodec.EncodeUnionIndex(1)
	return append(out, encodeHyperedge(*h)...)
}

func decodeNullableHyperedge(b []byte, off int) (*Hyperedge, int, error) {
	idx, off, err := wirecodec.DecodeUnionIndex(b, off)
	if err != nil {
		return nil, 0, err
	}
	switch idx {
	case 0:
		return nil, off, nil
	case 1:
		h, off, err := decodeHyperedge(b, off)
		if err != nil {
			return nil, 0, err
		}
		return &h, off, nil
	default:
		return nil, 0, fmt.Errorf("%w: nullable hyperedge union index %d outside 0..1", rpcerr.ErrMalformedBytes, idx)
	}
}

// Encode validates r against its op's field obligations, then serializes
// it in the fixed field order: op, vertex, hyperedge, vid, eid, k.
func (r *Request) Encode() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := wirecodec.EncodeEnum(int32(r.Op))
	out = append(out, encodeNullableVertex(r.Vertex)...)
	out = append(out, encodeNullableHyperedge(r.Hyperedge)...)
	out = append(out, encodeNullableString(r.Vid)...)
	out = append(out, encodeNullableString(r.Eid)...)
	out = append(out, encodeNullableInt(r.K)...)
	return out, nil
}

// DecodeRequest decodes a Request and validates it against the per-op
// field obligation table.
func DecodeRequest(b []byte, off int) (*Request, int, error) {
	var r Request
	opIdx, off, err := wirecodec.DecodeEnum(b, off, opArity)
	if err != nil {
		return nil, 0, err
	}
	r.Op = Op(opIdx)
	if r.Vertex, off, err = decodeNullableVertex(b, off); err != nil {
		return nil, 0, err
	}
	if r.Hyperedge, off, err = decodeNullableHyperedge(b, off); err != nil {
		return nil, 0, err
	}
	if r.Vid, off, err = decodeNullableString(b, off); err != nil {
		return nil, 0, err
	}
	if r.Eid, off, err = decodeNullableString(b, off); err != nil {
		return nil, 0, err
	}
	if r.K, off, err = decodeNullableInt(b, off); err != nil {
		return nil, 0, err
	}
	if err := r.Validate(); err != nil {
		return nil, 0, err
	}
	return &r, off, nil
}

// Encode serializes a Response in the fixed field order: ok, err,
// vertices, edges.
func (r *Response) Encode() []byte {
	out := wirecodec.EncodeBool(r.Ok)
	out = append(out, encodeNullableString(r.Err)...)
	out = append(out, wirecodec.EncodeArray(r.Vertices, encodeVertex)...)
	out = append(out, wirecodec.EncodeArray(r.Edges, encodeHyperedge)...)
	return out
}

// DecodeResponse decodes a Response record.
func DecodeResponse(b []byte, off int) (*Response, int, error) {
	var r Response
	var err error
	if r.Ok, off, err = wirecodec.DecodeBool(b, off); err != nil {
		return nil, 0, err
	}
	if r.Err, off, err = decodeNullableString(b, off); err != nil {
		return nil, 0, err
	}
	if r.Vertices, off, err = wirecodec.DecodeArray(b, off, decodeVertex); err != nil {
		return nil, 0, err
	}
	if r.Edges, off, err = wirecodec.DecodeArray(b, off, decodeHyperedge); err != nil {
		return nil, 0, err
	}
	return &r, off, nil
}
