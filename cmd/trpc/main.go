/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command trpc is the external driver the core library is built to serve:
// it loads a JSON description of a hypergraph request or response, packs
// it into an authenticated frame, and can replay a fixture file of frames
// against a set of nonces to confirm they all still verify.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/SocioProphet/tritrpc/aeadbind"
	"github.com/SocioProphet/tritrpc/envelope"
	"github.com/SocioProphet/tritrpc/fixture"
	"github.com/SocioProphet/tritrpc/hypergraph"
	"github.com/SocioProphet/tritrpc/rpcerr"
	"github.com/SocioProphet/tritrpc/rpclog"
	"github.com/SocioProphet/tritrpc/version"
	"github.com/SocioProphet/tritrpc/wirecodec"
)

func usage() {
	fmt.Fprintln(os.Stderr, "trpc pack --service S --method M --json path.json --nonce HEX --key HEX")
	fmt.Fprintln(os.Stderr, "trpc verify --fixtures PATH --nonces PATH")
}

func main() {
	log := rpclog.New(os.Stderr)
	log.SetLevel(rpclog.WARN)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "pack":
		runPack(os.Args[2:], log)
	case "verify":
		runVerify(os.Args[2:], log)
	case "version", "-v", "--version":
		version.PrintVersion(os.Stdout)
	default:
		usage()
		os.Exit(4)
	}
}

func runPack(args []string, log *rpclog.Logger) {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	service := fs.String("service", "", "service name")
	method := fs.String("method", "", "method name")
	jsonPath := fs.String("json", "", "path to a JSON payload description")
	nonceHex := fs.String("nonce", "", "24-byte nonce, hex-encoded")
	keyHex := fs.String("key", "", "32-byte key, hex-encoded")
	fs.Parse(args)

	if *service == "" || *method == "" || *jsonPath == "" || *nonceHex == "" || *keyHex == "" {
		usage()
		os.Exit(2)
	}

	payload, err := buildPayload(*method, *jsonPath)
	if err != nil {
		log.Errorf("building payload: %v", err)
		os.Exit(2)
	}

	key, err := decodeFixedHex(*keyHex, aeadbind.KeySize)
	if err != nil {
		log.Errorf("decoding key: %v", err)
		os.Exit(2)
	}
	nonce, err := decodeFixedHex(*nonceHex, aeadbind.NonceSize)
	if err != nil {
		log.Errorf("decoding nonce: %v", err)
		os.Exit(2)
	}

	frame, err := aeadbind.Seal(*service, *method, payload, nil, key, nonce, false)
	if err != nil {
		log.Errorf("sealing frame: %v", err)
		os.Exit(2)
	}
	fmt.Println(hex.EncodeToString(frame))
}

func runVerify(args []string, log *rpclog.Logger) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fixturesPath := fs.String("fixtures", "", "path to a vector fixture file")
	noncesPath := fs.String("nonces", "", "path to a nonce fixture file")
	fs.Parse(args)

	if *fixturesPath == "" || *noncesPath == "" {
		usage()
		os.Exit(3)
	}

	vf, err := os.Open(*fixturesPath)
	if err != nil {
		log.Errorf("opening fixtures: %v", err)
		os.Exit(3)
	}
	defer vf.Close()
	vectors, err := fixture.ParseVectors(vf, nil)
	if err != nil {
		log.Errorf("parsing fixtures: %v", err)
		os.Exit(3)
	}

	nf, err := os.Open(*noncesPath)
	if err != nil {
		log.Errorf("opening nonces: %v", err)
		os.Exit(3)
	}
	defer nf.Close()
	nonces, err := fixture.ParseNonces(nf, nil)
	if err != nil {
		log.Errorf("parsing nonces: %v", err)
		os.Exit(3)
	}

	// the published test key; production callers supply their own.
	key := make([]byte, aeadbind.KeySize)

	verified := 0
	for _, v := range vectors {
		nonce, ok := nonces[v.Name]
		if !ok {
			log.Errorf("no nonce fixture for %q", v.Name)
			os.Exit(3)
		}
		env, err := aeadbind.Verify(v.Bytes, key, nonce)
		if err != nil {
			log.Errorf("%s: %v", v.Name, err)
			os.Exit(3)
		}
		rebuilt := envelope.Build(env.Service, env.Method, env.Payload, env.Aux, env.AeadOn, env.Compress)
		if env.Tag != nil {
			if rebuilt, err = envelope.AppendTag(rebuilt, env.Tag); err != nil {
				log.Errorf("%s: %v", v.Name, err)
				os.Exit(3)
			}
		}
		if !bytes.Equal(rebuilt, v.Bytes) {
			log.Errorf("%s: re-encoded frame differs from the fixture bytes", v.Name)
			os.Exit(3)
		}
		verified++
	}
	fmt.Printf("Verified %d frames in %s\n", verified, *fixturesPath)
}

func decodeFixedHex(s string, want int) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(b) != want {
		return nil, fmt.Errorf("expected %d bytes, got %d", want, len(b))
	}
	return b, nil
}

// buildPayload reads the JSON file at path and encodes it as either an
// HGRequest or HGResponse payload, selected by method's suffix.
func buildPayload(method, path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v map[string]interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	switch {
	case hasSuffixAny(method, ".REQ", ".Req", ".Request"):
		req, err := jsonToRequest(v)
		if err != nil {
			return nil, err
		}
		return req.Encode()
	case hasSuffixAny(method, ".RSP", ".Resp", ".Response"):
		resp, err := jsonToResponse(v)
		if err != nil {
			return nil, err
		}
		return resp.Encode(), nil
	default:
		req, err := jsonToRequest(v)
		if err != nil {
			return nil, err
		}
		return req.Encode()
	}
}

func hasSuffixAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func jsonToRequest(v map[string]interface{}) (*hypergraph.Request, error) {
	opStr, _ := v["op"].(string)
	switch opStr {
	case "AddVertex":
		vertex, _ := v["vertex"].(map[string]interface{})
		vid, _ := vertex["vid"].(string)
		vx := &hypergraph.Vertex{Vid: vid, Attrs: jsonToAttrs(vertex["attrs"])}
		if label, ok := vertex["label"].(string); ok && label != "" {
			vx.Label = &label
		}
		return &hypergraph.Request{Op: hypergraph.AddVertex, Vertex: vx}, nil
	case "AddHyperedge":
		edge, _ := v["edge"].(map[string]interface{})
		eid, _ := edge["eid"].(string)
		hx := &hypergraph.Hyperedge{Eid: eid, Members: jsonToStrings(edge["members"]), Attrs: jsonToAttrs(edge["attrs"])}
		if w, ok := edge["weight"].(float64); ok {
			wv := int64(w)
			hx.Weight = &wv
		}
		return &hypergraph.Request{Op: hypergraph.AddHyperedge, Hyperedge: hx}, nil
	case "RemoveVertex":
		vid, _ := v["vid"].(string)
		return &hypergraph.Request{Op: hypergraph.RemoveVertex, Vid: &vid}, nil
	case "RemoveHyperedge":
		eid, _ := v["eid"].(string)
		return &hypergraph.Request{Op: hypergraph.RemoveHyperedge, Eid: &eid}, nil
	case "QueryNeighbors":
		vid, _ := v["vid"].(string)
		k := int32(jsonFloat(v["k"]))
		return &hypergraph.Request{Op: hypergraph.QueryNeighbors, Vid: &vid, K: &k}, nil
	case "GetSubgraph":
		vid, _ := v["vid"].(string)
		k := int32(jsonFloat(v["k"]))
		return &hypergraph.Request{Op: hypergraph.GetSubgraph, Vid: &vid, K: &k}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported op %q", rpcerr.ErrUnsupportedOp, opStr)
	}
}

func jsonToResponse(v map[string]interface{}) (*hypergraph.Response, error) {
	resp := &hypergraph.Response{}
	if ok, present := v["ok"].(bool); present {
		resp.Ok = ok
	} else {
		resp.Ok = true
	}
	if errStr, ok := v["err"].(string); ok && errStr != "" {
		resp.Err = &errStr
	}
	for _, rawV := range jsonToSlice(v["vertices"]) {
		m, ok := rawV.(map[string]interface{})
		if !ok {
			continue
		}
		vid, _ := m["vid"].(string)
		vx := hypergraph.Vertex{Vid: vid, Attrs: jsonToAttrs(m["attrs"])}
		if label, ok := m["label"].(string); ok && label != "" {
			vx.Label = &label
		}
		resp.Vertices = append(resp.Vertices, vx)
	}
	for _, rawE := range jsonToSlice(v["edges"]) {
		m, ok := rawE.(map[string]interface{})
		if !ok {
			continue
		}
		eid, _ := m["eid"].(string)
		hx := hypergraph.Hyperedge{Eid: eid, Members: jsonToStrings(m["members"]), Attrs: jsonToAttrs(m["attrs"])}
		if w, ok := m["weight"].(float64); ok {
			wv := int64(w)
			hx.Weight = &wv
		}
		resp.Edges = append(resp.Edges, hx)
	}
	return resp, nil
}

func jsonFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func jsonToSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// jsonToAttrs converts a JSON object into a deterministically ordered
// string map: Go map iteration order is random, and the wire map block
// must be reproducible from the same logical input.
func jsonToAttrs(v interface{}) []wirecodec.StringPair {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]wirecodec.StringPair, 0, len(keys))
	for _, k := range keys {
		s, _ := m[k].(string)
		out = append(out, wirecodec.StringPair{Key: k, Value: s})
	}
	return out
}

func jsonToStrings(v interface{}) []string {
	raw := jsonToSlice(v)
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
