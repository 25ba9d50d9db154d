/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package fixture reads the vector and nonce fixture files the verify
// subcommand consumes: whitespace-separated NAME/HEX lines, one per
// fixture, with '#'-prefixed and blank lines ignored.
package fixture

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
)

// Vector is one named hex-encoded fixture line.
type Vector struct {
	Name  string
	Bytes []byte
}

// Ignorer skips fixture names matching any of a set of glob patterns, for
// excluding known-bad or work-in-progress vectors from a run without
// editing the fixture file itself.
type Ignorer struct {
	globs []glob.Glob
}

// NewIgnorer compiles patterns into an Ignorer.
func NewIgnorer(patterns []string) (*Ignorer, error) {
	ig := &Ignorer{}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("fixture: bad ignore pattern %q: %w", p, err)
		}
		ig.globs = append(ig.globs, g)
	}
	return ig, nil
}

// Ignore reports whether name matches any compiled pattern.
func (ig *Ignorer) Ignore(name string) bool {
	if ig == nil {
		return false
	}
	for _, g := range ig.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func parseLines(r io.Reader, ig *Ignorer, wantLen int) ([]Vector, error) {
	var out []Vector
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("fixture: line %d: expected NAME HEX, got %q", lineNo, line)
		}
		name, hexStr := fields[0], fields[1]
		if ig.Ignore(name) {
			continue
		}
		b, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, fmt.Errorf("fixture: line %d: %w", lineNo, err)
		}
		if wantLen > 0 && len(b) != wantLen {
			return nil, fmt.Errorf("fixture: line %d: %q is %d bytes, want %d", lineNo, name, len(b), wantLen)
		}
		out = append(out, Vector{Name: name, Bytes: b})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseVectors reads frame vectors: arbitrary-length hex per line.
func ParseVectors(r io.Reader, ig *Ignorer) ([]Vector, error) {
	return parseLines(r, ig, 0)
}

// ParseNonces reads nonce fixtures: each value must be exactly 24 bytes.
func ParseNonces(r io.Reader, ig *Ignorer) (map[string][]byte, error) {
	vecs, err := parseLines(r, ig, 24)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(vecs))
	for _, v := range vecs {
		out[v.Name] = v.Bytes
	}
	return out, nil
}
