/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package rpclog

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfofWritesLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	if err := l.Infof("hello %s", "world"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("output missing message: %q", buf.String())
	}
}

func TestSetLevelSuppressesLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLevel(ERROR)
	if err := l.Infof("should not appear"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}
	if err := l.Errorf("should appear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestLevelOffSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLevel(OFF)
	l.Errorf("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at OFF, got %q", buf.String())
	}
}
