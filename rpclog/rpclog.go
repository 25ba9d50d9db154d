/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package rpclog is the structured logger used by the trpc CLI driver. The
// wire codec and envelope packages never log; they are pure functions over
// byte slices, so all logging in this module lives here and is only ever
// reached from cmd/trpc.
package rpclog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

type Level int

const (
	OFF Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "OFF"
	}
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.Debug
	case INFO:
		return rfc5424.Info
	case WARN:
		return rfc5424.Warning
	case ERROR:
		return rfc5424.Error
	default:
		return rfc5424.Info
	}
}

const defaultID = "trpc@1"

var ErrNotOpen = errors.New("rpclog: logger is not open")

// Logger writes RFC5424-formatted lines to a single writer, gated by a
// minimum level.
type Logger struct {
	mtx      sync.Mutex
	wtr      io.Writer
	lvl      Level
	appname  string
	hostname string
	open     bool
}

// New creates a Logger at level INFO writing to wtr.
func New(wtr io.Writer) *Logger {
	host, _ := os.Hostname()
	appname := "trpc"
	if len(os.Args) > 0 {
		appname = os.Args[0]
	}
	return &Logger{wtr: wtr, lvl: INFO, appname: trimLength(48, appname), hostname: trimLength(255, host), open: true}
}

// SetLevel changes the minimum level that is emitted.
func (l *Logger) SetLevel(lvl Level) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.lvl = lvl
}

func (l *Logger) output(lvl Level, msg string, sds ...rfc5424.SDParam) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if !l.open {
		return ErrNotOpen
	}
	if l.lvl == OFF || lvl < l.lvl {
		return nil
	}
	m := rfc5424.Message{
		Priority:  lvl.priority(),
		Timestamp: time.Now(),
		Hostname:  l.hostname,
		AppName:   l.appname,
		MessageID: "trpc",
		Message:   []byte(msg),
	}
	if len(sds) > 0 {
		m.StructuredData = []rfc5424.StructuredData{{ID: defaultID, Parameters: sds}}
	}
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	line := strings.TrimRight(string(b), "\n\t\r")
	if _, err := io.WriteString(l.wtr, line+"\n"); err != nil {
		return err
	}
	return nil
}

func (l *Logger) Debugf(f string, args ...interface{}) error { return l.output(DEBUG, fmt.Sprintf(f, args...)) }
func (l *Logger) Infof(f string, args ...interface{}) error  { return l.output(INFO, fmt.Sprintf(f, args...)) }
func (l *Logger) Warnf(f string, args ...interface{}) error  { return l.output(WARN, fmt.Sprintf(f, args...)) }
func (l *Logger) Errorf(f string, args ...interface{}) error { return l.output(ERROR, fmt.Sprintf(f, args...)) }

func trimLength(n int, s string) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
