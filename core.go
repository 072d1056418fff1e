package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/scopevm/internal/flushio"
)

// LineReader supplies input lines to the read instruction; io.EOF marks the
// end of input.
type LineReader interface {
	ReadLine() (string, error)
}

type ioCore struct {
	logging
	in      LineReader
	out     flushio.WriteFlusher
	closers []io.Closer
}

func (core *ioCore) Close() (err error) {
	for i := len(core.closers) - 1; i >= 0; i-- {
		if cerr := core.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	core.closers = nil
	return err
}

func (core *ioCore) flush() error {
	if err := core.out.Flush(); err != nil {
		return ioError{err}
	}
	return nil
}

func (core *ioCore) writeLine(s string) error {
	if _, err := io.WriteString(core.out, s); err != nil {
		return ioError{err}
	}
	if _, err := io.WriteString(core.out, "\n"); err != nil {
		return ioError{err}
	}
	return nil
}

// readLine flushes any pending output, so that prompts are seen, then reads
// one line. End of input reads as an empty line.
func (core *ioCore) readLine() (string, error) {
	if err := core.flush(); err != nil {
		return "", err
	}
	line, err := core.in.ReadLine()
	if err == io.EOF {
		return "", nil
	} else if err != nil {
		return "", ioError{err}
	}
	return line, nil
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
