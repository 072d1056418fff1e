package logio

import (
	"bytes"
	"sync"
)

// Writer is an io.Writer that logs each line written to it through Logf,
// without its line feed. Writes are safe from multiple goroutines.
type Writer struct {
	Logf func(mess string, args ...interface{})

	mu      sync.Mutex
	partial []byte
}

// Write logs every line that p completes, holding any trailing partial line
// until a later Write or Flush.
func (lw *Writer) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	rest := p
	for {
		line, after, found := bytes.Cut(rest, []byte{'\n'})
		if !found {
			break
		}
		if len(lw.partial) > 0 {
			line = append(lw.partial, line...)
			lw.partial = lw.partial[:0]
		}
		lw.Logf("%s", line)
		rest = after
	}
	lw.partial = append(lw.partial, rest...)
	return len(p), nil
}

// Flush logs any partial line.
func (lw *Writer) Flush() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if len(lw.partial) > 0 {
		lw.Logf("%s", lw.partial)
		lw.partial = lw.partial[:0]
	}
	return nil
}

// Close calls Flush.
func (lw *Writer) Close() error { return lw.Flush() }
