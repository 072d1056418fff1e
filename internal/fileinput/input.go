package fileinput

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Location names a line in an Input file.
type Location struct {
	Name string
	Line int
}

// Line combines a Location with the text read there, line terminator
// excluded.
type Line struct {
	Location
	Text string
}

func (loc Location) String() string {
	if loc.Name == "" {
		return fmt.Sprintf("line %v", loc.Line)
	}
	return fmt.Sprintf("%v:%v", loc.Name, loc.Line)
}

func (il Line) String() string { return fmt.Sprintf("%v %q", il.Location, il.Text) }

// Input implements sequential line reading through a Queue of one or more
// input streams. The last line read is tracked, with its location, to
// facilitate user feedback.
type Input struct {
	br    *bufio.Reader
	cl    io.Closer
	Queue []io.Reader
	Last  Line
	Scan  Location
}

// ReadLine reads the next line across all queued streams, returning io.EOF
// only after the last stream is exhausted. A final line that lacks a line
// feed is still returned without error.
func (in *Input) ReadLine() (string, error) {
	for {
		if in.br == nil && !in.nextIn() {
			return "", io.EOF
		}

		s, err := in.br.ReadString('\n')
		if s != "" {
			in.Scan.Line++
			in.Last.Location = in.Scan
			in.Last.Text = strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
			return in.Last.Text, nil
		}
		if err != io.EOF {
			return "", err
		}
		in.close()
	}
}

// Close closes any current stream, and discards the rest of the Queue.
func (in *Input) Close() error {
	err := in.close()
	in.Queue = nil
	return err
}

func (in *Input) close() (err error) {
	if in.cl != nil {
		err = in.cl.Close()
		in.cl = nil
	}
	in.br = nil
	return err
}

func (in *Input) nextIn() bool {
	in.close()
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		if br, ok := r.(*bufio.Reader); ok {
			in.br = br
		} else {
			in.br = bufio.NewReader(r)
		}
		in.cl, _ = r.(io.Closer)
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 0
	}
	return in.br != nil
}

// Named attaches a name to r, reported in the Location of its lines.
func Named(name string, r io.Reader) io.Reader { return namedReader{r, name} }

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func (nr namedReader) Close() error {
	if cl, ok := nr.Reader.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return ""
}
