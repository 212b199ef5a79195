package writer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tsawler/pdfraster/core"
)

// output buffers everything written to the destination and tracks the
// absolute position needed for xref offsets. The first error sticks.
type output struct {
	w   *bufio.Writer
	pos int64
	err error
}

func newOutput(w io.Writer) *output {
	return &output{w: bufio.NewWriter(w)}
}

func (o *output) Write(p []byte) (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	n, err := o.w.Write(p)
	o.pos += int64(n)
	o.err = err
	return n, err
}

func (o *output) WriteString(s string) (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	n, err := o.w.WriteString(s)
	o.pos += int64(n)
	o.err = err
	return n, err
}

// writeIndirect writes "N 0 obj", the value and "endobj", recording the
// object's offset in xref first.
func (o *output) writeIndirect(xref *core.XRefWriter, ref core.IndirectRef, value core.Object) error {
	if err := xref.SetObjectOffset(ref, o.pos); err != nil {
		return err
	}
	fmt.Fprintf(o, "%d %d obj\n", ref.Number, ref.Generation)
	if _, err := core.WriteObject(o, value); err != nil {
		return err
	}
	o.WriteString("\nendobj\n")
	return o.err
}

func (o *output) flush() error {
	if o.err != nil {
		return o.err
	}
	o.err = o.w.Flush()
	return o.err
}
