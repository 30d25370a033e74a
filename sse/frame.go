package sse

import (
	"bytes"
	"fmt"
	"io"
)

// writeEvent writes one frame. Multi-line data is split over several data
// lines so the client reassembles it with newlines.
func writeEvent(w io.Writer, event string, data []byte) error {
	var buf bytes.Buffer
	if event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event)
	}
	for line := range bytes.Lines(data) {
		buf.WriteString("data: ")
		buf.Write(bytes.TrimRight(line, "\r\n"))
		buf.WriteByte('\n')
	}
	if len(data) == 0 {
		buf.WriteString("data: \n")
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// writeComment writes a comment line, which clients ignore.
func writeComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
