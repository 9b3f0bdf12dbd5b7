package server

import (
	"bufio"
	"io"
)

// messageReader frames newline-delimited messages off a connection, the Go
// counterpart of the source's utils.SocketProcessor: buffer partial reads,
// hand back only complete lines, and report a clean disconnection the same
// way the source does — as "no messages", not an error.
type messageReader struct {
	scanner *bufio.Scanner
}

func newMessageReader(r io.Reader) *messageReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return &messageReader{scanner: scanner}
}

// ReadMessage returns the next newline-delimited message. ok is false once
// the underlying reader is exhausted or errors — the disconnection signal
// the source's read_messages returning None maps to.
func (m *messageReader) ReadMessage() (data []byte, ok bool) {
	if !m.scanner.Scan() {
		return nil, false
	}
	line := m.scanner.Bytes()
	out := make([]byte, len(line))
	copy(out, line)
	return out, true
}
