package webui

import (
	"bytes"
	"strings"
	"sync"
)

// maxLogLines bounds the buffer so memory never grows with uptime.
const maxLogLines = 4000

// LogBuffer is a bounded ring of log lines with a monotonically
// increasing cursor, so clients can poll incrementally with
// "give me everything since N". It implements io.Writer and can be
// handed to the logger as a secondary sink.
type LogBuffer struct {
	mu      sync.Mutex
	lines   []string
	next    int // cursor of the line after the last stored one
	partial bytes.Buffer
}

func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

// Append adds one line.
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(line)
}

func (b *LogBuffer) appendLocked(line string) {
	b.lines = append(b.lines, strings.TrimRight(line, "\n"))
	b.next++
	if len(b.lines) > maxLogLines {
		excess := len(b.lines) - maxLogLines
		b.lines = b.lines[excess:]
	}
}

// Write splits incoming bytes on newlines; a trailing fragment is kept
// until its newline arrives.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial.Write(p)
	for {
		data := b.partial.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		b.appendLocked(string(data[:idx]))
		b.partial.Next(idx + 1)
	}
	return len(p), nil
}

// Since returns the lines at or after cursor and the next cursor to
// poll with. A cursor older than the retained window returns what is
// still held; the global numbering keeps counting.
func (b *LogBuffer) Since(cursor int) ([]string, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	first := b.next - len(b.lines)
	if cursor < first {
		cursor = first
	}
	if cursor >= b.next {
		return nil, b.next
	}

	out := make([]string, b.next-cursor)
	copy(out, b.lines[cursor-first:])
	return out, b.next
}
