package api

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sink is the only channel through which the engine talks back to its host.
// Implementations must accept a line of text and must not block indefinitely.
type Sink interface {
	Emit(line string)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(line string)

// Emit passes the line to the underlying func.
func (f SinkFunc) Emit(line string) {
	f(line)
}

// Void is a sink that drops every line.
var Void Sink = SinkFunc(func(line string) {})

// OrVoid returns the given sink, or the Void sink if none was provided.
func OrVoid(sink Sink) Sink {
	if sink == nil {
		return Void
	}
	return sink
}

// Emitf formats and emits a line on the sink.
func Emitf(sink Sink, format string, args ...interface{}) {
	OrVoid(sink).Emit(fmt.Sprintf(format, args...))
}

// LogSink routes sink lines to the structured logger.
func LogSink(component string) Sink {
	return SinkFunc(func(line string) {
		log.Debug().Str("component", component).Msg(line)
	})
}

// WriterSink writes every line followed by a new line to the given writer.
// Write errors are dropped, the sink can not stall the engine.
func WriterSink(w io.Writer) Sink {
	mutex := new(sync.Mutex)
	return SinkFunc(func(line string) {
		mutex.Lock()
		defer mutex.Unlock()
		_, _ = io.WriteString(w, line+"\n")
	})
}

// Tee emits each line on all the given sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(line string) {
		for _, s := range sinks {
			OrVoid(s).Emit(line)
		}
	})
}

// Buffer is an in-memory sink keeping all emitted lines.
type Buffer struct {
	mutex *sync.RWMutex
	lines []string
}

// NewBuffer creates a new in-memory sink.
func NewBuffer() *Buffer {
	return &Buffer{
		mutex: new(sync.RWMutex),
		lines: make([]string, 0),
	}
}

// Emit appends the line to the buffer.
func (b *Buffer) Emit(line string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.lines = append(b.lines, line)
}

// Lines returns a copy of the emitted lines.
func (b *Buffer) Lines() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return lines
}

// Contains checks if any of the emitted lines contains the given text.
func (b *Buffer) Contains(txt string) bool {
	for _, line := range b.Lines() {
		if strings.Contains(line, txt) {
			return true
		}
	}
	return false
}

// String joins all lines.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}
