package api

import (
	"fmt"
	"strings"
)

// Message accumulates fragments of a single trace line before it is emitted.
type Message struct {
	parts []string
}

// NewMessage creates a new message starting with the given text.
func NewMessage(txt string) *Message {
	return &Message{
		parts: []string{txt},
	}
}

// Add appends a fragment to the message.
func (m *Message) Add(txt string) *Message {
	m.parts = append(m.parts, txt)
	return m
}

// Addf appends a formatted fragment to the message.
func (m *Message) Addf(format string, args ...interface{}) *Message {
	return m.Add(fmt.Sprintf(format, args...))
}

// Text returns the full line.
func (m *Message) Text() string {
	return strings.Join(m.parts, " ")
}

// Send emits the message on the given sink.
func (m *Message) Send(sink Sink) {
	OrVoid(sink).Emit(m.Text())
}
