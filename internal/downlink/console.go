package downlink

import (
	"strings"
	"sync"
)

// DefaultConsoleCapacity bounds the console mailbox.
const DefaultConsoleCapacity = 64

// Severity is the wire severity of a console line.
type Severity uint8

const (
	SeverityNormal   Severity = 0
	SeverityCritical Severity = 255
)

// criticalMarker is the text prefix that marks a line critical in PushText.
const criticalMarker = "Critical"

// ConsoleMessage is one line for the ground station console.
type ConsoleMessage struct {
	Severity Severity
	Text     string
}

// SeverityOf derives the severity of text from its prefix:
// lines starting with "Critical" (case-sensitive) are critical.
func SeverityOf(text string) Severity {
	if strings.HasPrefix(text, criticalMarker) {
		return SeverityCritical
	}
	return SeverityNormal
}

// ConsolePipe is a bounded FIFO of console lines. Any goroutine may push;
// the Sender pops at most one per iteration. When full, the oldest line is
// dropped to make room.
type ConsolePipe struct {
	mu      sync.Mutex
	buf     []ConsoleMessage
	head    int
	n       int
	dropped uint64
}

// NewConsolePipe returns a pipe holding up to capacity lines.
func NewConsolePipe(capacity int) *ConsolePipe {
	if capacity <= 0 {
		capacity = DefaultConsoleCapacity
	}
	return &ConsolePipe{buf: make([]ConsoleMessage, capacity)}
}

// Push appends m, dropping the oldest line if the pipe is full.
func (p *ConsolePipe) Push(m ConsoleMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.n == len(p.buf) {
		p.head = (p.head + 1) % len(p.buf)
		p.n--
		p.dropped++
	}
	p.buf[(p.head+p.n)%len(p.buf)] = m
	p.n++
}

// PushText appends text with the severity its prefix implies.
func (p *ConsolePipe) PushText(text string) {
	p.Push(ConsoleMessage{Severity: SeverityOf(text), Text: text})
}

// Pop removes and returns the oldest line.
func (p *ConsolePipe) Pop() (ConsoleMessage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.n == 0 {
		return ConsoleMessage{}, false
	}
	m := p.buf[p.head]
	p.buf[p.head] = ConsoleMessage{}
	p.head = (p.head + 1) % len(p.buf)
	p.n--
	return m, true
}

// Len returns the number of queued lines.
func (p *ConsolePipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// Dropped returns how many lines were discarded because the pipe was full.
func (p *ConsolePipe) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
