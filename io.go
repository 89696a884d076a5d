package gofunge

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// IOPort is where '.', ',', '&' and '~' read and write. Reads may fail
// with ErrInputPending, which suspends the pointer until the next tick
// rather than reflecting it, or with io.EOF, which reflects or ignores
// per the dialect.
type IOPort interface {
	WriteNumber(c Cell) error
	WriteChar(c Cell) error
	ReadNumber() (Cell, error)
	ReadChar() (Cell, error)
}

// ConsolePort is the IOPort over real streams: numbers and characters
// go to out, reads come buffered from in. Reads block, so a console-run
// program never enters AwaitingInput.
type ConsolePort struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePort creates a port reading from in and writing to out.
func NewConsolePort(in io.Reader, out io.Writer) *ConsolePort {
	return &ConsolePort{in: bufio.NewReader(in), out: out}
}

// WriteNumber prints the decimal value followed by a space.
func (p *ConsolePort) WriteNumber(c Cell) error {
	_, err := fmt.Fprintf(p.out, "%d ", int64(c))
	return err
}

// WriteChar prints the cell as a character.
func (p *ConsolePort) WriteChar(c Cell) error {
	_, err := fmt.Fprintf(p.out, "%c", rune(c))
	return err
}

// ReadChar reads a single byte.
func (p *ConsolePort) ReadChar() (Cell, error) {
	b, err := p.in.ReadByte()
	if err != nil {
		return 0, err
	}
	return Cell(b), nil
}

// ReadNumber skips leading non-numeric bytes, then reads an optionally
// signed run of digits. The byte that ends the run is consumed.
func (p *ConsolePort) ReadNumber() (Cell, error) {
	var b byte
	var err error
	neg := false
	for {
		b, err = p.in.ReadByte()
		if err != nil {
			return 0, err
		}
		if b >= '0' && b <= '9' {
			break
		}
		if b == '-' {
			next, err := p.in.Peek(1)
			if err == nil && next[0] >= '0' && next[0] <= '9' {
				neg = true
				continue
			}
		}
		neg = false
	}
	var n Cell
	for b >= '0' && b <= '9' {
		n = n*10 + Cell(b-'0')
		b, err = p.in.ReadByte()
		if err != nil {
			break
		}
	}
	if neg {
		n = -n
	}
	return n, nil
}

// StorePort is an in-memory IOPort: reads advance a cursor over a queue
// of pre-supplied cells and output accumulates in a buffer. When the
// cursor reaches the end a read fails with ErrInputPending, which is
// how debugger sessions park a pointer on '&' or '~' until the user
// supplies input. Consumed input and written output are kept so a
// debugger can Rewind the port when stepping in reverse. Safe for use
// from a frontend goroutine feeding input while the interpreter ticks.
type StorePort struct {
	mu     sync.Mutex
	input  []Cell
	pos    int
	output []byte
}

// NewStorePort creates an empty store.
func NewStorePort() *StorePort {
	return &StorePort{}
}

// Supply queues cells for future reads, oldest first.
func (p *StorePort) Supply(cells ...Cell) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = append(p.input, cells...)
}

// SupplyString queues the bytes of s.
func (p *StorePort) SupplyString(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range []byte(s) {
		p.input = append(p.input, Cell(b))
	}
}

// Pending returns the number of unread input cells.
func (p *StorePort) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.input) - p.pos
}

// Output returns everything written so far.
func (p *StorePort) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.output)
}

// Marks returns the read cursor and output length, a rewind point for
// the debugger's reverse stepping.
func (p *StorePort) Marks() (input, output int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, len(p.output)
}

// Rewind restores a mark pair from Marks: output written since is
// discarded and input consumed since becomes readable again.
func (p *StorePort) Rewind(input, output int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if input >= 0 && input <= len(p.input) {
		p.pos = input
	}
	if output >= 0 && output <= len(p.output) {
		p.output = p.output[:output]
	}
}

// WriteNumber appends the decimal value and a space.
func (p *StorePort) WriteNumber(c Cell) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = fmt.Appendf(p.output, "%d ", int64(c))
	return nil
}

// WriteChar appends the cell as a character.
func (p *StorePort) WriteChar(c Cell) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = fmt.Appendf(p.output, "%c", rune(c))
	return nil
}

// ReadChar consumes one cell, or reports ErrInputPending.
func (p *StorePort) ReadChar() (Cell, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos == len(p.input) {
		return 0, ErrInputPending
	}
	c := p.input[p.pos]
	p.pos++
	return c, nil
}

// ReadNumber consumes cells as the digits of a decimal number, skipping
// a non-numeric prefix. A queue holding no digits at all reports
// ErrInputPending without consuming anything, so a partial line can be
// completed by a later Supply.
func (p *StorePort) ReadNumber() (Cell, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.pos
	neg := false
	for i < len(p.input) {
		c := p.input[i]
		if c >= '0' && c <= '9' {
			break
		}
		neg = c == '-' && i+1 < len(p.input) &&
			p.input[i+1] >= '0' && p.input[i+1] <= '9'
		i++
	}
	if i == len(p.input) {
		return 0, ErrInputPending
	}
	var n Cell
	for i < len(p.input) && p.input[i] >= '0' && p.input[i] <= '9' {
		n = n*10 + (p.input[i] - '0')
		i++
	}
	if i < len(p.input) {
		i++ // terminator
	}
	p.pos = i
	if neg {
		n = -n
	}
	return n, nil
}
