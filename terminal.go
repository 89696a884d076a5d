package gofunge

import (
	"fmt"
	"os"
	"strings"

	"github.com/phroun/purfecterm"
	"golang.org/x/term"
)

// Key is one decoded keyboard event from a raw-mode terminal. Printable
// keys carry a rune; everything else carries a name like "up" or
// "enter".
type Key struct {
	Rune rune
	Name string
}

// TerminalSession owns the controlling terminal for the debugger view:
// raw mode on stdin, the alternate screen on stdout, and a key-decoding
// goroutine. Close restores everything, so callers should arrange for
// it to run on signals too.
type TerminalSession struct {
	in       *os.File
	out      *os.File
	oldState *term.State
	width    int
	height   int
	keys     chan Key
	stop     chan struct{}
}

// NewTerminalSession switches the terminal into raw mode and the
// alternate screen. Fails when stdin or stdout is not a terminal.
func NewTerminalSession() (*TerminalSession, error) {
	in, out := os.Stdin, os.Stdout
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return nil, fmt.Errorf("debugger view needs a terminal")
	}
	w, h, err := term.GetSize(int(out.Fd()))
	if err != nil {
		return nil, fmt.Errorf("terminal size: %w", err)
	}
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	fmt.Fprint(out, "\x1b[?1049h\x1b[?25l")
	s := &TerminalSession{
		in:       in,
		out:      out,
		oldState: oldState,
		width:    w,
		height:   h,
		keys:     make(chan Key, 32),
		stop:     make(chan struct{}),
	}
	go s.readKeys()
	return s, nil
}

// Size returns the terminal dimensions measured at startup.
func (s *TerminalSession) Size() (w, h int) {
	return s.width, s.height
}

// Keys returns the decoded key event stream.
func (s *TerminalSession) Keys() <-chan Key {
	return s.keys
}

// Close leaves the alternate screen and restores cooked mode.
func (s *TerminalSession) Close() {
	select {
	case <-s.stop:
		return
	default:
		close(s.stop)
	}
	fmt.Fprint(s.out, "\x1b[?25h\x1b[?1049l")
	term.Restore(int(s.in.Fd()), s.oldState)
}

// readKeys decodes raw bytes into Key events until the session closes.
func (s *TerminalSession) readKeys() {
	buf := make([]byte, 64)
	for {
		n, err := s.in.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			key, used := decodeKey(buf[i:n])
			i += used - 1
			select {
			case s.keys <- key:
			case <-s.stop:
				return
			}
		}
	}
}

// decodeKey turns a leading byte sequence into one Key, reporting how
// many bytes it consumed. Unrecognized escape sequences decode as "esc".
func decodeKey(b []byte) (Key, int) {
	switch {
	case b[0] == 0x1b:
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return Key{Name: "up"}, 3
			case 'B':
				return Key{Name: "down"}, 3
			case 'C':
				return Key{Name: "right"}, 3
			case 'D':
				return Key{Name: "left"}, 3
			}
		}
		return Key{Name: "esc"}, 1
	case b[0] == '\r' || b[0] == '\n':
		return Key{Name: "enter"}, 1
	case b[0] == 0x7f || b[0] == 0x08:
		return Key{Name: "backspace"}, 1
	case b[0] == 0x03:
		return Key{Name: "interrupt"}, 1
	case b[0] >= 0x20 && b[0] < 0x7f:
		return Key{Rune: rune(b[0])}, 1
	default:
		return Key{Name: fmt.Sprintf("ctrl-%c", b[0]+'a'-1)}, 1
	}
}

// Flush paints a frame buffer to the terminal with 24-bit color,
// repainting the full screen from the home position.
func (s *TerminalSession) Flush(buf *purfecterm.Buffer) {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	cols, rows := buf.GetSize()
	last := ""
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteString("\r\n")
		}
		for x := 0; x < cols; x++ {
			cell := buf.GetCell(x, y)
			attr := cellAttr(cell)
			if attr != last {
				sb.WriteString(attr)
				last = attr
			}
			sb.WriteRune(cell.Char)
		}
		sb.WriteString("\x1b[0m")
		last = ""
	}
	fmt.Fprint(s.out, sb.String())
}

func cellAttr(c purfecterm.Cell) string {
	var sb strings.Builder
	sb.WriteString("\x1b[0")
	if c.Bold {
		sb.WriteString(";1")
	}
	if c.Underline {
		sb.WriteString(";4")
	}
	if c.Reverse {
		sb.WriteString(";7")
	}
	if c.Foreground.IsDefault() {
		sb.WriteString(";39")
	} else {
		fmt.Fprintf(&sb, ";38;2;%d;%d;%d", c.Foreground.R, c.Foreground.G, c.Foreground.B)
	}
	if c.Background.IsDefault() {
		sb.WriteString(";49")
	} else {
		fmt.Fprintf(&sb, ";48;2;%d;%d;%d", c.Background.R, c.Background.G, c.Background.B)
	}
	sb.WriteString("m")
	return sb.String()
}
