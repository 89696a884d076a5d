package gofunge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phroun/purfecterm"
)

// Debugger view colors, indexes into the ANSI palette.
var (
	viewHeaderFg = purfecterm.ANSIColors[15]
	viewHeaderBg = purfecterm.ANSIColors[4]
	viewGridFg   = purfecterm.DefaultForeground
	viewBreakFg  = purfecterm.ANSIColors[9]
	viewDimFg    = purfecterm.ANSIColors[8]
	viewInfoFg   = purfecterm.ANSIColors[14]
	defaultBg    = purfecterm.DefaultBackground
)

// DebugView is the interactive terminal frontend over a Debugger: a
// program-space viewport with the pointers highlighted, stack and
// output panes, and single-key step/run/rewind control. Frames are
// composed into a purfecterm buffer and flushed to the real terminal.
type DebugView struct {
	dbg  *Debugger
	it   *Interpreter
	port *StorePort
	log  *Logger

	sess *TerminalSession
	buf  *purfecterm.Buffer

	// Tick delay while free-running.
	interval time.Duration

	cursor Vector
	origin Vector
	gridW  int
	gridH  int

	running   bool
	quitting  bool
	inputMode bool
	input     []rune
	status    string
}

// NewDebugView builds a view over dbg. The interpreter must use a
// StorePort so the view can feed typed input and show captured output;
// interval is the delay between ticks while free-running.
func NewDebugView(dbg *Debugger, port *StorePort, interval time.Duration) *DebugView {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &DebugView{
		dbg:      dbg,
		it:       dbg.Interpreter(),
		port:     port,
		log:      dbg.log,
		interval: interval,
	}
}

// Run takes over the terminal until the user quits or the context is
// canceled, and returns the program's exit code.
func (v *DebugView) Run(ctx context.Context) (int, error) {
	sess, err := NewTerminalSession()
	if err != nil {
		return 0, err
	}
	v.sess = sess
	defer sess.Close()

	w, h := sess.Size()
	v.buf = purfecterm.NewBuffer(w, h, 0)
	v.gridW = w
	v.gridH = h - 7
	if v.gridH < 3 {
		v.gridH = 3
	}
	v.status = "space=step  u=rewind  r=run  b=break  i=input  +/-=speed  q=quit"

	for !v.quitting {
		v.render()
		if v.running {
			select {
			case <-ctx.Done():
				return v.it.ExitCode(), ctx.Err()
			case k := <-sess.Keys():
				v.handleKey(k)
			case <-time.After(v.interval):
				v.runTick()
			}
		} else {
			select {
			case <-ctx.Done():
				return v.it.ExitCode(), ctx.Err()
			case k := <-sess.Keys():
				v.handleKey(k)
			}
		}
	}
	return v.it.ExitCode(), nil
}

// Shutdown restores the terminal if the view owns it. Safe to call from
// a signal handler while Run is live.
func (v *DebugView) Shutdown() {
	if v.sess != nil {
		v.sess.Close()
	}
}

// runTick advances one tick in free-run mode and decides whether to
// keep going.
func (v *DebugView) runTick() {
	v.dbg.Step()
	switch {
	case v.it.Halted():
		v.running = false
		v.status = fmt.Sprintf("halted with exit code %d", v.it.ExitCode())
	case v.dbg.AtBreakpoint():
		v.running = false
		v.status = "breakpoint"
	case v.it.Blocked():
		v.running = false
		v.status = "all pointers awaiting input (press i)"
	}
}

func (v *DebugView) handleKey(k Key) {
	if v.inputMode {
		v.handleInputKey(k)
		return
	}
	switch {
	case k.Rune == 'q' || k.Name == "interrupt":
		v.quitting = true
	case k.Rune == ' ' || k.Rune == 'n':
		v.running = false
		v.dbg.Step()
		if v.it.Halted() {
			v.status = fmt.Sprintf("halted with exit code %d", v.it.ExitCode())
		} else {
			v.status = ""
		}
	case k.Rune == 'u':
		if !v.dbg.StepBack() {
			v.status = "history exhausted"
		} else {
			v.status = ""
		}
	case k.Rune == 'r':
		v.running = !v.running
	case k.Rune == 'b':
		if v.dbg.coords[v.cursor] {
			v.dbg.ClearBreakpoint(v.cursor)
		} else {
			v.dbg.SetBreakpoint(v.cursor)
		}
	case k.Rune == 'i':
		v.inputMode = true
		v.input = v.input[:0]
	case k.Rune == '+' || k.Rune == '=':
		if v.interval > time.Millisecond {
			v.interval /= 2
		}
	case k.Rune == '-':
		v.interval *= 2
	case k.Name == "up":
		v.cursor.Y--
	case k.Name == "down":
		v.cursor.Y++
	case k.Name == "left":
		v.cursor.X--
	case k.Name == "right":
		v.cursor.X++
	}
}

func (v *DebugView) handleInputKey(k Key) {
	switch {
	case k.Name == "enter":
		v.port.SupplyString(string(v.input) + "\n")
		v.inputMode = false
		v.status = ""
	case k.Name == "esc":
		v.inputMode = false
	case k.Name == "backspace":
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
	case k.Rune != 0:
		v.input = append(v.input, k.Rune)
	}
}

// render composes one frame and flushes it.
func (v *DebugView) render() {
	v.buf.ClearScreen()
	v.scrollToCursor()

	title := fmt.Sprintf(" gofunge %s  %s  tick %d  ips %d ",
		Version, v.it.Config().Dialect, v.it.Ticks(), len(v.it.IPs()))
	if v.running {
		title += " running "
	}
	v.text(0, 0, pad(title, v.gridW), viewHeaderFg, viewHeaderBg, true)

	v.renderGrid()
	v.renderPointers()
	v.renderOutput()

	if v.inputMode {
		v.text(0, v.gridH+5, pad("input> "+string(v.input), v.gridW), viewHeaderFg, viewHeaderBg, false)
	} else {
		v.text(0, v.gridH+5, pad(v.status, v.gridW), viewDimFg, defaultBg, false)
	}
	v.sess.Flush(v.buf)
}

// scrollToCursor keeps the cursor inside the viewport.
func (v *DebugView) scrollToCursor() {
	if v.cursor.X < v.origin.X {
		v.origin.X = v.cursor.X
	}
	if v.cursor.Y < v.origin.Y {
		v.origin.Y = v.cursor.Y
	}
	if v.cursor.X >= v.origin.X+Cell(v.gridW) {
		v.origin.X = v.cursor.X - Cell(v.gridW) + 1
	}
	if v.cursor.Y >= v.origin.Y+Cell(v.gridH) {
		v.origin.Y = v.cursor.Y - Cell(v.gridH) + 1
	}
}

func (v *DebugView) renderGrid() {
	ipAt := make(map[Vector]bool)
	for _, ip := range v.it.IPs() {
		ipAt[ip.Pos] = true
	}
	for row := 0; row < v.gridH; row++ {
		for col := 0; col < v.gridW; col++ {
			pos := Vector{v.origin.X + Cell(col), v.origin.Y + Cell(row)}
			c := v.it.Space().Get(pos)
			r := rune(c)
			if r < 0x20 || r > 0x10ffff {
				r = 0xfffd
			}
			fg := viewGridFg
			reverse := false
			underline := false
			switch {
			case ipAt[pos]:
				reverse = true
			case v.dbg.coords[pos]:
				fg = viewBreakFg
			}
			if pos == v.cursor {
				underline = true
			}
			v.buf.SetCursor(col, row+1)
			v.buf.SetAttributes(fg, defaultBg, false, false, underline, reverse)
			v.buf.WriteChar(r)
		}
	}
}

func (v *DebugView) renderPointers() {
	snaps := v.it.IPs()
	for i := 0; i < 2; i++ {
		line := ""
		if i < len(snaps) {
			s := snaps[i]
			line = fmt.Sprintf("ip %d  (%d,%d) d(%d,%d) %s  %s",
				s.ID, s.Pos.X, s.Pos.Y, s.Delta.X, s.Delta.Y, s.Status,
				formatStack(s.Stacks))
		}
		v.text(0, v.gridH+1+i, pad(line, v.gridW), viewInfoFg, defaultBg, false)
	}
}

func (v *DebugView) renderOutput() {
	out := v.port.Output()
	lines := strings.Split(out, "\n")
	tail := lines
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	for i, line := range tail {
		v.text(0, v.gridH+3+i, pad("| "+line, v.gridW), viewGridFg, defaultBg, false)
	}
}

// formatStack shows the TOSS top-first, truncated.
func formatStack(stacks [][]Cell) string {
	if len(stacks) == 0 {
		return "[]"
	}
	toss := stacks[len(stacks)-1]
	parts := make([]string, 0, 8)
	for i := len(toss) - 1; i >= 0 && len(parts) < 8; i-- {
		parts = append(parts, fmt.Sprintf("%d", toss[i]))
	}
	s := "[" + strings.Join(parts, " ")
	if len(toss) > 8 {
		s += " ..."
	}
	return s + "]"
}

// text writes a string at a buffer position with fixed attributes.
func (v *DebugView) text(x, y int, s string, fg, bg purfecterm.Color, bold bool) {
	v.buf.SetCursor(x, y)
	v.buf.SetAttributes(fg, bg, bold, false, false, false)
	for _, r := range s {
		v.buf.WriteChar(r)
	}
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}
