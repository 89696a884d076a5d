package gofunge

import "context"

// historyEntry is everything needed to put the interpreter back where
// it was before one tick: deep pointer copies, scheduler counters, and
// a space-journal mark to roll written cells back to.
type historyEntry struct {
	ips      []*IP
	nextID   int
	mark     int
	ticks    uint64
	halted   bool
	exitCode int

	// StorePort marks; zero when the interpreter runs another port.
	inMark  int
	outMark int
}

// Debugger drives an interpreter one tick at a time, with position and
// opcode breakpoints and a bounded reverse-step history. It only ever
// stops between ticks, never mid-instruction, and exposes read-only
// snapshots, so the core never blocks on a frontend.
type Debugger struct {
	it     *Interpreter
	log    *Logger
	limit  int
	coords map[Vector]bool
	ops    map[Cell]bool

	history []historyEntry
}

// NewDebugger wraps an interpreter. Enables space write journaling, so
// attach before the first tick.
func NewDebugger(it *Interpreter) *Debugger {
	it.space.EnableJournal()
	limit := it.cfg.HistoryLimit
	if limit <= 0 {
		limit = DefaultConfig().HistoryLimit
	}
	return &Debugger{
		it:     it,
		log:    it.log,
		limit:  limit,
		coords: make(map[Vector]bool),
		ops:    make(map[Cell]bool),
	}
}

// Interpreter returns the wrapped interpreter.
func (d *Debugger) Interpreter() *Interpreter {
	return d.it
}

// SetBreakpoint arms a breakpoint at a cell coordinate.
func (d *Debugger) SetBreakpoint(pos Vector) {
	d.coords[pos] = true
}

// ClearBreakpoint disarms a coordinate breakpoint.
func (d *Debugger) ClearBreakpoint(pos Vector) {
	delete(d.coords, pos)
}

// SetOpBreakpoint stops the run whenever any pointer is about to
// execute the given instruction.
func (d *Debugger) SetOpBreakpoint(op Cell) {
	d.ops[op] = true
}

// ClearOpBreakpoint disarms an opcode breakpoint.
func (d *Debugger) ClearOpBreakpoint(op Cell) {
	delete(d.ops, op)
}

// Breakpoints returns the armed coordinates.
func (d *Debugger) Breakpoints() []Vector {
	out := make([]Vector, 0, len(d.coords))
	for pos := range d.coords {
		out = append(out, pos)
	}
	return out
}

// Step executes exactly one tick and returns the live pointer
// snapshots. Stepping a halted program returns the final snapshots
// unchanged.
func (d *Debugger) Step() []IPSnapshot {
	if d.it.halted {
		return d.it.IPs()
	}
	d.record()
	d.it.Tick()
	return d.it.IPs()
}

// StepBack rewinds one tick: pointers, scheduler counters and every
// cell written since are restored; on a StorePort, output written and
// input consumed since are rewound too. Returns false when history is
// exhausted.
func (d *Debugger) StepBack() bool {
	if len(d.history) == 0 {
		return false
	}
	e := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]
	d.it.space.Rollback(e.mark)
	if sp, ok := d.it.port.(*StorePort); ok {
		sp.Rewind(e.inMark, e.outMark)
	}
	d.it.ips = make([]*IP, len(e.ips))
	for i, ip := range e.ips {
		d.it.ips[i] = ip.clone()
	}
	d.it.nextID = e.nextID
	d.it.ticks = e.ticks
	d.it.halted = e.halted
	d.it.exitCode = e.exitCode
	return true
}

// HistoryLen returns how many ticks can currently be rewound.
func (d *Debugger) HistoryLen() int {
	return len(d.history)
}

// record pushes a rewind point, dropping the oldest beyond the limit.
func (d *Debugger) record() {
	ips := make([]*IP, len(d.it.ips))
	for i, ip := range d.it.ips {
		ips[i] = ip.clone()
	}
	e := historyEntry{
		ips:      ips,
		nextID:   d.it.nextID,
		mark:     d.it.space.JournalLen(),
		ticks:    d.it.ticks,
		halted:   d.it.halted,
		exitCode: d.it.exitCode,
	}
	if sp, ok := d.it.port.(*StorePort); ok {
		e.inMark, e.outMark = sp.Marks()
	}
	d.history = append(d.history, e)
	if over := len(d.history) - d.limit; over > 0 {
		// Journal writes older than the new base entry can never be
		// rolled back again, so drop them and rebase the marks.
		base := d.history[over].mark
		d.it.space.TrimJournal(base)
		d.history = append(d.history[:0], d.history[over:]...)
		for i := range d.history {
			d.history[i].mark -= base
		}
	}
}

// AtBreakpoint reports whether any live pointer sits on an armed
// coordinate or on an armed opcode.
func (d *Debugger) AtBreakpoint() bool {
	for _, ip := range d.it.ips {
		if ip.Status == Terminated {
			continue
		}
		if d.coords[ip.Pos] || d.ops[d.it.space.Get(ip.Pos)] {
			return true
		}
	}
	return false
}

// RunUntilBreakpointOrHalt ticks until a breakpoint is hit, the program
// halts, every pointer stalls on input, or the context is canceled.
func (d *Debugger) RunUntilBreakpointOrHalt(ctx context.Context) ([]IPSnapshot, error) {
	for !d.it.halted {
		if err := ctx.Err(); err != nil {
			return d.it.IPs(), err
		}
		d.Step()
		if d.AtBreakpoint() {
			d.log.DebugCat(CatDebug, "breakpoint hit at tick %d", d.it.ticks)
			break
		}
		if !d.it.halted && !d.it.progressed && d.it.Blocked() {
			return d.it.IPs(), ErrInputPending
		}
	}
	return d.it.IPs(), nil
}
