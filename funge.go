package gofunge

import (
	"context"
	"math/rand"
	"strconv"
)

// Interpreter owns the program space, the live instruction pointers and
// the per-tick scheduler. All pointers advance on a single goroutine in
// strict sequence order, one instruction each per tick, so writes from
// one pointer are visible to every later pointer without locking.
type Interpreter struct {
	cfg    Config
	log    *Logger
	space  *Space
	prints *FingerprintRegistry
	port   IOPort
	rand   *rand.Rand

	ips    []*IP
	nextID int
	// Children spawned during the current tick, keyed by parent ID.
	// They join the sequence right after their parent at tick end and
	// execute starting next tick.
	spawned map[int][]*IP

	progName string
	ticks    uint64
	halted   bool
	exitCode int
	loaded   bool
	// Whether the last tick completed at least one instruction, as
	// opposed to every pointer restalling on a starved read.
	progressed bool
}

// New creates an interpreter with no program loaded. A nil config means
// DefaultConfig. I/O defaults to an empty StorePort; install a
// ConsolePort with SetPort for interactive runs.
func New(cfg *Config) *Interpreter {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg
	}
	if c.RandSource == nil {
		c.RandSource = DefaultConfig().RandSource
	}
	log := c.Logger
	if log == nil {
		log = NewLogger(c.Debug)
		if c.Debug {
			log.EnableAllCategories()
		}
	}
	return &Interpreter{
		cfg:      *c,
		log:      log,
		space:    NewSpace(),
		prints:   NewFingerprintRegistry(),
		port:     NewStorePort(),
		rand:     rand.New(c.RandSource),
		spawned:  make(map[int][]*IP),
		progName: "gofunge",
	}
}

// SetPort installs the I/O port used by '.', ',', '&' and '~'.
func (it *Interpreter) SetPort(p IOPort) {
	it.port = p
}

// Port returns the installed I/O port.
func (it *Interpreter) Port() IOPort {
	return it.port
}

// Space returns the shared program space.
func (it *Interpreter) Space() *Space {
	return it.space
}

// Fingerprints returns the registry consulted by '(' and ')'.
func (it *Interpreter) Fingerprints() *FingerprintRegistry {
	return it.prints
}

// Config returns the active configuration.
func (it *Interpreter) Config() Config {
	return it.cfg
}

// Load installs program rows into the space and creates the initial
// pointer at the origin heading east. Configured arguments are pushed
// onto its stack, integers as values and anything else as a
// 0-terminated string. Loading twice is an error.
func (it *Interpreter) Load(lines []string) error {
	if it.loaded {
		return ErrAlreadyLoaded
	}
	it.loaded = true
	it.space.insertLines(lines, Vector{})
	ip := newIP(it.nextID)
	it.nextID++
	for _, arg := range it.cfg.Args {
		if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
			ip.Stacks.Push(Cell(n))
			continue
		}
		ip.Stacks.Push(0)
		for i := len(arg) - 1; i >= 0; i-- {
			ip.Stacks.Push(Cell(arg[i]))
		}
	}
	ip.SkipToInstruction(it.space, it.cfg.Dialect)
	it.ips = append(it.ips, ip)
	min, max := it.space.Bounds()
	it.log.InfoCat(CatLoad, "loaded %s program, bounds (%d,%d)-(%d,%d)",
		it.cfg.Dialect, min.X, min.Y, max.X, max.Y)
	return nil
}

// LoadString parses and loads program text.
func (it *Interpreter) LoadString(src string) error {
	lines, err := ParseSource(src)
	if err != nil {
		return err
	}
	return it.Load(lines)
}

// FromFile creates an interpreter and loads the program at path.
func FromFile(path string, cfg *Config) (*Interpreter, error) {
	lines, err := ReadProgram(path)
	if err != nil {
		return nil, err
	}
	it := New(cfg)
	it.progName = path
	if err := it.Load(lines); err != nil {
		return nil, err
	}
	return it, nil
}

// Halted reports whether the program has finished, by explicit quit or
// by the last pointer terminating.
func (it *Interpreter) Halted() bool {
	return it.halted
}

// ExitCode returns the program's exit code: the value given to 'q'
// masked to 0-255, or 0 when the live pointer set simply drained.
func (it *Interpreter) ExitCode() int {
	return it.exitCode
}

// Ticks returns the number of completed ticks.
func (it *Interpreter) Ticks() uint64 {
	return it.ticks
}

// IPs returns read-only snapshots of the live pointers in scheduling
// order.
func (it *Interpreter) IPs() []IPSnapshot {
	out := make([]IPSnapshot, len(it.ips))
	for i, ip := range it.ips {
		out[i] = ip.Snapshot()
	}
	return out
}

// Blocked reports whether every live pointer is waiting on input, so no
// tick can make progress until the port is fed.
func (it *Interpreter) Blocked() bool {
	if it.halted || len(it.ips) == 0 {
		return true
	}
	for _, ip := range it.ips {
		if ip.Status == Running {
			return false
		}
	}
	return true
}

// Tick advances every live pointer by exactly one instruction, in
// sequence order. Pointers waiting on input retry their read; pointers
// terminating this tick are removed at the end of it, and children
// spawned this tick join after their parent without executing. Returns
// false once the program has halted.
func (it *Interpreter) Tick() bool {
	if it.halted {
		return false
	}
	it.progressed = false
	for _, ip := range it.ips {
		switch ip.Status {
		case Running, AwaitingInput:
			it.step(ip)
		}
		if it.halted {
			break
		}
	}
	it.commit()
	it.ticks++
	if !it.halted && len(it.ips) == 0 {
		it.log.InfoCat(CatSched, "all pointers terminated after %d ticks", it.ticks)
		it.halted = true
	}
	return !it.halted
}

// step executes the instruction under one pointer and advances it.
func (it *Interpreter) step(ip *IP) {
	op := it.space.Get(ip.Pos)
	advance, err := it.execute(ip, op)
	if err == ErrInputPending {
		if ip.Status != AwaitingInput {
			it.log.DebugCat(CatSched, "ip %d awaiting input at (%d,%d)", ip.ID, ip.Pos.X, ip.Pos.Y)
		}
		ip.Status = AwaitingInput
		return
	}
	it.progressed = true
	if ip.Status == AwaitingInput {
		ip.Status = Running
	}
	if ip.Status == Terminated {
		it.log.DebugCat(CatSched, "ip %d terminated", ip.ID)
		return
	}
	if advance {
		ip.Step(it.space)
		ip.SkipToInstruction(it.space, it.cfg.Dialect)
	}
}

// commit applies the tick's structural changes: spawned children are
// spliced in after their parents and terminated pointers drop out.
func (it *Interpreter) commit() {
	if len(it.spawned) == 0 {
		live := it.ips[:0]
		for _, ip := range it.ips {
			if ip.Status != Terminated {
				live = append(live, ip)
			}
		}
		it.ips = live
		return
	}
	next := make([]*IP, 0, len(it.ips)+len(it.spawned))
	for _, ip := range it.ips {
		if ip.Status != Terminated {
			next = append(next, ip)
		}
		next = append(next, it.spawned[ip.ID]...)
	}
	it.ips = next
	it.spawned = make(map[int][]*IP)
}

// spawn implements 't': clone the parent with a reversed delta and
// queue the child to join the sequence right after it. The child steps
// once immediately so its first executed instruction is the cell behind
// the split, on the next tick.
func (it *Interpreter) spawn(parent *IP) {
	child := parent.split(it.nextID)
	it.nextID++
	child.Step(it.space)
	child.SkipToInstruction(it.space, it.cfg.Dialect)
	it.spawned[parent.ID] = append(it.spawned[parent.ID], child)
	it.log.DebugCat(CatSched, "ip %d split off ip %d", parent.ID, child.ID)
}

// quit implements 'q': stop the whole program with an exit code, masked
// to the 0-255 range a process can actually report. No further pointer
// runs, this tick included.
func (it *Interpreter) quit(code Cell) {
	it.exitCode = int(code & 0xff)
	it.halted = true
	it.log.InfoCat(CatSched, "program quit with code %d after %d ticks", code, it.ticks)
}

// Run ticks until the program halts, the context is canceled, or a tick
// makes no progress because every pointer is starved for input. Reads
// are retried each tick, so Run resumes cleanly once the port is fed.
// Returns the exit code; the error is ErrInputPending when the run
// stalled on input, or the context error.
func (it *Interpreter) Run(ctx context.Context) (int, error) {
	for !it.halted {
		if err := ctx.Err(); err != nil {
			return it.exitCode, err
		}
		it.Tick()
		if !it.halted && !it.progressed && it.Blocked() {
			return it.exitCode, ErrInputPending
		}
	}
	return it.exitCode, nil
}
