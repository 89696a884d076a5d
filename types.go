package gofunge

import (
	"errors"
	"math/rand"
	"time"
)

// Version is the interpreter version reported by the y instruction.
const Version = "0.3.0"

// Cell is a single Funge-space value. Funge-98 requires at least 32 bits;
// 64 keeps arithmetic from the conformance fuzzers out of overflow territory.
type Cell int64

// SpaceCell is the value of every unset coordinate in Funge-space.
const SpaceCell Cell = ' '

// Vector is a coordinate or delta in Funge-space.
type Vector struct {
	X, Y Cell
}

// Add returns v+w componentwise.
func (v Vector) Add(w Vector) Vector {
	return Vector{v.X + w.X, v.Y + w.Y}
}

// Sub returns v-w componentwise.
func (v Vector) Sub(w Vector) Vector {
	return Vector{v.X - w.X, v.Y - w.Y}
}

// Neg returns the reversed vector.
func (v Vector) Neg() Vector {
	return Vector{-v.X, -v.Y}
}

// The four cardinal deltas.
var (
	East  = Vector{1, 0}
	West  = Vector{-1, 0}
	North = Vector{0, -1}
	South = Vector{0, 1}
)

// Status describes what an IP is currently doing.
type Status int

const (
	Running       Status = iota // executes one instruction per tick
	AwaitingInput               // parked on & or ~ until the IOPort has data
	Terminated                  // removed from the live set at tick end
)

// String returns a short status name for logs and snapshots.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingInput:
		return "awaiting-input"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Dialect selects which instruction table and error policy apply.
type Dialect int

const (
	Befunge93 Dialect = iota
	Funge98
)

// String returns the conventional short name for the dialect.
func (d Dialect) String() string {
	switch d {
	case Befunge93:
		return "B93"
	default:
		return "B98"
	}
}

// OnError is the policy applied when a cell decodes to no instruction.
type OnError int

const (
	// Ignore treats the cell as a one-tick no-op (Befunge-93 behavior).
	Ignore OnError = iota
	// Reflect reverses the IP's delta in place (Funge-98 behavior).
	Reflect
)

// Config holds configuration for an Interpreter.
type Config struct {
	Dialect      Dialect
	Debug        bool     // enables gated log levels on the default logger
	AllowExec    bool     // permit the = instruction to run shell commands
	AllowFileIO  bool     // permit the i and o instructions to touch files
	HistoryLimit int      // bounded step-back history kept by a Debugger
	Args         []string // program arguments reported by y
	RandSource   rand.Source
	Logger       *Logger
}

// DefaultConfig returns default configuration: Funge-98 semantics with
// exec and file I/O enabled, matching a conformance-suite run.
func DefaultConfig() *Config {
	return &Config{
		Dialect:      Funge98,
		Debug:        false,
		AllowExec:    true,
		AllowFileIO:  true,
		HistoryLimit: 16384,
		RandSource:   rand.NewSource(time.Now().UnixNano()),
	}
}

// onError returns the unimplemented-instruction policy for the dialect.
func (c *Config) onError() OnError {
	if c.Dialect == Befunge93 {
		return Ignore
	}
	return Reflect
}

// Sentinel errors surfaced by the loader and the I/O ports.
var (
	// ErrInputPending means the IOPort has no value yet; the issuing IP
	// enters AwaitingInput and the read is retried on a later tick.
	ErrInputPending = errors.New("input not yet available")

	// ErrEmptySource is returned when a program decodes to zero cells.
	ErrEmptySource = errors.New("source contains no instructions")

	// ErrAlreadyLoaded is returned by a second Load on one interpreter.
	ErrAlreadyLoaded = errors.New("program already loaded")
)

// IPSnapshot is a read-only view of one IP, returned by Debugger.Step.
type IPSnapshot struct {
	ID         int
	Pos        Vector
	Delta      Vector
	Offset     Vector
	StringMode bool
	Status     Status
	Stacks     [][]Cell // bottom stack first, each bottom cell first
}
