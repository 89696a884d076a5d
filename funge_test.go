package gofunge

import (
	"context"
	"math/rand"
	"testing"
)

// newTestInterp builds an interpreter over a StorePort with a fixed
// random seed.
func newTestInterp(t *testing.T, src string, cfg *Config) (*Interpreter, *StorePort) {
	t.Helper()
	var c Config
	if cfg != nil {
		c = *cfg
	} else {
		c = *DefaultConfig()
	}
	c.RandSource = rand.NewSource(1)
	it := New(&c)
	port := NewStorePort()
	it.SetPort(port)
	if err := it.LoadString(src); err != nil {
		t.Fatalf("load: %v", err)
	}
	return it, port
}

// runSource runs a program to completion and returns its output and
// exit code.
func runSource(t *testing.T, src, input string, cfg *Config) (string, int) {
	t.Helper()
	it, port := newTestInterp(t, src, cfg)
	port.SupplyString(input)
	code, err := it.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return port.Output(), code
}

func TestAddAndPrint(t *testing.T) {
	out, code := runSource(t, "12+.@", "", nil)
	if out != "3 " {
		t.Errorf("output = %q, want %q", out, "3 ")
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestHelloWorld(t *testing.T) {
	out, code := runSource(t, `"!dlroW ,olleH">:#,_@`, "", nil)
	if out != "Hello, World!" {
		t.Errorf("output = %q, want %q", out, "Hello, World!")
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestHelloWorldBefunge93(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dialect = Befunge93
	out, _ := runSource(t, `"!dlroW ,olleH">:#,_@`, "", cfg)
	if out != "Hello, World!" {
		t.Errorf("output = %q, want %q", out, "Hello, World!")
	}
}

func TestQuitExitCode(t *testing.T) {
	_, code := runSource(t, "7q", "", nil)
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

func TestQuitMasksExitCode(t *testing.T) {
	// Exit codes outside 0-255 wrap the way a process status would.
	_, code := runSource(t, "88*8*1+q", "", nil)
	if code != 1 {
		t.Errorf("exit code for 513 = %d, want 1", code)
	}
	_, code = runSource(t, "01-q", "", nil)
	if code != 255 {
		t.Errorf("exit code for -1 = %d, want 255", code)
	}
}

func TestIndentedProgramRuns(t *testing.T) {
	// Leading spaces put the origin outside the bounding box of set
	// cells; the pointer still has to reach the code.
	out, _ := runSource(t, "  1.@", "", nil)
	if out != "1 " {
		t.Errorf("output = %q, want %q", out, "1 ")
	}

	cfg := DefaultConfig()
	cfg.Dialect = Befunge93
	out, _ = runSource(t, "  1.@", "", cfg)
	if out != "1 " {
		t.Errorf("B93 output = %q, want %q", out, "1 ")
	}
}

func TestQuitStopsOtherPointers(t *testing.T) {
	// The parent reaches 'q' on the tick where the child would first
	// run; the scheduler must stop before the child's turn.
	it, port := newTestInterp(t, "5t q", nil)
	code, err := it.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 5 {
		t.Errorf("exit code = %d, want 5", code)
	}
	if port.Output() != "" {
		t.Errorf("output = %q, want none", port.Output())
	}
}

func TestSplitOrderingAndIndependence(t *testing.T) {
	it, port := newTestInterp(t, "1t.2.@", nil)

	it.Tick() // 1
	it.Tick() // t
	snaps := it.IPs()
	if len(snaps) != 2 {
		t.Fatalf("after split: %d pointers, want 2", len(snaps))
	}
	if snaps[0].ID != 0 || snaps[1].ID != 1 {
		t.Errorf("pointer order = [%d %d], want parent first", snaps[0].ID, snaps[1].ID)
	}
	if snaps[1].Delta != West {
		t.Errorf("child delta = %v, want west", snaps[1].Delta)
	}
	// Both received a copy of the parent's stack.
	if len(snaps[0].Stacks[0]) != 1 || len(snaps[1].Stacks[0]) != 1 {
		t.Fatalf("stacks after split = %v / %v", snaps[0].Stacks, snaps[1].Stacks)
	}

	for it.Tick() {
	}
	// Parent prints 1 on the tick before the child can act, then 2.
	if got := port.Output(); got != "1 2 " {
		t.Errorf("output = %q, want %q", got, "1 2 ")
	}
}

func TestInputSuspendsForExactlyOneMissedTick(t *testing.T) {
	it, port := newTestInterp(t, "&.@", nil)

	it.Tick()
	snaps := it.IPs()
	if snaps[0].Status != AwaitingInput {
		t.Fatalf("status after starved read = %v, want AwaitingInput", snaps[0].Status)
	}
	homePos := snaps[0].Pos

	it.Tick()
	snaps = it.IPs()
	if snaps[0].Status != AwaitingInput || snaps[0].Pos != homePos {
		t.Fatal("starved pointer moved or changed status")
	}

	port.Supply('5')
	it.Tick()
	snaps = it.IPs()
	if snaps[0].Status != Running {
		t.Fatalf("status after input = %v, want Running", snaps[0].Status)
	}
	if snaps[0].Stacks[0][0] != 5 {
		t.Errorf("stack after read = %v, want [5]", snaps[0].Stacks[0])
	}

	for it.Tick() {
	}
	if got := port.Output(); got != "5 " {
		t.Errorf("output = %q, want %q", got, "5 ")
	}
}

func TestRunReportsStarvedInput(t *testing.T) {
	it, _ := newTestInterp(t, "&.@", nil)
	_, err := it.Run(context.Background())
	if err != ErrInputPending {
		t.Errorf("Run on starved input = %v, want ErrInputPending", err)
	}
}

func TestRunResumesAfterInputSupplied(t *testing.T) {
	it, port := newTestInterp(t, "&.@", nil)
	if _, err := it.Run(context.Background()); err != ErrInputPending {
		t.Fatalf("Run on starved input = %v, want ErrInputPending", err)
	}
	port.Supply('7')
	code, err := it.Run(context.Background())
	if err != nil {
		t.Fatalf("Run after Supply = %v", err)
	}
	if got := port.Output(); got != "7 " {
		t.Errorf("output = %q, want %q", got, "7 ")
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestRunStallsOnNonNumericInput(t *testing.T) {
	// '&' finds no digits here; the run must report the stall rather
	// than spin on the unparseable input.
	it, port := newTestInterp(t, "&.@", nil)
	port.SupplyString("xy")
	if _, err := it.Run(context.Background()); err != ErrInputPending {
		t.Errorf("Run = %v, want ErrInputPending", err)
	}
}

func TestCharInput(t *testing.T) {
	out, _ := runSource(t, "~,~,@", "hi", nil)
	if out != "hi" {
		t.Errorf("output = %q, want %q", out, "hi")
	}
}

func TestCharInputOrder(t *testing.T) {
	out, _ := runSource(t, "~~,,@", "ab", nil)
	if out != "ba" {
		t.Errorf("output = %q, want %q", out, "ba")
	}
}

func TestArgsPushedOntoInitialStack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Args = []string{"42", "hi"}
	it, _ := newTestInterp(t, "@", cfg)

	// Integers as values, strings 0-terminated with the first
	// character on top.
	want := []Cell{42, 0, 'i', 'h'}
	got := it.IPs()[0].Stacks[0]
	if len(got) != len(want) {
		t.Fatalf("initial stack = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("initial stack = %v, want %v", got, want)
		}
	}
}

func TestSelfModifyingProgram(t *testing.T) {
	// p rewrites the cell two ahead from '+' to '*' before it runs.
	out, _ := runSource(t, `"*"80p23+.@`, "", nil)
	if out != "6 " {
		t.Errorf("output = %q, want %q", out, "6 ")
	}
}

func TestLoadTwiceFails(t *testing.T) {
	it, _ := newTestInterp(t, "@", nil)
	if err := it.Load([]string{"@"}); err != ErrAlreadyLoaded {
		t.Errorf("second Load = %v, want ErrAlreadyLoaded", err)
	}
}

func TestEmptyPointerSetHalts(t *testing.T) {
	it, _ := newTestInterp(t, "@", nil)
	if it.Tick() {
		t.Error("Tick returned true after the last pointer terminated")
	}
	if !it.Halted() || it.ExitCode() != 0 {
		t.Errorf("Halted=%v ExitCode=%d, want true/0", it.Halted(), it.ExitCode())
	}
}

func TestBlockedDetection(t *testing.T) {
	it, port := newTestInterp(t, "&.@", nil)
	it.Tick()
	if !it.Blocked() {
		t.Error("Blocked = false with every pointer starved")
	}
	port.Supply('1')
	it.Tick()
	if it.Blocked() {
		t.Error("Blocked = true with a running pointer")
	}
}
