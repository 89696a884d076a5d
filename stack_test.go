package gofunge

import "testing"

func TestStackUnderflowYieldsZero(t *testing.T) {
	s := NewStack()

	if v := s.Pop(); v != 0 {
		t.Errorf("Pop on empty stack = %d, want 0", v)
	}
	if s.Len() != 0 {
		t.Errorf("Pop on empty stack changed length to %d", s.Len())
	}
	if v := s.Peek(); v != 0 {
		t.Errorf("Peek on empty stack = %d, want 0", v)
	}
}

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	for want := Cell(3); want >= 1; want-- {
		if got := s.Pop(); got != want {
			t.Errorf("Pop = %d, want %d", got, want)
		}
	}
}

func TestStackCellsIsACopy(t *testing.T) {
	s := NewStack()
	s.Push(7)
	cells := s.Cells()
	cells[0] = 99

	if s.Peek() != 7 {
		t.Error("mutating Cells() result affected the stack")
	}
}

func TestStackStackStartsWithOneStack(t *testing.T) {
	ss := NewStackStack()

	if ss.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", ss.Depth())
	}
	if ss.SOSS() != nil {
		t.Error("SOSS should be nil with a single stack")
	}
}

func TestStackStackBeginEndRoundTrip(t *testing.T) {
	ss := NewStackStack()
	ss.Push(10)
	ss.Push(20)
	ss.Push(30)

	offset := Vector{3, 4}
	ss.Begin(2, offset)

	if ss.Depth() != 2 {
		t.Fatalf("Depth after Begin = %d, want 2", ss.Depth())
	}
	// Moved elements keep their order on the new TOSS.
	if got := ss.TOSS().Cells(); len(got) != 2 || got[0] != 20 || got[1] != 30 {
		t.Errorf("TOSS after Begin = %v, want [20 30]", got)
	}

	ss.Push(99)
	restored, ok := ss.End(1)
	if !ok {
		t.Fatal("End failed with two stacks")
	}
	if restored != offset {
		t.Errorf("End restored offset %v, want %v", restored, offset)
	}
	// Original bottom value, then the single transferred element.
	if got := ss.TOSS().Cells(); len(got) != 2 || got[0] != 10 || got[1] != 99 {
		t.Errorf("TOSS after End = %v, want [10 99]", got)
	}
}

func TestStackStackBeginNegativePushesZeros(t *testing.T) {
	ss := NewStackStack()
	ss.Push(5)
	ss.Begin(-3, Vector{})

	soss := ss.SOSS()
	// 5, three zeros, then the saved offset pair.
	if soss.Len() != 6 {
		t.Fatalf("SOSS length = %d, want 6", soss.Len())
	}
	for i := 1; i <= 3; i++ {
		if v := soss.At(i); v != 0 {
			t.Errorf("SOSS[%d] = %d, want 0", i, v)
		}
	}
}

func TestStackStackBeginPadsMissingElements(t *testing.T) {
	ss := NewStackStack()
	ss.Push(42)
	ss.Begin(3, Vector{})

	if got := ss.TOSS().Cells(); len(got) != 3 || got[0] != 0 || got[1] != 0 || got[2] != 42 {
		t.Errorf("TOSS = %v, want [0 0 42]", got)
	}
}

func TestStackStackEndWithSingleStackFails(t *testing.T) {
	ss := NewStackStack()
	if _, ok := ss.End(0); ok {
		t.Error("End succeeded with a single stack")
	}
}

func TestStackStackEndNegativeDropsFromSOSS(t *testing.T) {
	ss := NewStackStack()
	ss.Push(1)
	ss.Push(2)
	ss.Begin(0, Vector{})
	if _, ok := ss.End(-2); !ok {
		t.Fatal("End failed")
	}
	// The offset pair was consumed by End; -2 then dropped 2 and 1.
	if ss.Len() != 0 {
		t.Errorf("TOSS length = %d, want 0", ss.Len())
	}
}

func TestStackStackTransferRoundTrip(t *testing.T) {
	ss := NewStackStack()
	ss.Push(1)
	ss.Push(2)
	ss.Push(3)
	ss.Begin(0, Vector{})

	before := ss.SOSS().Cells()
	if !ss.Transfer(2) {
		t.Fatal("Transfer failed")
	}
	if !ss.Transfer(-2) {
		t.Fatal("reverse Transfer failed")
	}
	after := ss.SOSS().Cells()
	if len(before) != len(after) {
		t.Fatalf("SOSS length changed: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("SOSS[%d] = %d after round trip, want %d", i, after[i], before[i])
		}
	}
}

func TestStackStackTransferWithoutSOSS(t *testing.T) {
	ss := NewStackStack()
	if ss.Transfer(1) {
		t.Error("Transfer succeeded with a single stack")
	}
}
