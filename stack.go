package gofunge

// Stack is a LIFO sequence of cells. Popping an empty stack yields 0 and
// is never an error; Funge programs lean on this constantly.
type Stack struct {
	cells []Cell
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push appends a cell.
func (s *Stack) Push(c Cell) {
	s.cells = append(s.cells, c)
}

// Pop removes and returns the top cell, or 0 when empty.
func (s *Stack) Pop() Cell {
	if len(s.cells) == 0 {
		return 0
	}
	c := s.cells[len(s.cells)-1]
	s.cells = s.cells[:len(s.cells)-1]
	return c
}

// Peek returns the top cell without removing it, or 0 when empty.
func (s *Stack) Peek() Cell {
	if len(s.cells) == 0 {
		return 0
	}
	return s.cells[len(s.cells)-1]
}

// Clear discards every cell.
func (s *Stack) Clear() {
	s.cells = s.cells[:0]
}

// Len returns the number of cells.
func (s *Stack) Len() int {
	return len(s.cells)
}

// At returns the cell at index i counted from the bottom, or 0 out of range.
func (s *Stack) At(i int) Cell {
	if i < 0 || i >= len(s.cells) {
		return 0
	}
	return s.cells[i]
}

// Cells returns a copy of the contents, bottom first.
func (s *Stack) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// PushAll appends cells in slice order (the last element ends up on top).
func (s *Stack) PushAll(cells []Cell) {
	s.cells = append(s.cells, cells...)
}

// clone returns a deep copy, used when an IP splits.
func (s *Stack) clone() *Stack {
	return &Stack{cells: s.Cells()}
}

// StackStack is an IP's ordered collection of stacks. It is never empty:
// the last stack is the TOSS (top of stack stack) and is the one every
// plain stack instruction operates on.
type StackStack struct {
	stacks []*Stack
}

// NewStackStack creates a stack-stack holding a single empty stack.
func NewStackStack() *StackStack {
	return &StackStack{stacks: []*Stack{NewStack()}}
}

// TOSS returns the active (topmost) stack.
func (ss *StackStack) TOSS() *Stack {
	return ss.stacks[len(ss.stacks)-1]
}

// SOSS returns the stack beneath the TOSS, or nil when only one stack exists.
func (ss *StackStack) SOSS() *Stack {
	if len(ss.stacks) < 2 {
		return nil
	}
	return ss.stacks[len(ss.stacks)-2]
}

// Push pushes onto the TOSS.
func (ss *StackStack) Push(c Cell) {
	ss.TOSS().Push(c)
}

// Pop pops from the TOSS (0 on underflow).
func (ss *StackStack) Pop() Cell {
	return ss.TOSS().Pop()
}

// Peek peeks the TOSS.
func (ss *StackStack) Peek() Cell {
	return ss.TOSS().Peek()
}

// Depth returns the number of stacks.
func (ss *StackStack) Depth() int {
	return len(ss.stacks)
}

// Len returns the size of the TOSS.
func (ss *StackStack) Len() int {
	return ss.TOSS().Len()
}

// Stacks returns copies of all stacks, bottom stack first.
func (ss *StackStack) Stacks() [][]Cell {
	out := make([][]Cell, len(ss.stacks))
	for i, s := range ss.stacks {
		out[i] = s.Cells()
	}
	return out
}

// Begin implements '{': pop n elements off the old TOSS (padding with
// zeros when n exceeds its size, pushing |n| zeros onto it when n is
// negative), push the caller's storage offset, then open a fresh TOSS
// seeded with the moved elements in their original order. The caller
// installs the returned values and sets its new storage offset itself.
func (ss *StackStack) Begin(n Cell, offset Vector) {
	old := ss.TOSS()
	var moved []Cell
	if n > 0 {
		moved = make([]Cell, n)
		// Pop then reverse so stack order is preserved on the new TOSS.
		for i := int(n) - 1; i >= 0; i-- {
			moved[i] = old.Pop()
		}
	} else if n < 0 {
		for i := Cell(0); i < -n; i++ {
			old.Push(0)
		}
	}
	old.Push(offset.X)
	old.Push(offset.Y)
	fresh := NewStack()
	fresh.PushAll(moved)
	ss.stacks = append(ss.stacks, fresh)
}

// End implements '}': discard the TOSS, restore the storage offset saved
// by the matching Begin from the revealed stack, and move n elements from
// the dying TOSS onto it (or pop |n| when n is negative). Returns the
// restored offset and false when only one stack exists (the caller
// reflects instead).
func (ss *StackStack) End(n Cell) (Vector, bool) {
	if len(ss.stacks) < 2 {
		return Vector{}, false
	}
	dying := ss.TOSS()
	var moved []Cell
	if n > 0 {
		moved = make([]Cell, n)
		for i := int(n) - 1; i >= 0; i-- {
			moved[i] = dying.Pop()
		}
	}
	ss.stacks = ss.stacks[:len(ss.stacks)-1]
	under := ss.TOSS()
	y := under.Pop()
	x := under.Pop()
	if n > 0 {
		under.PushAll(moved)
	} else if n < 0 {
		for i := Cell(0); i < -n; i++ {
			under.Pop()
		}
	}
	return Vector{x, y}, true
}

// Transfer implements 'u': move n cells one at a time between the SOSS
// and the TOSS. Positive n pops from the SOSS and pushes onto the TOSS
// (reversing their order, per the pop/push phrasing of the instruction);
// negative n runs the other way. Returns false when there is no SOSS.
func (ss *StackStack) Transfer(n Cell) bool {
	soss := ss.SOSS()
	if soss == nil {
		return false
	}
	toss := ss.TOSS()
	if n > 0 {
		for i := Cell(0); i < n; i++ {
			toss.Push(soss.Pop())
		}
	} else if n < 0 {
		for i := Cell(0); i < -n; i++ {
			soss.Push(toss.Pop())
		}
	}
	return true
}

// clone returns a deep copy, used when an IP splits.
func (ss *StackStack) clone() *StackStack {
	out := &StackStack{stacks: make([]*Stack, len(ss.stacks))}
	for i, s := range ss.stacks {
		out.stacks[i] = s.clone()
	}
	return out
}
