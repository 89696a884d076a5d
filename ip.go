package gofunge

// IP is a single instruction pointer: a position, a movement delta, a
// storage offset, and its own stack-stack. Concurrent programs hold
// several of these; the scheduler gives each one instruction per tick.
type IP struct {
	ID     int
	Pos    Vector
	Delta  Vector
	Offset Vector

	StringMode bool
	Status     Status

	Stacks *StackStack

	// Per-letter LIFO override stacks installed by '(' and removed by
	// ')'. Only instructions A-Z ever appear as keys.
	overrides map[Cell][]binding

	// Fingerprint codes currently loaded, in load order. ')' consults
	// this before touching any letter.
	loadedPrints []Cell
}

// binding is one loaded meaning of a letter instruction, tagged with
// the fingerprint code that installed it so ')' pops only its own
// layers.
type binding struct {
	code Cell
	fn   InstructionFunc
}

// newIP creates the initial pointer: origin, heading east, empty stack.
func newIP(id int) *IP {
	return &IP{
		ID:        id,
		Delta:     East,
		Status:    Running,
		Stacks:    NewStackStack(),
		overrides: make(map[Cell][]binding),
	}
}

// Reverse negates the delta. This is the universal error response in
// the reflect dialect and the behavior of 'r'.
func (ip *IP) Reverse() {
	ip.Delta = ip.Delta.Neg()
}

// TurnLeft rotates the delta 90 degrees counterclockwise in screen
// coordinates (y grows downward).
func (ip *IP) TurnLeft() {
	ip.Delta = Vector{ip.Delta.Y, -ip.Delta.X}
}

// TurnRight rotates the delta 90 degrees clockwise.
func (ip *IP) TurnRight() {
	ip.Delta = Vector{-ip.Delta.Y, ip.Delta.X}
}

// Step moves one cell along the delta, wrapping when the next cell
// would leave the space's bounding rectangle. Wrapping backtracks
// against the delta to the far edge, so arbitrary (non-unit) deltas
// land on a cell the pointer could actually have occupied.
func (ip *IP) Step(sp *Space) {
	next := ip.Pos.Add(ip.Delta)
	if sp.Contains(next) {
		ip.Pos = next
		return
	}
	if !sp.Contains(ip.Pos) {
		// Off the grid: an indented program starts the pointer before
		// the first set cell. Walk in one cell at a time while the ray
		// ahead still meets the box; a ray that misses it leaves the
		// pointer in place.
		if ip.rayMeetsBox(sp) {
			ip.Pos = next
		}
		return
	}
	back := ip.Delta.Neg()
	for sp.Contains(ip.Pos.Add(back)) {
		ip.Pos = ip.Pos.Add(back)
	}
}

// rayMeetsBox reports whether continuing along the delta from a
// position outside the bounding rectangle eventually lands inside it.
// The scan is bounded by the taxicab distance across and to the box,
// which any entering ray covers in fewer steps.
func (ip *IP) rayMeetsBox(sp *Space) bool {
	min, max := sp.Bounds()
	limit := absCell(ip.Pos.X-min.X) + absCell(max.X-ip.Pos.X) +
		absCell(ip.Pos.Y-min.Y) + absCell(max.Y-ip.Pos.Y) + 2
	p := ip.Pos
	for i := Cell(0); i < limit; i++ {
		p = p.Add(ip.Delta)
		if sp.Contains(p) {
			return true
		}
	}
	return false
}

func absCell(c Cell) Cell {
	if c < 0 {
		return -c
	}
	return c
}

// SkipToInstruction advances past cells that take no tick in Befunge-98:
// runs of spaces, and ';'-delimited comment sections. It is a no-op in
// string mode and in Befunge-93, where ' ' is a real one-tick no-op and
// ';' is just an unsupported instruction.
func (ip *IP) SkipToInstruction(sp *Space, d Dialect) {
	if d != Funge98 || ip.StringMode {
		return
	}
	for {
		switch sp.Get(ip.Pos) {
		case SpaceCell:
			prev := ip.Pos
			ip.Step(sp)
			if ip.Pos == prev {
				return
			}
		case ';':
			ip.Step(sp)
			for sp.Get(ip.Pos) != ';' {
				prev := ip.Pos
				ip.Step(sp)
				if ip.Pos == prev {
					return
				}
			}
			ip.Step(sp)
		default:
			return
		}
	}
}

// clone returns a deep copy: stacks, overrides and loaded fingerprints
// are all duplicated, so the copy diverges independently.
func (ip *IP) clone() *IP {
	c := &IP{
		ID:         ip.ID,
		Pos:        ip.Pos,
		Delta:      ip.Delta,
		Offset:     ip.Offset,
		StringMode: ip.StringMode,
		Status:     ip.Status,
		Stacks:     ip.Stacks.clone(),
		overrides:  make(map[Cell][]binding),
	}
	for letter, stack := range ip.overrides {
		c.overrides[letter] = append([]binding(nil), stack...)
	}
	c.loadedPrints = append([]Cell(nil), ip.loadedPrints...)
	return c
}

// split clones the pointer for 't': same position, stacks, offset and
// loaded fingerprints, with the delta negated. The caller assigns the
// child's ID and steps it once so it does not re-execute the split.
func (ip *IP) split(id int) *IP {
	child := ip.clone()
	child.ID = id
	child.Delta = ip.Delta.Neg()
	child.Status = Running
	return child
}

// pushOverride installs fn as the new meaning of letter, tagged with
// the fingerprint code that loaded it, shadowing any previous meaning
// until the matching popOverride.
func (ip *IP) pushOverride(letter, code Cell, fn InstructionFunc) {
	ip.overrides[letter] = append(ip.overrides[letter], binding{code: code, fn: fn})
}

// popOverride removes the most recent meaning of letter, restoring the
// one beneath it, but only when code installed that meaning. A letter
// whose top meaning came from a later load is left alone.
func (ip *IP) popOverride(letter, code Cell) bool {
	stack := ip.overrides[letter]
	if len(stack) == 0 || stack[len(stack)-1].code != code {
		return false
	}
	ip.overrides[letter] = stack[:len(stack)-1]
	return true
}

// override returns the active meaning of letter, if any.
func (ip *IP) override(letter Cell) (InstructionFunc, bool) {
	stack := ip.overrides[letter]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1].fn, true
}

// hasLoaded reports whether code is currently among this pointer's
// loaded fingerprints.
func (ip *IP) hasLoaded(code Cell) bool {
	for _, c := range ip.loadedPrints {
		if c == code {
			return true
		}
	}
	return false
}

// Snapshot returns a read-only view of the pointer for debuggers and
// frontends. The stack contents are copied.
func (ip *IP) Snapshot() IPSnapshot {
	return IPSnapshot{
		ID:         ip.ID,
		Pos:        ip.Pos,
		Delta:      ip.Delta,
		Offset:     ip.Offset,
		StringMode: ip.StringMode,
		Status:     ip.Status,
		Stacks:     ip.Stacks.Stacks(),
	}
}
