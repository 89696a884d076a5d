package gofunge

// spaceWrite records one overwrite of a program-space cell, so the
// debugger can roll the space back when stepping in reverse.
type spaceWrite struct {
	pos  Vector
	prev Cell
}

// Space is the program's sparse two-dimensional cell grid. Unset cells
// read as ' ' (32). Bounds track the smallest rectangle covering every
// explicitly set cell and only grow lazily; Shrink recomputes them after
// cells are blanked out.
type Space struct {
	cells map[Vector]Cell

	// Bounding rectangle of set cells; valid only when nonEmpty.
	min, max Vector
	nonEmpty bool

	// Write journal for reverse stepping; nil when journaling is off.
	journal []spaceWrite
}

// NewSpace creates an empty program space.
func NewSpace() *Space {
	return &Space{cells: make(map[Vector]Cell)}
}

// Get returns the cell at pos, or ' ' when unset.
func (sp *Space) Get(pos Vector) Cell {
	if c, ok := sp.cells[pos]; ok {
		return c
	}
	return SpaceCell
}

// Set writes c at pos, growing the bounds and journaling the previous
// value when journaling is enabled. Writing ' ' unsets the cell; the
// bounds stay stale until the next Shrink.
func (sp *Space) Set(pos Vector, c Cell) {
	if sp.journal != nil {
		sp.journal = append(sp.journal, spaceWrite{pos: pos, prev: sp.Get(pos)})
	}
	sp.set(pos, c)
}

// set is Set without journaling, used by rollback.
func (sp *Space) set(pos Vector, c Cell) {
	if c == SpaceCell {
		if _, ok := sp.cells[pos]; ok {
			delete(sp.cells, pos)
		}
		return
	}
	sp.cells[pos] = c
	if !sp.nonEmpty {
		sp.min, sp.max = pos, pos
		sp.nonEmpty = true
		return
	}
	if pos.X < sp.min.X {
		sp.min.X = pos.X
	}
	if pos.Y < sp.min.Y {
		sp.min.Y = pos.Y
	}
	if pos.X > sp.max.X {
		sp.max.X = pos.X
	}
	if pos.Y > sp.max.Y {
		sp.max.Y = pos.Y
	}
}

// Bounds returns the min and max corners of the rectangle covering every
// set cell. An empty space reports a zero rectangle at the origin.
func (sp *Space) Bounds() (min, max Vector) {
	if !sp.nonEmpty {
		return Vector{}, Vector{}
	}
	return sp.min, sp.max
}

// Contains reports whether pos lies within the current bounds.
func (sp *Space) Contains(pos Vector) bool {
	if !sp.nonEmpty {
		return false
	}
	return pos.X >= sp.min.X && pos.X <= sp.max.X &&
		pos.Y >= sp.min.Y && pos.Y <= sp.max.Y
}

// Shrink recomputes the bounds exactly. Set only grows bounds, so after
// blanking cells near an edge the rectangle can be stale; callers that
// care (the y instruction, the debugger view) call Shrink first.
func (sp *Space) Shrink() {
	sp.nonEmpty = false
	for pos := range sp.cells {
		if !sp.nonEmpty {
			sp.min, sp.max = pos, pos
			sp.nonEmpty = true
			continue
		}
		if pos.X < sp.min.X {
			sp.min.X = pos.X
		}
		if pos.Y < sp.min.Y {
			sp.min.Y = pos.Y
		}
		if pos.X > sp.max.X {
			sp.max.X = pos.X
		}
		if pos.Y > sp.max.Y {
			sp.max.Y = pos.Y
		}
	}
}

// EnableJournal starts recording overwrites for reverse stepping.
func (sp *Space) EnableJournal() {
	if sp.journal == nil {
		sp.journal = make([]spaceWrite, 0, 64)
	}
}

// JournalLen returns the number of recorded writes, used as a rollback
// marker by the debugger.
func (sp *Space) JournalLen() int {
	return len(sp.journal)
}

// Rollback undoes journaled writes until the journal is back at mark.
func (sp *Space) Rollback(mark int) {
	for len(sp.journal) > mark {
		w := sp.journal[len(sp.journal)-1]
		sp.journal = sp.journal[:len(sp.journal)-1]
		sp.set(w.pos, w.prev)
	}
	sp.Shrink()
}

// TrimJournal discards the oldest drop writes, shifting the rollback
// horizon forward when history is bounded.
func (sp *Space) TrimJournal(drop int) {
	if drop <= 0 || sp.journal == nil {
		return
	}
	if drop >= len(sp.journal) {
		sp.journal = sp.journal[:0]
		return
	}
	sp.journal = append(sp.journal[:0], sp.journal[drop:]...)
}
