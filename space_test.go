package gofunge

import "testing"

func TestSpaceUnsetCellsReadAsSpace(t *testing.T) {
	sp := NewSpace()
	if v := sp.Get(Vector{5, -3}); v != SpaceCell {
		t.Errorf("unset cell = %d, want %d", v, SpaceCell)
	}
}

func TestSpaceBoundsGrow(t *testing.T) {
	sp := NewSpace()
	sp.Set(Vector{2, 3}, 'x')
	sp.Set(Vector{-1, 7}, 'y')

	min, max := sp.Bounds()
	if min != (Vector{-1, 3}) || max != (Vector{2, 7}) {
		t.Errorf("Bounds = %v..%v, want (-1,3)..(2,7)", min, max)
	}
}

func TestSpaceWritingSpaceDeletes(t *testing.T) {
	sp := NewSpace()
	sp.Set(Vector{0, 0}, 'a')
	sp.Set(Vector{4, 0}, 'b')
	sp.Set(Vector{4, 0}, SpaceCell)
	sp.Shrink()

	_, max := sp.Bounds()
	if max.X != 0 {
		t.Errorf("max.X after blanking and Shrink = %d, want 0", max.X)
	}
}

func TestSpaceContains(t *testing.T) {
	sp := NewSpace()
	sp.insertLines([]string{"abc", "de"}, Vector{})

	for _, pos := range []Vector{{0, 0}, {2, 0}, {1, 1}, {2, 1}} {
		if !sp.Contains(pos) {
			t.Errorf("Contains(%v) = false inside bounds", pos)
		}
	}
	for _, pos := range []Vector{{3, 0}, {-1, 0}, {0, 2}} {
		if sp.Contains(pos) {
			t.Errorf("Contains(%v) = true outside bounds", pos)
		}
	}
}

func TestSpaceJournalRollback(t *testing.T) {
	sp := NewSpace()
	sp.insertLines([]string{"abc"}, Vector{})
	sp.EnableJournal()

	mark := sp.JournalLen()
	sp.Set(Vector{1, 0}, 'X')
	sp.Set(Vector{5, 5}, 'Y')

	if sp.Get(Vector{1, 0}) != 'X' || sp.Get(Vector{5, 5}) != 'Y' {
		t.Fatal("writes did not land")
	}

	sp.Rollback(mark)
	if v := sp.Get(Vector{1, 0}); v != 'b' {
		t.Errorf("cell (1,0) after rollback = %c, want b", rune(v))
	}
	if v := sp.Get(Vector{5, 5}); v != SpaceCell {
		t.Errorf("cell (5,5) after rollback = %d, want space", v)
	}
	_, max := sp.Bounds()
	if max != (Vector{2, 0}) {
		t.Errorf("bounds after rollback = ..%v, want ..(2,0)", max)
	}
}

func TestSpaceTrimJournal(t *testing.T) {
	sp := NewSpace()
	sp.EnableJournal()
	for i := 0; i < 10; i++ {
		sp.Set(Vector{Cell(i), 0}, 'x')
	}
	sp.TrimJournal(4)
	if sp.JournalLen() != 6 {
		t.Errorf("JournalLen after trim = %d, want 6", sp.JournalLen())
	}
}

func TestSpaceRegion(t *testing.T) {
	sp := NewSpace()
	sp.insertLines([]string{"ab", "c"}, Vector{})

	got := sp.region(Vector{0, 0}, 2, 2, false)
	if got != "ab\nc \n" {
		t.Errorf("region = %q, want %q", got, "ab\nc \n")
	}

	got = sp.region(Vector{0, 0}, 2, 2, true)
	if got != "ab\nc\n" {
		t.Errorf("linear region = %q, want %q", got, "ab\nc\n")
	}
}
