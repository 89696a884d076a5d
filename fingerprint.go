package gofunge

// InstructionFunc is the implementation of a single instruction. It runs
// against the interpreter and the pointer executing it; returning an
// error other than ErrInputPending reflects or ignores per the dialect.
type InstructionFunc func(it *Interpreter, ip *IP) error

// Fingerprint is a loadable extension library: a 32-bit identifier
// (the letters of its name folded big-endian into a cell) and a set of
// semantics bound to the instructions A-Z.
type Fingerprint struct {
	ID           Cell
	Name         string
	Instructions map[Cell]InstructionFunc
}

// FingerprintID folds a name into its identifier, e.g. "NULL" becomes
// 0x4E554C4C.
func FingerprintID(name string) Cell {
	var id Cell
	for _, r := range name {
		id = id*256 + Cell(r)
	}
	return id
}

// FingerprintRegistry maps identifiers to fingerprints. The interpreter
// owns one, pre-populated with the builtins; callers may register their
// own before running a program.
type FingerprintRegistry struct {
	prints map[Cell]*Fingerprint
}

// NewFingerprintRegistry creates a registry holding the builtin
// fingerprints NULL, ROMA and MODU.
func NewFingerprintRegistry() *FingerprintRegistry {
	r := &FingerprintRegistry{prints: make(map[Cell]*Fingerprint)}
	r.Register(nullFingerprint())
	r.Register(romaFingerprint())
	r.Register(moduFingerprint())
	return r
}

// Register adds or replaces a fingerprint, keyed by its ID.
func (r *FingerprintRegistry) Register(fp *Fingerprint) {
	r.prints[fp.ID] = fp
}

// Lookup returns the fingerprint with the given ID, if registered.
func (r *FingerprintRegistry) Lookup(id Cell) (*Fingerprint, bool) {
	fp, ok := r.prints[id]
	return fp, ok
}

// Names returns the names of every registered fingerprint.
func (r *FingerprintRegistry) Names() []string {
	out := make([]string, 0, len(r.prints))
	for _, fp := range r.prints {
		out = append(out, fp.Name)
	}
	return out
}

func reflectInstruction(_ *Interpreter, ip *IP) error {
	ip.Reverse()
	return nil
}

// nullFingerprint binds every letter to reflect, useful for masking
// previously loaded semantics.
func nullFingerprint() *Fingerprint {
	fp := &Fingerprint{
		ID:           FingerprintID("NULL"),
		Name:         "NULL",
		Instructions: make(map[Cell]InstructionFunc, 26),
	}
	for letter := Cell('A'); letter <= 'Z'; letter++ {
		fp.Instructions[letter] = reflectInstruction
	}
	return fp
}

// romaFingerprint pushes Roman numeral values.
func romaFingerprint() *Fingerprint {
	values := map[Cell]Cell{
		'C': 100, 'D': 500, 'I': 1, 'L': 50, 'M': 1000, 'V': 5, 'X': 10,
	}
	fp := &Fingerprint{
		ID:           FingerprintID("ROMA"),
		Name:         "ROMA",
		Instructions: make(map[Cell]InstructionFunc, len(values)),
	}
	for letter, v := range values {
		v := v
		fp.Instructions[letter] = func(_ *Interpreter, ip *IP) error {
			ip.Stacks.Push(v)
			return nil
		}
	}
	return fp
}

// moduFingerprint provides the modulo variants: 'M' floored, 'U' the
// Sam Holden unsigned result, 'R' the C-style remainder. Division by
// zero pushes 0 in all three, matching '%'.
func moduFingerprint() *Fingerprint {
	return &Fingerprint{
		ID:   FingerprintID("MODU"),
		Name: "MODU",
		Instructions: map[Cell]InstructionFunc{
			'M': func(_ *Interpreter, ip *IP) error {
				b := ip.Stacks.Pop()
				a := ip.Stacks.Pop()
				if b == 0 {
					ip.Stacks.Push(0)
					return nil
				}
				m := a % b
				if m != 0 && (m < 0) != (b < 0) {
					m += b
				}
				ip.Stacks.Push(m)
				return nil
			},
			'U': func(_ *Interpreter, ip *IP) error {
				b := ip.Stacks.Pop()
				a := ip.Stacks.Pop()
				if b == 0 {
					ip.Stacks.Push(0)
					return nil
				}
				m := a % b
				if m < 0 {
					if b < 0 {
						m -= b
					} else {
						m += b
					}
				}
				ip.Stacks.Push(m)
				return nil
			},
			'R': func(_ *Interpreter, ip *IP) error {
				b := ip.Stacks.Pop()
				a := ip.Stacks.Pop()
				if b == 0 {
					ip.Stacks.Push(0)
					return nil
				}
				ip.Stacks.Push(a % b)
				return nil
			},
		},
	}
}
