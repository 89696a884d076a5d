package gofunge

import (
	"os"
	"os/exec"
	"strings"
	"time"
)

// Instruction sets per dialect. Cells outside the active set (and the
// letters A-Z with no fingerprint loaded) fall through to the dialect's
// error policy: Befunge-93 ignores them, Funge-98 reflects.
const (
	b93Instructions = "!\"#$%&*+,-./0123456789:<>?@\\^_`gpv|~"
	b98Instructions = "!\"#$%&'()*+,-./0123456789:;<=>?@[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
)

func (d Dialect) supports(op Cell) bool {
	if op < 0 || op > 255 {
		return false
	}
	set := b98Instructions
	if d == Befunge93 {
		set = b93Instructions
	}
	return strings.ContainsRune(set, rune(op))
}

// execute runs one instruction against ip. It returns advance=false when
// the instruction managed the pointer's position itself (or the pointer
// terminated or suspended); otherwise the scheduler steps the pointer
// afterwards. ErrInputPending is the only error that propagates; every
// other failure is resolved here per the dialect's error policy.
func (it *Interpreter) execute(ip *IP, op Cell) (advance bool, err error) {
	if ip.StringMode {
		switch op {
		case '"':
			ip.StringMode = false
		case SpaceCell:
			ip.Stacks.Push(op)
			if it.cfg.Dialect == Funge98 {
				// A run of spaces pushes a single space.
				for it.space.Get(ip.Pos) == SpaceCell {
					prev := ip.Pos
					ip.Step(it.space)
					if ip.Pos == prev {
						break
					}
				}
				return false, nil
			}
		default:
			ip.Stacks.Push(op)
		}
		return true, nil
	}

	if op >= 'A' && op <= 'Z' {
		if fn, ok := ip.override(op); ok {
			return true, fn(it, ip)
		}
		it.onError(ip)
		return true, nil
	}

	if !it.cfg.Dialect.supports(op) && op != SpaceCell {
		it.log.TraceCat(CatDispatch, "ip %d: cell %d not in %s set", ip.ID, op, it.cfg.Dialect)
		it.onError(ip)
		return true, nil
	}

	switch op {
	case SpaceCell:
		// Reachable only in Befunge-93, where a space is a one-tick no-op.

	case '+', '-', '*', '/', '%':
		b := ip.Stacks.Pop()
		a := ip.Stacks.Pop()
		ip.Stacks.Push(arith(op, a, b))

	case '!':
		if ip.Stacks.Pop() == 0 {
			ip.Stacks.Push(1)
		} else {
			ip.Stacks.Push(0)
		}

	case '`':
		b := ip.Stacks.Pop()
		a := ip.Stacks.Pop()
		if a > b {
			ip.Stacks.Push(1)
		} else {
			ip.Stacks.Push(0)
		}

	case '>':
		ip.Delta = East
	case '<':
		ip.Delta = West
	case '^':
		ip.Delta = North
	case 'v':
		ip.Delta = South

	case '?':
		switch it.rand.Intn(4) {
		case 0:
			ip.Delta = West
		case 1:
			ip.Delta = East
		case 2:
			ip.Delta = North
		default:
			ip.Delta = South
		}

	case '_':
		if ip.Stacks.Pop() == 0 {
			ip.Delta = East
		} else {
			ip.Delta = West
		}

	case '|':
		if ip.Stacks.Pop() == 0 {
			ip.Delta = South
		} else {
			ip.Delta = North
		}

	case '"':
		ip.StringMode = true

	case ':':
		v := ip.Stacks.Pop()
		ip.Stacks.Push(v)
		ip.Stacks.Push(v)

	case '\\':
		a := ip.Stacks.Pop()
		b := ip.Stacks.Pop()
		ip.Stacks.Push(a)
		ip.Stacks.Push(b)

	case '$':
		ip.Stacks.Pop()

	case '.':
		if it.port.WriteNumber(ip.Stacks.Pop()) != nil {
			ip.Reverse()
		}

	case ',':
		if it.port.WriteChar(ip.Stacks.Pop()) != nil {
			ip.Reverse()
		}

	case '#':
		ip.Step(it.space)

	case 'p':
		y := ip.Stacks.Pop()
		x := ip.Stacks.Pop()
		v := ip.Stacks.Pop()
		it.space.Set(Vector{x + ip.Offset.X, y + ip.Offset.Y}, v)

	case 'g':
		y := ip.Stacks.Pop()
		x := ip.Stacks.Pop()
		ip.Stacks.Push(it.space.Get(Vector{x + ip.Offset.X, y + ip.Offset.Y}))

	case '&':
		n, err := it.port.ReadNumber()
		if err == ErrInputPending {
			return false, err
		}
		if err != nil {
			ip.Reverse()
			break
		}
		ip.Stacks.Push(n)

	case '~':
		c, err := it.port.ReadChar()
		if err == ErrInputPending {
			return false, err
		}
		if err != nil {
			ip.Reverse()
			break
		}
		ip.Stacks.Push(c)

	case '@':
		ip.Status = Terminated
		return false, nil

	// Funge-98 from here; the set check above shields Befunge-93.

	case '[':
		ip.TurnLeft()
	case ']':
		ip.TurnRight()

	case '\'':
		ip.Step(it.space)
		ip.Stacks.Push(it.space.Get(ip.Pos))

	case 's':
		ip.Step(it.space)
		it.space.Set(ip.Pos, ip.Stacks.Pop())

	case '{':
		n := ip.Stacks.Pop()
		ip.Stacks.Begin(n, ip.Offset)
		next := *ip
		next.Step(it.space)
		ip.Offset = next.Pos

	case '}':
		n := ip.Stacks.Pop()
		if offset, ok := ip.Stacks.End(n); ok {
			ip.Offset = offset
		} else {
			ip.Reverse()
		}

	case 'u':
		if !ip.Stacks.Transfer(ip.Stacks.Pop()) {
			ip.Reverse()
		}

	case '(':
		count := ip.Stacks.Pop()
		var id Cell
		for i := Cell(0); i < count; i++ {
			id = id*256 + ip.Stacks.Pop()
		}
		fp, ok := it.prints.Lookup(id)
		if !ok {
			it.log.DebugCat(CatFingerprint, "ip %d: unknown fingerprint %#x", ip.ID, id)
			ip.Reverse()
			break
		}
		for letter, fn := range fp.Instructions {
			ip.pushOverride(letter, id, fn)
		}
		ip.loadedPrints = append(ip.loadedPrints, id)
		ip.Stacks.Push(id)
		ip.Stacks.Push(1)
		it.log.DebugCat(CatFingerprint, "ip %d: loaded %s", ip.ID, fp.Name)

	case ')':
		count := ip.Stacks.Pop()
		var id Cell
		for i := Cell(0); i < count; i++ {
			id = id*256 + ip.Stacks.Pop()
		}
		fp, ok := it.prints.Lookup(id)
		if !ok || !ip.hasLoaded(id) {
			ip.Reverse()
			break
		}
		for letter := range fp.Instructions {
			ip.popOverride(letter, id)
		}
		for i := len(ip.loadedPrints) - 1; i >= 0; i-- {
			if ip.loadedPrints[i] == id {
				ip.loadedPrints = append(ip.loadedPrints[:i], ip.loadedPrints[i+1:]...)
				break
			}
		}
		it.log.DebugCat(CatFingerprint, "ip %d: unloaded %s", ip.ID, fp.Name)

	case '=':
		line := ip.readString()
		if !it.cfg.AllowExec {
			ip.Reverse()
			break
		}
		ip.Stacks.Push(it.execCommand(line))

	case 'i':
		name := ip.readString()
		flags := ip.Stacks.Pop()
		y := ip.Stacks.Pop()
		x := ip.Stacks.Pop()
		origin := Vector{x, y}
		if !it.cfg.AllowFileIO {
			ip.Reverse()
			break
		}
		text, err := os.ReadFile(name)
		if err != nil {
			it.log.DebugCat(CatIO, "ip %d: i %q: %v", ip.ID, name, err)
			ip.Reverse()
			break
		}
		var w, h Cell
		if flags&1 != 0 {
			w, h = it.space.insertBinary(text, origin)
		} else {
			w, h = it.space.insertLines(splitLines(string(text)), origin)
		}
		ip.Stacks.Push(w)
		ip.Stacks.Push(h)
		ip.Stacks.Push(origin.X)
		ip.Stacks.Push(origin.Y)

	case 'o':
		name := ip.readString()
		flags := ip.Stacks.Pop()
		y := ip.Stacks.Pop()
		x := ip.Stacks.Pop()
		h := ip.Stacks.Pop()
		w := ip.Stacks.Pop()
		if !it.cfg.AllowFileIO {
			ip.Reverse()
			break
		}
		text := it.space.region(Vector{x, y}, w, h, flags&1 != 0)
		if err := os.WriteFile(name, []byte(text), 0o644); err != nil {
			it.log.DebugCat(CatIO, "ip %d: o %q: %v", ip.ID, name, err)
			ip.Reverse()
		}

	case 'j':
		n := ip.Stacks.Pop()
		if n < 0 {
			ip.Reverse()
		}
		steps := n
		if steps < 0 {
			steps = -steps
		}
		for i := Cell(0); i < steps; i++ {
			ip.Step(it.space)
		}
		if n < 0 {
			ip.Reverse()
		}

	case 'k':
		n := ip.Stacks.Pop()
		if n <= 0 {
			// Hop onto the next instruction so the ordinary advance
			// skips it without executing.
			next := *ip
			next.Step(it.space)
			next.SkipToInstruction(it.space, it.cfg.Dialect)
			ip.Pos = next.Pos
			break
		}
		next := *ip
		next.Step(it.space)
		next.SkipToInstruction(it.space, it.cfg.Dialect)
		target := it.space.Get(next.Pos)
		for i := Cell(0); i < n; i++ {
			adv, err := it.execute(ip, target)
			if err == ErrInputPending {
				// Retrying would re-pop the count, so resolve as an
				// instruction failure instead of suspending mid-loop.
				ip.Reverse()
				return true, nil
			}
			if ip.Status != Running {
				return false, nil
			}
			advance = adv
		}
		return advance, nil

	case 'n':
		ip.Stacks.TOSS().Clear()

	case 'q':
		it.quit(ip.Stacks.Pop())
		ip.Status = Terminated
		return false, nil

	case 'r':
		ip.Reverse()

	case 't':
		it.spawn(ip)

	case 'w':
		b := ip.Stacks.Pop()
		a := ip.Stacks.Pop()
		if a < b {
			ip.TurnLeft()
		} else if a > b {
			ip.TurnRight()
		}

	case 'x':
		y := ip.Stacks.Pop()
		x := ip.Stacks.Pop()
		ip.Delta = Vector{x, y}

	case 'y':
		it.sysInfo(ip)

	case 'z':
		// no-op

	case ';':
		// Handled during advancement; reaching it here means a pointer
		// was placed directly on it, so just take the tick.

	default:
		switch {
		case op >= '0' && op <= '9':
			ip.Stacks.Push(op - '0')
		case op >= 'a' && op <= 'f':
			ip.Stacks.Push(op - 'a' + 10)
		default:
			it.onError(ip)
		}
	}
	return true, nil
}

// arith applies a binary arithmetic instruction. Division and modulo by
// zero yield 0.
func arith(op, a, b Cell) Cell {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		if b == 0 {
			return 0
		}
		return a / b
	default:
		if b == 0 {
			return 0
		}
		return a % b
	}
}

// onError applies the dialect policy for an unsupported instruction.
func (it *Interpreter) onError(ip *IP) {
	if it.cfg.onError() == Reflect {
		ip.Reverse()
	}
}

// readString pops a 0-terminated string ("0gnirts") off the stack.
func (ip *IP) readString() string {
	var b strings.Builder
	for {
		c := ip.Stacks.Pop()
		if c == 0 {
			return b.String()
		}
		b.WriteRune(rune(c))
	}
}

// execCommand runs a shell-less command line for '=': fields split on
// whitespace, with backslash-escaped spaces kept literal. The command's
// stdout goes to the program's output port; the pushed value is the
// exit status, or 1 when the command could not run at all.
func (it *Interpreter) execCommand(line string) Cell {
	args := splitCommand(line)
	if len(args) == 0 {
		return 1
	}
	it.log.DebugCat(CatIO, "= %q", args)
	out, err := exec.Command(args[0], args[1:]...).Output()
	for _, b := range out {
		it.port.WriteChar(Cell(b))
	}
	if err == nil {
		return 0
	}
	if exit, ok := err.(*exec.ExitError); ok {
		return Cell(exit.ExitCode())
	}
	return 1
}

func splitCommand(line string) []string {
	var args []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args
}

// sysInfo implements 'y': push the full information block, then for a
// positive request n pick the nth cell from the top of the augmented
// stack, drop the block, and push the pick.
func (it *Interpreter) sysInfo(ip *IP) {
	n := ip.Stacks.Pop()
	it.space.Shrink()
	toss := ip.Stacks.TOSS()
	before := toss.Len()

	sizes := make([]Cell, ip.Stacks.Depth())
	for i, s := range ip.Stacks.Stacks() {
		sizes[i] = Cell(len(s))
	}

	// 20: environment, NAME=VALUE pairs, each 0-terminated, block
	// 0-terminated, pushed so the first variable ends up on top.
	var env []Cell
	for _, kv := range os.Environ() {
		for _, r := range kv {
			env = append(env, Cell(r))
		}
		env = append(env, 0)
	}
	env = append(env, 0, 0)
	pushReversed(toss, env)

	// 19: program arguments, 0-terminated each, 0-0 terminated block.
	var args []Cell
	for _, a := range it.cfg.Args {
		for _, r := range a {
			args = append(args, Cell(r))
		}
		args = append(args, 0)
	}
	for _, r := range it.progName {
		args = append(args, Cell(r))
	}
	args = append(args, 0, 0, 0)
	pushReversed(toss, args)

	// 18: size of each stack, 17: number of stacks.
	toss.PushAll(sizes)
	toss.Push(Cell(ip.Stacks.Depth()))

	// 16: time, 15: date.
	now := time.Now()
	toss.Push(Cell(now.Hour()*256*256 + now.Minute()*256 + now.Second()))
	toss.Push(Cell((now.Year()-1900)*256*256 + int(now.Month())*256 + now.Day()))

	// 14: greatest point relative to the least, 13: least point.
	min, max := it.space.Bounds()
	toss.Push(max.X - min.X)
	toss.Push(max.Y - min.Y)
	toss.Push(min.X)
	toss.Push(min.Y)

	// 12..10: storage offset, delta, position.
	toss.Push(ip.Offset.X)
	toss.Push(ip.Offset.Y)
	toss.Push(ip.Delta.X)
	toss.Push(ip.Delta.Y)
	toss.Push(ip.Pos.X)
	toss.Push(ip.Pos.Y)

	// 9: team, 8: id, 7: dimensions, 6: path separator,
	// 5: '=' paradigm, 4: version, 3: handprint, 2: cell bytes, 1: flags.
	toss.Push(0)
	toss.Push(Cell(ip.ID))
	toss.Push(2)
	toss.Push(Cell(os.PathSeparator))
	toss.Push(1)
	toss.Push(versionCell())
	toss.Push(FingerprintID("GFNG"))
	toss.Push(8)
	toss.Push(it.sysFlags())

	if n > 0 {
		l := toss.Len()
		pick := toss.At(l - int(n))
		for toss.Len() > before {
			toss.Pop()
		}
		toss.Push(pick)
	}
}

func pushReversed(s *Stack, cells []Cell) {
	for i := len(cells) - 1; i >= 0; i-- {
		s.Push(cells[i])
	}
}

// sysFlags builds the 'y' flags cell: bit 0 't', bit 1 'i', bit 2 'o',
// bit 3 '=', bit 4 unbuffered IO.
func (it *Interpreter) sysFlags() Cell {
	flags := Cell(16)
	if it.cfg.Dialect.supports('t') {
		flags |= 1
	}
	if it.cfg.Dialect.supports('i') && it.cfg.AllowFileIO {
		flags |= 2
	}
	if it.cfg.Dialect.supports('o') && it.cfg.AllowFileIO {
		flags |= 4
	}
	if it.cfg.Dialect.supports('=') && it.cfg.AllowExec {
		flags |= 8
	}
	return flags
}

// versionCell folds the release version into a single number, 0.3.0
// becoming 30.
func versionCell() Cell {
	var n Cell
	for _, r := range Version {
		if r >= '0' && r <= '9' {
			n = n*10 + Cell(r-'0')
		}
	}
	return n
}
