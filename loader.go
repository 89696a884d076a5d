package gofunge

import (
	"os"
	"strings"
)

// splitLines breaks source text into rows, accepting any of the three
// line-end conventions and discarding form feeds.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\f", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// ParseSource turns program text into grid rows. A leading "#!" line is
// dropped so executable funge scripts load cleanly. Source with no
// cells at all is rejected; an interpreter needs at least one.
func ParseSource(text string) ([]string, error) {
	lines := splitLines(text)
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		lines = lines[1:]
	}
	for _, line := range lines {
		if strings.TrimRight(line, " ") != "" {
			return lines, nil
		}
	}
	return nil, ErrEmptySource
}

// insertLines writes rows of text into the space at origin, leaving
// space characters unset. Returns the block's width and height, as the
// 'i' instruction reports them.
func (sp *Space) insertLines(lines []string, origin Vector) (w, h Cell) {
	for dy, line := range lines {
		x := Cell(0)
		for _, r := range line {
			sp.Set(Vector{origin.X + x, origin.Y + Cell(dy)}, Cell(r))
			x++
		}
		if x > w {
			w = x
		}
	}
	return w, Cell(len(lines))
}

// insertBinary writes raw bytes as a single row at origin, the 'i'
// instruction's binary mode.
func (sp *Space) insertBinary(data []byte, origin Vector) (w, h Cell) {
	for i, b := range data {
		sp.Set(Vector{origin.X + Cell(i), origin.Y}, Cell(b))
	}
	return Cell(len(data)), 1
}

// region renders a w-by-h rectangle starting at origin as text, one row
// per line with a trailing newline. In linear mode trailing blanks on
// each row are trimmed, the 'o' instruction's text form.
func (sp *Space) region(origin Vector, w, h Cell, linear bool) string {
	var rows []string
	for dy := Cell(0); dy < h; dy++ {
		var b strings.Builder
		for dx := Cell(0); dx < w; dx++ {
			b.WriteRune(rune(sp.Get(Vector{origin.X + dx, origin.Y + dy})))
		}
		row := b.String()
		if linear {
			row = strings.TrimRight(row, " \t")
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n") + "\n"
}

// ReadProgram loads and parses a source file.
func ReadProgram(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(string(data))
}
