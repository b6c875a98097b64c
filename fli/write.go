package fli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/brunokim/logic-embed/runes"
)

// WriteOpts controls term output. The zero value is write/1 behavior:
// operators in their natural notation, atoms and strings unquoted.
type WriteOpts struct {
	// Quoted emits atoms and strings with quotes and escapes, so the
	// output reads back.
	Quoted bool
}

// FormatCell renders a cell unquoted.
func FormatCell(c Cell) string { return formatCell(c) }

// WriteTerm renders the term held by t.
func (m *Machine) WriteTerm(t TermRef, opts WriteOpts) string {
	return formatCellOpts(m.cell(t), opts)
}

func formatCell(c Cell) string { return formatCellOpts(c, WriteOpts{}) }

func formatCellOpts(c Cell, opts WriteOpts) string {
	w := &termWriter{
		quoted: opts.Quoted,
		path:   make(map[*Struct]bool),
		labels: make(map[*Struct]string),
	}
	w.writeCell(c, maxPriority)
	return w.sb.String()
}

// termWriter renders cells. path holds the structs on the current descent;
// hitting one again is a cycle, printed as a _S<n> label instead of
// recursing forever.
type termWriter struct {
	sb     strings.Builder
	quoted bool
	path   map[*Struct]bool
	labels map[*Struct]string
}

func (w *termWriter) writeCell(c Cell, maxP int) {
	c = deref(c)
	switch c := c.(type) {
	case *Ref:
		fmt.Fprintf(&w.sb, "_G%d", c.id)
	case Atom:
		w.writeAtom(string(c))
	case Int:
		w.sb.WriteString(strconv.FormatInt(int64(c), 10))
	case Float:
		w.sb.WriteString(formatFloat(float64(c)))
	case Str:
		w.writeStr(string(c))
	case Ptr:
		fmt.Fprintf(&w.sb, "0x%x", uintptr(c))
	case *Struct:
		w.writeStruct(c, maxP)
	default:
		panic(fmt.Sprintf("writeCell: unhandled type %T (%v)", c, c))
	}
}

func (w *termWriter) writeStruct(s *Struct, maxP int) {
	if w.path[s] {
		w.sb.WriteString(w.labelFor(s))
		return
	}
	w.path[s] = true
	defer delete(w.path, s)

	if isPair(s) {
		w.writeList(s)
		return
	}
	if s.Name == "{}" && len(s.Args) == 1 {
		w.sb.WriteByte('{')
		w.writeCell(s.Args[0], maxPriority)
		w.sb.WriteByte('}')
		return
	}
	if def, ok := infixOp(s.Name); ok && len(s.Args) == 2 {
		w.writeInfix(s, def, maxP)
		return
	}
	if def, ok := prefixOp(s.Name); ok && len(s.Args) == 1 {
		w.writePrefix(s, def, maxP)
		return
	}
	w.writeAtom(s.Name)
	w.sb.WriteByte('(')
	for i, arg := range s.Args {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		w.writeCell(arg, 999)
	}
	w.sb.WriteByte(')')
}

func (w *termWriter) writeList(s *Struct) {
	w.sb.WriteByte('[')
	seen := map[*Struct]bool{s: true}
	w.writeCell(s.Args[0], 999)
	tail := deref(s.Args[1])
	for {
		pair, ok := tail.(*Struct)
		if !ok || !isPair(pair) {
			break
		}
		if seen[pair] || w.path[pair] {
			w.sb.WriteByte('|')
			w.sb.WriteString(w.labelFor(pair))
			w.sb.WriteByte(']')
			return
		}
		seen[pair] = true
		w.sb.WriteString(", ")
		w.writeCell(pair.Args[0], 999)
		tail = deref(pair.Args[1])
	}
	if tail != nilAtom {
		w.sb.WriteByte('|')
		w.writeCell(tail, 999)
	}
	w.sb.WriteByte(']')
}

func (w *termWriter) writeInfix(s *Struct, def opDef, maxP int) {
	leftP, rightP := def.argPriorities()
	left := w.render(s.Args[0], leftP)
	right := w.render(s.Args[1], rightP)
	parens := def.priority > maxP
	if parens {
		w.sb.WriteByte('(')
	}
	w.sb.WriteString(left)
	switch {
	case isAlphaOp(s.Name):
		w.sb.WriteByte(' ')
		w.sb.WriteString(s.Name)
		w.sb.WriteByte(' ')
	default:
		if needSpace(left, s.Name) {
			w.sb.WriteByte(' ')
		}
		w.sb.WriteString(s.Name)
		if needSpace(s.Name, right) {
			w.sb.WriteByte(' ')
		}
	}
	w.sb.WriteString(right)
	if parens {
		w.sb.WriteByte(')')
	}
}

func (w *termWriter) writePrefix(s *Struct, def opDef, maxP int) {
	arg := w.render(s.Args[0], def.prefixArgPriority())
	parens := def.priority > maxP
	if parens {
		w.sb.WriteByte('(')
	}
	w.sb.WriteString(s.Name)
	// A space keeps -(1) from reading back as the integer -1, and stops
	// symbol runs from merging into one token.
	if isAlphaOp(s.Name) || needSpace(s.Name, arg) || startsWithDigit(arg) {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(arg)
	if parens {
		w.sb.WriteByte(')')
	}
}

// render formats a cell to a string, sharing cycle state with the writer.
func (w *termWriter) render(c Cell, maxP int) string {
	sub := &termWriter{quoted: w.quoted, path: w.path, labels: w.labels}
	sub.writeCell(c, maxP)
	return sub.sb.String()
}

func (w *termWriter) labelFor(s *Struct) string {
	if label, ok := w.labels[s]; ok {
		return label
	}
	label := fmt.Sprintf("_S%d", len(w.labels)+1)
	w.labels[s] = label
	return label
}

// ---- Atom and string quoting

const symbolicChars = `+-*/\^<>=~:.?@#&$`

func isSymbolicRune(r rune) bool { return strings.ContainsRune(symbolicChars, r) }

func isAlphaOp(name string) bool {
	r, _ := runes.First(name)
	return unicode.IsLetter(r)
}

func needSpace(prev, next string) bool {
	last, ok1 := runes.Last(prev)
	first, ok2 := runes.First(next)
	return ok1 && ok2 && isSymbolicRune(last) && isSymbolicRune(first)
}

func startsWithDigit(s string) bool {
	r, _ := runes.First(s)
	return unicode.IsDigit(r)
}

func (w *termWriter) writeAtom(name string) {
	if !w.quoted || !atomNeedsQuotes(name) {
		w.sb.WriteString(name)
		return
	}
	w.sb.WriteByte('\'')
	for _, r := range name {
		if esc, ok := atomEscapes[r]; ok {
			w.sb.WriteString(esc)
			continue
		}
		w.sb.WriteRune(r)
	}
	w.sb.WriteByte('\'')
}

func (w *termWriter) writeStr(s string) {
	if !w.quoted {
		w.sb.WriteString(s)
		return
	}
	w.sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			w.sb.WriteString(`\"`)
		case '\\':
			w.sb.WriteString(`\\`)
		case '\n':
			w.sb.WriteString(`\n`)
		case '\t':
			w.sb.WriteString(`\t`)
		default:
			w.sb.WriteRune(r)
		}
	}
	w.sb.WriteByte('"')
}

var atomEscapes = map[rune]string{
	'\a': `\a`,
	'\b': `\b`,
	'\f': `\f`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\v': `\v`,
	'\\': `\\`,
	'\'': `\'`,
}

// atomNeedsQuotes reports whether the atom does not read back bare: not a
// lowercase-led word, not a symbol run, and not one of the solo atoms.
func atomNeedsQuotes(name string) bool {
	switch name {
	case "":
		return true
	case "[]", "{}", "!", ";":
		return false
	}
	r, _ := runes.First(name)
	if unicode.IsLower(r) {
		for _, r := range name {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return true
			}
		}
		return false
	}
	for _, r := range name {
		if !isSymbolicRune(r) {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
