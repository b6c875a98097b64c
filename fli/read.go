package fli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brunokim/logic-embed/runes"
)

// SyntaxError reports where reading failed. Line and Col are 1-based.
type SyntaxError struct {
	Msg  string
	Line int
	Col  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ReadTerm parses text as a single term into t. The clause dot is
// optional. On failure the syntax error term is stored in t and the
// returned error is a *SyntaxError.
func (m *Machine) ReadTerm(t TermRef, text string) error {
	_, err := m.readInto(t, text)
	return err
}

// ReadTermWithVars parses like ReadTerm and also returns the term's named
// variables, each holding a fresh term ref. Underscore variables are not
// named.
func (m *Machine) ReadTermWithVars(t TermRef, text string) (map[string]TermRef, error) {
	return m.readInto(t, text)
}

func (m *Machine) readInto(t TermRef, text string) (map[string]TermRef, error) {
	r := newReader(m, text)
	cell, err := r.parseTerm(maxPriority)
	if err == nil && r.tok.kind != tkEnd && r.tok.kind != tkEOF {
		err = r.errf("operator expected before %s", r.tok.describe())
	}
	if err != nil {
		m.setCell(t, m.syntaxErrorCell(err.(*SyntaxError).Msg))
		return nil, err
	}
	m.setCell(t, cell)
	vars := make(map[string]TermRef, len(r.vars))
	for name, ref := range r.vars {
		vt := m.NewTermRefs(1)
		m.setCell(vt, ref)
		vars[name] = vt
	}
	return vars, nil
}

// ReadProgram parses a sequence of dot-terminated clauses. Variables are
// scoped per clause.
func (m *Machine) ReadProgram(text string) ([]TermRef, error) {
	r := newReader(m, text)
	var terms []TermRef
	for r.tok.kind != tkEOF {
		r.vars = make(map[string]*Ref)
		cell, err := r.parseTerm(maxPriority)
		if err != nil {
			return nil, err
		}
		if r.tok.kind != tkEnd {
			return nil, r.errf("expected end of clause, found %s", r.tok.describe())
		}
		r.advance()
		t := m.NewTermRefs(1)
		m.setCell(t, cell)
		terms = append(terms, t)
	}
	return terms, nil
}

// ---- Parser

type reader struct {
	m    *Machine
	lx   *lexer
	tok  token
	vars map[string]*Ref
}

func newReader(m *Machine, text string) *reader {
	r := &reader{m: m, lx: newLexer(text), vars: make(map[string]*Ref)}
	r.advance()
	return r
}

func (r *reader) advance() { r.tok = r.lx.next() }

func (r *reader) errf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: r.tok.line, Col: r.tok.col}
}

// parseTerm reads a term whose priority does not exceed maxP, climbing
// into infix operators while they fit.
func (r *reader) parseTerm(maxP int) (Cell, error) {
	left, leftP, err := r.parsePrimary(maxP)
	if err != nil {
		return nil, err
	}
	for {
		name, def, ok := r.infixAhead()
		if !ok || def.priority > maxP {
			break
		}
		leftMax, rightMax := def.argPriorities()
		if leftP > leftMax {
			break
		}
		r.advance()
		right, err := r.parseTerm(rightMax)
		if err != nil {
			return nil, err
		}
		left = &Struct{name, []Cell{left, right}}
		leftP = def.priority
	}
	return left, nil
}

// infixAhead reports the infix operator at the current token, if any. The
// comma token doubles as the conjunction operator.
func (r *reader) infixAhead() (string, opDef, bool) {
	switch r.tok.kind {
	case tkAtom:
		if def, ok := infixOp(r.tok.text); ok {
			return r.tok.text, def, true
		}
	case tkPunct:
		if r.tok.text == "," {
			return ",", infixOps[","], true
		}
	}
	return "", opDef{}, false
}

func (r *reader) parsePrimary(maxP int) (Cell, int, error) {
	tok := r.tok
	switch tok.kind {
	case tkInt:
		r.advance()
		return Int(tok.ival), 0, nil
	case tkFloat:
		r.advance()
		return Float(tok.fval), 0, nil
	case tkStr:
		r.advance()
		return r.quotedText(tok.text), 0, nil
	case tkVar:
		r.advance()
		return r.varCell(tok.text), 0, nil
	case tkAtom:
		return r.parseAtomLed(tok, maxP)
	case tkPunct:
		switch tok.text {
		case "(":
			r.advance()
			inner, err := r.parseTerm(maxPriority)
			if err != nil {
				return nil, 0, err
			}
			if err := r.expectPunct(")"); err != nil {
				return nil, 0, err
			}
			return inner, 0, nil
		case "[":
			r.advance()
			list, err := r.parseList()
			return list, 0, err
		case "{":
			r.advance()
			if r.tok.kind == tkPunct && r.tok.text == "}" {
				r.advance()
				return Atom("{}"), 0, nil
			}
			inner, err := r.parseTerm(maxPriority)
			if err != nil {
				return nil, 0, err
			}
			if err := r.expectPunct("}"); err != nil {
				return nil, 0, err
			}
			return &Struct{"{}", []Cell{inner}}, 0, nil
		}
		return nil, 0, r.errf("unexpected %s", tok.describe())
	case tkEnd:
		return nil, 0, r.errf("unexpected end of clause")
	case tkErr:
		return nil, 0, &SyntaxError{Msg: tok.text, Line: tok.line, Col: tok.col}
	default:
		return nil, 0, r.errf("unexpected end of input")
	}
}

// parseAtomLed reads a term led by an atom: a compound call, a negative
// number literal, a prefix operator application, or the plain atom.
func (r *reader) parseAtomLed(tok token, maxP int) (Cell, int, error) {
	name := tok.text
	r.advance()
	if r.tok.kind == tkPunct && r.tok.text == "(" && r.tok.adj {
		args, err := r.parseArgs()
		if err != nil {
			return nil, 0, err
		}
		return &Struct{name, args}, 0, nil
	}
	// A minus glued to a number is a negative literal; with layout in
	// between it stays the prefix operator, so "- 1" reads as -(1).
	if name == "-" && r.tok.adj {
		switch r.tok.kind {
		case tkInt:
			v := r.tok.ival
			r.advance()
			return Int(-v), 0, nil
		case tkFloat:
			v := r.tok.fval
			r.advance()
			return Float(-v), 0, nil
		}
	}
	if def, ok := prefixOp(name); ok && def.priority <= maxP && r.beginsTerm() {
		arg, err := r.parseTerm(def.prefixArgPriority())
		if err != nil {
			return nil, 0, err
		}
		return &Struct{name, []Cell{arg}}, def.priority, nil
	}
	return Atom(name), 0, nil
}

func (r *reader) parseArgs() ([]Cell, error) {
	r.advance() // consume "("
	var args []Cell
	for {
		arg, err := r.parseTerm(999)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if r.tok.kind == tkPunct && r.tok.text == "," {
			r.advance()
			continue
		}
		break
	}
	if err := r.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (r *reader) parseList() (Cell, error) {
	if r.tok.kind == tkPunct && r.tok.text == "]" {
		r.advance()
		return nilAtom, nil
	}
	var elems []Cell
	for {
		elem, err := r.parseTerm(999)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if r.tok.kind == tkPunct && r.tok.text == "," {
			r.advance()
			continue
		}
		break
	}
	tail := Cell(nilAtom)
	if r.tok.kind == tkPunct && r.tok.text == "|" {
		r.advance()
		var err error
		tail, err = r.parseTerm(999)
		if err != nil {
			return nil, err
		}
	}
	if err := r.expectPunct("]"); err != nil {
		return nil, err
	}
	return mkListTail(elems, tail), nil
}

func (r *reader) beginsTerm() bool {
	switch r.tok.kind {
	case tkInt, tkFloat, tkStr, tkVar, tkAtom:
		return true
	case tkPunct:
		switch r.tok.text {
		case "(", "[", "{":
			return true
		}
	}
	return false
}

func (r *reader) varCell(name string) Cell {
	if name == "_" {
		return r.m.newRef()
	}
	if ref, ok := r.vars[name]; ok {
		return ref
	}
	ref := r.m.newRef()
	r.vars[name] = ref
	return ref
}

// quotedText builds the cell for a "..." literal per the machine's
// double_quotes flag.
func (r *reader) quotedText(text string) Cell {
	switch r.m.config.DoubleQuotes {
	case DoubleQuotesCodes:
		return codesList(text)
	case DoubleQuotesChars:
		return charsList(text)
	default:
		return Str(text)
	}
}

func (r *reader) expectPunct(text string) error {
	if r.tok.kind != tkPunct || r.tok.text != text {
		return r.errf("expected %q, found %s", text, r.tok.describe())
	}
	r.advance()
	return nil
}

// ---- Lexer

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkErr
	tkAtom
	tkVar
	tkInt
	tkFloat
	tkStr
	tkPunct
	tkEnd
)

type token struct {
	kind tokenKind
	text string
	ival int64
	fval float64
	line int
	col  int
	adj  bool // no whitespace between this token and the previous one
}

func (t token) describe() string {
	switch t.kind {
	case tkEOF:
		return "end of input"
	case tkErr:
		return t.text
	case tkAtom:
		return fmt.Sprintf("atom %q", t.text)
	case tkVar:
		return fmt.Sprintf("variable %s", t.text)
	case tkInt, tkFloat:
		return fmt.Sprintf("number %s", t.text)
	case tkStr:
		return "string"
	case tkPunct:
		return fmt.Sprintf("%q", t.text)
	case tkEnd:
		return "end of clause"
	}
	return "token?"
}

type lexer struct {
	src         string
	cur         int
	line        int
	col         int
	spaceBefore bool
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *lexer) peekRune() rune {
	r, _ := runes.First(l.src[l.cur:])
	return r
}

func (l *lexer) peekRuneAt(offset int) rune {
	if l.cur+offset >= len(l.src) {
		return 0
	}
	r, _ := runes.First(l.src[l.cur+offset:])
	return r
}

func (l *lexer) advanceRune() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	l.cur += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) next() token {
	if errTok, ok := l.skipSpace(); !ok {
		return errTok
	}
	tok := token{line: l.line, col: l.col, adj: !l.spaceBefore}
	if l.atEnd() {
		tok.kind = tkEOF
		return tok
	}
	r := l.peekRune()
	switch {
	case unicode.IsDigit(r):
		return l.number(tok)
	case unicode.IsUpper(r) || r == '_':
		tok.kind = tkVar
		tok.text = l.word()
		return tok
	case unicode.IsLower(r):
		tok.kind = tkAtom
		tok.text = l.word()
		return tok
	case r == '\'':
		return l.quotedAtom(tok)
	case r == '"':
		return l.quotedString(tok)
	case strings.ContainsRune("()[]{},|", r):
		l.advanceRune()
		tok.kind = tkPunct
		tok.text = string(r)
		return tok
	case r == '!' || r == ';':
		l.advanceRune()
		tok.kind = tkAtom
		tok.text = string(r)
		return tok
	case isSymbolicRune(r):
		text := l.symbolRun()
		if text == "." && l.endsClause() {
			tok.kind = tkEnd
			tok.text = "."
			return tok
		}
		tok.kind = tkAtom
		tok.text = text
		return tok
	default:
		l.advanceRune()
		tok.kind = tkErr
		tok.text = fmt.Sprintf("unexpected character %q", r)
		return tok
	}
}

// endsClause reports whether a lone dot terminates the clause: it does
// unless glued to more term text.
func (l *lexer) endsClause() bool {
	if l.atEnd() {
		return true
	}
	r := l.peekRune()
	return unicode.IsSpace(r) || r == '%'
}

func (l *lexer) skipSpace() (token, bool) {
	l.spaceBefore = false
	for !l.atEnd() {
		r := l.peekRune()
		switch {
		case unicode.IsSpace(r):
			l.advanceRune()
			l.spaceBefore = true
		case r == '%':
			for !l.atEnd() && l.peekRune() != '\n' {
				l.advanceRune()
			}
			l.spaceBefore = true
		case r == '/' && l.peekRuneAt(1) == '*':
			tok := token{line: l.line, col: l.col}
			l.advanceRune()
			l.advanceRune()
			for {
				if l.atEnd() {
					tok.kind = tkErr
					tok.text = "unterminated block comment"
					return tok, false
				}
				if l.peekRune() == '*' && l.peekRuneAt(1) == '/' {
					l.advanceRune()
					l.advanceRune()
					break
				}
				l.advanceRune()
			}
			l.spaceBefore = true
		default:
			return token{}, true
		}
	}
	return token{}, true
}

func (l *lexer) word() string {
	start := l.cur
	for !l.atEnd() {
		r := l.peekRune()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advanceRune()
	}
	return l.src[start:l.cur]
}

func (l *lexer) symbolRun() string {
	start := l.cur
	for !l.atEnd() && isSymbolicRune(l.peekRune()) {
		l.advanceRune()
	}
	return l.src[start:l.cur]
}

func (l *lexer) number(tok token) token {
	start := l.cur
	for !l.atEnd() && unicode.IsDigit(l.peekRune()) {
		l.advanceRune()
	}
	// Character code literal: 0'a, 0'\n, 0''.
	if l.src[start:l.cur] == "0" && l.peekRune() == '\'' {
		l.advanceRune()
		return l.charCode(tok)
	}
	isFloat := false
	if l.peekRune() == '.' && unicode.IsDigit(l.peekRuneAt(1)) {
		isFloat = true
		l.advanceRune()
		for !l.atEnd() && unicode.IsDigit(l.peekRune()) {
			l.advanceRune()
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		offset := 1
		if sign := l.peekRuneAt(1); sign == '+' || sign == '-' {
			offset = 2
		}
		if unicode.IsDigit(l.peekRuneAt(offset)) {
			isFloat = true
			for i := 0; i < offset; i++ {
				l.advanceRune()
			}
			for !l.atEnd() && unicode.IsDigit(l.peekRune()) {
				l.advanceRune()
			}
		}
	}
	text := l.src[start:l.cur]
	tok.text = text
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			tok.kind = tkErr
			tok.text = fmt.Sprintf("malformed float %q", text)
			return tok
		}
		tok.kind = tkFloat
		tok.fval = f
		return tok
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		tok.kind = tkErr
		tok.text = fmt.Sprintf("integer %q out of range", text)
		return tok
	}
	tok.kind = tkInt
	tok.ival = i
	return tok
}

func (l *lexer) charCode(tok token) token {
	if l.atEnd() {
		tok.kind = tkErr
		tok.text = "unterminated character code"
		return tok
	}
	r := l.advanceRune()
	switch r {
	case '\\':
		esc, ok := l.escape()
		if !ok {
			tok.kind = tkErr
			tok.text = "malformed escape in character code"
			return tok
		}
		r = esc
	case '\'':
		// 0''' and 0'' both mean the quote character.
		if l.peekRune() == '\'' {
			l.advanceRune()
		}
	}
	tok.kind = tkInt
	tok.ival = int64(r)
	tok.text = "0'" + string(r)
	return tok
}

func (l *lexer) quotedAtom(tok token) token {
	text, ok := l.quoted('\'')
	if !ok {
		tok.kind = tkErr
		tok.text = "unterminated quoted atom"
		return tok
	}
	tok.kind = tkAtom
	tok.text = text
	return tok
}

func (l *lexer) quotedString(tok token) token {
	text, ok := l.quoted('"')
	if !ok {
		tok.kind = tkErr
		tok.text = "unterminated string"
		return tok
	}
	tok.kind = tkStr
	tok.text = text
	return tok
}

// quoted reads a quote-delimited literal. The delimiter doubled inside
// the literal stands for itself.
func (l *lexer) quoted(delim rune) (string, bool) {
	l.advanceRune() // opening delimiter
	var sb strings.Builder
	for {
		if l.atEnd() {
			return "", false
		}
		r := l.advanceRune()
		switch r {
		case delim:
			if l.peekRune() == delim {
				l.advanceRune()
				sb.WriteRune(delim)
				continue
			}
			return sb.String(), true
		case '\\':
			// A backslash-newline continues the literal on the next line.
			if l.peekRune() == '\n' {
				l.advanceRune()
				continue
			}
			esc, ok := l.escape()
			if !ok {
				return "", false
			}
			sb.WriteRune(esc)
		default:
			sb.WriteRune(r)
		}
	}
}

var readEscapes = map[rune]rune{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'`':  '`',
}

func (l *lexer) escape() (rune, bool) {
	if l.atEnd() {
		return 0, false
	}
	r := l.advanceRune()
	if esc, ok := readEscapes[r]; ok {
		return esc, true
	}
	return r, true
}
