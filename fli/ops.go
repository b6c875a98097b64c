package fli

// Operator table shared by the reader and the writer. The subset mirrors
// the standard table: clause and directive syntax, control, comparison,
// arithmetic and module qualification.

type opType int

const (
	opXFX opType = iota
	opXFY
	opYFX
	opFY
	opFX
)

func (t opType) String() string {
	switch t {
	case opXFX:
		return "xfx"
	case opXFY:
		return "xfy"
	case opYFX:
		return "yfx"
	case opFY:
		return "fy"
	case opFX:
		return "fx"
	}
	return "op?"
}

type opDef struct {
	priority int
	typ      opType
}

// maxPriority is the priority bound for a whole term; arguments of
// compounds and list elements read at 999, below the comma.
const maxPriority = 1200

var infixOps = map[string]opDef{
	":-":   {1200, opXFX},
	"-->":  {1200, opXFX},
	";":    {1100, opXFY},
	"->":   {1050, opXFY},
	",":    {1000, opXFY},
	"=":    {700, opXFX},
	"\\=":  {700, opXFX},
	"==":   {700, opXFX},
	"\\==": {700, opXFX},
	"@<":   {700, opXFX},
	"@>":   {700, opXFX},
	"@=<":  {700, opXFX},
	"@>=":  {700, opXFX},
	"is":   {700, opXFX},
	"=:=":  {700, opXFX},
	"=\\=": {700, opXFX},
	"<":    {700, opXFX},
	">":    {700, opXFX},
	"=<":   {700, opXFX},
	">=":   {700, opXFX},
	"=..":  {700, opXFX},
	"+":    {500, opYFX},
	"-":    {500, opYFX},
	"*":    {400, opYFX},
	"/":    {400, opYFX},
	"//":   {400, opYFX},
	"mod":  {400, opYFX},
	"^":    {200, opXFY},
	":":    {200, opXFY},
}

var prefixOps = map[string]opDef{
	":-":      {1200, opFX},
	"?-":      {1200, opFX},
	"dynamic": {1150, opFX},
	"\\+":     {900, opFY},
	"-":       {200, opFY},
	"+":       {200, opFY},
}

func infixOp(name string) (opDef, bool) {
	def, ok := infixOps[name]
	return def, ok
}

func prefixOp(name string) (opDef, bool) {
	def, ok := prefixOps[name]
	return def, ok
}

// argPriorities returns the maximum priorities allowed for an infix
// operator's arguments.
func (def opDef) argPriorities() (left, right int) {
	switch def.typ {
	case opXFX:
		return def.priority - 1, def.priority - 1
	case opXFY:
		return def.priority - 1, def.priority
	case opYFX:
		return def.priority, def.priority - 1
	}
	panic("argPriorities: not an infix operator")
}

// prefixArgPriority returns the maximum priority allowed for a prefix
// operator's argument.
func (def opDef) prefixArgPriority() int {
	if def.typ == opFY {
		return def.priority
	}
	return def.priority - 1
}
