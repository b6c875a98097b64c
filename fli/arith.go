package fli

// evalArith evaluates an arithmetic expression cell to an Int or Float.
// The second return is an exception ball to throw, or nil.
func (m *Machine) evalArith(c Cell) (Cell, Cell) {
	c = deref(c)
	switch c := c.(type) {
	case Int, Float:
		return c, nil
	case *Ref:
		return nil, m.instantiationErrorCell()
	case Atom:
		return nil, m.typeErrorCell("evaluable", indicatorCell(indicator{string(c), 0}))
	case Str, Ptr:
		return nil, m.typeErrorCell("evaluable", c)
	case *Struct:
		return m.evalFunc(c)
	default:
		return nil, m.typeErrorCell("evaluable", c)
	}
}

func (m *Machine) evalFunc(s *Struct) (Cell, Cell) {
	args := make([]Cell, len(s.Args))
	for i, arg := range s.Args {
		val, ball := m.evalArith(arg)
		if ball != nil {
			return nil, ball
		}
		args[i] = val
	}
	switch structIndicator(s) {
	case indicator{"+", 2}:
		if a, b, ok := bothInts(args[0], args[1]); ok {
			return a + b, nil
		}
		return toFloat(args[0]) + toFloat(args[1]), nil
	case indicator{"-", 2}:
		if a, b, ok := bothInts(args[0], args[1]); ok {
			return a - b, nil
		}
		return toFloat(args[0]) - toFloat(args[1]), nil
	case indicator{"*", 2}:
		if a, b, ok := bothInts(args[0], args[1]); ok {
			return a * b, nil
		}
		return toFloat(args[0]) * toFloat(args[1]), nil
	case indicator{"/", 2}:
		if a, b, ok := bothInts(args[0], args[1]); ok {
			if b == 0 {
				return nil, m.evaluationErrorCell("zero_divisor")
			}
			if a%b == 0 {
				return a / b, nil
			}
			return toFloat(a) / toFloat(b), nil
		}
		divisor := toFloat(args[1])
		if divisor == 0 {
			return nil, m.evaluationErrorCell("zero_divisor")
		}
		return toFloat(args[0]) / divisor, nil
	case indicator{"//", 2}:
		a, aok := args[0].(Int)
		b, bok := args[1].(Int)
		if !aok {
			return nil, m.typeErrorCell("integer", args[0])
		}
		if !bok {
			return nil, m.typeErrorCell("integer", args[1])
		}
		if b == 0 {
			return nil, m.evaluationErrorCell("zero_divisor")
		}
		return a / b, nil
	case indicator{"mod", 2}:
		a, aok := args[0].(Int)
		b, bok := args[1].(Int)
		if !aok {
			return nil, m.typeErrorCell("integer", args[0])
		}
		if !bok {
			return nil, m.typeErrorCell("integer", args[1])
		}
		if b == 0 {
			return nil, m.evaluationErrorCell("zero_divisor")
		}
		// Floored modulo: the result follows the divisor's sign.
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, nil
	case indicator{"-", 1}:
		if a, ok := args[0].(Int); ok {
			return -a, nil
		}
		return -args[0].(Float), nil
	case indicator{"+", 1}:
		return args[0], nil
	case indicator{"abs", 1}:
		if a, ok := args[0].(Int); ok {
			if a < 0 {
				return -a, nil
			}
			return a, nil
		}
		if f := args[0].(Float); f < 0 {
			return -f, nil
		}
		return args[0], nil
	case indicator{"min", 2}:
		if compareArith(args[0], args[1]) <= 0 {
			return args[0], nil
		}
		return args[1], nil
	case indicator{"max", 2}:
		if compareArith(args[0], args[1]) >= 0 {
			return args[0], nil
		}
		return args[1], nil
	default:
		return nil, m.typeErrorCell("evaluable", indicatorCell(structIndicator(s)))
	}
}

func bothInts(a, b Cell) (Int, Int, bool) {
	x, xok := a.(Int)
	y, yok := b.(Int)
	return x, y, xok && yok
}

func toFloat(c Cell) Float {
	switch c := c.(type) {
	case Int:
		return Float(c)
	case Float:
		return c
	}
	panic("toFloat: not a number")
}

// compareArith compares two evaluated numbers by value. Unlike the
// standard order of terms, 1 and 1.0 compare equal here.
func compareArith(a, b Cell) int {
	if x, y, ok := bothInts(a, b); ok {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	x, y := toFloat(a), toFloat(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
