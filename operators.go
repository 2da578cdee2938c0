package weft

// applyBinary evaluates an arithmetic or comparison operator over two
// already-evaluated operands.
func applyBinary(op string, left, right interface{}) (interface{}, error) {
	switch op {
	case "+":
		return addValues(left, right)
	case "-", "*":
		return numericOp(op, left, right)
	case "/":
		return divideValues(left, right)
	case "%":
		return moduloValues(left, right)
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return orderValues(op, left, right)
	default:
		return nil, runtimeErrorf("unsupported operator '%s'", op)
	}
}

// addValues implements +: two strings concatenate, one string stringifies
// the other operand first, and numbers add with int/int staying int.
func addValues(left, right interface{}) (interface{}, error) {
	lstr, lIsStr := left.(string)
	rstr, rIsStr := right.(string)
	switch {
	case lIsStr && rIsStr:
		return lstr + rstr, nil
	case lIsStr:
		return lstr + stringify(right), nil
	case rIsStr:
		return stringify(left) + rstr, nil
	}
	return numericOp("+", left, right)
}

// numericOp handles + - * over numbers: int op int yields int, any float
// operand promotes the result to float.
func numericOp(op string, left, right interface{}) (interface{}, error) {
	li, lInt := left.(int)
	ri, rInt := right.(int)
	if lInt && rInt {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		}
	}
	lf, lOK := toFloat(left)
	rf, rOK := toFloat(right)
	if !lOK || !rOK {
		return nil, runtimeErrorf("cannot apply '%s' to %s and %s", op, typeName(left), typeName(right))
	}
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	}
	return nil, runtimeErrorf("unsupported numeric operator '%s'", op)
}

// divideValues implements /: always a float result, even for int operands.
func divideValues(left, right interface{}) (interface{}, error) {
	lf, lOK := toFloat(left)
	rf, rOK := toFloat(right)
	if !lOK || !rOK {
		return nil, runtimeErrorf("cannot divide %s by %s", typeName(left), typeName(right))
	}
	if rf == 0 {
		return nil, runtimeErrorf("Division by zero")
	}
	return lf / rf, nil
}

// moduloValues implements %: both operands must be integers; a float
// operand is a type error, not a coercion.
func moduloValues(left, right interface{}) (interface{}, error) {
	li, lOK := left.(int)
	ri, rOK := right.(int)
	if !lOK || !rOK {
		return nil, runtimeErrorf("modulo requires integer operands, got %s and %s", typeName(left), typeName(right))
	}
	if ri == 0 {
		return nil, runtimeErrorf("Modulo by zero")
	}
	return li % ri, nil
}

// orderValues implements < <= > >=. Both operands must come from the same
// comparable family: number with number, or string with string
// (lexicographic). Anything else is a runtime error.
func orderValues(op string, left, right interface{}) (interface{}, error) {
	if lf, lOK := toFloat(left); lOK {
		rf, rOK := toFloat(right)
		if !rOK {
			return nil, runtimeErrorf("cannot compare %s with %s", typeName(left), typeName(right))
		}
		return compareOrdered(op, lf, rf), nil
	}
	if ls, lOK := left.(string); lOK {
		rs, rOK := right.(string)
		if !rOK {
			return nil, runtimeErrorf("cannot compare %s with %s", typeName(left), typeName(right))
		}
		return compareOrdered(op, ls, rs), nil
	}
	return nil, runtimeErrorf("cannot compare %s with %s", typeName(left), typeName(right))
}

func compareOrdered[T int | float64 | string](op string, left, right T) bool {
	switch op {
	case "<":
		return left < right
	case "<=":
		return left <= right
	case ">":
		return left > right
	default:
		return left >= right
	}
}

// negateValue implements unary minus over numbers.
func negateValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int:
		return -v, nil
	case float64:
		return -v, nil
	default:
		return nil, runtimeErrorf("cannot negate %s", typeName(value))
	}
}

// toFloat widens a numeric value to float64. Unlike the comparison helpers
// of looser template dialects, strings never convert.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
