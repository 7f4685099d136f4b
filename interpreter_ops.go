// interpreter_ops.go — operator evaluation (§4.5/§4.4): binary/unary
// dispatch over built-in numeric operands, operatorX method dispatch for
// aggregate left operands, and the supplemented sizeof/new/index forms.
package cflat

import "strconv"

const decimalZeroThreshold = 1e-9

// evalBinaryOp implements §4.5's binary-operator evaluation: built-in
// numeric operands are classified integer-vs-decimal and combined directly;
// an aggregate-typed left operand is instead dispatched to its "operatorOP"
// method (§9's documented limitation: only the *left* operand's type is
// consulted — there is no operator overload resolution by right-operand
// type or by free function).
func (ctx *execContext) evalBinaryOp(x *BinaryOpExpr) (Value, error) {
	left, err := ctx.evalExpression(x.Left)
	if err != nil {
		return Value{}, err
	}

	if left.Usage.Type != nil && left.Usage.Type.IsAggregate() && !left.Usage.IsPointer() {
		return ctx.evalUserOperator(x, left)
	}

	right, err := ctx.evalExpression(x.Right)
	if err != nil {
		return Value{}, err
	}

	switch x.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		return ctx.evalComparison(x, left, right)
	case "&&":
		return ctx.boolValue(left.AsBool() && right.AsBool()), nil
	case "||":
		return ctx.boolValue(left.AsBool() || right.AsBool()), nil
	default:
		return ctx.evalArithmetic(x, left, right)
	}
}

func (ctx *execContext) boolValue(b bool) Value {
	t := ctx.ns.builtinByKind[KindBool]
	v := NewHeapValue(TypeUsage{Type: t})
	v.SetBool(b)
	return v
}

func (ctx *execContext) evalComparison(x *BinaryOpExpr, left, right Value) (Value, error) {
	decimal := left.IsDecimal() || right.IsDecimal()
	var result bool
	if decimal {
		a, b := left.AsFloat64(), right.AsFloat64()
		switch x.Op {
		case "==":
			result = a == b
		case "!=":
			result = a != b
		case "<":
			result = a < b
		case ">":
			result = a > b
		case "<=":
			result = a <= b
		case ">=":
			result = a >= b
		}
	} else {
		a, b := left.AsInt64(), right.AsInt64()
		switch x.Op {
		case "==":
			result = a == b
		case "!=":
			result = a != b
		case "<":
			result = a < b
		case ">":
			result = a > b
		case "<=":
			result = a <= b
		case ">=":
			result = a >= b
		}
	}
	return ctx.boolValue(result), nil
}

// evalArithmetic implements +, -, *, /, %. Division by zero raises a
// RuntimeError; for decimal operands "zero" means |divisor| below
// decimalZeroThreshold, matching the imprecision of a floating representation.
func (ctx *execContext) evalArithmetic(x *BinaryOpExpr, left, right Value) (Value, error) {
	decimal := left.IsDecimal() || right.IsDecimal()
	resultType := left.Usage.Type
	if right.IsDecimal() && !left.IsDecimal() {
		resultType = right.Usage.Type
	}
	out := NewHeapValue(TypeUsage{Type: resultType})

	if decimal {
		a, b := left.AsFloat64(), right.AsFloat64()
		if x.Op == "/" && b > -decimalZeroThreshold && b < decimalZeroThreshold {
			return Value{}, NewRuntimeError(DivisionByZero, x.Line())
		}
		var r float64
		switch x.Op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			r = a / b
		default:
			return Value{}, NewCompileError(InvalidOperator, x.Line(), x.Op)
		}
		out.SetFloat64(r)
		return out, nil
	}

	a, b := left.AsInt64(), right.AsInt64()
	if (x.Op == "/" || x.Op == "%") && b == 0 {
		return Value{}, NewRuntimeError(DivisionByZero, x.Line())
	}
	var r int64
	switch x.Op {
	case "+":
		r = a + b
	case "-":
		r = a - b
	case "*":
		r = a * b
	case "/":
		r = a / b
	case "%":
		r = a % b
	case "&":
		r = a & b
	case "|":
		r = a | b
	case "^":
		r = a ^ b
	default:
		return Value{}, NewCompileError(InvalidOperator, x.Line(), x.Op)
	}
	out.SetInt64(r)
	return out, nil
}

// evalUserOperator dispatches left OP right to left's "operator<op>" method
// when left is an aggregate, e.g. "v + w" looks up Vec2.GetMethod("operator+").
func (ctx *execContext) evalUserOperator(x *BinaryOpExpr, left Value) (Value, error) {
	method := left.Usage.Type.GetMethod("operator" + x.Op)
	if method == nil {
		return Value{}, NewCompileError(InvalidOperator, x.Line(), x.Op)
	}
	this := AddressValue(left, left.Usage)
	args, err := ctx.marshalArgs(method.Params, []Expression{x.Right})
	if err != nil {
		return Value{}, err
	}
	var out Value
	if method.ReturnType.Type != nil {
		out = NewHeapValue(method.ReturnType)
	}
	method.Impl(this, args, &out)
	return out, nil
}

// evalUnaryOp implements prefix `-`, `!` and `~` (supplemented).
func (ctx *execContext) evalUnaryOp(x *UnaryOpExpr) (Value, error) {
	v, err := ctx.evalExpression(x.Operand)
	if err != nil {
		return Value{}, err
	}
	switch x.Op {
	case "-":
		out := NewHeapValue(v.Usage)
		if v.IsDecimal() {
			out.SetFloat64(-v.AsFloat64())
		} else {
			out.SetInt64(-v.AsInt64())
		}
		return out, nil
	case "!":
		return ctx.boolValue(!v.AsBool()), nil
	case "~":
		out := NewHeapValue(v.Usage)
		out.SetInt64(^v.AsInt64())
		return out, nil
	default:
		return Value{}, NewCompileError(InvalidOperator, x.Line(), x.Op)
	}
}

// --- sizeof / new / index (supplemented, grounded in original_source) -------

func (ctx *execContext) evalSizeOf(x *SizeOfExpr) (Value, error) {
	sizeType := ctx.ns.builtinByKind[KindSize]
	out := NewHeapValue(TypeUsage{Type: sizeType})

	if x.TypeName != "" {
		t := ctx.ns.GetType(x.TypeName)
		if t == nil {
			return Value{}, NewCompileError(UndefinedVariable, x.Line(), x.TypeName)
		}
		out.SetInt64(int64(t.Size))
		return out, nil
	}
	v, err := ctx.evalExpression(x.Expr)
	if err != nil {
		return Value{}, err
	}
	out.SetInt64(int64(v.Usage.Size()))
	return out, nil
}

// evalNew allocates a Heap Value for the named type, runs its matching
// constructor (by argument count; no overload resolution, §1 Non-goals),
// records it in the Environment's heap registry so an encoded pointer
// doesn't outlive a GC-visible reference to its target, and returns a
// pointer Value addressing it.
func (ctx *execContext) evalNew(x *NewExpr) (Value, error) {
	t := ctx.ns.GetType(x.TypeName)
	if t == nil {
		return Value{}, NewCompileError(UndefinedVariable, x.Line(), x.TypeName)
	}
	usage := TypeUsage{Type: t}
	obj := NewHeapValue(usage)
	if len(obj.Buffer) == 0 {
		// A zero-size type still needs a distinct, non-null address.
		obj.Buffer = make([]byte, 1)
	}

	var ctor *Method
	for _, m := range t.Methods {
		if m.IsConstructorFor(t) && len(m.Params) == len(x.Args) {
			ctor = m
			break
		}
	}
	if ctor != nil {
		args, err := ctx.marshalArgs(ctor.Params, x.Args)
		if err != nil {
			return Value{}, err
		}
		this := AddressValue(obj, usage)
		ctor.Impl(this, args, nil)
		// this aliases obj's buffer; nothing further to copy back.
	}

	ctx.env.heapObjects = append(ctx.env.heapObjects, obj)
	return AddressValue(obj, usage), nil
}

// resolveIndex implements `base[index]` as pointer arithmetic over base's
// pointee size, returning an aliased External Value over the indexed slot.
func (ctx *execContext) resolveIndex(x *IndexExpr) (Value, error) {
	base, err := ctx.evalExpression(x.Base)
	if err != nil {
		return Value{}, err
	}
	idxVal, err := ctx.evalExpression(x.Index)
	if err != nil {
		return Value{}, err
	}
	idx := idxVal.AsInt64()

	if !base.Usage.IsPointer() {
		if !base.Usage.IsArray() {
			return Value{}, NewCompileError(InvalidOperator, x.Line(), "[]")
		}
		if idx < 0 || int(idx) >= base.Usage.ArraySize {
			return Value{}, NewRuntimeError(InvalidArrayIndex, x.Line(), strconv.FormatInt(idx, 10))
		}
		elemUsage := base.Usage
		elemUsage.ArraySize = 0
		elemSize := elemUsage.Size()
		off := int(idx) * elemSize
		return Value{Usage: elemUsage, Buffer: base.Buffer[off : off+elemSize], Owner: External}, nil
	}

	if base.IsNullPointer() {
		return Value{}, NewRuntimeError(NullPointerAccess, x.Line())
	}
	elemUsage := base.Usage.Dereferenced()
	elemSize := elemUsage.Size()
	addr := base.ReadAddress()
	ptrVal := Value{Usage: base.Usage, Buffer: make([]byte, pointerSize), Owner: Heap}
	ptrVal.writeAddress(addr)
	shifted := offsetPointer(ptrVal, int64(elemSize)*idx)
	return shifted.Dereference(elemUsage), nil
}

// offsetPointer returns a copy of p with its address shifted by delta bytes.
func offsetPointer(p Value, delta int64) Value {
	addr := p.ReadAddress()
	out := Value{Usage: p.Usage, Buffer: make([]byte, pointerSize), Owner: Heap}
	out.writeAddress(addrAdd(addr, delta))
	return out
}
