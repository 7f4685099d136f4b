// interpreter_exec.go — the execution & call engine: statement execution,
// rvalue expression evaluation, the lvalue walk (§4.5
// "getInstanceDataValue"), and argument marshaling. The public facade lives
// in interpreter.go; language operators (binary/unary dispatch,
// sizeof/new/index) live in interpreter_ops.go.
package cflat

import "strings"

// execContext is the evaluator's per-execution-context state: the scope
// level watermark, the Stack-value arena, and the pending jump (§3 "Jump
// state", §5 "a per-ExecutionContext stack arena").
type execContext struct {
	env   *Environment
	ns    *Namespace
	arena *stackArena

	level int
	jump  JumpState

	returnVal Value
}

func newExecContext(env *Environment) *execContext {
	return &execContext{env: env, ns: env.Global, arena: newStackArena()}
}

// --- statement execution (§4.5) ---------------------------------------------

func (ctx *execContext) execStatement(s Statement) error {
	switch x := s.(type) {
	case *ExpressionStmt:
		_, err := ctx.evalExpression(x.Expr)
		return err

	case *BlockStmt:
		return ctx.execBlock(x)

	case *UsingDirectiveStmt:
		return nil

	case *NamespaceDeclStmt:
		for _, inner := range x.Body {
			if err := ctx.execStatement(inner); err != nil {
				return err
			}
			if ctx.jump != JumpNone {
				break
			}
		}
		return nil

	case *VariableDeclStmt:
		return ctx.execVariableDecl(x)

	case *FunctionDeclStmt:
		return ctx.execFunctionDecl(x)

	case *AssignmentStmt:
		return ctx.execAssignment(x)

	case *IncrementStmt:
		return ctx.execIncDec(x.Name, x.Line(), 1)

	case *DecrementStmt:
		return ctx.execIncDec(x.Name, x.Line(), -1)

	case *IfStmt:
		return ctx.execIf(x)

	case *WhileStmt:
		return ctx.execWhile(x)

	case *ForStmt:
		return ctx.execFor(x)

	case *BreakStmt:
		ctx.jump = JumpBreak
		return nil

	case *ContinueStmt:
		ctx.jump = JumpContinue
		return nil

	case *ReturnStmt:
		if x.Expr != nil {
			v, err := ctx.evalExpression(x.Expr)
			if err != nil {
				return err
			}
			ctx.returnVal = v
		} else {
			ctx.returnVal = Value{}
		}
		ctx.jump = JumpReturn
		return nil

	case *DeleteStmt:
		return ctx.execDelete(x)

	default:
		return nil
	}
}

// execBlock pushes a scope, runs statements until a jump fires, then pops
// the scope: releases its Instances (watermark pop) and resets the stack
// arena to its pre-block mark (§4.5 "Block").
func (ctx *execContext) execBlock(b *BlockStmt) error {
	ctx.level++
	mark := ctx.arena.mark()
	defer func() {
		ctx.ns.ReleaseInstances(ctx.level)
		ctx.arena.reset(mark)
		ctx.level--
	}()
	for _, s := range b.Body {
		if err := ctx.execStatement(s); err != nil {
			return err
		}
		if ctx.jump != JumpNone {
			break
		}
	}
	return nil
}

func (ctx *execContext) execVariableDecl(s *VariableDeclStmt) error {
	usage := s.Usage

	// A reference declaration binds by aliasing its initializer's own
	// storage, exactly like a reference function parameter (marshalArgs) —
	// there is no separate stack slot to copy into.
	if usage.IsReference() && s.Init != nil {
		lv, err := ctx.resolveLvalue(s.Init)
		if err != nil {
			return err
		}
		lv.Usage.Flags |= FlagReference
		ctx.ns.RegisterInstance(usage, s.Name, ctx.level, lv)
		return nil
	}

	val := NewStackValue(usage, ctx.arena)
	inst := ctx.ns.RegisterInstance(usage, s.Name, ctx.level, val)

	if s.Init != nil {
		rv, err := ctx.evalExpression(s.Init)
		if err != nil {
			return err
		}
		convertAssign(&inst.Val, rv)
		return nil
	}

	if usage.Type != nil && usage.Type.IsAggregate() && !usage.IsPointer() && !usage.IsReference() {
		if ctor := usage.Type.DefaultConstructor(); ctor != nil {
			this := AddressValue(inst.Val, usage)
			ctor.Impl(this, nil, nil)
		}
	}
	return nil
}

func (ctx *execContext) execFunctionDecl(s *FunctionDeclStmt) error {
	paramUsages := make([]TypeUsage, len(s.Params))
	for i, p := range s.Params {
		paramUsages[i] = p.Usage
	}
	sf := &scriptFunction{env: ctx.env, decl: s}
	fn := &Function{
		Identifier: NewIdentifier(s.Name),
		ReturnType: s.ReturnType,
		Params:     paramUsages,
		Impl:       sf.call,
	}
	ctx.ns.RegisterFunction(fn)
	return nil
}

func (ctx *execContext) execAssignment(s *AssignmentStmt) error {
	lhs, err := ctx.resolveLvalue(s.LHS)
	if err != nil {
		return err
	}
	rhs, err := ctx.evalExpression(s.RHS)
	if err != nil {
		return err
	}
	// §4.5/§9: only '=' is semantically implemented; compound operators are
	// recognized syntactically but otherwise silently ignored.
	if s.Op == "=" {
		convertAssign(&lhs, rhs)
	}
	return nil
}

func (ctx *execContext) execIncDec(name string, line int, delta int64) error {
	inst := ctx.ns.GetVariable(name)
	if inst == nil {
		return NewRuntimeError(NullPointerAccess, line, name)
	}
	inst.Val.SetInt64(inst.Val.AsInt64() + delta)
	return nil
}

func (ctx *execContext) execIf(s *IfStmt) error {
	cond, err := ctx.evalExpression(s.Cond)
	if err != nil {
		return err
	}
	if cond.AsBool() {
		return ctx.execStatement(s.Then)
	}
	if s.Else != nil {
		return ctx.execStatement(s.Else)
	}
	return nil
}

func (ctx *execContext) execWhile(s *WhileStmt) error {
	for {
		cond, err := ctx.evalExpression(s.Cond)
		if err != nil {
			return err
		}
		if !cond.AsBool() {
			return nil
		}
		if err := ctx.execStatement(s.Body); err != nil {
			return err
		}
		switch ctx.jump {
		case JumpBreak:
			ctx.jump = JumpNone
			return nil
		case JumpContinue:
			ctx.jump = JumpNone
		case JumpReturn:
			return nil
		}
	}
}

func (ctx *execContext) execFor(s *ForStmt) error {
	ctx.level++
	mark := ctx.arena.mark()
	defer func() {
		ctx.ns.ReleaseInstances(ctx.level)
		ctx.arena.reset(mark)
		ctx.level--
	}()

	if s.Init != nil {
		if err := ctx.execStatement(s.Init); err != nil {
			return err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := ctx.evalExpression(s.Cond)
			if err != nil {
				return err
			}
			if !cond.AsBool() {
				return nil
			}
		}
		if err := ctx.execStatement(s.Body); err != nil {
			return err
		}
		switch ctx.jump {
		case JumpBreak:
			ctx.jump = JumpNone
			return nil
		case JumpContinue:
			ctx.jump = JumpNone
		case JumpReturn:
			return nil
		}
		if s.Inc != nil {
			if err := ctx.execStatement(s.Inc); err != nil {
				return err
			}
		}
	}
}

func (ctx *execContext) execDelete(s *DeleteStmt) error {
	v, err := ctx.evalExpression(s.Expr)
	if err != nil {
		return err
	}
	addr := v.ReadAddress()
	if addr == nil {
		return nil
	}
	for i, obj := range ctx.env.heapObjects {
		if len(obj.Buffer) > 0 && addressOfBuffer(obj.Buffer) == addr {
			ctx.env.heapObjects = append(ctx.env.heapObjects[:i], ctx.env.heapObjects[i+1:]...)
			break
		}
	}
	return nil
}

// --- script-defined functions ------------------------------------------------

// scriptFunction adapts a FunctionDeclStmt into a Callable. It resolves the
// currently-active execContext dynamically (env.activeCtx) rather than
// capturing one at declaration time, so a function declared by one Load
// call remains callable from a later Load against the same Environment
// (Functions, like Types, live for the interpreter's lifetime — §3).
type scriptFunction struct {
	env  *Environment
	decl *FunctionDeclStmt
}

func (sf *scriptFunction) call(this Value, args []Value, out *Value) {
	ctx := sf.env.activeCtx
	if ctx == nil {
		ctx = newExecContext(sf.env)
		sf.env.activeCtx = ctx
	}

	ctx.level++
	mark := ctx.arena.mark()
	savedJump := ctx.jump
	ctx.jump = JumpNone

	for i, p := range sf.decl.Params {
		if i < len(args) {
			ctx.ns.RegisterInstance(p.Usage, p.Name, ctx.level, args[i])
		}
	}

	var callErr error
	for _, st := range sf.decl.Body.Body {
		if callErr = ctx.execStatement(st); callErr != nil {
			break
		}
		if ctx.jump != JumpNone {
			break
		}
	}

	var ret Value
	if ctx.jump == JumpReturn {
		ret = ctx.returnVal
	}
	ctx.jump = savedJump
	ctx.ns.ReleaseInstances(ctx.level)
	ctx.arena.reset(mark)
	ctx.level--

	if out != nil && sf.decl.ReturnType.Type != nil && !ret.IsNil() {
		convertAssign(out, ret)
	}
	_ = callErr // script function bodies that error leave `out` unset; host-visible as a zero return
}

// --- rvalue expression evaluation (§4.5) ------------------------------------

func (ctx *execContext) evalExpression(e Expression) (Value, error) {
	switch x := e.(type) {
	case *LiteralExpr:
		return ctx.evalLiteral(x)
	case *NullPointerExpr:
		return ctx.evalNullPointer(x)
	case *VariableAccessExpr:
		inst := ctx.ns.GetVariable(x.Name)
		if inst == nil {
			return Value{}, NewRuntimeError(NullPointerAccess, x.Line(), x.Name)
		}
		return inst.Val, nil
	case *ParenExpr:
		return ctx.evalExpression(x.Inner)
	case *BinaryOpExpr:
		return ctx.evalBinaryOp(x)
	case *UnaryOpExpr:
		return ctx.evalUnaryOp(x)
	case *AddressOfExpr:
		return ctx.evalAddressOf(x)
	case *FunctionCallExpr:
		return ctx.evalFunctionCall(x)
	case *MethodCallExpr:
		return ctx.evalMethodCall(x)
	case *MemberAccessExpr:
		return ctx.resolveMemberAccess(x)
	case *SizeOfExpr:
		return ctx.evalSizeOf(x)
	case *IndexExpr:
		return ctx.resolveIndex(x)
	case *NewExpr:
		return ctx.evalNew(x)
	default:
		return Value{}, NewRuntimeError(NullPointerAccess, e.Line(), "unsupported expression")
	}
}

func (ctx *execContext) evalLiteral(l *LiteralExpr) (Value, error) {
	switch l.Kind {
	case LitInt:
		t := ctx.ns.builtinByKind[l.NumKind]
		v := NewHeapValue(TypeUsage{Type: t})
		v.SetInt64(l.IntVal)
		return v, nil
	case LitFloat:
		t := ctx.ns.builtinByKind[l.NumKind]
		v := NewHeapValue(TypeUsage{Type: t})
		v.SetFloat64(l.FloatVal)
		return v, nil
	case LitBool:
		t := ctx.ns.builtinByKind[KindBool]
		v := NewHeapValue(TypeUsage{Type: t})
		v.SetBool(l.BoolVal)
		return v, nil
	case LitString:
		return ctx.evalStringLiteral(l.StrVal), nil
	default:
		return Value{}, NewRuntimeError(NullPointerAccess, l.Line(), "literal")
	}
}

func (ctx *execContext) evalStringLiteral(s string) Value {
	charType := ctx.ns.builtinByKind[KindChar]
	bytes := ctx.env.internString(s)
	usage := TypeUsage{Type: charType, PointerLevel: 1, Flags: FlagConst | FlagPointer}
	v := NewHeapValue(usage)
	if len(bytes) > 0 {
		vv := v
		vv.writeAddress(addressOfBuffer(bytes))
		v = vv
	}
	return v
}

func (ctx *execContext) evalNullPointer(x *NullPointerExpr) (Value, error) {
	voidType := ctx.ns.GetType("void")
	usage := TypeUsage{Type: voidType, PointerLevel: 1, Flags: FlagPointer}
	return NewHeapValue(usage), nil
}

func (ctx *execContext) evalAddressOf(x *AddressOfExpr) (Value, error) {
	lv, err := ctx.resolveLvalue(x.Operand)
	if err != nil {
		return Value{}, err
	}
	return AddressValue(lv, lv.Usage), nil
}

// --- the lvalue walk (§4.5 "getInstanceDataValue") --------------------------

// resolveLvalue resolves e to an aliased Value view over its underlying
// storage: mutating the returned Value's Buffer mutates the original.
func (ctx *execContext) resolveLvalue(e Expression) (Value, error) {
	switch x := e.(type) {
	case *VariableAccessExpr:
		inst := ctx.ns.GetVariable(x.Name)
		if inst == nil {
			return Value{}, NewRuntimeError(NullPointerAccess, x.Line(), x.Name)
		}
		return inst.Val, nil
	case *MemberAccessExpr:
		return ctx.resolveMemberAccess(x)
	case *ParenExpr:
		return ctx.resolveLvalue(x.Inner)
	case *IndexExpr:
		return ctx.resolveIndex(x)
	default:
		v, err := ctx.evalExpression(e)
		return v, err
	}
}

// resolveMemberAccess walks id0.id1-> ... idn per §4.5 step 2: for each hop,
// dereference through a pointer (null-checked), then locate the named
// Member on the current aggregate type.
func (ctx *execContext) resolveMemberAccess(m *MemberAccessExpr) (Value, error) {
	inst := ctx.ns.GetVariable(m.Path[0])
	if inst == nil {
		return Value{}, NewRuntimeError(NullPointerAccess, m.Line(), m.Path[0])
	}
	cur := inst.Val
	for i := 1; i < len(m.Path); i++ {
		if cur.Usage.IsPointer() {
			if cur.IsNullPointer() {
				return Value{}, NewRuntimeError(NullPointerAccess, m.Line(), strings.Join(m.Path[:i], "."))
			}
			cur = cur.Dereference(cur.Usage.Dereferenced())
		}
		t := cur.Usage.Type
		if t == nil || !t.IsAggregate() {
			return Value{}, NewRuntimeError(NullPointerAccess, m.Line(), m.Path[i])
		}
		mem := t.GetMember(m.Path[i])
		if mem == nil {
			// A method name ends the lvalue walk; the caller should have
			// routed this through MethodCallExpr instead.
			return Value{}, NewRuntimeError(NullPointerAccess, m.Line(), m.Path[i])
		}
		cur = Value{Usage: mem.Usage, Buffer: cur.Buffer[mem.Offset : mem.Offset+mem.Usage.Size()], Owner: External}
	}
	return cur, nil
}

// --- calls -------------------------------------------------------------------

func (ctx *execContext) evalFunctionCall(x *FunctionCallExpr) (Value, error) {
	name := x.Name
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	fn := ctx.ns.GetFunction(name)
	if fn == nil {
		return Value{}, NewRuntimeError(NullPointerAccess, x.Line(), name)
	}
	args, err := ctx.marshalArgs(fn.Params, x.Args)
	if err != nil {
		return Value{}, err
	}
	var out Value
	if fn.ReturnType.Type != nil {
		out = NewHeapValue(fn.ReturnType)
	}
	fn.Impl(Value{}, args, &out)
	return out, nil
}

func (ctx *execContext) evalMethodCall(x *MethodCallExpr) (Value, error) {
	receiver, err := ctx.resolveLvalue(x.Target)
	if err != nil {
		return Value{}, err
	}
	if receiver.Usage.Type == nil {
		return Value{}, NewRuntimeError(NullPointerAccess, x.Line(), x.MethodName)
	}
	if receiver.Usage.IsPointer() && receiver.IsNullPointer() {
		return Value{}, NewRuntimeError(NullPointerAccess, x.Line(), x.MethodName)
	}
	method := receiver.Usage.Type.GetMethod(x.MethodName)
	if method == nil {
		return Value{}, NewRuntimeError(NullPointerAccess, x.Line(), x.MethodName)
	}

	var this Value
	if receiver.Usage.IsPointer() {
		this = receiver
	} else {
		this = AddressValue(receiver, receiver.Usage)
	}

	args, err := ctx.marshalArgs(method.Params, x.Args)
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

// marshalArgs implements §4.5's argument marshaling: reference formals
// alias the source's storage; value formals get an owned copy.
func (ctx *execContext) marshalArgs(params []TypeUsage, argExprs []Expression) ([]Value, error) {
	n := len(params)
	if len(argExprs) < n {
		n = len(argExprs)
	}
	args := make([]Value, n)
	for i := 0; i < n; i++ {
		paramUsage := params[i]
		if paramUsage.IsReference() {
			lv, err := ctx.resolveLvalue(argExprs[i])
			if err != nil {
				return nil, err
			}
			lv.Usage = lv.Usage.AsConst()
			if !paramUsage.IsConst() {
				lv.Usage = lv.Usage.WithoutConst()
			}
			lv.Usage.Flags |= FlagReference
			args[i] = lv
		} else {
			rv, err := ctx.evalExpression(argExprs[i])
			if err != nil {
				return nil, err
			}
			copyVal := NewHeapValue(paramUsage)
			convertAssign(&copyVal, rv)
			args[i] = copyVal
		}
	}
	return args, nil
}

// convertAssign copies src into dst, performing a numeric widen/narrow when
// both sides are distinct built-in types; otherwise it's a verbatim copy via
// Value.Set. A reference dst is just another Value here — its buffer is
// already the referent's own storage, so the conversion/copy lands there.
func convertAssign(dst *Value, src Value) {
	if dst.Usage.Type != nil && src.Usage.Type != nil &&
		dst.Usage.Type.Kind == BuiltInType && src.Usage.Type.Kind == BuiltInType &&
		dst.Usage.Type != src.Usage.Type {
		ConvertNumeric(dst, src)
		return
	}
	dst.Set(src)
}
