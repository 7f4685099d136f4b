// interpreter.go — PUBLIC API SURFACE for the Cflat embeddable interpreter.
//
// This file is the entire host-facing contract (§6): an Environment is
// created, the host registers its own types/functions/methods against it,
// then hands it script source via Load. Everything else in this package
// (preprocess.go, lexer.go, parser.go, ast.go, interpreter_exec.go,
// interpreter_ops.go) is reachable only through Environment's methods or
// through the Callable functions a host installs during registration.
package cflat

import "io"

// JumpState tracks a pending non-local exit (§3 GLOSSARY: "Jump state").
type JumpState int

const (
	JumpNone JumpState = iota
	JumpBreak
	JumpContinue
	JumpReturn
)

// Environment is the top-level interpreter instance (§6 "Host-facing API").
// One Environment owns one global Namespace, one ProgramStore, and the
// single-threaded execution context §5 describes: it is not safe for
// concurrent use by multiple goroutines.
type Environment struct {
	Global   *Namespace
	Programs *ProgramStore

	lastError error

	// activeCtx is the execContext currently running Execute, looked up
	// dynamically by script-defined Functions (interpreter_exec.go's
	// scriptFunction) so a function declared during one Load remains
	// callable from a later Load against the same Environment.
	activeCtx *execContext

	// heapObjects keeps every `new`-allocated object's Value alive: a raw
	// pointer Value only carries an encoded address, invisible to the
	// garbage collector, so without this the allocation could be collected
	// out from under a live script pointer. Per §1 Non-goals ("no garbage
	// collection of script-allocated heap objects"), entries are removed
	// only by an explicit `delete` and otherwise live for the Environment's
	// lifetime.
	heapObjects []Value

	// literalPool keeps every string literal's bytes alive as an
	// independent allocation (mirroring stackArena's design) so an address
	// taken into it is never invalidated by the pool growing.
	literalPool [][]byte

	// traceWriter is nil by default: the library stays silent unless a host
	// opts in, matching the teacher core's "no logging by default" stance.
	traceWriter io.Writer
}

// SetTraceWriter directs a one-line-per-Load trace ("load <name>: ok"/"load
// <name>: <error>") to w. Pass nil to go back to silence.
func (env *Environment) SetTraceWriter(w io.Writer) { env.traceWriter = w }

func (env *Environment) trace(programName string, err error) {
	if env.traceWriter == nil {
		return
	}
	if err != nil {
		io.WriteString(env.traceWriter, "load "+programName+": "+err.Error()+"\n")
		return
	}
	io.WriteString(env.traceWriter, "load "+programName+": ok\n")
}

// internString stores s as a new null-terminated byte allocation and
// returns it. Called once per string-literal evaluation.
func (env *Environment) internString(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	env.literalPool = append(env.literalPool, buf)
	return buf
}

// NewEnvironment returns an Environment with the built-in primitive types
// already registered (see runtime.go). Struct/Class types, members,
// methods, and free functions are the host's responsibility to add via
// RegisterType/RegisterFunction before Load-ing any script that refers to
// them.
func NewEnvironment() *Environment {
	env := &Environment{
		Global:   NewNamespace("", nil),
		Programs: NewProgramStore(),
	}
	registerBuiltInTypes(env.Global)
	return env
}

// RegisterType installs t (built by the host via NewStructType/NewClassType
// plus AddMember/AddMethod, or NewBuiltInType) into the global namespace.
func (env *Environment) RegisterType(t *Type) {
	env.Global.RegisterType(t)
}

// GetType looks up a registered type by name.
func (env *Environment) GetType(name string) *Type {
	return env.Global.GetType(name)
}

// RegisterFunction installs a free function under name. Multiple
// registrations under the same name form an overload list; per §1 no
// overload resolution is performed — the first registered is used.
func (env *Environment) RegisterFunction(name string, ret TypeUsage, params []TypeUsage, impl Callable) *Function {
	fn := &Function{Identifier: NewIdentifier(name), ReturnType: ret, Params: params, Impl: impl}
	env.Global.RegisterFunction(fn)
	return fn
}

// SetVariable installs or updates a host-owned global, visible to script by
// name.
func (env *Environment) SetVariable(usage TypeUsage, name string, val Value) {
	env.Global.SetVariable(usage, name, val)
}

// GetVariable returns the Value bound to name in the global namespace, and
// whether it was found.
func (env *Environment) GetVariable(name string) (Value, bool) {
	inst := env.Global.GetVariable(name)
	if inst == nil {
		return Value{}, false
	}
	return inst.Val, true
}

// Load compiles programName's sourceText and immediately executes it (§6).
// Reloading the same programName replaces its AST. Returns false on compile
// or runtime error; call GetErrorMessage for the human-readable reason.
func (env *Environment) Load(programName, sourceText string) bool {
	env.lastError = nil

	preprocessed := Preprocess(sourceText)
	lx := NewLexer(preprocessed)
	toks, err := lx.Scan()
	if err != nil {
		env.lastError = err
		env.Programs.Put(programName, sourceText, nil)
		env.trace(programName, err)
		return false
	}

	stmts, err := ParseProgram(toks, env.Global)
	program := env.Programs.Put(programName, sourceText, stmts)
	if err != nil {
		env.lastError = err
		env.trace(programName, err)
		return false
	}

	if err := env.Execute(program); err != nil {
		env.lastError = err
		env.trace(programName, err)
		return false
	}
	env.trace(programName, nil)
	return true
}

// Execute runs program's statement list against the global namespace
// directly (top-level statements declare Instances at scope level 0).
// Reloading the same Program releases exactly the global Instances its
// previous run declared before re-declaring them, so the symbol table
// doesn't accumulate a stale copy on every reload (§8).
func (env *Environment) Execute(program *Program) error {
	ctx := env.activeCtx
	if ctx == nil {
		ctx = newExecContext(env)
		env.activeCtx = ctx
	}

	ctx.ns.ReleaseSpecific(program.globalInstances)
	program.globalInstances = nil
	start := len(ctx.ns.instances)
	defer func() {
		program.globalInstances = append([]*Instance(nil), ctx.ns.instances[start:]...)
	}()

	for _, s := range program.Statements {
		if err := ctx.execStatement(s); err != nil {
			return err
		}
		if ctx.jump != JumpNone {
			ctx.jump = JumpNone
			break
		}
	}
	return nil
}

// GetErrorMessage returns the last Load failure's message in the exact
// single-line form §6/§8 specify: "[Compile Error] Line N: ..." or
// "[Runtime Error] Line N: ...". Returns "" if the last Load succeeded.
func (env *Environment) GetErrorMessage() string {
	if env.lastError == nil {
		return ""
	}
	return env.lastError.Error()
}

// LastError returns the raw error from the last Load call, or nil.
func (env *Environment) LastError() error { return env.lastError }
