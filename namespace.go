// namespace.go — the symbol registry (§4.6). A Namespace maps identifiers to
// Types, Functions, and child Namespaces, and owns a flat, watermark-popped
// vector of Instances for the scope(s) it represents.
//
// The present core only ever populates and searches the global Namespace
// from script (§4.6, §9: "using namespace" is collected but unreachable by
// script identifier lookup) — nested namespaces are modeled and registrable
// by a host but not resolved into by GetVariable/GetType at evaluation
// time. That limitation is preserved verbatim; see DESIGN.md.
package cflat

// Instance is a named binding in a scope: its declared TypeUsage, its
// Identifier, the scope level it was declared at, and its Value.
type Instance struct {
	Name  Identifier
	Type  TypeUsage
	Level int
	Val   Value
}

type Namespace struct {
	Identifier Identifier
	parent     *Namespace

	children  map[uint32]*Namespace
	types     map[uint32]*Type
	functions map[uint32][]*Function

	instances []*Instance

	// builtinByKind caches the primitive Types registerBuiltInTypes installs,
	// keyed by BuiltInKind, so literal evaluation doesn't need a name lookup.
	// Only ever populated on the global Namespace.
	builtinByKind map[BuiltInKind]*Type
}

func NewNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{
		Identifier:    NewIdentifier(name),
		parent:        parent,
		children:      map[uint32]*Namespace{},
		types:         map[uint32]*Type{},
		functions:     map[uint32][]*Function{},
		builtinByKind: map[BuiltInKind]*Type{},
	}
}

// --- child namespaces --------------------------------------------------------

func (ns *Namespace) GetOrCreateChild(name string) *Namespace {
	id := NewIdentifier(name)
	if c, ok := ns.children[id.Hash]; ok {
		return c
	}
	c := NewNamespace(name, ns)
	ns.children[id.Hash] = c
	return c
}

func (ns *Namespace) GetChild(name string) *Namespace {
	return ns.children[HashFNV1a32(name)]
}

// --- types -------------------------------------------------------------------

func (ns *Namespace) RegisterType(t *Type) {
	ns.types[t.Identifier.Hash] = t
}

// GetType looks up a type by name in this namespace only (no parent walk —
// callers that need the full using-directive search path use
// Parser.resolveTypeName).
func (ns *Namespace) GetType(name string) *Type {
	return ns.types[HashFNV1a32(name)]
}

// --- functions ---------------------------------------------------------------

// RegisterFunction appends fn to the overload list for its name.
func (ns *Namespace) RegisterFunction(fn *Function) {
	ns.functions[fn.Identifier.Hash] = append(ns.functions[fn.Identifier.Hash], fn)
}

// GetFunction returns the first-registered function under name, per §1's
// "no overload resolution beyond name lookup".
func (ns *Namespace) GetFunction(name string) *Function {
	list := ns.functions[HashFNV1a32(name)]
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func (ns *Namespace) GetFunctionOverloads(name string) []*Function {
	return ns.functions[HashFNV1a32(name)]
}

// --- instances ---------------------------------------------------------------

// RegisterInstance pushes a new Instance onto the vector at the given scope
// level.
func (ns *Namespace) RegisterInstance(usage TypeUsage, name string, level int, val Value) *Instance {
	inst := &Instance{Name: NewIdentifier(name), Type: usage, Level: level, Val: val}
	ns.instances = append(ns.instances, inst)
	return inst
}

// GetVariable returns the nearest (last-declared) Instance under name.
// Later declarations shadow earlier ones at the vector level, matching a
// flat declaration-ordered scope stack.
func (ns *Namespace) GetVariable(name string) *Instance {
	h := HashFNV1a32(name)
	for i := len(ns.instances) - 1; i >= 0; i-- {
		if ns.instances[i].Name.Hash == h {
			return ns.instances[i]
		}
	}
	return nil
}

// SetVariable updates an existing Instance's Value, or creates one at scope
// level 0 (the namespace's base level) if absent.
func (ns *Namespace) SetVariable(usage TypeUsage, name string, val Value) {
	if inst := ns.GetVariable(name); inst != nil {
		inst.Val.Set(val)
		return
	}
	ns.RegisterInstance(usage, name, 0, val)
}

// ReleaseInstances pops every Instance whose scope-level is >= level, in
// LIFO order, then recurses into every child namespace. This is the
// watermark release described in §3/§9.
func (ns *Namespace) ReleaseInstances(level int) {
	i := len(ns.instances)
	for i > 0 && ns.instances[i-1].Level >= level {
		i--
	}
	ns.instances = ns.instances[:i]
	for _, child := range ns.children {
		child.ReleaseInstances(level)
	}
}

// InstanceCount reports the current length of this namespace's instance
// vector — used by scope-discipline tests (§8).
func (ns *Namespace) InstanceCount() int { return len(ns.instances) }

// ReleaseSpecific removes exactly the given Instances (by identity) from
// this namespace and its children. Unlike ReleaseInstances (a level
// watermark pop), this targets an arbitrary, possibly non-contiguous set —
// used to clear a reloaded program's previous top-level bindings without
// disturbing globals declared by any other program loaded in between.
func (ns *Namespace) ReleaseSpecific(targets []*Instance) {
	if len(targets) == 0 {
		return
	}
	drop := make(map[*Instance]bool, len(targets))
	for _, t := range targets {
		drop[t] = true
	}
	kept := ns.instances[:0]
	for _, inst := range ns.instances {
		if !drop[inst] {
			kept = append(kept, inst)
		}
	}
	ns.instances = kept
	for _, child := range ns.children {
		child.ReleaseSpecific(targets)
	}
}
