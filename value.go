// value.go — the Value & TypeUsage model: the sole currency of runtime data.
//
// A TypeUsage describes how a Type appears at a use-site (pointer level,
// array size, const/pointer/reference flags). A Value is a TypeUsage plus a
// byte buffer of exactly TypeUsage.Size() bytes, plus an ownership tag that
// says who is responsible for that buffer's lifetime:
//
//   - External — the buffer aliases memory owned elsewhere (a host variable,
//     a member field inside a bigger Value, a reference binding). Never
//     freed by the Value that holds it.
//   - Stack    — the buffer was handed out by a stackArena (see below) and is
//     released in LIFO order when its owning scope exits.
//   - Heap     — the buffer is a Go allocation owned outright by the Value.
//
// Pointer TypeUsages store a machine-word *address* in their buffer rather
// than the referent's bytes — this file represents that address as an
// unsafe.Pointer encoded little-endian into 8 bytes, the same ABI trick the
// teacher's ffi.go uses to hand raw memory to and from native code. Pointer
// width is fixed at 8 bytes; this interpreter targets 64-bit hosts only,
// matching the registered native types' own sizes.
//
// References are not address slots: a reference Value's buffer is always
// the referent's own buffer, aliased directly (see marshalArgs binding a
// reference parameter, and execVariableDecl binding "T& r = x;"). The
// FlagReference bit on such a Value is metadata only — it never changes
// what Buffer points at or how big it is.
package cflat

import (
	"encoding/binary"
	"math"
	"unsafe"
)

const pointerSize = 8

// Ownership tags the provenance of a Value's backing buffer.
type Ownership int

const (
	External Ownership = iota
	Stack
	Heap
)

func (o Ownership) String() string {
	switch o {
	case External:
		return "external"
	case Stack:
		return "stack"
	case Heap:
		return "heap"
	default:
		return "unknown"
	}
}

// TypeUsageFlags holds the bit flags a use-site annotation carries.
type TypeUsageFlags uint8

const (
	FlagConst TypeUsageFlags = 1 << iota
	FlagPointer
	FlagReference
)

func (f TypeUsageFlags) has(bit TypeUsageFlags) bool { return f&bit != 0 }

// TypeUsage describes how a Type appears at a use-site.
type TypeUsage struct {
	Type         *Type
	PointerLevel int
	ArraySize    int // 0 means "not an array"
	Flags        TypeUsageFlags
}

func (u TypeUsage) IsConst() bool     { return u.Flags.has(FlagConst) }
func (u TypeUsage) IsPointer() bool   { return u.Flags.has(FlagPointer) || u.PointerLevel > 0 }
func (u TypeUsage) IsReference() bool { return u.Flags.has(FlagReference) }
func (u TypeUsage) IsArray() bool     { return u.ArraySize > 0 }

// Size returns the byte footprint of a Value carrying this TypeUsage. A
// reference reports the referent's own size, not pointerSize: its Value is
// always an alias over storage already sized for the underlying type (see
// the package comment above).
func (u TypeUsage) Size() int {
	if u.IsPointer() {
		return pointerSize
	}
	elems := u.ArraySize
	if elems < 1 {
		elems = 1
	}
	if u.Type == nil {
		return 0
	}
	return u.Type.Size * elems
}

// Equal implements the data model's equality rule: Type identity, array
// size, and flags must all match. Pointer level is compared as well.
func (u TypeUsage) Equal(other TypeUsage) bool {
	if u.Type != other.Type {
		return false
	}
	if u.ArraySize != other.ArraySize {
		return false
	}
	return u.Flags == other.Flags && u.PointerLevel == other.PointerLevel
}

// AsConst returns a copy of u with the const flag set.
func (u TypeUsage) AsConst() TypeUsage {
	u.Flags |= FlagConst
	return u
}

// WithoutConst returns a copy of u with the const flag cleared.
func (u TypeUsage) WithoutConst() TypeUsage {
	u.Flags &^= FlagConst
	return u
}

// Dereferenced returns the TypeUsage one pointer-level down (the pointee's
// use-site usage, non-pointer unless the original was multi-level).
func (u TypeUsage) Dereferenced() TypeUsage {
	out := u
	if out.PointerLevel > 0 {
		out.PointerLevel--
	}
	if out.PointerLevel == 0 {
		out.Flags &^= FlagPointer
	}
	out.Flags &^= FlagReference
	return out
}

// Referenced returns the TypeUsage one pointer-level up.
func (u TypeUsage) Referenced() TypeUsage {
	out := u
	out.PointerLevel++
	out.Flags |= FlagPointer
	return out
}

// Value is the runtime datum: a TypeUsage plus an owned-or-borrowed buffer.
type Value struct {
	Usage  TypeUsage
	Buffer []byte
	Owner  Ownership
}

// NewExternalValue wraps an existing buffer without taking ownership of it.
// buf must be exactly usage.Size() bytes.
func NewExternalValue(usage TypeUsage, buf []byte) Value {
	return Value{Usage: usage, Buffer: buf, Owner: External}
}

// NewHeapValue allocates a zeroed, owned buffer for usage.
func NewHeapValue(usage TypeUsage) Value {
	return Value{Usage: usage, Buffer: make([]byte, usage.Size()), Owner: Heap}
}

// NewStackValue allocates a zeroed buffer out of arena, released on the
// arena's next reset to a mark at or before this allocation.
func NewStackValue(usage TypeUsage, arena *stackArena) Value {
	return Value{Usage: usage, Buffer: arena.push(usage.Size()), Owner: Stack}
}

// IsNil reports whether the Value carries no backing storage at all.
func (v Value) IsNil() bool { return v.Buffer == nil }

// Set copies src's bytes into v's buffer verbatim, sized to the shorter of
// the two buffers. This is the only copy path, for references and ordinary
// values alike: a reference-flagged v already aliases its bound referent's
// buffer (see the package comment above), so assigning through it writes
// straight into that buffer — there is no separate address-rebind step.
func (v *Value) Set(src Value) {
	n := len(v.Buffer)
	if len(src.Buffer) < n {
		n = len(src.Buffer)
	}
	copy(v.Buffer[:n], src.Buffer[:n])
}

// SetBytes overwrites v's buffer verbatim with raw, already-laid-out bytes.
func (v *Value) SetBytes(raw []byte) {
	n := copy(v.Buffer, raw)
	_ = n
}

// Realloc replaces v's buffer with a freshly sized one when the required
// size differs from the current one, per §4.5's "ownership re-binding is
// explicit" rule. Only meaningful for Heap-owned Values.
func (v *Value) Realloc(usage TypeUsage) {
	if v.Usage.Size() == usage.Size() {
		v.Usage = usage
		return
	}
	v.Usage = usage
	v.Buffer = make([]byte, usage.Size())
	v.Owner = Heap
}

// --- pointer / address helpers ---------------------------------------------

// addressOfBuffer returns the machine address of buf's first byte. buf must
// be non-empty; callers must keep the referent alive for as long as the
// returned address may be dereferenced (External/Stack/Heap buffers are all
// kept alive by their owning Value/Instance/arena for exactly that reason).
func addressOfBuffer(buf []byte) unsafe.Pointer {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}

// addrAdd returns p shifted by delta bytes (delta may be negative), used by
// IndexExpr evaluation to implement pointer arithmetic over a pointee size.
func addrAdd(p unsafe.Pointer, delta int64) unsafe.Pointer {
	if p == nil {
		return nil
	}
	return unsafe.Pointer(uintptr(p) + uintptr(delta))
}

func (v *Value) writeAddress(p unsafe.Pointer) {
	binary.LittleEndian.PutUint64(v.Buffer, uint64(uintptr(p)))
}

// ReadAddress interprets v's buffer as a machine address (valid for pointer
// TypeUsages; a reference's buffer is its referent's bytes, not an address).
func (v Value) ReadAddress() unsafe.Pointer {
	if len(v.Buffer) < pointerSize {
		return nil
	}
	return unsafe.Pointer(uintptr(binary.LittleEndian.Uint64(v.Buffer)))
}

// IsNullPointer reports whether v's address is the zero/null address.
func (v Value) IsNullPointer() bool {
	return v.ReadAddress() == nil
}

// Dereference returns an External Value viewing the memory v's pointer
// points at, using usage as the pointee's TypeUsage.
func (v Value) Dereference(usage TypeUsage) Value {
	p := v.ReadAddress()
	if p == nil {
		return Value{Usage: usage, Owner: External}
	}
	buf := unsafe.Slice((*byte)(p), usage.Size())
	return Value{Usage: usage, Buffer: buf, Owner: External}
}

// AddressValue builds a Heap-owned pointer Value whose buffer stores the
// address of target's buffer.
func AddressValue(target Value, pointeeUsage TypeUsage) Value {
	out := NewHeapValue(pointeeUsage.Referenced())
	out.writeAddress(addressOfBuffer(target.Buffer))
	return out
}

// --- numeric reads/writes ----------------------------------------------------
//
// All built-in numeric layouts are little-endian, matching the typical
// little-endian host this interpreter targets (x86-64/ARM64). This is a
// deliberate simplification over "match whatever the host's native
// endianness is".

// AsInt64 reads v's buffer as a signed or unsigned integer of its built-in
// width, sign/zero-extended to int64. v's type must be an integer BuiltIn
// kind (Bool/Char included, treated as unsigned 8-bit).
func (v Value) AsInt64() int64 {
	b := v.Buffer
	k := v.Usage.Type.BuiltIn
	switch k {
	case KindInt8:
		return int64(int8(b[0]))
	case KindUInt8, KindBool, KindChar:
		return int64(b[0])
	case KindInt16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case KindUInt16:
		return int64(binary.LittleEndian.Uint16(b))
	case KindInt32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case KindUInt32:
		return int64(binary.LittleEndian.Uint32(b))
	case KindInt64, KindSize:
		return int64(binary.LittleEndian.Uint64(b))
	case KindUInt64:
		return int64(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}

// SetInt64 writes x into v's buffer, truncating to v's built-in width.
func (v *Value) SetInt64(x int64) {
	b := v.Buffer
	switch v.Usage.Type.BuiltIn {
	case KindInt8, KindUInt8, KindBool, KindChar:
		b[0] = byte(x)
	case KindInt16, KindUInt16:
		binary.LittleEndian.PutUint16(b, uint16(x))
	case KindInt32, KindUInt32:
		binary.LittleEndian.PutUint32(b, uint32(x))
	case KindInt64, KindUInt64, KindSize:
		binary.LittleEndian.PutUint64(b, uint64(x))
	}
}

// AsFloat64 reads v's buffer as a 32- or 64-bit float, widened to float64.
func (v Value) AsFloat64() float64 {
	switch v.Usage.Type.BuiltIn {
	case KindFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(v.Buffer)))
	case KindFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(v.Buffer))
	default:
		return 0
	}
}

// SetFloat64 writes x into v's buffer, narrowing to v's built-in width.
func (v *Value) SetFloat64(x float64) {
	switch v.Usage.Type.BuiltIn {
	case KindFloat32:
		binary.LittleEndian.PutUint32(v.Buffer, math.Float32bits(float32(x)))
	case KindFloat64:
		binary.LittleEndian.PutUint64(v.Buffer, math.Float64bits(x))
	}
}

// AsBool reads v's buffer as a bool (any non-zero byte is true).
func (v Value) AsBool() bool {
	for _, b := range v.Buffer {
		if b != 0 {
			return true
		}
	}
	return false
}

// SetBool writes a canonical 0/1 bool byte into v's buffer.
func (v *Value) SetBool(b bool) {
	if b {
		v.Buffer[0] = 1
	} else {
		v.Buffer[0] = 0
	}
}

// IsDecimal reports whether v's built-in kind is a floating type.
func (v Value) IsDecimal() bool {
	k := v.Usage.Type.BuiltIn
	return k == KindFloat32 || k == KindFloat64
}

// IsIntegerKind reports whether k is one of the integer/bool/char kinds.
func IsIntegerKind(k BuiltInKind) bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64,
		KindSize, KindBool, KindChar:
		return true
	default:
		return false
	}
}

// --- stack arena -------------------------------------------------------------
//
// Modeled as a LIFO list of independently heap-allocated buffers rather than
// a single bump-allocated slab: each Stack Value gets its own Go allocation,
// so growing the arena never invalidates an address already taken with
// AddressValue. mark()/reset() track allocation *count*, not byte offset —
// sufficient to test the scope-discipline invariant (§8) without risking
// address instability across a slab reallocation.
type stackArena struct {
	allocs [][]byte
}

func newStackArena() *stackArena { return &stackArena{} }

func (a *stackArena) push(size int) []byte {
	buf := make([]byte, size)
	a.allocs = append(a.allocs, buf)
	return buf
}

func (a *stackArena) mark() int { return len(a.allocs) }

func (a *stackArena) reset(mark int) {
	for i := len(a.allocs) - 1; i >= mark; i-- {
		a.allocs[i] = nil
	}
	a.allocs = a.allocs[:mark]
}
