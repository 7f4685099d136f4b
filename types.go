// types.go — the type system: Type/Member/Method/Function records, and
// type-usage parsing from a textual spelling like "const Foo&" (spec §4.3
// mode b). Mode a, parsing from a token stream at a statement position, is
// Parser.parseTypeUsage in parser.go.
package cflat

import "strings"

// BuiltInKind enumerates the primitive numeric/bool/char kinds a BuiltIn
// Type may carry.
type BuiltInKind int

const (
	KindNone BuiltInKind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindSize // size_t-equivalent
	KindBool
	KindFloat32
	KindFloat64
	KindChar
)

// TypeKind distinguishes the three kinds of Type the data model allows.
type TypeKind int

const (
	BuiltInType TypeKind = iota
	StructType
	ClassType
)

// Visibility is recorded on Members/Methods but never enforced (§1 Non-goals).
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
)

// Member is a named field inside a Struct/Class.
type Member struct {
	Identifier Identifier
	Usage      TypeUsage
	Offset     int
	Visibility Visibility
}

// Callable is the opaque signature the registration layer installs for a
// Method or Function: given a this-pointer Value (zero Value for free
// functions), the marshaled argument Values, and a pointer to the
// pre-sized return Value to populate, it performs the native behavior.
type Callable func(this Value, args []Value, out *Value)

// Method is a Type-bound callable. Constructors share the type's own name;
// destructors spell the type's name prefixed with "~".
type Method struct {
	Identifier Identifier
	ReturnType TypeUsage
	Params     []TypeUsage
	Visibility Visibility
	Impl       Callable
}

func (m *Method) IsConstructorFor(t *Type) bool {
	return m.Identifier.Name == t.Identifier.Name
}

func (m *Method) IsDestructor() bool {
	return strings.HasPrefix(m.Identifier.Name, "~")
}

// Function is a free (or qualified-static) callable. Functions sharing a
// name are stored together as an overload list; no overload resolution is
// performed — the first registered is used (§1 Non-goals).
type Function struct {
	Identifier Identifier
	ReturnType TypeUsage
	Params     []TypeUsage
	Impl       Callable
}

// Type is one of BuiltIn, Struct, or Class.
type Type struct {
	Identifier Identifier
	Kind       TypeKind
	Size       int
	BuiltIn    BuiltInKind // only meaningful when Kind == BuiltInType

	Members []*Member
	Methods []*Method // overload-agnostic: looked up by name, first match wins
}

func NewBuiltInType(name string, size int, kind BuiltInKind) *Type {
	return &Type{Identifier: NewIdentifier(name), Kind: BuiltInType, Size: size, BuiltIn: kind}
}

func NewStructType(name string) *Type {
	return &Type{Identifier: NewIdentifier(name), Kind: StructType}
}

func NewClassType(name string) *Type {
	return &Type{Identifier: NewIdentifier(name), Kind: ClassType}
}

// AddMember appends a Member, growing the type's recorded Size if needed.
// Registration is the host's responsibility for getting offsets right; this
// only tracks the high-water mark so a type registered member-by-member
// ends up with a sane default Size when the host never set one explicitly.
func (t *Type) AddMember(name string, usage TypeUsage, offset int, vis Visibility) *Member {
	m := &Member{Identifier: NewIdentifier(name), Usage: usage, Offset: offset, Visibility: vis}
	t.Members = append(t.Members, m)
	if end := offset + usage.Size(); end > t.Size {
		t.Size = end
	}
	return m
}

func (t *Type) AddMethod(name string, ret TypeUsage, params []TypeUsage, vis Visibility, impl Callable) *Method {
	m := &Method{Identifier: NewIdentifier(name), ReturnType: ret, Params: params, Visibility: vis, Impl: impl}
	t.Methods = append(t.Methods, m)
	return m
}

// GetMember looks up a direct member by name. Returns nil if absent.
func (t *Type) GetMember(name string) *Member {
	h := HashFNV1a32(name)
	for _, m := range t.Members {
		if m.Identifier.Hash == h {
			return m
		}
	}
	return nil
}

// GetMethod looks up a method by name (first match; no overload resolution).
func (t *Type) GetMethod(name string) *Method {
	h := HashFNV1a32(name)
	for _, m := range t.Methods {
		if m.Identifier.Hash == h {
			return m
		}
	}
	return nil
}

// DefaultConstructor returns the zero-argument constructor for t, if any.
func (t *Type) DefaultConstructor() *Method {
	for _, m := range t.Methods {
		if m.IsConstructorFor(t) && len(m.Params) == 0 {
			return m
		}
	}
	return nil
}

func (t *Type) IsAggregate() bool { return t.Kind == StructType || t.Kind == ClassType }

// --- textual type-usage parsing (§4.3 mode b) -------------------------------

// ParseTypeUsageFromString implements §4.3 mode (b): scan for the literal
// tokens "const", "*", "&" around a base type name, e.g. "const Foo&",
// "int*", "unsigned char". lookup resolves the trimmed base name to a Type;
// it mirrors the namespace lookup the parser would otherwise perform.
func ParseTypeUsageFromString(spelling string, lookup func(name string) *Type) (TypeUsage, bool) {
	s := strings.TrimSpace(spelling)
	var flags TypeUsageFlags
	pointerLevel := 0

	if strings.HasPrefix(s, "const ") {
		flags |= FlagConst
		s = strings.TrimSpace(s[len("const "):])
	}
	if strings.HasSuffix(s, "&") {
		flags |= FlagReference
		s = strings.TrimSpace(strings.TrimSuffix(s, "&"))
	}
	// "const" may also trail a pointer base, e.g. "Foo* const" — treat the
	// same as a leading const for our purposes.
	if strings.HasSuffix(s, "const") && s != "const" {
		flags |= FlagConst
		s = strings.TrimSpace(strings.TrimSuffix(s, "const"))
	}
	for strings.HasSuffix(s, "*") {
		pointerLevel++
		s = strings.TrimSpace(strings.TrimSuffix(s, "*"))
	}
	base := strings.TrimSpace(s)
	t := lookup(base)
	if t == nil {
		return TypeUsage{}, false
	}
	if pointerLevel > 0 {
		flags |= FlagPointer
	}
	return TypeUsage{Type: t, PointerLevel: pointerLevel, Flags: flags}, true
}

// --- numeric conversions -----------------------------------------------------

// ConvertNumeric copies src's numeric value into dst, converting between
// integer/float representations and widths as needed. Both Values must
// already have correctly sized buffers for their own TypeUsage.
func ConvertNumeric(dst *Value, src Value) {
	if dst.Usage.Type == nil || src.Usage.Type == nil {
		return
	}
	if dst.IsDecimal() {
		if src.IsDecimal() {
			dst.SetFloat64(src.AsFloat64())
		} else {
			dst.SetFloat64(float64(src.AsInt64()))
		}
		return
	}
	if src.IsDecimal() {
		dst.SetInt64(int64(src.AsFloat64()))
		return
	}
	dst.SetInt64(src.AsInt64())
}
