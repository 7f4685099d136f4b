package cflat

import "testing"

func TestType_AddMemberGrowsSize(t *testing.T) {
	ty := NewStructType("Vec2")
	ft := NewBuiltInType("float", 4, KindFloat32)
	ty.AddMember("x", TypeUsage{Type: ft}, 0, VisibilityPublic)
	ty.AddMember("y", TypeUsage{Type: ft}, 4, VisibilityPublic)
	if ty.Size != 8 {
		t.Fatalf("Size = %d, want 8", ty.Size)
	}
}

func TestType_GetMemberAndGetMethod(t *testing.T) {
	ty := NewStructType("Vec2")
	ft := NewBuiltInType("float", 4, KindFloat32)
	ty.AddMember("x", TypeUsage{Type: ft}, 0, VisibilityPublic)
	ty.AddMethod("length", TypeUsage{Type: ft}, nil, VisibilityPublic, func(this Value, args []Value, out *Value) {})

	if ty.GetMember("x") == nil {
		t.Fatalf("GetMember(\"x\") = nil")
	}
	if ty.GetMember("missing") != nil {
		t.Fatalf("GetMember(\"missing\") should be nil")
	}
	if ty.GetMethod("length") == nil {
		t.Fatalf("GetMethod(\"length\") = nil")
	}
}

func TestMethod_IsConstructorForAndIsDestructor(t *testing.T) {
	ty := NewClassType("Widget")
	ctor := ty.AddMethod("Widget", TypeUsage{}, nil, VisibilityPublic, nil)
	dtor := ty.AddMethod("~Widget", TypeUsage{}, nil, VisibilityPublic, nil)

	if !ctor.IsConstructorFor(ty) {
		t.Fatalf("Widget() should be a constructor for Widget")
	}
	if !dtor.IsDestructor() {
		t.Fatalf("~Widget() should be a destructor")
	}
	if ctor.IsDestructor() || dtor.IsConstructorFor(ty) {
		t.Fatalf("constructor/destructor classification crossed")
	}
}

func TestType_DefaultConstructor(t *testing.T) {
	ty := NewStructType("Widget")
	if ty.DefaultConstructor() != nil {
		t.Fatalf("no methods registered yet, DefaultConstructor should be nil")
	}
	ty.AddMethod("Widget", TypeUsage{}, []TypeUsage{{}}, VisibilityPublic, nil)
	if ty.DefaultConstructor() != nil {
		t.Fatalf("one-arg constructor should not count as default")
	}
	def := ty.AddMethod("Widget", TypeUsage{}, nil, VisibilityPublic, nil)
	if ty.DefaultConstructor() != def {
		t.Fatalf("DefaultConstructor did not find the zero-arg overload")
	}
}

func TestType_IsAggregate(t *testing.T) {
	if NewBuiltInType("int", 4, KindInt32).IsAggregate() {
		t.Fatalf("built-in type reported as aggregate")
	}
	if !NewStructType("S").IsAggregate() {
		t.Fatalf("struct type not reported as aggregate")
	}
	if !NewClassType("C").IsAggregate() {
		t.Fatalf("class type not reported as aggregate")
	}
}

func TestParseTypeUsageFromString(t *testing.T) {
	intT := NewBuiltInType("int", 4, KindInt32)
	lookup := func(name string) *Type {
		if name == "int" {
			return intT
		}
		return nil
	}

	cases := []struct {
		spelling     string
		wantPointers int
		wantConst    bool
		wantRef      bool
	}{
		{"int", 0, false, false},
		{"const int", 0, true, false},
		{"int*", 1, false, false},
		{"int**", 2, false, false},
		{"const int&", 0, true, true},
		{"int* const", 1, true, false},
	}
	for _, c := range cases {
		u, ok := ParseTypeUsageFromString(c.spelling, lookup)
		if !ok {
			t.Fatalf("ParseTypeUsageFromString(%q) failed", c.spelling)
		}
		if u.PointerLevel != c.wantPointers {
			t.Errorf("%q: PointerLevel = %d, want %d", c.spelling, u.PointerLevel, c.wantPointers)
		}
		if u.IsConst() != c.wantConst {
			t.Errorf("%q: IsConst = %v, want %v", c.spelling, u.IsConst(), c.wantConst)
		}
		if u.IsReference() != c.wantRef {
			t.Errorf("%q: IsReference = %v, want %v", c.spelling, u.IsReference(), c.wantRef)
		}
	}

	if _, ok := ParseTypeUsageFromString("Bogus", lookup); ok {
		t.Fatalf("unknown base type should fail lookup")
	}
}
