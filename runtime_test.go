package cflat

import "testing"

func TestRegisterBuiltInTypes_CoreScalarsPresent(t *testing.T) {
	ns := NewNamespace("", nil)
	registerBuiltInTypes(ns)

	names := []string{"int", "uint32_t", "size_t", "char", "bool", "uint8_t",
		"float", "double", "int8_t", "int16_t", "int64_t", "uint16_t", "uint64_t", "void"}
	for _, n := range names {
		if ns.GetType(n) == nil {
			t.Errorf("built-in type %q was not registered", n)
		}
	}
}

func TestRegisterBuiltInTypes_SizesMatchWidth(t *testing.T) {
	ns := NewNamespace("", nil)
	registerBuiltInTypes(ns)

	cases := map[string]int{
		"int8_t": 1, "int16_t": 2, "int": 4, "int64_t": 8,
		"uint8_t": 1, "uint16_t": 2, "uint32_t": 4, "uint64_t": 8,
		"char": 1, "bool": 1, "float": 4, "double": 8, "void": 0,
	}
	for name, want := range cases {
		ty := ns.GetType(name)
		if ty == nil {
			t.Fatalf("type %q missing", name)
		}
		if ty.Size != want {
			t.Errorf("%q Size = %d, want %d", name, ty.Size, want)
		}
	}
}

func TestRegisterBuiltInTypes_BuiltinByKindPopulated(t *testing.T) {
	ns := NewNamespace("", nil)
	registerBuiltInTypes(ns)

	if ns.builtinByKind[KindInt32] == nil {
		t.Fatalf("builtinByKind[KindInt32] not populated")
	}
	if ns.builtinByKind[KindFloat64] != ns.GetType("double") {
		t.Fatalf("builtinByKind[KindFloat64] should be the 'double' type")
	}
}

func TestRegisterBuiltInTypes_AliasSpellings(t *testing.T) {
	ns := NewNamespace("", nil)
	registerBuiltInTypes(ns)

	if ns.GetType("unsigned") != ns.GetType("uint32_t") {
		t.Fatalf("'unsigned' alias should resolve to uint32_t")
	}
	if ns.GetType("long") != ns.GetType("int64_t") {
		t.Fatalf("'long' alias should resolve to int64_t")
	}
}
