// runtime.go — primitive type registration. Grounded directly in
// original_source/Cflat.cpp's Environment::registerBuiltInTypes(), which
// registers exactly this list of scalar types before any script loads.
package cflat

// registerBuiltInTypes installs the primitive scalar Types every
// Environment starts with (§3 "Lifecycles": Types live for the
// interpreter's lifetime). void is a zero-size pseudo-type, meaningful only
// as a pointer target (nullptr's usage, an unbound function's return type).
func registerBuiltInTypes(ns *Namespace) {
	register := func(name string, size int, kind BuiltInKind) {
		t := NewBuiltInType(name, size, kind)
		ns.RegisterType(t)
		ns.builtinByKind[kind] = t
	}

	register("void", 0, KindNone)

	register("int8_t", 1, KindInt8)
	register("int16_t", 2, KindInt16)
	register("int", 4, KindInt32)
	register("int32_t", 4, KindInt32)
	register("int64_t", 8, KindInt64)

	register("uint8_t", 1, KindUInt8)
	register("uint16_t", 2, KindUInt16)
	register("uint32_t", 4, KindUInt32)
	register("uint64_t", 8, KindUInt64)
	register("size_t", 8, KindSize)

	register("char", 1, KindChar)
	register("bool", 1, KindBool)

	register("float", 4, KindFloat32)
	register("double", 8, KindFloat64)

	// Alias spellings, reachable by name lookup (GetType, or the lookup a
	// host hands to ParseTypeUsageFromString). The parser does not use them:
	// its type-usage scanner maps "unsigned int"/"unsigned char"/
	// "unsigned short" (and a bare "unsigned") to uint32_t/uint8_t/uint16_t
	// itself.
	aliasType := ns.GetType("uint32_t")
	ns.types[HashFNV1a32("unsigned")] = aliasType
	ns.types[HashFNV1a32("unsigned int")] = aliasType
	ns.types[HashFNV1a32("long")] = ns.GetType("int64_t")
	ns.types[HashFNV1a32("unsigned long")] = ns.GetType("uint64_t")
	ns.types[HashFNV1a32("unsigned char")] = ns.GetType("uint8_t")
	ns.types[HashFNV1a32("unsigned short")] = ns.GetType("uint16_t")
	ns.types[HashFNV1a32("short")] = ns.GetType("int16_t")
}
