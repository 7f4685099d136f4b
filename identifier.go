// identifier.go
//
// An Identifier is a name plus its 32-bit FNV-1a hash. Every lookup in the
// symbol registry (namespace.go) compares identifiers by hash, not by string
// equality; the name itself is kept only so diagnostics can name things.
package cflat

const (
	fnvOffsetBasis32 uint32 = 2166136261
	fnvPrime32       uint32 = 16777619
)

// HashFNV1a32 computes the 32-bit FNV-1a hash of s.
func HashFNV1a32(s string) uint32 {
	h := fnvOffsetBasis32
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// Identifier is a name plus its hash. Qualified names ("A::B::C") are stored
// and hashed as their full spelling; the parser is responsible for joining
// "::"-separated tokens before constructing one.
type Identifier struct {
	Name string
	Hash uint32
}

// NewIdentifier builds an Identifier from its spelling.
func NewIdentifier(name string) Identifier {
	return Identifier{Name: name, Hash: HashFNV1a32(name)}
}

// Equal compares two identifiers by hash, per the data model.
func (id Identifier) Equal(other Identifier) bool {
	return id.Hash == other.Hash
}

func (id Identifier) IsEmpty() bool {
	return id.Name == ""
}

func (id Identifier) String() string {
	return id.Name
}
