package ast

// BaseType is the declared type of a variable or function return value.
// The language subset supports only Int; the type is kept as an enum so
// the checker's error messages and the eventual addition of a second type
// would not require touching every call site.
type BaseType int

const (
	TInt BaseType = iota
)

// Symbol is an alias for Variable: the checker resolves every KIdent/KIndex
// base-identifier to the Variable record declared for it, and stores that
// pointer directly on the Node (see Node.Sym).
type Symbol = Variable

// Variable is a variable record: an optional array dimension vector, a
// name (no type is stored; every variable is int), and — once the IR lowering pass
// has run — whether it has been bound to a virtual variable and which one.
type Variable struct {
	Name   string
	Dims   []int // empty/nil for a scalar, else one entry per array dimension
	Global bool  // true iff declared in the root (global) scope
	// Ordinal is the 1-based parameter position if this Variable is a
	// function parameter, else 0.
	Ordinal int

	// Bound and Local record the lowering pass's virtual-register binding
	// for a local scalar or the base-address virtual register of a local
	// array. They are meaningless (and untouched) for globals, which are
	// always addressed by Name instead.
	Bound bool
	Local int32
}

// IsArray reports whether Variable v was declared with array dimensions.
func (v *Variable) IsArray() bool {
	return len(v.Dims) > 0
}

// Bytes returns the total storage size of Variable v in bytes: 4 for a
// scalar, or 4*product(Dims) for an array.
func (v *Variable) Bytes() int {
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n * 4
}

// FuncSig is a function record: name and parameter count (no types are
// stored; every return value and parameter is int). Two states are
// tracked: declared (a prototype with no body) and defined. Redeclaration
// is permitted iff the parameter counts match; redefinition is always an
// error.
type FuncSig struct {
	Name      string
	NumParams int
	Defined   bool
	Line      int
}

// Scope is one link in the scope-stack chain: a map from name to Variable,
// plus a reference to the enclosing scope. The chain's root (Parent == nil)
// is the global scope.
type Scope struct {
	names  map[string]*Variable
	Parent *Scope
}

// NewGlobalScope returns a fresh root scope.
func NewGlobalScope() *Scope {
	return &Scope{names: make(map[string]*Variable)}
}

// Push returns a new child scope nested inside s, as happens on block entry.
func (s *Scope) Push() *Scope {
	return &Scope{names: make(map[string]*Variable), Parent: s}
}

// Declare adds Variable v to Scope s. It returns false if a variable with
// the same name is already declared directly in s (not an enclosing
// scope) — a duplicate-name error for the checker to report.
func (s *Scope) Declare(v *Variable) bool {
	if _, exists := s.names[v.Name]; exists {
		return false
	}
	s.names[v.Name] = v
	return true
}

// Lookup walks the scope chain from s toward the root looking for name. It
// returns the Variable, whether it was found in the root (global) scope,
// and whether it was found at all.
func (s *Scope) Lookup(name string) (v *Variable, isGlobal bool, found bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if found, ok := cur.names[name]; ok {
			return found, cur.Parent == nil, true
		}
	}
	return nil, false, false
}
