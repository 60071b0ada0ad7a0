package ir

// Handle references a single emitted instruction. It remains valid across
// further Append/InsertBefore calls: Builder stores instructions as
// individually heap-allocated records and only ever grows a slice of
// pointers to them, so a Handle obtained from Last or Append is not
// invalidated by later insertions.
type Handle = *Instr

// Builder accumulates a flat, per-module instruction list during lowering.
// It is the only component permitted to grow the list; later passes
// (CFG/liveness/allocator) rewrite instructions in place through the
// Handles this type hands out, but never change its length except by
// constructing an entirely new list (as the CFG splitter does).
type Builder struct {
	list []Handle
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Append adds a new instruction to the end of the list and returns its
// Handle.
func (b *Builder) Append(op Op, operands ...Addr) Handle {
	in := &Instr{Op: op, Reg: [3]int{-1, -1, -1}}
	if len(operands) > 0 {
		in.A0 = operands[0]
	}
	if len(operands) > 1 {
		in.A1 = operands[1]
	}
	if len(operands) > 2 {
		in.A2 = operands[2]
	}
	b.list = append(b.list, in)
	return in
}

// InsertBefore inserts a new instruction immediately before the
// instruction at position pos (0-indexed into Instructions()) and returns
// its Handle. The register allocator does not call it: it splices its
// LOADFP/STOREFP instructions into a freshly built per-block slice.
func (b *Builder) InsertBefore(pos int, op Op, operands ...Addr) Handle {
	in := &Instr{Op: op, Reg: [3]int{-1, -1, -1}}
	if len(operands) > 0 {
		in.A0 = operands[0]
	}
	if len(operands) > 1 {
		in.A1 = operands[1]
	}
	if len(operands) > 2 {
		in.A2 = operands[2]
	}
	b.list = append(b.list, nil)
	copy(b.list[pos+1:], b.list[pos:])
	b.list[pos] = in
	return in
}

// Last returns the most recently appended instruction's Handle, or nil if
// the list is empty. The lowering pass uses this to rewrite a trailing
// LOAD into a STORE when an expression first lowered as an l-value turns
// out to be an assignment target.
func (b *Builder) Last() Handle {
	if len(b.list) == 0 {
		return nil
	}
	return b.list[len(b.list)-1]
}

// Instructions returns the current instruction list, in order. Elements
// are the same pointers Append/InsertBefore returned, so mutating them
// through the returned slice is equivalent to mutating via a retained
// Handle.
func (b *Builder) Instructions() []Handle {
	return b.list
}

// Replace swaps the Builder's entire list for a freshly built replacement,
// the only length-changing operation permitted outside Append/InsertBefore.
// No pass calls it: the register allocator stores its rebuilt
// per-function list in FuncBlock.Instrs instead.
func (b *Builder) Replace(list []Handle) {
	b.list = list
}
