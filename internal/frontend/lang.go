package frontend

// reservedItem pairs a reserved word's spelling with its token type.

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved keywords of the language subset.
// The first dimension is indexed by word length minus two (the shortest
// keyword is two letters), mirroring the length-indexed lookup the
// teacher compiler uses for its own (much larger) VSL keyword set:
// indexing by length before comparing strings is cheap and keeps the
// table readable without a hash map.
var rw = [...][]reservedItem{
	// Two-grams.
	{
		{val: "if", typ: itemKwIf},
	},
	// Three-grams.
	{
		{val: "int", typ: itemKwInt},
		{val: "for", typ: itemKwFor},
	},
	// Four-grams.
	{
		{val: "else", typ: itemKwElse},
	},
	// Five-grams.
	{
		{val: "while", typ: itemKwWhile},
		{val: "break", typ: itemKwBreak},
	},
	// Six-grams.
	{
		{val: "return", typ: itemKwReturn},
	},
	// Seven-grams.
	{},
	// Eight-grams.
	{
		{val: "continue", typ: itemKwContinue},
	},
}

// "do" is a two-letter keyword; it is not listed inline above but is
// appended to the two-gram table (rw[0], next to "if") at package init.
func init() {
	rw[0] = append(rw[0], reservedItem{val: "do", typ: itemKwDo})
}

// isKeyword returns true if s is a reserved keyword of the language. On a
// true return the itemType of the keyword is also returned; on false,
// itemIdentifier is returned. The shortest keyword is two letters ("if",
// "do"), so the table is indexed by word length minus two.
func isKeyword(s string) (bool, itemType) {
	idx := len(s) - 2
	if idx < 0 || idx >= len(rw) {
		return false, itemIdentifier
	}
	for _, e := range rw[idx] {
		if e.val == s {
			return true, e.typ
		}
	}
	return false, itemIdentifier
}
