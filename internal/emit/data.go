package emit

import "riscvc/internal/ir"

// emitData writes the module's global data directives: GBSS into .bss,
// GINI into .data, per spec §4.5's literal directive mapping.
func (e *emitter) emitData(globals []ir.Handle) {
	var bss, data []ir.Handle
	for _, g := range globals {
		if g.Op == ir.OpGBSS {
			bss = append(bss, g)
		} else {
			data = append(data, g)
		}
	}
	if len(bss) > 0 {
		e.w.Directive(".bss")
		for _, g := range bss {
			name := g.A0.NameVal()
			e.w.Directive(".global %s", name)
			e.w.Label(name)
			e.w.Directive("\t.space %d", g.A1.ImmVal())
		}
	}
	if len(data) > 0 {
		e.w.Directive(".data")
		for _, g := range data {
			name := g.A0.NameVal()
			e.w.Directive(".global %s", name)
			e.w.Label(name)
			e.w.Directive("\t.word %d", g.A1.ImmVal())
		}
	}
}
