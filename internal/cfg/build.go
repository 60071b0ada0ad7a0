package cfg

import "riscvc/internal/ir"

// Build partitions fb's instruction list into basic blocks and links
// their predecessor/successor edges, per spec §4.3.
func Build(fb *ir.FuncBlock) *Function {
	body := fb.Instrs[1 : len(fb.Instrs)-1] // drop FUNBEG, FUNEND

	starts := blockStarts(body)
	blocks := partition(body, starts)

	labelBlock := make(map[int64]int)
	for _, b := range blocks {
		if len(b.Instrs) > 0 && b.Instrs[0].Op == ir.OpLABEL {
			labelBlock[b.Instrs[0].A0.ImmVal()] = b.Index
		}
	}

	for _, b := range blocks {
		linkSuccessors(b, blocks, labelBlock)
	}
	for _, b := range blocks {
		for _, s := range b.Succs {
			blocks[s].Preds = append(blocks[s].Preds, b.Index)
		}
	}

	return &Function{Src: fb, Blocks: blocks}
}

// blockStarts returns the sorted set of indices into body at which a new
// block begins.
func blockStarts(body []ir.Handle) []int {
	isStart := make([]bool, len(body))
	if len(body) > 0 {
		isStart[0] = true
	}
	for i, in := range body {
		if in.Op == ir.OpLABEL {
			isStart[i] = true
		}
		if i > 0 {
			prev := body[i-1].Op
			if prev == ir.OpJMP || prev == ir.OpBEQZ || prev == ir.OpRET {
				isStart[i] = true
			}
		}
	}
	var starts []int
	for i, v := range isStart {
		if v {
			starts = append(starts, i)
		}
	}
	return starts
}

func partition(body []ir.Handle, starts []int) []*Block {
	blocks := make([]*Block, len(starts))
	for i, s := range starts {
		end := len(body)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		blocks[i] = &Block{Index: i, Instrs: body[s:end]}
	}
	return blocks
}

// linkSuccessors sets b.Succs per the terminator rules: JMP targets its
// label's block only; BEQZ targets its label's block and the
// textually-following block, deduplicated if they coincide; RET has no
// successor; anything else falls through to the next block.
func linkSuccessors(b *Block, blocks []*Block, labelBlock map[int64]int) {
	if len(b.Instrs) == 0 {
		if b.Index+1 < len(blocks) {
			b.Succs = []int{b.Index + 1}
		}
		return
	}
	last := b.Instrs[len(b.Instrs)-1]
	switch last.Op {
	case ir.OpJMP:
		b.Succs = []int{labelBlock[last.A0.ImmVal()]}
	case ir.OpBEQZ:
		target := labelBlock[last.A1.ImmVal()]
		b.Succs = append(b.Succs, target)
		if b.Index+1 < len(blocks) && b.Index+1 != target {
			b.Succs = append(b.Succs, b.Index+1)
		}
	case ir.OpRET:
		// No successor.
	default:
		if b.Index+1 < len(blocks) {
			b.Succs = []int{b.Index + 1}
		}
	}
}
