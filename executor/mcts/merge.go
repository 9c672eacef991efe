package mcts

// Merge folds src into dst. Both trees must be rooted at the same position
// and grown independently. Statistics are summed node by node; children that
// exist only in src are moved into dst. src must not be used afterwards.
func Merge(dst, src *Node) *Node {
	if dst == nil {
		return src
	}
	if src == nil {
		return dst
	}

	type pair struct{ dst, src *Node }
	work := []pair{{dst, src}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		p.dst.Wins += p.src.Wins
		p.dst.Plays += p.src.Plays
		if p.src.Children == nil {
			continue
		}
		if p.dst.Children == nil {
			p.dst.Children = make([]*Node, len(p.src.Children))
		}
		for i, sc := range p.src.Children {
			if sc == nil {
				continue
			}
			dc := p.dst.Children[i]
			if dc == nil {
				p.dst.Children[i] = sc
				continue
			}
			work = append(work, pair{dc, sc})
		}
	}
	return dst
}
