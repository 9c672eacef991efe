package game

// Group tracking is a union-find forest over occupied points.
//
// Find does not compress paths: union by rank already bounds tree height by
// log2 of the group size, and at 361 points the extra writes of compression
// cost more than the short walks they save. Every occupied point belongs to
// exactly one group; the root's Libs field holds the number of distinct empty
// points adjacent to the group.

// Root returns the union-find root of the group at pos. Off-board, Pass and
// empty positions return Pass.
func (b *Board) Root(pos int) int {
	if !b.OnBoard(pos) || b.Points[pos].Color == Empty {
		return Pass
	}
	for steps := 0; steps < len(b.Points); steps++ {
		parent := int(b.Points[pos].Group)
		if parent == pos {
			return pos
		}
		pos = parent
	}
	return Pass
}

// SameGroup reports whether two positions hold stones of the same group.
func (b *Board) SameGroup(p1, p2 int) bool {
	r := b.Root(p1)
	return r != Pass && r == b.Root(p2)
}

// Liberties returns the liberty count of the group at pos, or -1 when pos is
// empty or off the board.
func (b *Board) Liberties(pos int) int {
	root := b.Root(pos)
	if root == Pass {
		return -1
	}
	return int(b.Points[root].Libs)
}

// AddLiberties adjusts the liberty count of the group at pos by delta.
func (b *Board) AddLiberties(pos, delta int) {
	if root := b.Root(pos); root != Pass {
		b.Points[root].Libs += int16(delta)
	}
}

// Members calls fn for every stone in the group at pos, stopping early if fn
// returns false.
func (b *Board) Members(pos int, fn func(int) bool) {
	if b.Root(pos) == Pass {
		return
	}
	start := pos
	for steps := 0; steps < len(b.Points); steps++ {
		if !fn(pos) {
			return
		}
		pos = int(b.Points[pos].Next)
		if pos == start {
			return
		}
	}
}

// GroupSize returns the number of stones in the group at pos.
func (b *Board) GroupSize(pos int) int {
	n := 0
	b.Members(pos, func(int) bool {
		n++
		return true
	})
	return n
}

// CountLiberties walks the group at pos and counts its distinct empty
// neighbours. It does not read or write the cached count.
func (b *Board) CountLiberties(pos int) int {
	var seen [MaxDim * MaxDim]bool
	libs := 0
	b.Members(pos, func(m int) bool {
		for _, n := range b.adj.neighbors[m] {
			if n != Pass && b.Points[n].Color == Empty && !seen[n] {
				seen[n] = true
				libs++
			}
		}
		return true
	})
	return libs
}

// RecountLiberties refreshes the cached liberty count of the group at pos and
// returns it.
func (b *Board) RecountLiberties(pos int) int {
	root := b.Root(pos)
	if root == Pass {
		return -1
	}
	libs := b.CountLiberties(root)
	b.Points[root].Libs = int16(libs)
	return libs
}

// Union joins the groups at p1 and p2 by rank and returns the new root.
// When ranks are equal the group of p2 becomes the root and its rank grows.
// Liberty counts are left untouched; callers recount once all unions for a
// move are done.
func (b *Board) Union(p1, p2 int) int {
	g1, g2 := b.Root(p1), b.Root(p2)
	if g1 == Pass || g2 == Pass {
		return Pass
	}
	if g1 == g2 {
		return g1
	}

	var root, child int
	switch r1, r2 := b.Points[g1].Rank, b.Points[g2].Rank; {
	case r1 < r2:
		root, child = g2, g1
	case r1 > r2:
		root, child = g1, g2
	default:
		root, child = g2, g1
		b.Points[g2].Rank++
	}
	b.Points[child].Group = int16(root)

	// Splicing two circular lists is a swap of one successor each.
	b.Points[g1].Next, b.Points[g2].Next = b.Points[g2].Next, b.Points[g1].Next
	return root
}

// RemoveGroup clears every stone of the group at pos and credits one liberty
// to each distinct surviving neighbour group per removed stone. It returns the
// number of stones removed and the position of the last one.
func (b *Board) RemoveGroup(pos int) (removed, last int) {
	last = Pass
	color := b.ColorAt(pos)
	if b.Root(pos) == Pass {
		return 0, last
	}

	var buf [MaxDim * MaxDim]int16
	stones := buf[:0]
	b.Members(pos, func(m int) bool {
		stones = append(stones, int16(m))
		return true
	})

	for _, s := range stones {
		b.Points[s] = Point{Group: s, Next: s}
	}

	survivor := color.Opponent()
	for _, s := range stones {
		var credited [4]int
		n := 0
		for _, nb := range b.adj.neighbors[s] {
			if nb == Pass || b.Points[nb].Color != survivor {
				continue
			}
			root := b.Root(nb)
			dup := false
			for _, c := range credited[:n] {
				if c == root {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			credited[n] = root
			n++
			b.Points[root].Libs++
		}
		last = int(s)
	}
	return len(stones), last
}

// NeighborGroups returns the distinct group roots orthogonally adjacent to pos.
func (b *Board) NeighborGroups(pos int) (roots [4]int, n int) {
	for _, nb := range b.Neighbors(pos) {
		root := b.Root(nb)
		if root == Pass {
			continue
		}
		dup := false
		for _, r := range roots[:n] {
			if r == root {
				dup = true
				break
			}
		}
		if !dup {
			roots[n] = root
			n++
		}
	}
	return roots, n
}
