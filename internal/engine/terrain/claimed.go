package terrain

// claimedSet marks cells already assigned to a sector, one bit per cell
// in row-major order. It lives only for the duration of one Decompose.
type claimedSet struct {
	width int
	words []uint64
}

func newClaimedSet(width, depth int) *claimedSet {
	return &claimedSet{
		width: width,
		words: make([]uint64, (width*depth+63)/64),
	}
}

func (c *claimedSet) has(x, z int) bool {
	i := z*c.width + x
	return c.words[i>>6]&(1<<(i&63)) != 0
}

// setRange claims cells x0..x1 of row z, inclusive on both ends.
func (c *claimedSet) setRange(z, x0, x1 int) {
	a := z*c.width + x0
	b := z*c.width + x1
	for a <= b {
		w := a >> 6
		lo := uint(a & 63)
		hi := uint(63)
		if b>>6 == w {
			hi = uint(b & 63)
		}
		c.words[w] |= (^uint64(0) >> (63 - hi)) &^ (uint64(1)<<lo - 1)
		a = (w + 1) << 6
	}
}

// claimRect claims a w × d rectangle with its corner at (x, z).
func (c *claimedSet) claimRect(x, z, w, d int) {
	for row := z; row < z+d; row++ {
		c.setRange(row, x, x+w-1)
	}
}
