package cellid

const (
	lookupBits = 4
	swapMask   = 0x01
	invertMask = 0x02
)

var (
	// posToIJ maps (orientation, Hilbert position) to the (i,j) quadrant,
	// encoded as 2*i+j.
	posToIJ = [4][4]int{
		{0, 1, 3, 2}, // canonical order:    (0,0), (0,1), (1,1), (1,0)
		{0, 2, 3, 1}, // axes swapped:       (0,0), (1,0), (1,1), (0,1)
		{3, 2, 0, 1}, // bits inverted:      (1,1), (1,0), (0,0), (0,1)
		{3, 1, 0, 2}, // swapped & inverted: (1,1), (0,1), (0,0), (1,0)
	}
	// posToOrientation is the orientation change applied when descending into
	// the child at each Hilbert position.
	posToOrientation = [4]int{swapMask, 0, 0, invertMask | swapMask}

	lookupPos [1 << (2*lookupBits + 2)]int
	lookupIJ  [1 << (2*lookupBits + 2)]int
)

func init() {
	initLookupCell(0, 0, 0, 0, 0, 0)
	initLookupCell(0, 0, 0, swapMask, 0, swapMask)
	initLookupCell(0, 0, 0, invertMask, 0, invertMask)
	initLookupCell(0, 0, 0, swapMask|invertMask, 0, swapMask|invertMask)
}

// initLookupCell fills both lookup tables for every 4-level subtree reachable
// from the given starting orientation.
func initLookupCell(level, i, j, origOrientation, pos, orientation int) {
	if level == lookupBits {
		ij := (i << lookupBits) + j
		lookupPos[(ij<<2)+origOrientation] = (pos << 2) + orientation
		lookupIJ[(pos<<2)+origOrientation] = (ij << 2) + orientation
		return
	}
	level++
	i <<= 1
	j <<= 1
	pos <<= 2
	r := posToIJ[orientation]
	for k := 0; k < 4; k++ {
		initLookupCell(level, i+(r[k]>>1), j+(r[k]&1), origOrientation, pos+k, orientation^posToOrientation[k])
	}
}

// FromFaceIJ returns the leaf cell with the given face and (i,j) leaf
// coordinates, each in [0, MaxSize).
func FromFaceIJ(face, i, j int) CellID {
	// n is shifted left one more bit at the end.
	n := uint64(face) << (PosBits - 1)
	// Alternating faces have opposite Hilbert orientations so that every
	// face has a right-handed coordinate system.
	b := face & swapMask
	for k := 7; k >= 0; k-- {
		const mask = (1 << lookupBits) - 1
		b += ((i >> uint(k*lookupBits)) & mask) << (lookupBits + 2)
		b += ((j >> uint(k*lookupBits)) & mask) << 2
		b = lookupPos[b]
		n |= uint64(b>>2) << (uint(k) * 2 * lookupBits)
		b &= swapMask | invertMask
	}
	return CellID(n*2 + 1)
}

// faceIJOrientation returns the face, the (i,j) coordinates of the leaf cell
// at ci's RangeMin corner region, and the Hilbert orientation of ci.
func (ci CellID) faceIJOrientation() (face, i, j, orientation int) {
	face = ci.Face()
	orientation = face & swapMask
	nbits := MaxLevel - 7*lookupBits // first iteration only
	for k := 7; k >= 0; k-- {
		orientation += (int(uint64(ci)>>uint(k*2*lookupBits+1)) & ((1 << uint(2*nbits)) - 1)) << 2
		orientation = lookupIJ[orientation]
		i += (orientation >> (lookupBits + 2)) << uint(k*lookupBits)
		j += ((orientation >> 2) & ((1 << lookupBits) - 1)) << uint(k*lookupBits)
		orientation &= swapMask | invertMask
		nbits = lookupBits
	}
	// The trailing "10*" suffix of a non-leaf position contains
	// (MaxLevel-level-1) pairs of "00", each of which flips the swap bit.
	if ci.lsb()&0x1111111111111110 != 0 {
		orientation ^= swapMask
	}
	return face, i, j, orientation
}

// sizeIJ returns the edge length of cells at the given level in leaf units.
func sizeIJ(level int) int { return 1 << uint(MaxLevel-level) }

// fromFaceIJWrap returns the leaf cell for (i,j) coordinates that may lie
// just outside the face, wrapping onto the adjacent face.
func fromFaceIJWrap(face, i, j int) CellID {
	// Clamp to one leaf beyond the boundary to avoid overflow for face cells.
	i = clampInt(i, -1, MaxSize)
	j = clampInt(j, -1, MaxSize)

	// Convert through (x,y,z) using the linear projection, keeping (u,v)
	// barely outside [-1,1] so that re-projection lands in the right leaf.
	const scale = 1.0 / MaxSize
	limit := nextAfterOne
	u := clampFloat(scale*float64((i<<1)+1-MaxSize), -limit, limit)
	v := clampFloat(scale*float64((j<<1)+1-MaxSize), -limit, limit)

	face, u, v = xyzToFaceUV(faceUVToXYZ(face, u, v))
	return FromFaceIJ(face, stToIJ(0.5*(u+1)), stToIJ(0.5*(v+1)))
}

// fromFaceIJSame returns fromFaceIJ when (i,j) is known to lie on the face,
// and fromFaceIJWrap otherwise.
func fromFaceIJSame(face, i, j int, sameFace bool) CellID {
	if sameFace {
		return FromFaceIJ(face, i, j)
	}
	return fromFaceIJWrap(face, i, j)
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
