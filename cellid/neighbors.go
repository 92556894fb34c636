package cellid

import "fmt"

// EdgeNeighbors returns the four cells at the same level that share an edge
// with ci, in the order bottom, right, top, left in (u,v) space. Neighbors
// on adjacent faces are included.
func (ci CellID) EdgeNeighbors() [4]CellID {
	level := ci.Level()
	size := sizeIJ(level)
	f, i, j, _ := ci.faceIJOrientation()
	return [4]CellID{
		fromFaceIJWrap(f, i, j-size).Parent(level),
		fromFaceIJWrap(f, i+size, j).Parent(level),
		fromFaceIJWrap(f, i, j+size).Parent(level),
		fromFaceIJWrap(f, i-size, j).Parent(level),
	}
}

// VertexNeighbors returns the cells at the given level that touch the vertex
// of ci closest to its center. level must be coarser than ci's level. The
// result usually has four cells, or three at a cube vertex.
func (ci CellID) VertexNeighbors(level int) []CellID {
	if level >= ci.Level() {
		panic(fmt.Sprintf("cellid: vertex neighbor level %d must be coarser than %d", level, ci.Level()))
	}
	halfSize := sizeIJ(level + 1)
	size := halfSize << 1
	f, i, j, _ := ci.faceIJOrientation()

	var isame, jsame bool
	var ioffset, joffset int
	if i&halfSize != 0 {
		ioffset = size
		isame = (i + size) < MaxSize
	} else {
		ioffset = -size
		isame = (i - size) >= 0
	}
	if j&halfSize != 0 {
		joffset = size
		jsame = (j + size) < MaxSize
	} else {
		joffset = -size
		jsame = (j - size) >= 0
	}

	out := make([]CellID, 0, 4)
	out = append(out,
		ci.Parent(level),
		fromFaceIJSame(f, i+ioffset, j, isame).Parent(level),
		fromFaceIJSame(f, i, j+joffset, jsame).Parent(level),
	)
	// At a cube vertex only three cells meet.
	if isame || jsame {
		out = append(out, fromFaceIJSame(f, i+ioffset, j+joffset, isame && jsame).Parent(level))
	}
	return out
}

// AppendAllNeighbors appends every cell at the given level that shares an
// edge or vertex with ci (ci itself excluded) to dst and returns the
// extended slice. level must be at least ci's level. When level is finer,
// all the small cells along ci's boundary are returned.
func (ci CellID) AppendAllNeighbors(level int, dst []CellID) []CellID {
	if level < ci.Level() || level > MaxLevel {
		panic(fmt.Sprintf("cellid: neighbor level %d invalid for cell at level %d", level, ci.Level()))
	}
	face, i, j, _ := ci.faceIJOrientation()

	// Normalize (i,j) to the lower-left leaf since level may be finer.
	size := sizeIJ(ci.Level())
	i &= -size
	j &= -size

	nbrSize := sizeIJ(level)
	// Loop test is at the bottom to avoid overflow at the face edge.
	for k := -nbrSize; ; k += nbrSize {
		var sameFace bool
		if k < 0 {
			sameFace = j+k >= 0
		} else if k >= size {
			sameFace = j+k < MaxSize
		} else {
			sameFace = true
			// Top and bottom neighbors.
			dst = append(dst,
				fromFaceIJSame(face, i+k, j-nbrSize, j-size >= 0).Parent(level),
				fromFaceIJSame(face, i+k, j+size, j+size < MaxSize).Parent(level),
			)
		}
		// Left, right and diagonal neighbors.
		dst = append(dst,
			fromFaceIJSame(face, i-nbrSize, j+k, sameFace && i-size >= 0).Parent(level),
			fromFaceIJSame(face, i+size, j+k, sameFace && i+size < MaxSize).Parent(level),
		)
		if k >= size {
			break
		}
	}
	return dst
}

// AllNeighbors is AppendAllNeighbors into a fresh slice.
func (ci CellID) AllNeighbors(level int) []CellID {
	return ci.AppendAllNeighbors(level, nil)
}
