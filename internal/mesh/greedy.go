package mesh

import (
	"math/bits"
	"sort"

	"voxeld/internal/chunk"
	"voxeld/internal/voxel"
)

// The binary greedy mesher converts a 3×3×3 chunk neighborhood into a quad
// mesh for one block-flag channel. Voxel occupancy is packed into per-axis
// bitmask columns so face isolation is a shift and a mask, faces are grouped
// into per-depth planes keyed by (block id, AO pattern), and rectangles are
// extracted per plane with trailing-zero/one scans.

// Face direction order matches the vertex normal encoding.
const (
	facePosX = iota
	faceNegX
	facePosY
	faceNegY
	facePosZ
	faceNegZ
)

// neighborhood is the sampled cell grid for one mesh job: the chunk's cells
// padded by one cell of neighbor data on every side.
type neighborhood struct {
	size   int32 // cells per axis (LOD size)
	padded int32 // size + 2

	// cols[axis][u][v] holds occupancy bits along the axis for cells with
	// the target flag. Axis tangents: X→(u=z,v=y), Y→(u=x,v=z), Z→(u=x,v=y).
	cols [3][chunk.Size + 2][chunk.Size + 2]uint64

	ids   []voxel.BlockID // representative id per cell
	solid []bool          // SOLID occupancy per cell, for AO sampling
}

func (n *neighborhood) flat(x, y, z int32) int {
	return int(x + y*n.padded + z*n.padded*n.padded)
}

// cellPos maps (axis, u, v, depth) in padded coordinates to a cell position.
func cellPos(axis int, u, v, depth int32) (x, y, z int32) {
	switch axis {
	case 0:
		return depth, v, u
	case 1:
		return u, depth, v
	default:
		return u, v, depth
	}
}

// sampleNeighborhood reads every padded cell once. At full detail a cell is a
// voxel; at coarser levels a cell covers cellSize³ voxels and is occupied if
// any constituent voxel passes the flag test, with the representative id
// chosen by majority among passing voxels (ties: smallest id).
func sampleNeighborhood(refs *chunk.Refs, lod LOD, reg *voxel.Registry, target voxel.Flags) *neighborhood {
	size := lod.Size()
	cellSize := lod.CellSize()
	padded := size + 2

	n := &neighborhood{
		size:   size,
		padded: padded,
		ids:    make([]voxel.BlockID, padded*padded*padded),
		solid:  make([]bool, padded*padded*padded),
	}

	for cz := int32(0); cz < padded; cz++ {
		for cy := int32(0); cy < padded; cy++ {
			for cx := int32(0); cx < padded; cx++ {
				var id voxel.BlockID
				var flagged, isSolid bool
				if cellSize == 1 {
					id = refs.Block(cx-1, cy-1, cz-1).Type
					f := reg.Flags(id)
					flagged = f.Has(target)
					isSolid = f.Has(voxel.FlagSolid)
				} else {
					id, flagged, isSolid = sampleCell(refs, reg, target, cx-1, cy-1, cz-1, cellSize)
				}
				if !flagged {
					id = voxel.Air
				}
				i := n.flat(cx, cy, cz)
				n.ids[i] = id
				n.solid[i] = isSolid
				if flagged {
					n.cols[0][cz][cy] |= 1 << uint(cx)
					n.cols[1][cx][cz] |= 1 << uint(cy)
					n.cols[2][cx][cy] |= 1 << uint(cz)
				}
			}
		}
	}
	return n
}

// sampleCell downsamples one LOD cell spanning cellSize voxels per axis.
func sampleCell(refs *chunk.Refs, reg *voxel.Registry, target voxel.Flags, cx, cy, cz, cellSize int32) (voxel.BlockID, bool, bool) {
	counts := make(map[voxel.BlockID]int)
	isSolid := false
	for dz := int32(0); dz < cellSize; dz++ {
		for dy := int32(0); dy < cellSize; dy++ {
			for dx := int32(0); dx < cellSize; dx++ {
				id := refs.Block(cx*cellSize+dx, cy*cellSize+dy, cz*cellSize+dz).Type
				f := reg.Flags(id)
				if f.Has(target) {
					counts[id]++
				}
				if f.Has(voxel.FlagSolid) {
					isSolid = true
				}
			}
		}
	}
	if len(counts) == 0 {
		return voxel.Air, false, isSolid
	}
	best := voxel.BlockID(0)
	bestCount := -1
	for id, c := range counts {
		if c > bestCount || (c == bestCount && id < best) {
			best, bestCount = id, c
		}
	}
	return best, true, isSolid
}

// BuildChunkMesh meshes the center chunk of refs for one flag channel,
// returning nil when no quads are emitted. For the TRANSPARENT channel with
// cullSelfOnly set, a face is hidden only by a neighbor of the same block id;
// different transparent ids and solid neighbors never occlude it.
func BuildChunkMesh(refs *chunk.Refs, lod LOD, reg *voxel.Registry, target voxel.Flags, computeAO, cullSelfOnly bool) *ChunkMesh {
	// A neighborhood that is one uniform block can never produce a face.
	if _, ok := refs.AllUniform(); ok {
		return nil
	}

	n := sampleNeighborhood(refs, lod, reg, target)
	size := n.size
	cellSize := lod.CellSize()
	innerMask := uint64(1)<<uint(size) - 1

	var vertices []uint32

	for face := 0; face < 6; face++ {
		axis := face / 2
		positive := face%2 == 0

		// Per-depth planes keyed by (block id << 8 | AO pattern). Rows are
		// indexed by u, bits by v, so extraction is row-major.
		depthPlanes := make([]map[uint32][]uint32, size)

		for u := int32(0); u < size; u++ {
			for v := int32(0); v < size; v++ {
				col := n.cols[axis][u+1][v+1]
				if col == 0 {
					continue
				}

				var faceBits uint64
				if cullSelfOnly {
					faceBits = n.selfCulledFaces(axis, positive, u+1, v+1, col)
				} else if positive {
					faceBits = col &^ (col >> 1)
				} else {
					faceBits = col &^ (col << 1)
				}
				// Drop the padding cells; bit d now means inner depth d.
				faceBits = faceBits >> 1 & innerMask

				for faceBits != 0 {
					d := int32(bits.TrailingZeros64(faceBits))
					faceBits &= faceBits - 1

					x, y, z := cellPos(axis, u+1, v+1, d+1)
					id := n.ids[n.flat(x, y, z)]
					var ao uint8
					if computeAO {
						ao = n.aoPattern(axis, positive, u+1, v+1, d+1)
					}
					key := uint32(id)<<8 | uint32(ao)

					m := depthPlanes[d]
					if m == nil {
						m = make(map[uint32][]uint32)
						depthPlanes[d] = m
					}
					plane := m[key]
					if plane == nil {
						plane = make([]uint32, size)
						m[key] = plane
					}
					plane[u] |= 1 << uint(v)
				}
			}
		}

		// Emission order: depth-ascending, then sorted plane keys, then the
		// extractor's scan order. Map iteration is randomized, so the keys
		// are sorted to keep output byte-identical across runs.
		for d := int32(0); d < size; d++ {
			m := depthPlanes[d]
			if m == nil {
				continue
			}
			keys := make([]uint32, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			for _, key := range keys {
				id := uint32(key >> 8)
				ao := uint8(key)
				for _, q := range greedyMeshBinaryPlane(m[key], size) {
					vertices = appendQuad(vertices, face, d, q, id, ao, computeAO, cellSize)
				}
			}
		}
	}

	if len(vertices) == 0 {
		return nil
	}
	return &ChunkMesh{Vertices: vertices, Indices: GenerateIndices(len(vertices))}
}

// selfCulledFaces computes face bits for the cull-against-self-only rule:
// only a same-id neighbor along the normal hides a face.
func (n *neighborhood) selfCulledFaces(axis int, positive bool, u, v int32, col uint64) uint64 {
	step := int32(1)
	if !positive {
		step = -1
	}
	var faceBits uint64
	for depth := int32(1); depth <= n.size; depth++ {
		if col>>uint(depth)&1 == 0 {
			continue
		}
		if col>>uint(depth+step)&1 == 0 {
			faceBits |= 1 << uint(depth)
			continue
		}
		cx, cy, cz := cellPos(axis, u, v, depth)
		nx, ny, nz := cellPos(axis, u, v, depth+step)
		if n.ids[n.flat(cx, cy, cz)] != n.ids[n.flat(nx, ny, nz)] {
			faceBits |= 1 << uint(depth)
		}
	}
	return faceBits
}

// aoPattern computes the packed per-corner AO of a face cell from the eight
// cells surrounding it on the facing side. Corners hold 0..3 (3 = unoccluded)
// in two bits each: c00 | c10<<2 | c01<<4 | c11<<6, where the first digit is
// the u side and the second the v side.
func (n *neighborhood) aoPattern(axis int, positive bool, u, v, depth int32) uint8 {
	layer := depth + 1
	if !positive {
		layer = depth - 1
	}
	occ := func(du, dv int32) bool {
		x, y, z := cellPos(axis, u+du, v+dv, layer)
		return n.solid[n.flat(x, y, z)]
	}
	corner := func(side1, side2, diag bool) uint8 {
		if side1 && side2 {
			return 0
		}
		occluders := uint8(0)
		for _, o := range [3]bool{side1, side2, diag} {
			if o {
				occluders++
			}
		}
		return 3 - occluders
	}
	c00 := corner(occ(-1, 0), occ(0, -1), occ(-1, -1))
	c10 := corner(occ(1, 0), occ(0, -1), occ(1, -1))
	c01 := corner(occ(-1, 0), occ(0, 1), occ(-1, 1))
	c11 := corner(occ(1, 0), occ(0, 1), occ(1, 1))
	return c00 | c10<<2 | c01<<4 | c11<<6
}

// greedyQuad is one extracted rectangle in plane coordinates: rows along u,
// bits along v.
type greedyQuad struct {
	u, v, w, h int32
}

// greedyMeshBinaryPlane extracts maximal rectangles from a bit plane. For
// each set bit it takes the trailing-one run as the quad height, then grows
// the width across subsequent rows that contain the same run, clearing their
// bits. The plane is consumed.
func greedyMeshBinaryPlane(data []uint32, size int32) []greedyQuad {
	var quads []greedyQuad
	for row := int32(0); row < size; row++ {
		v := int32(0)
		for v < size {
			v += int32(bits.TrailingZeros32(data[row] >> uint(v)))
			if v >= size {
				break
			}
			h := int32(bits.TrailingZeros32(^(data[row] >> uint(v))))
			runMask := uint32(uint64(1)<<uint(h) - 1)
			mask := runMask << uint(v)
			w := int32(1)
			for row+w < size {
				next := data[row+w] >> uint(v) & runMask
				if next != runMask {
					break
				}
				data[row+w] &^= mask
				w++
			}
			quads = append(quads, greedyQuad{u: row, v: v, w: w, h: h})
			v += h
		}
	}
	return quads
}

// appendQuad emits the four corner vertices of one quad, counter-clockwise
// as seen from the outward side of the face.
func appendQuad(vertices []uint32, face int, depth int32, q greedyQuad, block uint32, ao uint8, computeAO bool, cellSize int32) []uint32 {
	corner := func(c uint8) uint32 {
		if !computeAO {
			return 3
		}
		return uint32(ao >> (2 * c) & 3)
	}
	// Corner indices into the AO pattern: 0=c00, 1=c10, 2=c01, 3=c11.
	const (
		c00 = 0
		c10 = 1
		c01 = 2
		c11 = 3
	)

	plane := depth
	if face%2 == 0 {
		plane = depth + 1
	}
	u0, v0, u1, v1 := q.u, q.v, q.u+q.w, q.v+q.h

	type cv struct {
		x, y, z int32
		ao      uint32
	}
	var quad [4]cv
	switch face {
	case facePosX: // u=z, v=y
		quad = [4]cv{
			{plane, v0, u0, corner(c00)},
			{plane, v1, u0, corner(c01)},
			{plane, v1, u1, corner(c11)},
			{plane, v0, u1, corner(c10)},
		}
	case faceNegX:
		quad = [4]cv{
			{plane, v0, u0, corner(c00)},
			{plane, v0, u1, corner(c10)},
			{plane, v1, u1, corner(c11)},
			{plane, v1, u0, corner(c01)},
		}
	case facePosY: // u=x, v=z
		quad = [4]cv{
			{u0, plane, v0, corner(c00)},
			{u0, plane, v1, corner(c01)},
			{u1, plane, v1, corner(c11)},
			{u1, plane, v0, corner(c10)},
		}
	case faceNegY:
		quad = [4]cv{
			{u0, plane, v0, corner(c00)},
			{u1, plane, v0, corner(c10)},
			{u1, plane, v1, corner(c11)},
			{u0, plane, v1, corner(c01)},
		}
	case facePosZ: // u=x, v=y
		quad = [4]cv{
			{u0, v0, plane, corner(c00)},
			{u1, v0, plane, corner(c10)},
			{u1, v1, plane, corner(c11)},
			{u0, v1, plane, corner(c01)},
		}
	case faceNegZ:
		quad = [4]cv{
			{u0, v0, plane, corner(c00)},
			{u0, v1, plane, corner(c01)},
			{u1, v1, plane, corner(c11)},
			{u1, v0, plane, corner(c10)},
		}
	}

	for _, c := range quad {
		vertices = append(vertices, MakeVertex(c.x*cellSize, c.y*cellSize, c.z*cellSize, c.ao, uint32(face), block&0xff))
	}
	return vertices
}
