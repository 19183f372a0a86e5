package chunk

import "voxeld/internal/voxel"

// Refs is a read-only view over the 3×3×3 group of chunks around a center
// chunk. It holds shared handles to all 27 chunks, so a mesh job keeps a
// stable snapshot even if the owner evicts entries while the job runs.
type Refs struct {
	center Pos
	chunks [27]*Data
}

// refIndex maps a neighbor offset in {-1,0,1}³ to the chunks array.
func refIndex(dx, dy, dz int32) int {
	return int((dx + 1) + (dy+1)*3 + (dz+1)*9)
}

// NewRefs collects the 27 chunks around center from world. It returns false
// if any neighbor is missing.
func NewRefs(world map[Pos]*Data, center Pos) (*Refs, bool) {
	r := &Refs{center: center}
	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				data, ok := world[center.Add(Pos{dx, dy, dz})]
				if !ok {
					return nil, false
				}
				r.chunks[refIndex(dx, dy, dz)] = data
			}
		}
	}
	return r, true
}

// Center returns the position of the center chunk.
func (r *Refs) Center() Pos {
	return r.center
}

// Block returns the voxel at a local position relative to the center chunk's
// origin. Coordinates in [-32, 64) are valid; they select the neighbor chunk
// and translate into its local frame.
func (r *Refs) Block(x, y, z int32) voxel.BlockData {
	dx, dy, dz := floorDiv(x, Size), floorDiv(y, Size), floorDiv(z, Size)
	data := r.chunks[refIndex(dx, dy, dz)]
	return data.Block(VecToIndex(mod(x, Size), mod(y, Size), mod(z, Size), Size))
}

// AllUniform returns the shared block value if all 27 chunks are uniform
// with the same value; used to skip meshing entirely-empty or entirely-solid
// neighborhoods cheaply.
func (r *Refs) AllUniform() (voxel.BlockData, bool) {
	first, ok := r.chunks[0].UniformBlock()
	if !ok {
		return voxel.BlockData{}, false
	}
	for _, c := range r.chunks[1:] {
		b, ok := c.UniformBlock()
		if !ok || b != first {
			return voxel.BlockData{}, false
		}
	}
	return first, true
}
