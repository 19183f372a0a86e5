package chunk

import "voxeld/internal/voxel"

// Data holds the voxels of one 32³ chunk. Storage is either a single entry
// (a uniform chunk: every voxel has that value) or the full 32³ array.
// Published Data values are treated as immutable; writers must work on a
// copy obtained through Clone.
type Data struct {
	voxels []voxel.BlockData
}

// NewUniform returns a chunk whose every voxel is b.
func NewUniform(b voxel.BlockData) *Data {
	return &Data{voxels: []voxel.BlockData{b}}
}

// NewDense returns a chunk backed by the given 32³ voxel array. The slice is
// taken over, not copied.
func NewDense(voxels []voxel.BlockData) *Data {
	if len(voxels) != Size3 {
		panic("chunk: dense data must hold 32³ voxels")
	}
	return &Data{voxels: voxels}
}

// Block returns the voxel at the flat index i, transparently handling the
// uniform representation.
func (d *Data) Block(i int) voxel.BlockData {
	if len(d.voxels) == 1 {
		return d.voxels[0]
	}
	return d.voxels[i]
}

// UniformBlock returns the single block value and true when the chunk is
// uniform.
func (d *Data) UniformBlock() (voxel.BlockData, bool) {
	if len(d.voxels) == 1 {
		return d.voxels[0], true
	}
	return voxel.BlockData{}, false
}

// IsUniform reports whether the chunk uses the single-entry representation.
func (d *Data) IsUniform() bool {
	return len(d.voxels) == 1
}

// Len returns the storage length: 1 for uniform chunks, 32³ otherwise.
func (d *Data) Len() int {
	return len(d.voxels)
}

// Clone returns a writable copy of the chunk.
func (d *Data) Clone() *Data {
	voxels := make([]voxel.BlockData, len(d.voxels))
	copy(voxels, d.voxels)
	return &Data{voxels: voxels}
}

// Expand converts a uniform chunk to the dense representation, replicating
// the uniform value. Dense chunks are returned unchanged. Set on a uniform
// chunk would rewrite every voxel at once (index 0) or index past its single
// entry (any other index), so writers call this before the first Set.
func (d *Data) Expand() {
	if len(d.voxels) != 1 {
		return
	}
	value := d.voxels[0]
	voxels := make([]voxel.BlockData, Size3)
	for i := range voxels {
		voxels[i] = value
	}
	d.voxels = voxels
}

// Set writes the voxel at the flat index i. The chunk must be dense.
func (d *Data) Set(i int, b voxel.BlockData) {
	d.voxels[i] = b
}
