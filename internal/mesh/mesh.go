package mesh

import "github.com/go-gl/mathgl/mgl32"

// ChunkMesh is a GPU-ready mesh payload: packed u32 vertices plus a triangle
// index list.
type ChunkMesh struct {
	Vertices []uint32
	Indices  []uint32
}

// Empty reports whether the mesh holds no geometry.
func (m *ChunkMesh) Empty() bool {
	return m == nil || len(m.Vertices) == 0
}

// AABB returns the chunk-local bounding box of the mesh vertices.
func (m *ChunkMesh) AABB() (min, max mgl32.Vec3) {
	if m.Empty() {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	minI := [3]int32{63, 63, 63}
	maxI := [3]int32{0, 0, 0}
	for _, v := range m.Vertices {
		x, y, z := UnpackPos(v)
		for i, c := range [3]int32{x, y, z} {
			if c < minI[i] {
				minI[i] = c
			}
			if c > maxI[i] {
				maxI[i] = c
			}
		}
	}
	return mgl32.Vec3{float32(minI[0]), float32(minI[1]), float32(minI[2])},
		mgl32.Vec3{float32(maxI[0]), float32(maxI[1]), float32(maxI[2])}
}

// Positions projects the packed vertices to chunk-local float positions,
// keeping the index list. Useful for collision derivation or debugging.
func (m *ChunkMesh) Positions() ([]uint32, []mgl32.Vec3) {
	positions := make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		x, y, z := UnpackPos(v)
		positions[i] = mgl32.Vec3{float32(x), float32(y), float32(z)}
	}
	return m.Indices, positions
}
