package chunk

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Size is the edge length of a chunk in voxels.
	Size = 32
	// Size2 is the number of voxels in one chunk layer.
	Size2 = Size * Size
	// Size3 is the number of voxels in a chunk.
	Size3 = Size * Size * Size
)

// Pos is a chunk coordinate. The world-space origin of a chunk is Pos·32.
type Pos [3]int32

func (p Pos) X() int32 { return p[0] }
func (p Pos) Y() int32 { return p[1] }
func (p Pos) Z() int32 { return p[2] }

// Add returns p translated by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{p[0] + d[0], p[1] + d[1], p[2] + d[2]}
}

// WorldOrigin returns the world-space position of the chunk's minimum corner.
func (p Pos) WorldOrigin() mgl32.Vec3 {
	return mgl32.Vec3{float32(p[0]) * Size, float32(p[1]) * Size, float32(p[2]) * Size}
}

// DistanceSq returns the squared distance to o in chunk units.
func (p Pos) DistanceSq(o Pos) int64 {
	dx := int64(p[0] - o[0])
	dy := int64(p[1] - o[1])
	dz := int64(p[2] - o[2])
	return dx*dx + dy*dy + dz*dz
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// PosFromWorld returns the chunk position an observer at the given world
// position belongs to. The -16 bias centers chunk 0 on the origin of its
// bounding box; this matches the world origin used when placing mesh
// entities.
func PosFromWorld(world mgl32.Vec3) Pos {
	return Pos{
		int32(math.Floor(float64(world[0]-16) / Size)),
		int32(math.Floor(float64(world[1]-16) / Size)),
		int32(math.Floor(float64(world[2]-16) / Size)),
	}
}

// VecToIndex converts local voxel coordinates to a flat index within the
// given bounds. For a chunk, bounds is Size and the mapping is
// x + y·32 + z·1024; this decomposition is authoritative for anything that
// serializes indices.
func VecToIndex(x, y, z, bounds int32) int {
	return int(x + y*bounds + z*bounds*bounds)
}

// IndexToVec inverts VecToIndex for the given bounds.
func IndexToVec(i int, bounds int32) (x, y, z int32) {
	b := int(bounds)
	return int32(i % b), int32((i / b) % b), int32(i / (b * b))
}

// IsOnEdge reports whether a local position lies on the padded neighborhood
// boundary used by the mesher.
func IsOnEdge(x, y, z int32) bool {
	return x == 0 || x == Size ||
		y == 0 || y == Size ||
		z == 0 || z == Size
}

// EdgingChunk returns the direction of the neighbor chunk a local voxel
// borders, combining all axes on which the voxel lies at 0 or 31. The second
// return is false when the voxel is interior.
func EdgingChunk(x, y, z int32) (Pos, bool) {
	var dir Pos
	switch {
	case x == 0:
		dir[0] = -1
	case x == Size-1:
		dir[0] = 1
	}
	switch {
	case y == 0:
		dir[1] = -1
	case y == Size-1:
		dir[1] = 1
	}
	switch {
	case z == 0:
		dir[2] = -1
	case z == Size-1:
		dir[2] = 1
	}
	if dir == (Pos{}) {
		return Pos{}, false
	}
	return dir, true
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the non-negative remainder of a/b.
func mod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
