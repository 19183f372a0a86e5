package worldgen

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"voxeld/internal/chunk"
	"voxeld/internal/voxel"
)

// Terrain shaping constants. The continental mass and erosion fields are
// downsampled aggressively; the 2D surface detail field and the 3D overhang
// field stay at half resolution.
const (
	continentalFrequency  = 0.0002591
	continentalScale      = 55.0
	continentalUpsampling = 5

	erosionFrequency  = 0.004891
	erosionScale      = 1.0
	erosionUpsampling = 5

	surfaceFrequency  = 0.002591
	surfaceScale      = 30.0
	surfaceUpsampling = 1

	overhangFrequency  = 0.0254
	overhangScale      = 55.0
	overhangUpsampling = 1

	// Chunks above/below this band are uniform air/stone without sampling.
	chunkHeightLimit = 3

	// Seed offsets keep the four fields decorrelated under one world seed.
	continentalSeedOffset = 37
	erosionSeedOffset     = 549
	surfaceSeedOffset     = 0
	overhangSeedOffset    = 7127

	columnCacheSize = 256
)

// Blocks names the block ids the terrain function places.
type Blocks struct {
	Dirt  voxel.BlockID
	Grass voxel.BlockID
	Water voxel.BlockID
	Stone voxel.BlockID
}

// column holds the 2D downsamplers shared by every chunk in one XZ column.
type column struct {
	continental *Downsampler2D
	erosion     *Downsampler2D
	surface     *Downsampler2D
}

// Terrain is the default chunk generator: surface height composed from
// continental, erosion and surface fields plus a 3D overhang field, with
// block choice by depth below the surface. Safe for concurrent use by
// generation workers.
type Terrain struct {
	continentalNoise *Field2D
	erosionNoise     *Field2D
	surfaceNoise     *Field2D
	overhangNoise    *Field3D
	blocks           Blocks

	// Chunks stack vertically over the same footprint, so the 2D sample
	// grids are cached per column.
	columns *lru.Cache[[2]int32, *column]
}

// NewTerrain builds a generator for the given world seed.
func NewTerrain(seed int64, blocks Blocks) *Terrain {
	columns, err := lru.New[[2]int32, *column](columnCacheSize)
	if err != nil {
		panic(err)
	}
	return &Terrain{
		continentalNoise: NewField2D(seed+continentalSeedOffset, continentalFrequency),
		erosionNoise:     NewField2D(seed+erosionSeedOffset, erosionFrequency),
		surfaceNoise:     NewField2D(seed+surfaceSeedOffset, surfaceFrequency),
		overhangNoise:    NewField3D(seed+overhangSeedOffset, overhangFrequency),
		blocks:           blocks,
		columns:          columns,
	}
}

func (t *Terrain) column(cx, cz int32) *column {
	key := [2]int32{cx, cz}
	if col, ok := t.columns.Get(key); ok {
		return col
	}
	originX, originZ := cx*chunk.Size, cz*chunk.Size
	col := &column{
		continental: NewDownsampler2D(continentalUpsampling, t.continentalNoise, originX, originZ, continentalScale, 0, false),
		erosion:     NewDownsampler2D(erosionUpsampling, t.erosionNoise, originX, originZ, erosionScale, 0, false),
		surface:     NewDownsampler2D(surfaceUpsampling, t.surfaceNoise, originX, originZ, surfaceScale, 0, false),
	}
	t.columns.Add(key, col)
	return col
}

// Generate shapes the voxel data for one chunk position.
func (t *Terrain) Generate(pos chunk.Pos) *chunk.Data {
	if pos.Y() > chunkHeightLimit {
		return chunk.NewUniform(voxel.BlockData{Type: voxel.Air})
	}
	if pos.Y() < -chunkHeightLimit {
		return chunk.NewUniform(voxel.BlockData{Type: t.blocks.Stone})
	}

	originX := pos.X() * chunk.Size
	originY := pos.Y() * chunk.Size
	originZ := pos.Z() * chunk.Size

	col := t.column(pos.X(), pos.Z())
	overhang := NewDownsampler3D(overhangUpsampling, t.overhangNoise, originX, originY, originZ,
		overhangScale, chunk.Pos{0, 12, 0}, false)

	voxels := make([]voxel.BlockData, chunk.Size3)
	for i := range voxels {
		lx, ly, lz := chunk.IndexToVec(i, chunk.Size)
		wx, wy, wz := originX+lx, originY+ly, originZ+lz

		surface := col.continental.At(wx, wz) +
			(col.surface.At(wx, wz)+overhang.At(wx, wy, wz))*(1-col.erosion.At(wx, wz))

		var id voxel.BlockID
		if depth := surface - float32(wy); depth > 0 {
			switch {
			case depth > 3:
				id = t.blocks.Stone
			case depth > 1:
				id = t.blocks.Dirt
			default:
				id = t.blocks.Grass
			}
		} else if wy < 0 {
			id = t.blocks.Water
		}
		voxels[i] = voxel.BlockData{Type: id}
	}
	return chunk.NewDense(voxels)
}
