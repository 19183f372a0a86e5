package worldgen

import "voxeld/internal/chunk"

// Downsamplers evaluate a noise field on a sparse grid with step 2^upsampling
// covering one chunk's footprint (plus an optional buffer) and reconstruct
// intermediate values by bi/trilinear interpolation. For low-frequency masks
// this cuts noise cost by 2^(2u) or 2^(3u) against per-voxel evaluation.

// Downsampler2D holds pre-sampled values over a chunk's XZ footprint.
// Immutable after construction.
type Downsampler2D struct {
	samples    []float32
	upsampling int32
	minX, minZ int32
	sizeX      int32
}

// NewDownsampler2D samples noise·scale on the grid covering the footprint of
// a chunk at world origin (originX, originZ), extended by buffer grid cells
// on every side. With unitised set, raw noise is remapped from [-1,1] to
// [0,1] before scaling.
func NewDownsampler2D(upsampling int32, noise *Field2D, originX, originZ int32, scale float32, buffer int32, unitised bool) *Downsampler2D {
	minX := originX>>uint(upsampling) - buffer
	minZ := originZ>>uint(upsampling) - buffer
	maxX := (originX+chunk.Size)>>uint(upsampling) + 1 + buffer
	maxZ := (originZ+chunk.Size)>>uint(upsampling) + 1 + buffer

	d := &Downsampler2D{
		samples:    make([]float32, (maxX-minX)*(maxZ-minZ)),
		upsampling: upsampling,
		minX:       minX,
		minZ:       minZ,
		sizeX:      maxX - minX,
	}
	for sz := minZ; sz < maxZ; sz++ {
		for sx := minX; sx < maxX; sx++ {
			v := noise.At(float32(sx<<uint(upsampling)), float32(sz<<uint(upsampling)))
			if unitised {
				v = v*0.5 + 0.5
			}
			d.samples[(sx-minX)+(sz-minZ)*d.sizeX] = v * scale
		}
	}
	return d
}

// At reconstructs the field at a world position inside the sampled region,
// [origin - buffer·2^u, origin + 32 + buffer·2^u) on each axis. Interpolation
// reads the next grid sample along X and Z, so positions past that range
// read samples of the wrong row or index outside the sample buffer.
func (d *Downsampler2D) At(worldX, worldZ int32) float32 {
	sx := worldX >> uint(d.upsampling)
	sz := worldZ >> uint(d.upsampling)
	i := (sx - d.minX) + (sz-d.minZ)*d.sizeX

	q00 := d.samples[i]
	q10 := d.samples[i+1]
	q01 := d.samples[i+d.sizeX]
	q11 := d.samples[i+d.sizeX+1]

	step := float32(int32(1) << uint(d.upsampling))
	ax := float32(worldX-sx<<uint(d.upsampling)) / step
	az := float32(worldZ-sz<<uint(d.upsampling)) / step
	return bilerp(ax, az, q00, q10, q01, q11)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func bilerp(tx, ty, q00, q10, q01, q11 float32) float32 {
	return lerp(lerp(q00, q10, tx), lerp(q01, q11, tx), ty)
}

// Downsampler3D is the volumetric variant. Sample index layout is
// x + z·sizeX + y·sizeX·sizeZ, mirroring the generator's Y-outer access
// order. Immutable after construction.
type Downsampler3D struct {
	samples          []float32
	upsampling       int32
	minX, minY, minZ int32
	sizeX, sizeZ     int32
}

// NewDownsampler3D samples noise·scale over a chunk's volume at world origin
// (originX, originY, originZ), extended per axis by the buffer vector.
func NewDownsampler3D(upsampling int32, noise *Field3D, originX, originY, originZ int32, scale float32, buffer chunk.Pos, unitised bool) *Downsampler3D {
	minX := originX>>uint(upsampling) - buffer.X()
	minY := originY>>uint(upsampling) - buffer.Y()
	minZ := originZ>>uint(upsampling) - buffer.Z()
	maxX := (originX+chunk.Size)>>uint(upsampling) + 1 + buffer.X()
	maxY := (originY+chunk.Size)>>uint(upsampling) + 1 + buffer.Y()
	maxZ := (originZ+chunk.Size)>>uint(upsampling) + 1 + buffer.Z()

	d := &Downsampler3D{
		samples:    make([]float32, (maxX-minX)*(maxY-minY)*(maxZ-minZ)),
		upsampling: upsampling,
		minX:       minX,
		minY:       minY,
		minZ:       minZ,
		sizeX:      maxX - minX,
		sizeZ:      maxZ - minZ,
	}
	for sy := minY; sy < maxY; sy++ {
		for sz := minZ; sz < maxZ; sz++ {
			for sx := minX; sx < maxX; sx++ {
				v := noise.At(
					float32(sx<<uint(upsampling)),
					float32(sy<<uint(upsampling)),
					float32(sz<<uint(upsampling)),
				)
				if unitised {
					v = v*0.5 + 0.5
				}
				i := (sx - minX) + (sz-minZ)*d.sizeX + (sy-minY)*d.sizeX*d.sizeZ
				d.samples[i] = v * scale
			}
		}
	}
	return d
}

// At reconstructs the field at a world position inside the sampled region.
func (d *Downsampler3D) At(worldX, worldY, worldZ int32) float32 {
	sx := worldX >> uint(d.upsampling)
	sy := worldY >> uint(d.upsampling)
	sz := worldZ >> uint(d.upsampling)

	layer := d.sizeX * d.sizeZ
	i := (sx - d.minX) + (sz-d.minZ)*d.sizeX + (sy-d.minY)*layer

	step := float32(int32(1) << uint(d.upsampling))
	ax := float32(worldX-sx<<uint(d.upsampling)) / step
	ay := float32(worldY-sy<<uint(d.upsampling)) / step
	az := float32(worldZ-sz<<uint(d.upsampling)) / step

	bottom := bilerp(ax, az, d.samples[i], d.samples[i+1], d.samples[i+d.sizeX], d.samples[i+d.sizeX+1])
	i += layer
	top := bilerp(ax, az, d.samples[i], d.samples[i+1], d.samples[i+d.sizeX], d.samples[i+d.sizeX+1])
	return lerp(bottom, top, ay)
}
