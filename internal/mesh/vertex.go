package mesh

// Vertex format, LSB to MSB:
//
//	bits  0-5  x position (0..33)
//	bits  6-11 y position
//	bits 12-17 z position
//	bits 18-20 ambient occlusion
//	bits 21-23 normal direction (0..5: +X,-X,+Y,-Y,+Z,-Z)
//	bits 24-31 low byte of the block type
//
// Consumers unpack the attribute in the vertex shader.

// MakeVertex packs one vertex into the 32-bit attribute format.
func MakeVertex(x, y, z int32, ao, normal uint32, block uint32) uint32 {
	return uint32(x) |
		uint32(y)<<6 |
		uint32(z)<<12 |
		ao<<18 |
		normal<<21 |
		block<<24
}

// UnpackPos extracts the position fields of a packed vertex.
func UnpackPos(vertex uint32) (x, y, z int32) {
	return int32(vertex & 0x3f),
		int32(vertex >> 6 & 0x3f),
		int32(vertex >> 12 & 0x3f)
}

// UnpackAO extracts the ambient occlusion field of a packed vertex.
func UnpackAO(vertex uint32) uint32 {
	return vertex >> 18 & 0x7
}

// UnpackNormal extracts the normal direction field of a packed vertex.
func UnpackNormal(vertex uint32) uint32 {
	return vertex >> 21 & 0x7
}

// UnpackBlock extracts the block type byte of a packed vertex.
func UnpackBlock(vertex uint32) uint32 {
	return vertex >> 24
}

// GenerateIndices produces the index list for a vertex stream made of
// counter-clockwise quads: (0,1,2, 0,2,3) per quad.
func GenerateIndices(vertexCount int) []uint32 {
	quads := vertexCount / 4
	indices := make([]uint32, 0, quads*6)
	for q := 0; q < quads; q++ {
		base := uint32(q * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return indices
}
