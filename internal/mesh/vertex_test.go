package mesh

import "testing"

func TestVertexRoundTrip(t *testing.T) {
	for _, pos := range [][3]int32{{0, 0, 0}, {33, 33, 33}, {1, 17, 32}, {32, 0, 5}} {
		for ao := uint32(0); ao < 4; ao++ {
			for normal := uint32(0); normal < 6; normal++ {
				for _, block := range []uint32{0, 1, 127, 255} {
					v := MakeVertex(pos[0], pos[1], pos[2], ao, normal, block)
					x, y, z := UnpackPos(v)
					if x != pos[0] || y != pos[1] || z != pos[2] {
						t.Fatalf("pos %v round-tripped to (%d,%d,%d)", pos, x, y, z)
					}
					if UnpackAO(v) != ao {
						t.Fatalf("ao %d round-tripped to %d", ao, UnpackAO(v))
					}
					if UnpackNormal(v) != normal {
						t.Fatalf("normal %d round-tripped to %d", normal, UnpackNormal(v))
					}
					if UnpackBlock(v) != block {
						t.Fatalf("block %d round-tripped to %d", block, UnpackBlock(v))
					}
				}
			}
		}
	}
}

func TestGenerateIndices(t *testing.T) {
	indices := GenerateIndices(8)
	want := []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}
	if len(indices) != len(want) {
		t.Fatalf("index count = %d, want %d", len(indices), len(want))
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Fatalf("indices[%d] = %d, want %d", i, indices[i], want[i])
		}
	}
}

func TestLODLevels(t *testing.T) {
	for _, c := range []struct {
		lod  LOD
		size int32
	}{{L32, 32}, {L16, 16}, {L8, 8}, {L4, 4}, {L2, 2}} {
		if c.lod.Size() != c.size {
			t.Errorf("%v size = %d", c.lod, c.lod.Size())
		}
		if c.lod.CellSize()*c.lod.Size() != 32 {
			t.Errorf("%v cells do not tile the chunk", c.lod)
		}
		if LODForSize(c.size) != c.lod {
			t.Errorf("LODForSize(%d) = %v", c.size, LODForSize(c.size))
		}
	}
}
