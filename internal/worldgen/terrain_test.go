package worldgen

import (
	"testing"

	"voxeld/internal/chunk"
	"voxeld/internal/voxel"
)

func testBlocks() Blocks {
	return Blocks{Dirt: 1, Grass: 2, Water: 3, Stone: 4}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewTerrain(1337, testBlocks()).Generate(chunk.Pos{0, 0, 0})
	b := NewTerrain(1337, testBlocks()).Generate(chunk.Pos{0, 0, 0})
	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.Block(i) != b.Block(i) {
			t.Fatalf("voxel %d differs across runs", i)
		}
	}
}

func TestGenerateExtremityChunksAreUniform(t *testing.T) {
	g := NewTerrain(1, testBlocks())

	above := g.Generate(chunk.Pos{0, 4, 0})
	if b, ok := above.UniformBlock(); !ok || b.Type != voxel.Air {
		t.Fatal("chunk above the height band is not uniform air")
	}
	below := g.Generate(chunk.Pos{0, -4, 0})
	if b, ok := below.UniformBlock(); !ok || b.Type != testBlocks().Stone {
		t.Fatal("chunk below the height band is not uniform stone")
	}
}

func TestGenerateDenseInsideBand(t *testing.T) {
	g := NewTerrain(1337, testBlocks())
	d := g.Generate(chunk.Pos{0, 0, 0})
	if d.IsUniform() {
		t.Skip("surface chunk happened to be uniform for this seed")
	}
	if d.Len() != chunk.Size3 {
		t.Fatalf("dense chunk length = %d", d.Len())
	}
}

func TestGenerateBlockPlacementInvariants(t *testing.T) {
	blocks := testBlocks()
	g := NewTerrain(99, blocks)
	valid := map[voxel.BlockID]bool{
		voxel.Air: true, blocks.Dirt: true, blocks.Grass: true,
		blocks.Water: true, blocks.Stone: true,
	}
	for _, pos := range []chunk.Pos{{0, 0, 0}, {0, -1, 0}, {3, 1, -2}} {
		d := g.Generate(pos)
		for i := 0; i < d.Len(); i++ {
			id := d.Block(i).Type
			if !valid[id] {
				t.Fatalf("chunk %v voxel %d has unknown block %d", pos, i, id)
			}
			// Water only fills the sub-sea-level air space.
			if id == blocks.Water {
				_, ly, _ := chunk.IndexToVec(i, chunk.Size)
				if pos.Y()*chunk.Size+ly >= 0 {
					t.Fatalf("water above world Y 0 in chunk %v", pos)
				}
			}
		}
	}
}

func TestColumnCacheReusesSamplers(t *testing.T) {
	g := NewTerrain(5, testBlocks())
	a := g.column(2, 3)
	b := g.column(2, 3)
	if a != b {
		t.Fatal("column samplers not cached")
	}
	if g.column(2, 4) == a {
		t.Fatal("distinct columns share a sampler")
	}
}

func BenchmarkGenerate(b *testing.B) {
	g := NewTerrain(1337, testBlocks())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Generate(chunk.Pos{int32(i % 8), 0, int32(i / 8 % 8)})
	}
}
