package chunk

import (
	"testing"

	"voxeld/internal/voxel"
)

func TestUniformAccessor(t *testing.T) {
	d := NewUniform(voxel.BlockData{Type: 7})
	if !d.IsUniform() || d.Len() != 1 {
		t.Fatal("expected uniform representation")
	}
	for _, i := range []int{0, 1, Size3 - 1} {
		if d.Block(i).Type != 7 {
			t.Fatalf("uniform chunk returned wrong block at %d", i)
		}
	}
	if b, ok := d.UniformBlock(); !ok || b.Type != 7 {
		t.Fatal("UniformBlock mismatch")
	}
}

func TestExpandReplicatesUniformValue(t *testing.T) {
	d := NewUniform(voxel.BlockData{Type: 3})
	d.Expand()
	if d.IsUniform() || d.Len() != Size3 {
		t.Fatalf("expected dense 32³ chunk, len=%d", d.Len())
	}
	for i := 0; i < Size3; i++ {
		if d.Block(i).Type != 3 {
			t.Fatalf("voxel %d lost uniform value", i)
		}
	}
	if _, ok := d.UniformBlock(); ok {
		t.Fatal("dense chunk reported as uniform")
	}
}

func TestSingleEditOnUniformChunk(t *testing.T) {
	d := NewUniform(voxel.BlockData{Type: 3})
	edited := d.Clone()
	edited.Expand()
	edited.Set(VecToIndex(4, 5, 6, Size), voxel.BlockData{Type: 0})

	if d.Len() != 1 {
		t.Fatal("original chunk mutated through clone")
	}
	differing := 0
	for i := 0; i < Size3; i++ {
		if edited.Block(i) != d.Block(i) {
			differing++
		}
	}
	if differing != 1 {
		t.Fatalf("expected exactly one differing voxel, got %d", differing)
	}
}

func TestNewDenseRejectsWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for short voxel slice")
		}
	}()
	NewDense(make([]voxel.BlockData, 5))
}
