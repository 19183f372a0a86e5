package engine

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxeld/internal/chunk"
	"voxeld/internal/scanner"
	"voxeld/internal/voxel"
)

const testStone voxel.BlockID = 1

func testRegistry() *voxel.Registry {
	r := voxel.NewRegistry()
	r, _ = r.AddBlock("air", voxel.Block{Visibility: voxel.Invisible})
	r, _ = r.AddBlock("stone", voxel.Block{Visibility: voxel.Solid, Collision: true})
	return r
}

// recorder collects engine events; hooks run on the ticking goroutine.
type recorder struct {
	gained    map[scanner.Channel][]chunk.Pos
	lost      map[scanner.Channel][]chunk.Pos
	generated []chunk.Pos
	unloaded  []chunk.Pos
	modified  []chunk.Pos
	spawned   int
	despawned int
}

func newRecorder() *recorder {
	return &recorder{
		gained: make(map[scanner.Channel][]chunk.Pos),
		lost:   make(map[scanner.Channel][]chunk.Pos),
	}
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		GainedRelevance: func(c scanner.Channel, p chunk.Pos) { r.gained[c] = append(r.gained[c], p) },
		LostRelevance:   func(c scanner.Channel, p chunk.Pos) { r.lost[c] = append(r.lost[c], p) },
		ChunkGenerated:  func(p chunk.Pos) { r.generated = append(r.generated, p) },
		ChunkUnloaded:   func(p chunk.Pos) { r.unloaded = append(r.unloaded, p) },
		ChunkModified:   func(p chunk.Pos) { r.modified = append(r.modified, p) },
		MeshSpawned:     func(*Entity) { r.spawned++ },
		MeshDespawned:   func(*Entity) { r.despawned++ },
	}
}

func uniformGenerator(id voxel.BlockID) GenerateFunc {
	return func(chunk.Pos) *chunk.Data {
		return chunk.NewUniform(voxel.BlockData{Type: id})
	}
}

// slabGenerator fills every chunk below world Y 0 with stone.
func slabGenerator(p chunk.Pos) *chunk.Data {
	if p.Y() < 0 {
		return chunk.NewUniform(voxel.BlockData{Type: testStone})
	}
	return chunk.NewUniform(voxel.BlockData{Type: voxel.Air})
}

func newTestEngine(t *testing.T, gen GenerateFunc, rec *recorder) *Engine {
	t.Helper()
	e := New(Config{
		Generate: gen,
		Registry: testRegistry(),
		Hooks:    rec.hooks(),
		Workers:  2,
	})
	t.Cleanup(e.Close)
	return e
}

func tickUntil(t *testing.T, e *Engine, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; stats %+v", what, e.Stats())
		}
		e.Tick()
		time.Sleep(time.Millisecond)
	}
}

func TestDataPipelineLoadsDesiredChunks(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, uniformGenerator(testStone), rec)

	e.AddObserver(mgl32.Vec3{}, ObserverConfig{Data: &ScannerConfig{Horizontal: 1, Vertical: 1}})
	tickUntil(t, e, "64 chunks", func() bool { return e.LoadedChunkCount() == 64 })

	if len(rec.gained[scanner.Data]) != 64 {
		t.Fatalf("gained events = %d, want 64", len(rec.gained[scanner.Data]))
	}
	if len(rec.generated) != 64 {
		t.Fatalf("generated events = %d, want 64", len(rec.generated))
	}
	// The observer at world origin occupies chunk (-1,-1,-1); the radius-1
	// box spans the 4 chunks -3..0 on every axis.
	for x := int32(-3); x <= 0; x++ {
		for y := int32(-3); y <= 0; y++ {
			for z := int32(-3); z <= 0; z++ {
				if _, ok := e.ChunkData(chunk.Pos{x, y, z}); !ok {
					t.Fatalf("chunk (%d,%d,%d) missing", x, y, z)
				}
			}
		}
	}
}

func TestMoveExchangesPlanes(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, uniformGenerator(testStone), rec)

	o := e.AddObserver(mgl32.Vec3{}, ObserverConfig{Data: &ScannerConfig{Horizontal: 1, Vertical: 1}})
	tickUntil(t, e, "initial load", func() bool { return e.LoadedChunkCount() == 64 })

	rec.gained[scanner.Data] = nil
	rec.lost[scanner.Data] = nil
	o.SetPosition(mgl32.Vec3{32, 0, 0})
	e.Tick()

	if len(rec.gained[scanner.Data]) != 16 || len(rec.lost[scanner.Data]) != 16 {
		t.Fatalf("gained/lost = %d/%d, want 16/16",
			len(rec.gained[scanner.Data]), len(rec.lost[scanner.Data]))
	}
	for _, p := range rec.gained[scanner.Data] {
		if p.X() != 1 {
			t.Fatalf("gained %v outside the new plane", p)
		}
	}
	for _, p := range rec.lost[scanner.Data] {
		if p.X() != -3 {
			t.Fatalf("lost %v outside the old plane", p)
		}
	}

	tickUntil(t, e, "steady state after move", func() bool { return e.LoadedChunkCount() == 64 })
	if _, ok := e.ChunkData(chunk.Pos{-3, -1, -1}); ok {
		t.Fatal("stale plane still loaded")
	}
}

func TestMeshPipelineSpawnsSurfaceEntities(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, slabGenerator, rec)

	e.AddObserver(mgl32.Vec3{}, ObserverConfig{
		Data: &ScannerConfig{Horizontal: 1, Vertical: 1},
		Mesh: &ScannerConfig{Horizontal: 0, Vertical: 0},
	})

	// The mesh box holds the 8 chunks -2..-1 on each axis; the four at
	// chunk Y -1 expose the slab surface at world Y 0, the rest are buried.
	tickUntil(t, e, "4 surface entities", func() bool {
		s := e.Stats()
		return s.Entities == 4 && s.LoadMeshQueue == 0 && s.MeshTasks == 0
	})

	for _, x := range []int32{-2, -1} {
		for _, z := range []int32{-2, -1} {
			ent, ok := e.Entity(chunk.Pos{x, -1, z})
			if !ok {
				t.Fatalf("no entity for surface chunk (%d,-1,%d)", x, z)
			}
			if ent.Opaque.Empty() || !ent.Transparent.Empty() {
				t.Fatal("surface entity has wrong mesh channels")
			}
			if ent.Origin != (mgl32.Vec3{float32(x) * 32, -32, float32(z) * 32}) {
				t.Fatalf("entity origin %v", ent.Origin)
			}
			if _, ok := e.Entity(chunk.Pos{x, -2, z}); ok {
				t.Fatal("buried chunk spawned an entity")
			}
		}
	}
	if rec.spawned != 4 {
		t.Fatalf("spawn events = %d, want 4", rec.spawned)
	}
}

func TestUniformWorldProducesNoMeshes(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, uniformGenerator(testStone), rec)

	e.AddObserver(mgl32.Vec3{}, ObserverConfig{
		Data: &ScannerConfig{Horizontal: 1, Vertical: 1},
		Mesh: &ScannerConfig{Horizontal: 0, Vertical: 0},
	})

	tickUntil(t, e, "mesh queue drained", func() bool {
		s := e.Stats()
		return s.LoadedChunks == 64 && s.LoadMeshQueue == 0 && s.MeshTasks == 0
	})
	if s := e.Stats(); s.Entities != 0 {
		t.Fatalf("entities = %d for a fully solid world", s.Entities)
	}
}

func TestModificationExpandsAndRemeshes(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, uniformGenerator(testStone), rec)

	e.AddObserver(mgl32.Vec3{}, ObserverConfig{
		Data: &ScannerConfig{Horizontal: 1, Vertical: 1},
		Mesh: &ScannerConfig{Horizontal: 0, Vertical: 0},
	})
	tickUntil(t, e, "initial drain", func() bool {
		s := e.Stats()
		return s.LoadedChunks == 64 && s.LoadMeshQueue == 0 && s.MeshTasks == 0
	})

	target := chunk.Pos{-1, -1, -1}
	e.QueueModifications(target, Modification{Local: chunk.Pos{0, 0, 0}, Block: voxel.Air})
	e.Tick()

	data, ok := e.ChunkData(target)
	if !ok || data.IsUniform() {
		t.Fatal("modified chunk did not expand")
	}
	air := 0
	for i := 0; i < chunk.Size3; i++ {
		if data.Block(i).Type == voxel.Air {
			air++
		}
	}
	if air != 1 {
		t.Fatalf("air voxels after edit = %d, want 1", air)
	}

	// A corner edit touches one diagonal neighbor.
	if len(rec.modified) != 2 {
		t.Fatalf("modified events = %d, want 2", len(rec.modified))
	}
	seen := map[chunk.Pos]bool{}
	for _, p := range rec.modified {
		seen[p] = true
	}
	if !seen[target] || !seen[target.Add(chunk.Pos{-1, -1, -1})] {
		t.Fatalf("modified set %v", rec.modified)
	}

	// The carved hole exposes faces; a mesh entity appears for the chunk.
	tickUntil(t, e, "remesh after edit", func() bool {
		ent, ok := e.Entity(target)
		return ok && !ent.Opaque.Empty()
	})
}

func TestLostRelevanceUnloadsAndDespawns(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, slabGenerator, rec)

	o := e.AddObserver(mgl32.Vec3{}, ObserverConfig{
		Data: &ScannerConfig{Horizontal: 1, Vertical: 1},
		Mesh: &ScannerConfig{Horizontal: 0, Vertical: 0},
	})
	tickUntil(t, e, "initial entities", func() bool { return e.Stats().Entities == 4 })

	o.SetPosition(mgl32.Vec3{1000, 0, 0})
	tickUntil(t, e, "old region unloaded", func() bool {
		_, ok := e.ChunkData(chunk.Pos{-1, -1, -1})
		return !ok && e.Stats().Entities == 4
	})

	if _, ok := e.Entity(chunk.Pos{-1, -1, -1}); ok {
		t.Fatal("entity survived lost mesh relevance")
	}
	if len(rec.unloaded) == 0 {
		t.Fatal("no unload events")
	}
}

func TestObserverRemovalClearsWorld(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, uniformGenerator(testStone), rec)

	o := e.AddObserver(mgl32.Vec3{}, ObserverConfig{Data: &ScannerConfig{Horizontal: 1, Vertical: 1}})
	tickUntil(t, e, "initial load", func() bool { return e.LoadedChunkCount() == 64 })

	e.RemoveObserver(o)
	tickUntil(t, e, "world emptied", func() bool { return e.LoadedChunkCount() == 0 })

	if len(rec.lost[scanner.Data]) != 64 {
		t.Fatalf("lost events = %d, want 64", len(rec.lost[scanner.Data]))
	}
}

func TestOverlappingObserversGainOnce(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, uniformGenerator(testStone), rec)

	e.AddObserver(mgl32.Vec3{}, ObserverConfig{Data: &ScannerConfig{Horizontal: 1, Vertical: 1}})
	e.AddObserver(mgl32.Vec3{48, 16, 16}, ObserverConfig{Data: &ScannerConfig{Horizontal: 1, Vertical: 1}})
	e.Tick()

	counts := make(map[chunk.Pos]int)
	for _, p := range rec.gained[scanner.Data] {
		counts[p]++
	}
	for p, n := range counts {
		if n != 1 {
			t.Fatalf("chunk %v gained %d times", p, n)
		}
	}
}

func TestStatsSnapshot(t *testing.T) {
	rec := newRecorder()
	e := newTestEngine(t, slabGenerator, rec)
	e.AddObserver(mgl32.Vec3{}, ObserverConfig{
		Data: &ScannerConfig{Horizontal: 1, Vertical: 1},
		Mesh: &ScannerConfig{Horizontal: 0, Vertical: 0},
	})
	tickUntil(t, e, "entities", func() bool { return e.Stats().Entities == 4 })

	s := e.Stats()
	if s.LoadedChunks != 64 || s.Vertices == 0 {
		t.Fatalf("stats %+v", s)
	}
}
