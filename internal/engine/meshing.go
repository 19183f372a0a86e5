package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"voxeld/internal/chunk"
	"voxeld/internal/mesh"
	"voxeld/internal/profiling"
	"voxeld/internal/scanner"
	"voxeld/internal/voxel"
)

// startMeshTasks queues chunks that gained mesh relevance or were modified,
// then dispatches mesh jobs from the closest end of the queue. A job starts
// only when all 27 neighborhood chunks are generated; chunks with missing
// neighbors stay queued and are retried as data arrives.
func (e *Engine) startMeshTasks(gained, modified []chunk.Pos) {
	defer profiling.Track("engine.startMeshTasks")()

	desired := e.tracker.Desired(scanner.Mesh)

	added := false
	for _, p := range gained {
		if e.loadMeshQueue.Insert(p) {
			added = true
		}
	}
	for _, p := range modified {
		if desired.Contains(p) && e.loadMeshQueue.Insert(p) {
			added = true
		}
	}
	if added {
		// Closest chunks sort to the end; dispatch scans from the end.
		centers := e.channelCenters(scanner.Mesh)
		e.loadMeshQueue.Sort(func(p chunk.Pos) int64 {
			return -minDistanceSq(p, centers)
		})
	}

	pending := append([]chunk.Pos(nil), e.loadMeshQueue.Items()...)
	for i := len(pending) - 1; i >= 0 && len(e.meshTasks) < e.maxMeshTasks; i-- {
		p := pending[i]
		if _, busy := e.meshTasks[p]; busy {
			// A stale job is in flight; keep the chunk queued so it is
			// re-meshed with fresh data after that job joins.
			continue
		}
		refs, ok := chunk.NewRefs(e.worldData, p)
		if !ok {
			continue
		}
		e.loadMeshQueue.Remove(p)

		reg := e.registry.Load()
		lod := e.lod
		e.meshTasks[p] = runTask(e.pool, func() meshResult {
			return meshResult{
				opaque:      mesh.BuildChunkMesh(refs, lod, reg, voxel.FlagSolid, true, false),
				transparent: mesh.BuildChunkMesh(refs, lod, reg, voxel.FlagTransparent, false, true),
			}
		})
	}
}

// joinMesh polls outstanding mesh tasks. A finished chunk replaces any
// existing entity; empty results and results for chunks that lost mesh
// relevance spawn nothing.
func (e *Engine) joinMesh() {
	defer profiling.Track("engine.joinMesh")()

	desired := e.tracker.Desired(scanner.Mesh)
	for p, t := range e.meshTasks {
		if t == nil {
			e.log.Warn("mesh task handle already taken", zap.Stringer("chunk", p))
			continue
		}
		result, done := t.poll()
		if !done {
			continue
		}
		delete(e.meshTasks, p)

		e.despawn(p)
		if !desired.Contains(p) {
			continue
		}
		if result.opaque.Empty() && result.transparent.Empty() {
			continue
		}

		ent := &Entity{
			ID:          uuid.New(),
			Pos:         p,
			Origin:      p.WorldOrigin(),
			Opaque:      result.opaque,
			Transparent: result.transparent,
		}
		ent.AABBMin, ent.AABBMax = entityAABB(result.opaque, result.transparent)
		e.entities[p] = ent
		if e.hooks.MeshSpawned != nil {
			e.hooks.MeshSpawned(ent)
		}
	}
}

// unloadMesh despawns entities for chunks that lost mesh relevance and
// purges them from the queue. In-flight mesh tasks complete and their
// results are dropped.
func (e *Engine) unloadMesh(lost []chunk.Pos) {
	defer profiling.Track("engine.unloadMesh")()

	for _, p := range lost {
		e.loadMeshQueue.Remove(p)
		e.despawn(p)
	}
}

func (e *Engine) despawn(p chunk.Pos) {
	ent, ok := e.entities[p]
	if !ok {
		return
	}
	delete(e.entities, p)
	if e.hooks.MeshDespawned != nil {
		e.hooks.MeshDespawned(ent)
	}
}

func entityAABB(meshes ...*mesh.ChunkMesh) (min, max mgl32.Vec3) {
	first := true
	for _, m := range meshes {
		if m.Empty() {
			continue
		}
		lo, hi := m.AABB()
		if first {
			min, max = lo, hi
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			if lo[i] < min[i] {
				min[i] = lo[i]
			}
			if hi[i] > max[i] {
				max[i] = hi[i]
			}
		}
	}
	return min, max
}
