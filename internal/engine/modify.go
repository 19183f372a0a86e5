package engine

import (
	"voxeld/internal/chunk"
	"voxeld/internal/profiling"
	"voxeld/internal/voxel"
)

// startModifications applies all queued block edits. Each touched chunk gets
// an exclusive copy (in-flight mesh jobs keep reading their snapshot),
// uniform chunks are expanded before the first write, and edits on chunk
// boundaries pull the bordering neighbor into the affected set. Returns the
// affected chunks, each also announced through the ChunkModified hook.
func (e *Engine) startModifications() []chunk.Pos {
	if len(e.modifications) == 0 {
		return nil
	}
	defer profiling.Track("engine.startModifications")()

	affected := make(map[chunk.Pos]struct{})
	for p, mods := range e.modifications {
		data, ok := e.worldData[p]
		if !ok {
			continue
		}
		next := data.Clone()
		next.Expand()
		for _, m := range mods {
			i := chunk.VecToIndex(m.Local.X(), m.Local.Y(), m.Local.Z(), chunk.Size)
			next.Set(i, voxel.BlockData{Type: m.Block})
			if dir, onEdge := chunk.EdgingChunk(m.Local.X(), m.Local.Y(), m.Local.Z()); onEdge {
				affected[p.Add(dir)] = struct{}{}
			}
		}
		affected[p] = struct{}{}
		e.worldData[p] = next
	}
	clear(e.modifications)

	out := make([]chunk.Pos, 0, len(affected))
	for p := range affected {
		out = append(out, p)
	}
	if e.hooks.ChunkModified != nil {
		for _, p := range out {
			e.hooks.ChunkModified(p)
		}
	}
	return out
}
