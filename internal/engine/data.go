package engine

import (
	"go.uber.org/zap"

	"voxeld/internal/chunk"
	"voxeld/internal/profiling"
	"voxeld/internal/scanner"
)

// startDataTasks queues newly relevant chunks and dispatches generation
// tasks up to the cap. When the event batch is non-empty the queue is
// re-sorted so chunks closest to any data observer generate first.
func (e *Engine) startDataTasks(gained []chunk.Pos) {
	defer profiling.Track("engine.startDataTasks")()

	for _, p := range gained {
		e.loadDataQueue.Insert(p)
	}
	if len(gained) > 0 {
		centers := e.channelCenters(scanner.Data)
		e.loadDataQueue.Sort(func(p chunk.Pos) int64 {
			return minDistanceSq(p, centers)
		})
	}

	for len(e.dataTasks) < e.maxDataTasks {
		p, ok := e.loadDataQueue.PopFront()
		if !ok {
			break
		}
		if _, busy := e.dataTasks[p]; busy {
			// Already generating (relevance flickered); the in-flight
			// result will be joined.
			continue
		}
		generate := e.generate
		e.dataTasks[p] = runTask(e.pool, func() *chunk.Data {
			return generate(p)
		})
	}
}

// joinData polls outstanding generation tasks and installs finished chunks.
// Results for chunks that lost relevance while in flight are discarded.
func (e *Engine) joinData() {
	defer profiling.Track("engine.joinData")()

	desired := e.tracker.Desired(scanner.Data)
	for p, t := range e.dataTasks {
		if t == nil {
			e.log.Warn("data task handle already taken", zap.Stringer("chunk", p))
			continue
		}
		data, done := t.poll()
		if !done {
			continue
		}
		delete(e.dataTasks, p)

		if !desired.Contains(p) {
			continue
		}
		e.worldData[p] = data
		if e.hooks.ChunkGenerated != nil {
			e.hooks.ChunkGenerated(p)
		}
	}
}

// unloadData evicts chunks that lost data relevance, purging them from the
// load queue. In-flight tasks run to completion and are dropped on join.
func (e *Engine) unloadData(lost []chunk.Pos) {
	defer profiling.Track("engine.unloadData")()

	for _, p := range lost {
		e.loadDataQueue.Remove(p)
		delete(e.worldData, p)
		if e.hooks.ChunkUnloaded != nil {
			e.hooks.ChunkUnloaded(p)
		}
	}
}
