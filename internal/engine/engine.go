// Package engine drives the streaming voxel world: it tracks observer
// relevance, schedules chunk generation and meshing on a worker pool, joins
// results into shared state and applies block modifications. All mutation of
// pipeline state happens on the goroutine calling Tick; workers only execute
// pure functions over immutable snapshots.
package engine

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"voxeld/internal/chunk"
	"voxeld/internal/mesh"
	"voxeld/internal/scanner"
	"voxeld/internal/voxel"
)

const (
	// MaxDataTasks caps concurrently outstanding generation tasks.
	MaxDataTasks = 64
	// MaxMeshTasks caps concurrently outstanding mesh tasks.
	MaxMeshTasks = 32
)

// GenerateFunc shapes the voxel data for a chunk position. It must be pure
// and safe for concurrent calls.
type GenerateFunc func(chunk.Pos) *chunk.Data

// Modification is one block edit at a chunk-local voxel position.
type Modification struct {
	Local chunk.Pos
	Block voxel.BlockID
}

// Entity is a spawned chunk mesh: the payload the host renders at Origin.
type Entity struct {
	ID          uuid.UUID
	Pos         chunk.Pos
	Origin      mgl32.Vec3
	Opaque      *mesh.ChunkMesh
	Transparent *mesh.ChunkMesh
	AABBMin     mgl32.Vec3
	AABBMax     mgl32.Vec3
}

// Hooks are the engine's outward-facing events. Nil hooks are skipped. Order
// of calls within one tick is unspecified; consumers must not depend on it.
type Hooks struct {
	GainedRelevance func(scanner.Channel, chunk.Pos)
	LostRelevance   func(scanner.Channel, chunk.Pos)
	ChunkGenerated  func(chunk.Pos)
	ChunkUnloaded   func(chunk.Pos)
	ChunkModified   func(chunk.Pos)
	MeshSpawned     func(*Entity)
	MeshDespawned   func(*Entity)
}

// Config assembles an Engine.
type Config struct {
	Log      *zap.Logger
	Generate GenerateFunc
	Registry *voxel.Registry
	LOD      mesh.LOD
	Hooks    Hooks

	// Workers sizes the compute pool; <= 0 selects DefaultWorkers.
	Workers int
	// MaxDataTasks/MaxMeshTasks lower the task caps; values <= 0 or above
	// the package limits use the limits.
	MaxDataTasks int
	MaxMeshTasks int
}

type meshResult struct {
	opaque      *mesh.ChunkMesh
	transparent *mesh.ChunkMesh
}

// Engine holds all voxel world state.
type Engine struct {
	log      *zap.Logger
	pool     *Pool
	generate GenerateFunc
	registry atomic.Pointer[voxel.Registry]
	lod      mesh.LOD
	hooks    Hooks

	maxDataTasks int
	maxMeshTasks int

	observers map[uuid.UUID]*Observer
	tracker   *scanner.Tracker
	rescan    bool

	worldData     map[chunk.Pos]*chunk.Data
	loadDataQueue *posQueue
	dataTasks     map[chunk.Pos]*task[*chunk.Data]

	loadMeshQueue *posQueue
	meshTasks     map[chunk.Pos]*task[meshResult]
	entities      map[chunk.Pos]*Entity

	modifications map[chunk.Pos][]Modification
}

// New assembles an engine. Close must be called to stop the worker pool.
func New(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:           log,
		pool:          NewPool(cfg.Workers),
		generate:      cfg.Generate,
		lod:           cfg.LOD,
		hooks:         cfg.Hooks,
		maxDataTasks:  clampCap(cfg.MaxDataTasks, MaxDataTasks),
		maxMeshTasks:  clampCap(cfg.MaxMeshTasks, MaxMeshTasks),
		observers:     make(map[uuid.UUID]*Observer),
		tracker:       scanner.NewTracker(),
		worldData:     make(map[chunk.Pos]*chunk.Data),
		loadDataQueue: newPosQueue(),
		dataTasks:     make(map[chunk.Pos]*task[*chunk.Data]),
		loadMeshQueue: newPosQueue(),
		meshTasks:     make(map[chunk.Pos]*task[meshResult]),
		entities:      make(map[chunk.Pos]*Entity),
		modifications: make(map[chunk.Pos][]Modification),
	}
	reg := cfg.Registry
	if reg == nil {
		reg = voxel.NewRegistry()
	}
	e.registry.Store(reg)
	return e
}

func clampCap(v, limit int) int {
	if v <= 0 || v > limit {
		return limit
	}
	return v
}

// Close stops the worker pool. In-flight tasks finish; their results are
// never joined.
func (e *Engine) Close() {
	e.pool.Close()
}

// Registry returns the current registry snapshot.
func (e *Engine) Registry() *voxel.Registry {
	return e.registry.Load()
}

// PublishRegistry atomically replaces the registry snapshot handed to new
// tasks. In-flight tasks keep the snapshot they started with.
func (e *Engine) PublishRegistry(r *voxel.Registry) {
	e.registry.Store(r)
}

// ChunkData returns the generated data for a chunk, if loaded.
func (e *Engine) ChunkData(p chunk.Pos) (*chunk.Data, bool) {
	d, ok := e.worldData[p]
	return d, ok
}

// LoadedChunkCount returns the number of chunks in world data.
func (e *Engine) LoadedChunkCount() int {
	return len(e.worldData)
}

// Entity returns the spawned mesh entity for a chunk, if any.
func (e *Engine) Entity(p chunk.Pos) (*Entity, bool) {
	ent, ok := e.entities[p]
	return ent, ok
}

// QueueModifications appends block edits for a chunk; they are applied in
// the next tick and consumed within it.
func (e *Engine) QueueModifications(p chunk.Pos, mods ...Modification) {
	e.modifications[p] = append(e.modifications[p], mods...)
}

// Tick advances the engine by one frame. Scan runs first so both pipelines
// see fresh relevance; modifications land before mesh joins; data joins
// before mesh dispatch so fresh chunks can be meshed in the same tick.
func (e *Engine) Tick() {
	gainedData, lostData, gainedMesh, lostMesh := e.scan()
	modified := e.startModifications()
	e.joinData()
	e.unloadData(lostData)
	e.startDataTasks(gainedData)
	e.joinMesh()
	e.unloadMesh(lostMesh)
	e.startMeshTasks(gainedMesh, modified)
}

// Stats is a diagnostics snapshot of the pipeline state.
type Stats struct {
	LoadedChunks  int
	Entities      int
	LoadDataQueue int
	LoadMeshQueue int
	DataTasks     int
	MeshTasks     int
	Vertices      int
}

// Stats snapshots queue lengths, task counts and the total vertex count of
// all spawned entities.
func (e *Engine) Stats() Stats {
	vertices := 0
	for _, ent := range e.entities {
		if ent.Opaque != nil {
			vertices += len(ent.Opaque.Vertices)
		}
		if ent.Transparent != nil {
			vertices += len(ent.Transparent.Vertices)
		}
	}
	return Stats{
		LoadedChunks:  len(e.worldData),
		Entities:      len(e.entities),
		LoadDataQueue: e.loadDataQueue.Len(),
		LoadMeshQueue: e.loadMeshQueue.Len(),
		DataTasks:     len(e.dataTasks),
		MeshTasks:     len(e.meshTasks),
		Vertices:      vertices,
	}
}

func (e *Engine) fireGained(c scanner.Channel, positions []chunk.Pos) {
	if e.hooks.GainedRelevance == nil {
		return
	}
	for _, p := range positions {
		e.hooks.GainedRelevance(c, p)
	}
}

func (e *Engine) fireLost(c scanner.Channel, positions []chunk.Pos) {
	if e.hooks.LostRelevance == nil {
		return
	}
	for _, p := range positions {
		e.hooks.LostRelevance(c, p)
	}
}
