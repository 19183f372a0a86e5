// Command voxeld runs the streaming voxel engine headless: it spawns two
// observers, orbits one of them through the world, periodically carves
// random holes near it and logs pipeline statistics.
package main

import (
	"flag"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"voxeld/internal/chunk"
	"voxeld/internal/config"
	"voxeld/internal/engine"
	"voxeld/internal/mesh"
	"voxeld/internal/profiling"
	"voxeld/internal/voxel"
	"voxeld/internal/worldgen"
)

func main() {
	configPath := flag.String("config", "voxeld.toml", "path to the engine config")
	tickRate := flag.Duration("tick", 16*time.Millisecond, "pipeline tick interval")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}

	registry, blocks := buildRegistry()
	terrain := worldgen.NewTerrain(cfg.Terrain.Seed, blocks)

	eng := engine.New(engine.Config{
		Log:          log,
		Generate:     terrain.Generate,
		Registry:     registry,
		LOD:          mesh.LODForSize(cfg.Engine.LOD),
		Workers:      cfg.Engine.Workers,
		MaxDataTasks: cfg.Engine.MaxDataTasks,
		MaxMeshTasks: cfg.Engine.MaxMeshTasks,
		Hooks: engine.Hooks{
			MeshSpawned: func(ent *engine.Entity) {
				log.Debug("mesh spawned", zap.Stringer("chunk", ent.Pos))
			},
		},
	})
	defer eng.Close()

	// A fixed scanner holds the area around the origin; the roaming one
	// streams new terrain in as it orbits.
	eng.AddObserver(mgl32.Vec3{}, engine.ObserverConfig{
		Data: &engine.ScannerConfig{Horizontal: cfg.Observer.DataRadius, Vertical: cfg.Observer.DataVerticalRadius},
		Mesh: &engine.ScannerConfig{Horizontal: cfg.Observer.MeshRadius, Vertical: cfg.Observer.MeshVerticalRadius},
	})
	roaming := eng.AddObserver(mgl32.Vec3{0, 2, 0.5}, engine.ObserverConfig{
		Data: &engine.ScannerConfig{Horizontal: cfg.Observer.DataRadius + 6, Vertical: cfg.Observer.DataVerticalRadius + 2},
		Mesh: &engine.ScannerConfig{Horizontal: cfg.Observer.MeshRadius + 6, Vertical: cfg.Observer.MeshVerticalRadius + 2},
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	rng := rand.New(rand.NewSource(cfg.Terrain.Seed))
	ticker := time.NewTicker(*tickRate)
	defer ticker.Stop()
	statsEvery := time.NewTicker(2 * time.Second)
	defer statsEvery.Stop()

	start := time.Now()
	log.Info("engine running", zap.Duration("tick", *tickRate))

	for {
		select {
		case <-stop:
			log.Info("shutting down")
			return
		case <-statsEvery.C:
			s := eng.Stats()
			log.Info("pipeline stats",
				zap.Int("chunks", s.LoadedChunks),
				zap.Int("entities", s.Entities),
				zap.Int("data_queue", s.LoadDataQueue),
				zap.Int("mesh_queue", s.LoadMeshQueue),
				zap.Int("data_tasks", s.DataTasks),
				zap.Int("mesh_tasks", s.MeshTasks),
				zap.Int("vertices", s.Vertices),
				zap.String("hotspots", profiling.TopN(3)),
			)
			carve(eng, roaming, rng)
		case <-ticker.C:
			t := float32(time.Since(start).Seconds())
			const orbitRadius = 256.0
			roaming.SetPosition(mgl32.Vec3{
				orbitRadius * float32(math.Cos(float64(t)*0.1)),
				2,
				orbitRadius * float32(math.Sin(float64(t)*0.1)),
			})
			profiling.ResetTick()
			eng.Tick()
		}
	}
}

// carve queues a burst of random block removals in the chunk the roaming
// observer currently occupies.
func carve(eng *engine.Engine, o *engine.Observer, rng *rand.Rand) {
	target := o.ChunkPos()
	if _, ok := eng.ChunkData(target); !ok {
		return
	}
	mods := make([]engine.Modification, 0, chunk.Size2)
	for i := 0; i < chunk.Size2; i++ {
		mods = append(mods, engine.Modification{
			Local: chunk.Pos{rng.Int31n(chunk.Size), rng.Int31n(chunk.Size), rng.Int31n(chunk.Size)},
			Block: voxel.Air,
		})
	}
	eng.QueueModifications(target, mods...)
}

// buildRegistry registers the default block set. Insertion order fixes the
// dense ids the terrain function relies on.
func buildRegistry() (*voxel.Registry, worldgen.Blocks) {
	r := voxel.NewRegistry()
	r, _ = r.AddBlock("air", voxel.Block{Visibility: voxel.Invisible})
	r, dirt := r.AddBlock("dirt", voxel.Block{
		Visibility: voxel.Solid, Collision: true,
		Color: mgl32.Vec4{0.42, 0.28, 0.16, 1},
	})
	r, grass := r.AddBlock("grass", voxel.Block{
		Visibility: voxel.Solid, Collision: true,
		Color: mgl32.Vec4{0.3, 0.4, 0.0, 1},
	})
	r, water := r.AddBlock("water", voxel.Block{
		Visibility: voxel.Transparent,
		Color:      mgl32.Vec4{0.2, 0.4, 0.9, 0.6},
	})
	r, stone := r.AddBlock("stone", voxel.Block{
		Visibility: voxel.Solid, Collision: true,
		Color: mgl32.Vec4{0.55, 0.55, 0.55, 1},
	})
	return r, worldgen.Blocks{Dirt: dirt, Grass: grass, Water: water, Stone: stone}
}
