// Package config loads engine settings from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config is the root of the voxeld.toml file.
type Config struct {
	Engine   Engine   `toml:"engine"`
	Terrain  Terrain  `toml:"terrain"`
	Observer Observer `toml:"observer"`
}

// Engine tunes the pipeline.
type Engine struct {
	// Workers sizes the compute pool; 0 means 75% of cores clamped to [1,8].
	Workers int `toml:"workers"`
	// MaxDataTasks/MaxMeshTasks lower the task caps; 0 keeps the defaults.
	MaxDataTasks int `toml:"max_data_tasks"`
	MaxMeshTasks int `toml:"max_mesh_tasks"`
	// LOD is the cell count per chunk axis: 32, 16, 8, 4 or 2.
	LOD int32 `toml:"lod"`
}

// Terrain configures the default generator.
type Terrain struct {
	Seed int64 `toml:"seed"`
}

// Observer sets the demo driver's scanner radii.
type Observer struct {
	DataRadius         int32 `toml:"data_radius"`
	DataVerticalRadius int32 `toml:"data_vertical_radius"`
	MeshRadius         int32 `toml:"mesh_radius"`
	MeshVerticalRadius int32 `toml:"mesh_vertical_radius"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: Engine{
			LOD: 32,
		},
		Terrain: Terrain{
			Seed: 1337,
		},
		Observer: Observer{
			DataRadius:         10,
			DataVerticalRadius: 5,
			MeshRadius:         9,
			MeshVerticalRadius: 4,
		},
	}
}

// Load reads the config at path, applying defaults for absent fields. A
// missing file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
