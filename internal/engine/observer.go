package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxeld/internal/chunk"
	"voxeld/internal/scanner"
)

// ScannerConfig sets the radii of one channel's scanner.
type ScannerConfig struct {
	Horizontal int32
	Vertical   int32
}

// ObserverConfig attaches scanners to an observer; a nil channel entry means
// the observer does not induce relevance on that channel.
type ObserverConfig struct {
	Data *ScannerConfig
	Mesh *ScannerConfig
}

// Observer is an entity whose position induces desired chunk sets.
type Observer struct {
	id       uuid.UUID
	position mgl32.Vec3
	chunkPos chunk.Pos
	scanners [scanner.NumChannels]*scanner.Scanner
}

func (o *Observer) ID() uuid.UUID {
	return o.id
}

// SetPosition moves the observer. The relevance diff runs on the next tick.
func (o *Observer) SetPosition(p mgl32.Vec3) {
	o.position = p
}

func (o *Observer) Position() mgl32.Vec3 {
	return o.position
}

// ChunkPos returns the chunk position derived on the last scan.
func (o *Observer) ChunkPos() chunk.Pos {
	return o.chunkPos
}

// AddObserver registers an observer at a world position.
func (e *Engine) AddObserver(position mgl32.Vec3, cfg ObserverConfig) *Observer {
	o := &Observer{id: uuid.New(), position: position}
	if cfg.Data != nil {
		o.scanners[scanner.Data] = scanner.New(cfg.Data.Horizontal, cfg.Data.Vertical)
	}
	if cfg.Mesh != nil {
		o.scanners[scanner.Mesh] = scanner.New(cfg.Mesh.Horizontal, cfg.Mesh.Vertical)
	}
	e.observers[o.id] = o
	e.rescan = true
	return o
}

// RemoveObserver unregisters an observer; the next scan emits LostRelevance
// for its sole contributions.
func (e *Engine) RemoveObserver(o *Observer) {
	delete(e.observers, o.id)
	e.rescan = true
}

// scan recomputes observer chunk positions and, when any changed (or an
// observer was added or removed), rebuilds the global desired sets and
// returns the per-channel diffs.
func (e *Engine) scan() (gainedData, lostData, gainedMesh, lostMesh []chunk.Pos) {
	changed := e.rescan
	for _, o := range e.observers {
		cp := chunk.PosFromWorld(o.position)
		o.chunkPos = cp
		for _, s := range o.scanners {
			if s != nil && s.Update(cp) {
				changed = true
			}
		}
	}
	if !changed {
		return nil, nil, nil, nil
	}
	e.rescan = false

	gainedData, lostData = e.tracker.Scan(scanner.Data, e.channelScanners(scanner.Data))
	gainedMesh, lostMesh = e.tracker.Scan(scanner.Mesh, e.channelScanners(scanner.Mesh))

	e.fireGained(scanner.Data, gainedData)
	e.fireLost(scanner.Data, lostData)
	e.fireGained(scanner.Mesh, gainedMesh)
	e.fireLost(scanner.Mesh, lostMesh)
	return gainedData, lostData, gainedMesh, lostMesh
}

func (e *Engine) channelScanners(c scanner.Channel) []*scanner.Scanner {
	var scanners []*scanner.Scanner
	for _, o := range e.observers {
		if s := o.scanners[c]; s != nil {
			scanners = append(scanners, s)
		}
	}
	return scanners
}

// channelCenters returns the chunk positions of all observers carrying a
// scanner for the channel; used for the distance priority sorts.
func (e *Engine) channelCenters(c scanner.Channel) []chunk.Pos {
	var centers []chunk.Pos
	for _, o := range e.observers {
		if o.scanners[c] != nil {
			centers = append(centers, o.chunkPos)
		}
	}
	return centers
}

func minDistanceSq(p chunk.Pos, centers []chunk.Pos) int64 {
	best := int64(1) << 62
	for _, c := range centers {
		if d := p.DistanceSq(c); d < best {
			best = d
		}
	}
	return best
}
