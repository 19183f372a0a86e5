// Package scanner tracks which chunk coordinates are relevant around a set
// of moving observers. Each observer carries one scanner per channel; the
// tracker unions their desired sets and diffs against the previous tick to
// emit gained/lost relevance exactly once per transition.
package scanner

import (
	mapset "github.com/deckarep/golang-set/v2"

	"voxeld/internal/chunk"
)

// Channel separates data relevance (chunk voxels must exist) from mesh
// relevance (a mesh entity is wanted).
type Channel int

const (
	Data Channel = iota
	Mesh

	NumChannels = 2
)

func (c Channel) String() string {
	if c == Data {
		return "data"
	}
	return "mesh"
}

// Scanner is the per-observer component for one channel. Its desired set is
// the box [-hr-1, hr+1) × [-vr-1, vr+1) × [-hr-1, hr+1) translated by the
// observer's chunk position.
type Scanner struct {
	horizontalRadius int32
	verticalRadius   int32

	pos     chunk.Pos
	hasPos  bool
	desired mapset.Set[chunk.Pos]
}

// New returns a scanner with the given radii. The vertical radius applies to
// the Y axis only.
func New(horizontalRadius, verticalRadius int32) *Scanner {
	return &Scanner{
		horizontalRadius: horizontalRadius,
		verticalRadius:   verticalRadius,
		desired:          mapset.NewThreadUnsafeSet[chunk.Pos](),
	}
}

// Update moves the scanner to a chunk position, rebuilding its desired set
// when the position changed. It reports whether a rebuild happened.
func (s *Scanner) Update(pos chunk.Pos) bool {
	if s.hasPos && s.pos == pos {
		return false
	}
	s.pos = pos
	s.hasPos = true

	s.desired.Clear()
	hr, vr := s.horizontalRadius, s.verticalRadius
	for x := -hr - 1; x < hr+1; x++ {
		for y := -vr - 1; y < vr+1; y++ {
			for z := -hr - 1; z < hr+1; z++ {
				s.desired.Add(pos.Add(chunk.Pos{x, y, z}))
			}
		}
	}
	return true
}

// Desired returns the scanner's current desired set.
func (s *Scanner) Desired() mapset.Set[chunk.Pos] {
	return s.desired
}

// Tracker owns the global desired set per channel.
type Tracker struct {
	global [NumChannels]mapset.Set[chunk.Pos]
}

func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.global {
		t.global[i] = mapset.NewThreadUnsafeSet[chunk.Pos]()
	}
	return t
}

// Desired returns the global desired set for a channel. The returned set is
// owned by the tracker; callers only read it.
func (t *Tracker) Desired(c Channel) mapset.Set[chunk.Pos] {
	return t.global[c]
}

// Scan recomputes the channel's global set as the union of the given
// scanners' desired sets and returns the chunks that entered and left it.
// Order within the returned slices is unspecified.
func (t *Tracker) Scan(c Channel, scanners []*Scanner) (gained, lost []chunk.Pos) {
	current := mapset.NewThreadUnsafeSet[chunk.Pos]()
	for _, s := range scanners {
		current = current.Union(s.desired)
	}

	gained = current.Difference(t.global[c]).ToSlice()
	lost = t.global[c].Difference(current).ToSlice()

	t.global[c] = current
	return gained, lost
}
