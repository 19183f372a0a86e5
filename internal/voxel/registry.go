package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Block describes a block type handed to Registry.AddBlock.
type Block struct {
	Visibility Visibility
	Collision  bool
	// Color is the base color in linear RGBA.
	Color mgl32.Vec4
	// Emissive is the emissive color in linear RGBA.
	Emissive mgl32.Vec4
}

// Registry maps string block identifiers to dense numeric ids and holds the
// per-id flags and colors used by the mesher.
//
// A Registry published to worker tasks is immutable: AddBlock returns a new
// value with the appended block, leaving the receiver untouched, so the owner
// can swap the live pointer atomically while in-flight tasks keep reading
// their snapshot.
type Registry struct {
	idByIdentifier map[string]BlockID

	// Parallel arrays indexed by BlockID.
	identifiers []string
	flags       []Flags
	colors      []mgl32.Vec4
	emissive    []mgl32.Vec4
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{idByIdentifier: make(map[string]BlockID)}
}

// AddBlock appends a block type and returns the updated registry snapshot
// together with the assigned id. Ids are dense and follow insertion order.
func (r *Registry) AddBlock(identifier string, block Block) (*Registry, BlockID) {
	flags := Flags(0)
	switch block.Visibility {
	case Solid:
		flags |= FlagSolid
	case Transparent:
		flags |= FlagTransparent
	}
	if block.Collision {
		flags |= FlagCollision
	}

	id := BlockID(len(r.identifiers))

	next := &Registry{
		idByIdentifier: make(map[string]BlockID, len(r.idByIdentifier)+1),
		identifiers:    append(append([]string(nil), r.identifiers...), identifier),
		flags:          append(append([]Flags(nil), r.flags...), flags),
		colors:         append(append([]mgl32.Vec4(nil), r.colors...), block.Color),
		emissive:       append(append([]mgl32.Vec4(nil), r.emissive...), block.Emissive),
	}
	for k, v := range r.idByIdentifier {
		next.idByIdentifier[k] = v
	}
	next.idByIdentifier[identifier] = id

	return next, id
}

// Len returns the number of registered block types.
func (r *Registry) Len() int {
	return len(r.identifiers)
}

// Lookup returns the id registered for identifier.
func (r *Registry) Lookup(identifier string) (BlockID, bool) {
	id, ok := r.idByIdentifier[identifier]
	return id, ok
}

// Identifier returns the string identifier for id.
func (r *Registry) Identifier(id BlockID) string {
	if int(id) >= len(r.identifiers) {
		return ""
	}
	return r.identifiers[id]
}

// Flags returns the flags for id. An id outside the registry is treated as
// air: this masks races between registry updates and in-flight tasks.
func (r *Registry) Flags(id BlockID) Flags {
	if int(id) >= len(r.flags) {
		return 0
	}
	return r.flags[id]
}

// IsSolid reports whether id carries the SOLID flag.
func (r *Registry) IsSolid(id BlockID) bool {
	return r.Flags(id).Has(FlagSolid)
}

// HasFlag reports whether id carries all bits of flag.
func (r *Registry) HasFlag(id BlockID, flag Flags) bool {
	return r.Flags(id).Has(flag)
}

// Color returns the base color for id.
func (r *Registry) Color(id BlockID) mgl32.Vec4 {
	if int(id) >= len(r.colors) {
		return mgl32.Vec4{}
	}
	return r.colors[id]
}

// Emissive returns the emissive color for id.
func (r *Registry) Emissive(id BlockID) mgl32.Vec4 {
	if int(id) >= len(r.emissive) {
		return mgl32.Vec4{}
	}
	return r.emissive[id]
}
