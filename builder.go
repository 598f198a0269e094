package kessoku

import "unsafe"

// Builder spawns entities of one bundle type. It resolves the bundle's
// archetype once, so repeated spawning skips the signature lookup.
type Builder[B any] struct {
	world *World
	info  *BundleInfo
	arch  *Archetype
}

// NewBuilder compiles bundle type B and resolves its archetype in w.
func NewBuilder[B any](w *World) *Builder[B] {
	info := BundleOf[B]()
	arch := w.archetypes.get(info.archetypeIn(w.archetypes))
	return &Builder[B]{world: w, info: info, arch: arch}
}

// Archetype returns the archetype every entity of this builder is stored in.
func (b *Builder[B]) Archetype() *Archetype {
	return b.arch
}

// NewEntity spawns one entity holding the components of bundle.
func (b *Builder[B]) NewEntity(bundle B) Entity {
	b.world.checkUnlocked("spawn " + b.info.Name)
	return b.world.spawnInto(b.info, b.arch, unsafe.Pointer(&bundle))
}

// NewEntities spawns count entities, each holding a copy of bundle.
func (b *Builder[B]) NewEntities(count int, bundle B) []Entity {
	if count <= 0 {
		return nil
	}
	b.world.checkUnlocked("spawn " + b.info.Name)
	if need := b.arch.size + count; need > len(b.arch.entities) {
		b.arch.grow(need - b.arch.size)
	}
	ents := make([]Entity, count)
	src := unsafe.Pointer(&bundle)
	for i := range ents {
		ents[i] = b.world.spawnInto(b.info, b.arch, src)
	}
	return ents
}
