package session

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/scene"
)

// table is one slot-indexed ownership table. Slots are indexed by the
// protocol-assigned id; the table grows (never shrinks) to fit the highest
// id seen, and nil marks an in-range-but-empty slot.
type table[T any] struct {
	kind  string
	maxID int
	slots []*T
}

// get distinguishes the two lookup failures: out-of-range vs empty slot.
func (t *table[T]) get(id int) (*T, error) {
	if id < 0 || id >= len(t.slots) {
		return nil, errors.Wrapf(ErrIDOutOfRange, "%s id %d", t.kind, id)
	}
	v := t.slots[id]
	if v == nil {
		return nil, errors.Wrapf(ErrEmptySlot, "%s id %d", t.kind, id)
	}
	return v, nil
}

// put assigns a new entity to a slot. Assigning over an occupied slot
// without a prior remove is a protocol violation, not an overwrite.
func (t *table[T]) put(id int, v *T) error {
	if id < 0 || id > t.maxID {
		return errors.Wrapf(ErrIDTooLarge, "%s id %d (max %d)", t.kind, id, t.maxID)
	}
	for len(t.slots) < id+1 {
		t.slots = append(t.slots, nil)
	}
	if t.slots[id] != nil {
		return errors.Wrapf(ErrSlotOccupied, "%s id %d", t.kind, id)
	}
	t.slots[id] = v
	return nil
}

// remove clears a slot to empty; the id may be reused by a later put.
func (t *table[T]) remove(id int) error {
	if _, err := t.get(id); err != nil {
		return err
	}
	t.slots[id] = nil
	return nil
}

func (t *table[T]) clear() {
	t.slots = nil
}

// forEach visits occupied slots in ascending id order
func (t *table[T]) forEach(f func(id int, v *T)) {
	for id, v := range t.slots {
		if v != nil {
			f(id, v)
		}
	}
}

// Registry holds the six entity tables of one session. It exclusively owns
// every entity reachable through it; cross-entity references are non-owning
// id lookups.
type Registry struct {
	scenes        table[scene.Scene]
	nodes         table[scene.Node]
	materials     table[scene.Material]
	textures      table[scene.Texture]
	models        table[scene.Model]
	sounds        table[scene.Sound]
	collideModels table[scene.CollideModel]
}

// NewRegistry creates an empty registry with the protocol id ceilings
func NewRegistry() *Registry {
	return &Registry{
		scenes:        table[scene.Scene]{kind: "scene", maxID: consts.MAX_SCENE_ID},
		nodes:         table[scene.Node]{kind: "node", maxID: consts.MAX_NODE_ID},
		materials:     table[scene.Material]{kind: "material", maxID: consts.MAX_MEDIA_ID},
		textures:      table[scene.Texture]{kind: "texture", maxID: consts.MAX_MEDIA_ID},
		models:        table[scene.Model]{kind: "model", maxID: consts.MAX_MEDIA_ID},
		sounds:        table[scene.Sound]{kind: "sound", maxID: consts.MAX_MEDIA_ID},
		collideModels: table[scene.CollideModel]{kind: "collide_model", maxID: consts.MAX_MEDIA_ID},
	}
}

// Clear empties every table
func (r *Registry) Clear() {
	r.scenes.clear()
	r.nodes.clear()
	r.materials.clear()
	r.textures.clear()
	r.models.clear()
	r.sounds.clear()
	r.collideModels.clear()
}

// GetScene returns the scene with the given id
func (r *Registry) GetScene(id int) (*scene.Scene, error) { return r.scenes.get(id) }

// GetNode returns the node with the given id
func (r *Registry) GetNode(id int) (*scene.Node, error) { return r.nodes.get(id) }

// GetMaterial returns the material with the given id
func (r *Registry) GetMaterial(id int) (*scene.Material, error) { return r.materials.get(id) }

// GetTexture returns the texture with the given id
func (r *Registry) GetTexture(id int) (*scene.Texture, error) { return r.textures.get(id) }

// GetModel returns the model with the given id
func (r *Registry) GetModel(id int) (*scene.Model, error) { return r.models.get(id) }

// GetSound returns the sound with the given id
func (r *Registry) GetSound(id int) (*scene.Sound, error) { return r.sounds.get(id) }

// GetCollideModel returns the collide model with the given id
func (r *Registry) GetCollideModel(id int) (*scene.CollideModel, error) {
	return r.collideModels.get(id)
}

// ForEachScene visits all scenes in ascending id order
func (r *Registry) ForEachScene(f func(id int, s *scene.Scene)) { r.scenes.forEach(f) }

// ForEachNode visits all nodes in ascending id order
func (r *Registry) ForEachNode(f func(id int, n *scene.Node)) { r.nodes.forEach(f) }

// ForEachMaterial visits all materials in ascending id order
func (r *Registry) ForEachMaterial(f func(id int, m *scene.Material)) { r.materials.forEach(f) }

// ForEachTexture visits all textures in ascending id order
func (r *Registry) ForEachTexture(f func(id int, t *scene.Texture)) { r.textures.forEach(f) }

// ForEachModel visits all models in ascending id order
func (r *Registry) ForEachModel(f func(id int, m *scene.Model)) { r.models.forEach(f) }

// ForEachSound visits all sounds in ascending id order
func (r *Registry) ForEachSound(f func(id int, s *scene.Sound)) { r.sounds.forEach(f) }

// ForEachCollideModel visits all collide models in ascending id order
func (r *Registry) ForEachCollideModel(f func(id int, c *scene.CollideModel)) {
	r.collideModels.forEach(f)
}
