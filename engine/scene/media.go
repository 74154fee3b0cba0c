package scene

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/wire"
)

// Texture is a texture resource scoped to a scene
type Texture struct {
	Name     string
	Scene    *Scene
	StreamID int
}

// Model is a model resource scoped to a scene
type Model struct {
	Name     string
	Scene    *Scene
	StreamID int
}

// Sound is a sound resource scoped to a scene
type Sound struct {
	Name     string
	Scene    *Scene
	StreamID int
}

// CollideModel is a collision geometry resource scoped to a scene
type CollideModel struct {
	Name     string
	Scene    *Scene
	StreamID int
}

// Material is a surface material scoped to a scene; components are appended
// by the stream after creation.
type Material struct {
	Scene    *Scene
	StreamID int

	components []*MaterialComponent
}

// NewMaterial creates an empty material in the scene
func NewMaterial(s *Scene) *Material {
	return &Material{Scene: s}
}

// AddComponent appends a component to the material
func (m *Material) AddComponent(c *MaterialComponent) {
	m.components = append(m.components, c)
}

// Components returns the material's components in append order
func (m *Material) Components() []*MaterialComponent {
	return m.components
}

// MaterialAction is one effect a material component triggers; Target is a
// stream-id whose meaning depends on the action kind.
type MaterialAction struct {
	Kind   byte
	Target int32
}

// MaterialComponent is a serialized condition/action rule appended to a
// material: a list of condition terms followed by a list of actions.
type MaterialComponent struct {
	Conditions []int32
	Actions    []MaterialAction
}

// Restore decodes a component from a serialized blob and returns the number
// of bytes consumed; the caller verifies it against the declared size.
func (c *MaterialComponent) Restore(data []byte) (int, error) {
	p := wire.PacketFromData(data)

	condCount, err := p.ReadUint16()
	if err != nil {
		return 0, errors.Wrap(err, "material component restore")
	}
	c.Conditions = make([]int32, 0, condCount)
	for i := 0; i < int(condCount); i++ {
		v, err := p.ReadInt32()
		if err != nil {
			return 0, errors.Wrap(err, "material component restore")
		}
		c.Conditions = append(c.Conditions, v)
	}

	actionCount, err := p.ReadUint16()
	if err != nil {
		return 0, errors.Wrap(err, "material component restore")
	}
	c.Actions = make([]MaterialAction, 0, actionCount)
	for i := 0; i < int(actionCount); i++ {
		kind, err := p.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "material component restore")
		}
		target, err := p.ReadInt32()
		if err != nil {
			return 0, errors.Wrap(err, "material component restore")
		}
		c.Actions = append(c.Actions, MaterialAction{Kind: kind, Target: target})
	}

	return p.Pos(), nil
}

// Dump serializes the component; Restore of the result consumes exactly the
// returned bytes.
func (c *MaterialComponent) Dump() []byte {
	p := wire.NewPacket()
	p.AppendUint16(uint16(len(c.Conditions)))
	p.AppendInt32s(c.Conditions)
	p.AppendUint16(uint16(len(c.Actions)))
	for _, a := range c.Actions {
		p.AppendByte(a.Kind)
		p.AppendInt32(a.Target)
	}
	return p.Data()
}
