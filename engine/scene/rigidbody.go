package scene

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/wire"
)

// rigidBodyStateSize is the serialized size of one full body state:
// position (3) + orientation quaternion (4) + linear velocity (3) +
// angular velocity (3), all float32.
const rigidBodyStateSize = 13 * 4

// RigidBody is the physics state of one body slot of a node. Correction
// blobs restore an authoritative snapshot of this state; the blend offset
// hides the resulting positional discontinuity from presentation.
type RigidBody struct {
	slot int

	Position        [3]float32
	Orientation     [4]float32
	Velocity        [3]float32
	AngularVelocity [3]float32

	blendOffset [3]float32
}

// Slot returns the body's slot index within its node
func (b *RigidBody) Slot() int {
	return b.slot
}

// Dump serializes the full body state
func (b *RigidBody) Dump(p *wire.Packet) {
	p.AppendFloat32s(b.Position[:])
	p.AppendFloat32s(b.Orientation[:])
	p.AppendFloat32s(b.Velocity[:])
	p.AppendFloat32s(b.AngularVelocity[:])
}

// Restore applies a serialized state snapshot as the body's new authoritative
// state and returns the number of bytes consumed.
func (b *RigidBody) Restore(data []byte) (int, error) {
	p := wire.PacketFromData(data)
	vals, err := p.ReadFloat32s(13)
	if err != nil {
		return 0, errors.Wrap(err, "rigid body restore")
	}
	copy(b.Position[:], vals[0:3])
	copy(b.Orientation[:], vals[3:7])
	copy(b.Velocity[:], vals[7:10])
	copy(b.AngularVelocity[:], vals[10:13])
	return p.Pos(), nil
}

// AddBlendOffset accumulates a positional delta to be decayed over time
func (b *RigidBody) AddBlendOffset(dx, dy, dz float32) {
	b.blendOffset[0] += dx
	b.blendOffset[1] += dy
	b.blendOffset[2] += dz
}

// BlendOffset returns the current accumulated blend offset
func (b *RigidBody) BlendOffset() [3]float32 {
	return b.blendOffset
}

// DecayBlendOffset scales the blend offset towards zero; presentation calls
// this once per drawn frame.
func (b *RigidBody) DecayBlendOffset(factor float32) {
	b.blendOffset[0] *= factor
	b.blendOffset[1] *= factor
	b.blendOffset[2] *= factor
}
