package session

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/wire"
)

// applyDynamicsCorrection applies an out-of-band physics-state blob: per
// node, per body, an authoritative state snapshot. Correction data for an
// unknown node is skipped using its declared length so parsing of subsequent
// nodes stays aligned.
func (s *Session) applyDynamicsCorrection(p *wire.Packet) error {
	blend, err := p.ReadBool()
	if err != nil {
		return err
	}
	nodeCount, err := p.ReadUint16()
	if err != nil {
		return err
	}

	for i := 0; i < int(nodeCount); i++ {
		nodeID, err := p.ReadUint32()
		if err != nil {
			return err
		}
		bodyCount, err := p.ReadByte()
		if err != nil {
			return err
		}
		// Absent nodes are tolerated here (they may have died since the
		// correction was generated); their bytes are skipped, not failed.
		n, _ := s.registry.GetNode(int(nodeID))

		for j := 0; j < int(bodyCount); j++ {
			bodySlot, err := p.ReadByte()
			if err != nil {
				return err
			}
			bodyDataLen, err := p.ReadUint16()
			if err != nil {
				return err
			}
			var b *scene.RigidBody
			if n != nil {
				b = n.GetRigidBody(int(bodySlot))
			}
			stateData, err := p.ReadBytes(int(bodyDataLen))
			if err != nil {
				return errors.Wrap(ErrCorruptStream, "invalid body correction data")
			}
			if b != nil {
				oldPos := b.Position
				consumed, err := b.Restore(stateData)
				if err != nil {
					return err
				}
				if consumed != int(bodyDataLen) {
					return errors.Wrapf(ErrCorruptStream,
						"body correction consumed %d of declared %d bytes", consumed, bodyDataLen)
				}
				if blend {
					// Accumulate old-minus-new so presentation can decay the
					// offset instead of popping to the corrected position.
					b.AddBlendOffset(
						oldPos[0]-b.Position[0],
						oldPos[1]-b.Position[1],
						oldPos[2]-b.Position[2])
				}
			}
		}

		customDataLen, err := p.ReadUint16()
		if err != nil {
			return err
		}
		if customDataLen != 0 {
			data, err := p.ReadBytes(int(customDataLen))
			if err != nil {
				return errors.Wrap(ErrCorruptStream, "invalid node correction data")
			}
			if n != nil {
				n.ApplyResyncData(data)
			}
		}
	}

	if p.Remaining() != 0 {
		return errors.Wrapf(ErrCorruptStream,
			"correction blob has %d trailing bytes", p.Remaining())
	}
	return nil
}

// buildCorrectionMessage serializes the authoritative physics state of every
// body-bearing node of one scene into a dynamics-correction session message.
// Returns nil when the scene has nothing to correct.
func (s *Session) buildCorrectionMessage(sc *scene.Scene, blend bool) []byte {
	p := wire.NewPacket()
	p.AppendByte(MsgSessionDynamicsCorrection)
	p.AppendBool(blend)

	var nodeCount uint16
	countPos := p.Len()
	p.AppendUint16(0) // patched below

	s.registry.ForEachNode(func(id int, n *scene.Node) {
		if n.Scene() != sc {
			return
		}
		slots := n.RigidBodySlots()
		if len(slots) == 0 && len(n.ResyncData()) == 0 {
			return
		}
		nodeCount++
		p.AppendUint32(uint32(id))
		p.AppendByte(byte(len(slots)))
		for _, slot := range slots {
			b := n.GetRigidBody(slot)
			p.AppendByte(byte(slot))
			state := wire.NewPacket()
			b.Dump(state)
			p.AppendUint16(uint16(state.Len()))
			p.AppendBytes(state.Data())
		}
		resync := n.ResyncData()
		p.AppendUint16(uint16(len(resync)))
		p.AppendBytes(resync)
	})

	// A correction message of 4 bytes (type + blend + zero count) is empty.
	if nodeCount == 0 {
		return nil
	}
	data := p.Data()
	data[countPos] = byte(nodeCount)
	data[countPos+1] = byte(nodeCount >> 8)
	return data
}

// CorrectionMessages builds correction messages for every scene that has
// dynamic state worth correcting.
func (s *Session) CorrectionMessages(blend bool) [][]byte {
	var messages [][]byte
	s.registry.ForEachScene(func(id int, sc *scene.Scene) {
		if msg := s.buildCorrectionMessage(sc, blend); msg != nil {
			messages = append(messages, msg)
		}
	})
	return messages
}
