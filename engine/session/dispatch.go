package session

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/wire"
)

// readAttrTarget decodes the (node-id, attr-index) pair that starts every
// attribute-set command.
func (s *Session) readAttrTarget(p *wire.Packet) (*scene.Node, int, error) {
	vals, err := p.ReadInt32s(2)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.registry.GetNode(int(vals[0]))
	if err != nil {
		return nil, 0, err
	}
	return n, int(vals[1]), nil
}

// readArrayCount decodes and bounds-checks an attribute array element count.
func readArrayCount(p *wire.Packet) (int, error) {
	count, err := p.ReadInt32()
	if err != nil {
		return 0, err
	}
	if count < 0 || count > consts.MAX_ATTR_ARRAY_COUNT {
		return 0, errors.Wrapf(ErrCorruptStream, "invalid array size (%d)", count)
	}
	return int(count), nil
}

// execCommand decodes and applies a single command buffer. Execution is
// purely sequential and single-pass; no opcode re-enters the dispatcher.
func (s *Session) execCommand(p *wire.Packet) error {
	opByte, err := p.ReadByte()
	if err != nil {
		return err
	}

	switch cmd := Command(opByte); cmd {
	case CmdBaseTimeStep:
		stepSize, err := p.ReadInt32()
		if err != nil {
			return err
		}
		if stepSize <= 0 || stepSize > consts.MAX_BASE_TIME_STEP {
			return errors.Wrapf(ErrCorruptStream, "abnormal stepsize %d", stepSize)
		}
		s.mu.Lock()
		s.baseTimeBuffered -= int64(stepSize)
		buffered := s.baseTimeBuffered
		s.mu.Unlock()
		if buffered < 0 {
			return errors.Wrapf(ErrCorruptStream, "buffered time went negative (%d)", buffered)
		}
		s.baseTime += int64(stepSize)
		return nil

	case CmdDynamicsCorrection:
		return s.applyDynamicsCorrection(p)

	case CmdEndOfStream:
		// Sources can end at any time (out of disk space while recording,
		// etc); any session state is acceptable here.
		s.Reset(true)
		return nil

	case CmdAddScene:
		vals, err := p.ReadInt32s(2)
		if err != nil {
			return err
		}
		sc := scene.New(int64(vals[1]))
		if err := s.registry.scenes.put(int(vals[0]), sc); err != nil {
			return err
		}
		sc.SetStreamID(int(vals[0]))
		return nil

	case CmdRemoveScene:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		if s.foregroundScene != nil && s.foregroundScene.StreamID() == int(id) {
			s.foregroundScene = nil
		}
		return s.registry.scenes.remove(int(id))

	case CmdStepScene:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		sc, err := s.registry.GetScene(int(id))
		if err != nil {
			return err
		}
		sc.Step()
		return nil

	case CmdSetForegroundScene:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		sc, err := s.registry.GetScene(int(id))
		if err != nil {
			return err
		}
		s.foregroundScene = sc
		return nil

	case CmdAddNode:
		vals, err := p.ReadInt32s(3) // scene-id, node-type-id, node-id
		if err != nil {
			return err
		}
		sc, err := s.registry.GetScene(int(vals[0]))
		if err != nil {
			return err
		}
		nt, err := scene.NodeTypeByID(int(vals[1]))
		if err != nil {
			return errors.Wrapf(ErrCorruptStream, "%v", err)
		}
		// Construct under the scene so sub-objects attribute to it; the
		// foreground binding is explicit state, not ambient context.
		n := sc.NewNode(nt)
		if err := s.registry.nodes.put(int(vals[2]), n); err != nil {
			sc.DeleteNode(n)
			return err
		}
		n.SetStreamID(int(vals[2]))
		return nil

	case CmdNodeOnCreate:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		n, err := s.registry.GetNode(int(id))
		if err != nil {
			return err
		}
		n.OnCreate()
		return nil

	case CmdRemoveNode:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		n, err := s.registry.GetNode(int(id))
		if err != nil {
			return err
		}
		// Deletion is delegated to the owning scene; the slot clears here.
		n.Scene().DeleteNode(n)
		return s.registry.nodes.remove(int(id))

	case CmdNodeMessage:
		vals, err := p.ReadInt32s(2)
		if err != nil {
			return err
		}
		n, err := s.registry.GetNode(int(vals[0]))
		if err != nil {
			return err
		}
		msgSize := vals[1]
		if msgSize < 1 || msgSize > consts.MAX_NODE_MESSAGE_SIZE {
			return errors.Wrapf(ErrCorruptStream, "invalid node message size %d", msgSize)
		}
		payload, err := p.ReadBytes(int(msgSize))
		if err != nil {
			return err
		}
		n.DispatchNodeMessage(payload)
		return nil

	case CmdConnectNodeAttr:
		vals, err := p.ReadInt32s(4) // src-node, src-attr, dst-node, dst-attr
		if err != nil {
			return err
		}
		src, err := s.registry.GetNode(int(vals[0]))
		if err != nil {
			return err
		}
		dst, err := s.registry.GetNode(int(vals[2]))
		if err != nil {
			return err
		}
		if err := src.ConnectAttribute(int(vals[1]), dst, int(vals[3])); err != nil {
			return errors.Wrapf(ErrCorruptStream, "%v", err)
		}
		return nil

	case CmdSetNodeAttrFloat:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		v, err := p.ReadFloat32()
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.FloatAttr(v))

	case CmdSetNodeAttrInt32:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		v, err := p.ReadInt32()
		if err != nil {
			return err
		}
		// 32 bit on the wire, widened to 64 bit locally.
		return n.SetAttr(attr, scene.IntAttr(int64(v)))

	case CmdSetNodeAttrBool:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		v, err := p.ReadInt32()
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.BoolAttr(v != 0))

	case CmdSetNodeAttrString:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		v, err := p.ReadVarStr()
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.StringAttr(v))

	case CmdSetNodeAttrFloats:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		count, err := readArrayCount(p)
		if err != nil {
			return err
		}
		vals, err := p.ReadFloat32s(count)
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindFloats, Floats: vals})

	case CmdSetNodeAttrInt32s:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		count, err := readArrayCount(p)
		if err != nil {
			return err
		}
		vals, err := p.ReadInt32s(count)
		if err != nil {
			return err
		}
		vals64 := make([]int64, count)
		for i, v := range vals {
			vals64[i] = int64(v)
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindInts, Ints: vals64})

	case CmdSetNodeAttrNode:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		ref, err := s.registry.GetNode(int(id))
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.NodeAttr(ref))

	case CmdSetNodeAttrNodeNull:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.NodeAttr(nil))

	case CmdSetNodeAttrNodes:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		ids, err := readRefArray(p)
		if err != nil {
			return err
		}
		refs := make([]*scene.Node, len(ids))
		for i, id := range ids {
			if refs[i], err = s.registry.GetNode(int(id)); err != nil {
				return err
			}
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindNodes, Nodes: refs})

	case CmdSetNodeAttrTexture:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		ref, err := s.registry.GetTexture(int(id))
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindTexture, Texture: ref})

	case CmdSetNodeAttrTextureNull:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindTexture})

	case CmdSetNodeAttrTextures:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		ids, err := readRefArray(p)
		if err != nil {
			return err
		}
		refs := make([]*scene.Texture, len(ids))
		for i, id := range ids {
			if refs[i], err = s.registry.GetTexture(int(id)); err != nil {
				return err
			}
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindTextures, Textures: refs})

	case CmdSetNodeAttrSound:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		ref, err := s.registry.GetSound(int(id))
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindSound, Sound: ref})

	case CmdSetNodeAttrSoundNull:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindSound})

	case CmdSetNodeAttrSounds:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		ids, err := readRefArray(p)
		if err != nil {
			return err
		}
		refs := make([]*scene.Sound, len(ids))
		for i, id := range ids {
			if refs[i], err = s.registry.GetSound(int(id)); err != nil {
				return err
			}
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindSounds, Sounds: refs})

	case CmdSetNodeAttrModel:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		ref, err := s.registry.GetModel(int(id))
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindModel, Model: ref})

	case CmdSetNodeAttrModelNull:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindModel})

	case CmdSetNodeAttrModels:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		ids, err := readRefArray(p)
		if err != nil {
			return err
		}
		refs := make([]*scene.Model, len(ids))
		for i, id := range ids {
			if refs[i], err = s.registry.GetModel(int(id)); err != nil {
				return err
			}
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindModels, Models: refs})

	case CmdSetNodeAttrCollideModel:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		ref, err := s.registry.GetCollideModel(int(id))
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindCollideModel, CollideModel: ref})

	case CmdSetNodeAttrCollideModelNull:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindCollideModel})

	case CmdSetNodeAttrCollideModels:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		ids, err := readRefArray(p)
		if err != nil {
			return err
		}
		refs := make([]*scene.CollideModel, len(ids))
		for i, id := range ids {
			if refs[i], err = s.registry.GetCollideModel(int(id)); err != nil {
				return err
			}
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindCollideModels, CollideModels: refs})

	case CmdSetNodeAttrMaterials:
		n, attr, err := s.readAttrTarget(p)
		if err != nil {
			return err
		}
		ids, err := readRefArray(p)
		if err != nil {
			return err
		}
		refs := make([]*scene.Material, len(ids))
		for i, id := range ids {
			if refs[i], err = s.registry.GetMaterial(int(id)); err != nil {
				return err
			}
		}
		return n.SetAttr(attr, scene.AttrValue{Kind: scene.AttrKindMaterials, Materials: refs})

	case CmdAddMaterial:
		vals, err := p.ReadInt32s(2) // scene-id, material-id
		if err != nil {
			return err
		}
		sc, err := s.registry.GetScene(int(vals[0]))
		if err != nil {
			return err
		}
		m := scene.NewMaterial(sc)
		if err := s.registry.materials.put(int(vals[1]), m); err != nil {
			return err
		}
		m.StreamID = int(vals[1])
		return nil

	case CmdRemoveMaterial:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		return s.registry.materials.remove(int(id))

	case CmdAddMaterialComponent:
		vals, err := p.ReadInt32s(2) // material-id, component-size
		if err != nil {
			return err
		}
		m, err := s.registry.GetMaterial(int(vals[0]))
		if err != nil {
			return err
		}
		componentSize := vals[1]
		if componentSize < 1 || componentSize > consts.MAX_MATERIAL_COMPONENT_SIZE {
			return errors.Wrapf(ErrCorruptStream, "invalid component size %d", componentSize)
		}
		blob, err := p.ReadBytes(int(componentSize))
		if err != nil {
			return err
		}
		c := &scene.MaterialComponent{}
		consumed, err := c.Restore(blob)
		if err != nil {
			return err
		}
		if consumed != int(componentSize) {
			return errors.Wrapf(ErrCorruptStream,
				"material component consumed %d of declared %d bytes", consumed, componentSize)
		}
		m.AddComponent(c)
		return nil

	case CmdAddTexture:
		return s.execAddMedia(p, cmd)
	case CmdAddModel:
		return s.execAddMedia(p, cmd)
	case CmdAddSound:
		return s.execAddMedia(p, cmd)
	case CmdAddCollideModel:
		return s.execAddMedia(p, cmd)

	case CmdRemoveTexture:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		return s.registry.textures.remove(int(id))

	case CmdRemoveModel:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		return s.registry.models.remove(int(id))

	case CmdRemoveSound:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		return s.registry.sounds.remove(int(id))

	case CmdRemoveCollideModel:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		return s.registry.collideModels.remove(int(id))

	case CmdPlaySound:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		snd, err := s.registry.GetSound(int(id))
		if err != nil {
			return err
		}
		volume, err := p.ReadFloat32()
		if err != nil {
			return err
		}
		if s.presenter != nil {
			s.presenter.PlaySound(snd, volume)
		}
		return nil

	case CmdPlaySoundAtPosition:
		id, err := p.ReadInt32()
		if err != nil {
			return err
		}
		snd, err := s.registry.GetSound(int(id))
		if err != nil {
			return err
		}
		vals, err := p.ReadFloat32s(4) // volume, x, y, z
		if err != nil {
			return err
		}
		if s.presenter != nil {
			s.presenter.PlaySoundAtPosition(snd, vals[0], vals[1], vals[2], vals[3])
		}
		return nil

	case CmdScreenMessageBottom:
		text, err := p.ReadVarStr()
		if err != nil {
			return err
		}
		color, err := p.ReadFloat32s(3)
		if err != nil {
			return err
		}
		if s.presenter != nil {
			s.presenter.ScreenMessageBottom(text, [3]float32{color[0], color[1], color[2]})
		}
		return nil

	case CmdScreenMessageTop:
		texIDs, err := p.ReadInt32s(2) // texture, tint-texture
		if err != nil {
			return err
		}
		texture, err := s.registry.GetTexture(int(texIDs[0]))
		if err != nil {
			return err
		}
		tintTexture, err := s.registry.GetTexture(int(texIDs[1]))
		if err != nil {
			return err
		}
		text, err := p.ReadVarStr()
		if err != nil {
			return err
		}
		f, err := p.ReadFloat32s(9) // color, tint-color, tint2-color
		if err != nil {
			return err
		}
		if s.presenter != nil {
			s.presenter.ScreenMessageTop(text, texture, tintTexture,
				[3]float32{f[0], f[1], f[2]}, [3]float32{f[3], f[4], f[5]}, [3]float32{f[6], f[7], f[8]})
		}
		return nil

	case CmdEmitBGDynamics:
		ivals, err := p.ReadInt32s(4) // emit-type, count, chunk-type, tendril-type
		if err != nil {
			return err
		}
		fvals, err := p.ReadFloat32s(8) // position, velocity, scale, spread
		if err != nil {
			return err
		}
		if s.presenter != nil {
			s.presenter.EmitBGDynamics(BGDynamicsEmission{
				EmitType:    int(ivals[0]),
				Count:       int(ivals[1]),
				ChunkType:   int(ivals[2]),
				TendrilType: int(ivals[3]),
				Position:    [3]float32{fvals[0], fvals[1], fvals[2]},
				Velocity:    [3]float32{fvals[3], fvals[4], fvals[5]},
				Scale:       fvals[6],
				Spread:      fvals[7],
			})
		}
		return nil

	default:
		return errors.Wrapf(ErrUnknownCommand, "opcode %d", opByte)
	}
}

// readRefArray decodes a bounded count followed by that many stream ids.
// The count is validated before any array bytes are read.
func readRefArray(p *wire.Packet) ([]int32, error) {
	count, err := readArrayCount(p)
	if err != nil {
		return nil, err
	}
	return p.ReadInt32s(count)
}

// execAddMedia handles the four name-carrying media add commands, which
// share a layout: scene-id, media-id, then a name string.
func (s *Session) execAddMedia(p *wire.Packet, cmd Command) error {
	vals, err := p.ReadInt32s(2) // scene-id, media-id
	if err != nil {
		return err
	}
	name, err := p.ReadVarStr()
	if err != nil {
		return err
	}
	sc, err := s.registry.GetScene(int(vals[0]))
	if err != nil {
		return err
	}
	id := int(vals[1])

	switch cmd {
	case CmdAddTexture:
		t := &scene.Texture{Name: name, Scene: sc, StreamID: id}
		return s.registry.textures.put(id, t)
	case CmdAddModel:
		m := &scene.Model{Name: name, Scene: sc, StreamID: id}
		return s.registry.models.put(id, m)
	case CmdAddSound:
		snd := &scene.Sound{Name: name, Scene: sc, StreamID: id}
		return s.registry.sounds.put(id, snd)
	case CmdAddCollideModel:
		c := &scene.CollideModel{Name: name, Scene: sc, StreamID: id}
		return s.registry.collideModels.put(id, c)
	default:
		return errors.Wrapf(ErrUnknownCommand, "opcode %d", byte(cmd))
	}
}
