package session

import (
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/sclog"
	"github.com/scenecast/scenecast/engine/wire"
)

// OutStream accumulates encoded command buffers, to be packed into a single
// session-commands envelope. It is how a session's full state is replicated
// to late-joining observers.
type OutStream struct {
	commands [][]byte
}

func (o *OutStream) add(p *wire.Packet) {
	o.commands = append(o.commands, p.Data())
}

// Message packs the accumulated commands into a session-commands envelope;
// nil when nothing was written.
func (o *OutStream) Message() []byte {
	if len(o.commands) == 0 {
		return nil
	}
	out := wire.NewPacket()
	out.AppendByte(MsgSessionCommands)
	for _, cmd := range o.commands {
		out.AppendUint16(uint16(len(cmd)))
		out.AppendBytes(cmd)
	}
	return out.Data()
}

func cmdPacket(cmd Command) *wire.Packet {
	p := wire.NewPacket()
	p.AppendByte(byte(cmd))
	return p
}

// AddScene encodes scene creation
func (o *OutStream) AddScene(sc *scene.Scene) {
	p := cmdPacket(CmdAddScene)
	p.AppendInt32(int32(sc.StreamID()))
	p.AppendInt32(int32(sc.StartTime()))
	o.add(p)
}

// AddMaterial encodes material creation (components are dumped separately,
// after every entity they may reference exists)
func (o *OutStream) AddMaterial(m *scene.Material) {
	p := cmdPacket(CmdAddMaterial)
	p.AppendInt32(int32(m.Scene.StreamID()))
	p.AppendInt32(int32(m.StreamID))
	o.add(p)
}

// AddMaterialComponents encodes the serialized components of a material
func (o *OutStream) AddMaterialComponents(m *scene.Material) {
	for _, c := range m.Components() {
		blob := c.Dump()
		p := cmdPacket(CmdAddMaterialComponent)
		p.AppendInt32(int32(m.StreamID))
		p.AppendInt32(int32(len(blob)))
		p.AppendBytes(blob)
		o.add(p)
	}
}

// AddTexture encodes texture creation
func (o *OutStream) AddTexture(t *scene.Texture) {
	p := cmdPacket(CmdAddTexture)
	p.AppendInt32(int32(t.Scene.StreamID()))
	p.AppendInt32(int32(t.StreamID))
	p.AppendVarStr(t.Name)
	o.add(p)
}

// AddModel encodes model creation
func (o *OutStream) AddModel(m *scene.Model) {
	p := cmdPacket(CmdAddModel)
	p.AppendInt32(int32(m.Scene.StreamID()))
	p.AppendInt32(int32(m.StreamID))
	p.AppendVarStr(m.Name)
	o.add(p)
}

// AddSound encodes sound creation
func (o *OutStream) AddSound(snd *scene.Sound) {
	p := cmdPacket(CmdAddSound)
	p.AppendInt32(int32(snd.Scene.StreamID()))
	p.AppendInt32(int32(snd.StreamID))
	p.AppendVarStr(snd.Name)
	o.add(p)
}

// AddCollideModel encodes collide-model creation
func (o *OutStream) AddCollideModel(c *scene.CollideModel) {
	p := cmdPacket(CmdAddCollideModel)
	p.AppendInt32(int32(c.Scene.StreamID()))
	p.AppendInt32(int32(c.StreamID))
	p.AppendVarStr(c.Name)
	o.add(p)
}

// AddNode encodes node creation plus its current attribute values.
// Attribute connections are encoded separately once all nodes exist.
func (o *OutStream) AddNode(n *scene.Node) {
	p := cmdPacket(CmdAddNode)
	p.AppendInt32(int32(n.Scene().StreamID()))
	p.AppendInt32(int32(n.Type().ID()))
	p.AppendInt32(int32(n.StreamID()))
	o.add(p)

	for _, idx := range n.AttrIndices() {
		v, _ := n.Attr(idx)
		o.setNodeAttr(n, idx, v)
	}
	if n.Created() {
		p := cmdPacket(CmdNodeOnCreate)
		p.AppendInt32(int32(n.StreamID()))
		o.add(p)
	}
}

// ConnectNodeAttrs encodes the node's outgoing attribute connections
func (o *OutStream) ConnectNodeAttrs(n *scene.Node) {
	for _, c := range n.Connections() {
		p := cmdPacket(CmdConnectNodeAttr)
		p.AppendInt32(int32(n.StreamID()))
		p.AppendInt32(int32(c.SrcAttr))
		p.AppendInt32(int32(c.DstNode.StreamID()))
		p.AppendInt32(int32(c.DstAttr))
		o.add(p)
	}
}

func (o *OutStream) setNodeAttr(n *scene.Node, idx int, v scene.AttrValue) {
	var p *wire.Packet
	target := func(cmd Command) *wire.Packet {
		p := cmdPacket(cmd)
		p.AppendInt32(int32(n.StreamID()))
		p.AppendInt32(int32(idx))
		return p
	}

	switch v.Kind {
	case scene.AttrKindFloat:
		p = target(CmdSetNodeAttrFloat)
		p.AppendFloat32(v.Float)
	case scene.AttrKindInt:
		p = target(CmdSetNodeAttrInt32)
		p.AppendInt32(int32(v.Int))
	case scene.AttrKindBool:
		p = target(CmdSetNodeAttrBool)
		if v.Bool {
			p.AppendInt32(1)
		} else {
			p.AppendInt32(0)
		}
	case scene.AttrKindString:
		p = target(CmdSetNodeAttrString)
		p.AppendVarStr(v.Str)
	case scene.AttrKindNode:
		if v.Node == nil {
			p = target(CmdSetNodeAttrNodeNull)
		} else {
			p = target(CmdSetNodeAttrNode)
			p.AppendInt32(int32(v.Node.StreamID()))
		}
	case scene.AttrKindTexture:
		if v.Texture == nil {
			p = target(CmdSetNodeAttrTextureNull)
		} else {
			p = target(CmdSetNodeAttrTexture)
			p.AppendInt32(int32(v.Texture.StreamID))
		}
	case scene.AttrKindSound:
		if v.Sound == nil {
			p = target(CmdSetNodeAttrSoundNull)
		} else {
			p = target(CmdSetNodeAttrSound)
			p.AppendInt32(int32(v.Sound.StreamID))
		}
	case scene.AttrKindModel:
		if v.Model == nil {
			p = target(CmdSetNodeAttrModelNull)
		} else {
			p = target(CmdSetNodeAttrModel)
			p.AppendInt32(int32(v.Model.StreamID))
		}
	case scene.AttrKindCollideModel:
		if v.CollideModel == nil {
			p = target(CmdSetNodeAttrCollideModelNull)
		} else {
			p = target(CmdSetNodeAttrCollideModel)
			p.AppendInt32(int32(v.CollideModel.StreamID))
		}
	case scene.AttrKindFloats:
		p = target(CmdSetNodeAttrFloats)
		p.AppendInt32(int32(len(v.Floats)))
		p.AppendFloat32s(v.Floats)
	case scene.AttrKindInts:
		p = target(CmdSetNodeAttrInt32s)
		p.AppendInt32(int32(len(v.Ints)))
		for _, i := range v.Ints {
			p.AppendInt32(int32(i))
		}
	case scene.AttrKindNodes:
		p = target(CmdSetNodeAttrNodes)
		p.AppendInt32(int32(len(v.Nodes)))
		for _, ref := range v.Nodes {
			p.AppendInt32(int32(ref.StreamID()))
		}
	case scene.AttrKindTextures:
		p = target(CmdSetNodeAttrTextures)
		p.AppendInt32(int32(len(v.Textures)))
		for _, ref := range v.Textures {
			p.AppendInt32(int32(ref.StreamID))
		}
	case scene.AttrKindSounds:
		p = target(CmdSetNodeAttrSounds)
		p.AppendInt32(int32(len(v.Sounds)))
		for _, ref := range v.Sounds {
			p.AppendInt32(int32(ref.StreamID))
		}
	case scene.AttrKindModels:
		p = target(CmdSetNodeAttrModels)
		p.AppendInt32(int32(len(v.Models)))
		for _, ref := range v.Models {
			p.AppendInt32(int32(ref.StreamID))
		}
	case scene.AttrKindCollideModels:
		p = target(CmdSetNodeAttrCollideModels)
		p.AppendInt32(int32(len(v.CollideModels)))
		for _, ref := range v.CollideModels {
			p.AppendInt32(int32(ref.StreamID))
		}
	case scene.AttrKindMaterials:
		p = target(CmdSetNodeAttrMaterials)
		p.AppendInt32(int32(len(v.Materials)))
		for _, ref := range v.Materials {
			p.AppendInt32(int32(ref.StreamID))
		}
	default:
		sclog.Errorf("setNodeAttr: unhandled attr kind %d", v.Kind)
		return
	}
	o.add(p)
}

// DumpFullState writes the session's complete state to out. Ordering
// guarantees every reference used while rebuilding already exists: scenes,
// then materials (sans components), then media, then nodes with attributes,
// then connections, then material components.
func (s *Session) DumpFullState(out *OutStream) {
	s.registry.ForEachScene(func(id int, sc *scene.Scene) {
		out.AddScene(sc)
	})
	s.registry.ForEachMaterial(func(id int, m *scene.Material) {
		out.AddMaterial(m)
	})
	s.registry.ForEachTexture(func(id int, t *scene.Texture) {
		out.AddTexture(t)
	})
	s.registry.ForEachModel(func(id int, m *scene.Model) {
		out.AddModel(m)
	})
	s.registry.ForEachSound(func(id int, snd *scene.Sound) {
		out.AddSound(snd)
	})
	s.registry.ForEachCollideModel(func(id int, c *scene.CollideModel) {
		out.AddCollideModel(c)
	})
	s.registry.ForEachNode(func(id int, n *scene.Node) {
		out.AddNode(n)
	})
	s.registry.ForEachNode(func(id int, n *scene.Node) {
		out.ConnectNodeAttrs(n)
	})
	s.registry.ForEachMaterial(func(id int, m *scene.Material) {
		out.AddMaterialComponents(m)
	})
}
