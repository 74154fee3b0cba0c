package session

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/scenecast/scenecast/engine/scene"
)

// buildPopulatedSession drives a session into a state with every entity
// class populated: scenes, media, a material with a component, nodes with
// attributes and a connection.
func buildPopulatedSession(t *testing.T) *Session {
	t.Helper()
	s := New(nil, nil)
	component := (&scene.MaterialComponent{
		Conditions: []int32{1, 2},
		Actions:    []scene.MaterialAction{{Kind: 3, Target: 4}},
	}).Dump()

	exec(t, s,
		buildCmd(CmdAddScene, 0, 100),
		buildCmd(CmdAddScene, 1, 200),
		buildCmd(CmdAddMaterial, 0, 2),
		buildCmd(CmdAddMaterialComponent, 2, len(component), component),
		buildCmd(CmdAddTexture, 0, 1, "tex"),
		buildCmd(CmdAddModel, 0, 2, "model"),
		buildCmd(CmdAddSound, 0, 3, "snd"),
		buildCmd(CmdAddCollideModel, 0, 4, "cm"),
		buildCmd(CmdAddNode, 0, testNodeType.ID(), 1),
		buildCmd(CmdAddNode, 1, testNodeType.ID(), 2),
		buildCmd(CmdSetNodeAttrFloat, 1, 0, float32(1.5)),
		buildCmd(CmdSetNodeAttrString, 1, 1, "abc"),
		buildCmd(CmdSetNodeAttrTexture, 1, 2, 1),
		buildCmd(CmdSetNodeAttrNode, 1, 3, 2),
		buildCmd(CmdSetNodeAttrNodeNull, 2, 0),
		buildCmd(CmdSetNodeAttrMaterials, 2, 1, 1, 2),
		buildCmd(CmdSetNodeAttrFloats, 2, 2, 2, float32(7), float32(8)),
		buildCmd(CmdNodeOnCreate, 1),
		buildCmd(CmdConnectNodeAttr, 1, 0, 2, 5))
	return s
}

func TestDumpFullStateRebuild(t *testing.T) {
	src := buildPopulatedSession(t)

	out := &OutStream{}
	src.DumpFullState(out)
	msg := out.Message()
	assert.T(t, msg != nil, "populated session must dump commands")
	assert.Equal(t, byte(MsgSessionCommands), msg[0])

	dst := New(nil, nil)
	assert.Equal(t, nil, dst.HandleSessionMessage(msg))
	feed(dst, cmdStep(10))
	dst.Update(10)
	assert.T(t, !dst.Ended(), "rebuild must execute cleanly")

	// scenes
	for _, id := range []int{0, 1} {
		ss, err := src.Registry().GetScene(id)
		assert.Equal(t, nil, err)
		ds, err := dst.Registry().GetScene(id)
		assert.Equal(t, nil, err)
		assert.Equal(t, ss.StartTime(), ds.StartTime())
	}

	// media
	st, _ := src.Registry().GetTexture(1)
	dt, err := dst.Registry().GetTexture(1)
	assert.Equal(t, nil, err)
	assert.Equal(t, st.Name, dt.Name)
	dcm, err := dst.Registry().GetCollideModel(4)
	assert.Equal(t, nil, err)
	assert.Equal(t, "cm", dcm.Name)

	// material with component
	sm, _ := src.Registry().GetMaterial(2)
	dm, err := dst.Registry().GetMaterial(2)
	assert.Equal(t, nil, err)
	assert.Equal(t, len(sm.Components()), len(dm.Components()))
	assert.Equal(t, sm.Components()[0].Conditions, dm.Components()[0].Conditions)
	assert.Equal(t, sm.Components()[0].Actions, dm.Components()[0].Actions)

	// nodes: attributes, creation flag, connections
	sn, _ := src.Registry().GetNode(1)
	dn, err := dst.Registry().GetNode(1)
	assert.Equal(t, nil, err)
	assert.Equal(t, sn.AttrIndices(), dn.AttrIndices())
	assert.Equal(t, sn.Created(), dn.Created())
	v, _ := dn.Attr(0)
	assert.Equal(t, float32(1.5), v.Float)
	v, _ = dn.Attr(1)
	assert.Equal(t, "abc", v.Str)
	v, _ = dn.Attr(2)
	assert.Equal(t, "tex", v.Texture.Name)
	v, _ = dn.Attr(3)
	assert.Equal(t, 2, v.Node.StreamID())

	dn2, _ := dst.Registry().GetNode(2)
	assert.T(t, !dn2.Created(), "uncreated node stays uncreated")
	v, _ = dn2.Attr(0)
	assert.T(t, v.Node == nil, "null ref survives the dump")
	v, _ = dn2.Attr(1)
	assert.Equal(t, dm, v.Materials[0])
	v, _ = dn2.Attr(2)
	assert.Equal(t, []float32{7, 8}, v.Floats)

	// the connection propagates on the rebuilt side too
	assert.Equal(t, 1, len(dn.Connections()))
	exec(t, dst, buildCmd(CmdSetNodeAttrFloat, 1, 0, float32(9)))
	v, _ = dn2.Attr(5)
	assert.Equal(t, float32(9), v.Float)
}

func TestOutStreamEmptyMessage(t *testing.T) {
	s := New(nil, nil)
	out := &OutStream{}
	s.DumpFullState(out)
	assert.T(t, out.Message() == nil, "empty session dumps nothing")
}
