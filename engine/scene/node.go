package scene

import (
	"sort"

	"github.com/pkg/errors"
)

// AttrConnection is a live data dependency from one node attribute to an
// attribute of another node: whenever the source attribute changes, the
// value is pushed to the destination.
type AttrConnection struct {
	SrcAttr int
	DstNode *Node
	DstAttr int
}

// Node is one entity within a scene. Attributes are indexed by small
// non-negative integers assigned by the producing side.
type Node struct {
	nodeType *NodeType
	scene    *Scene
	streamID int

	attrs       map[int]AttrValue
	connections []AttrConnection
	bodies      map[int]*RigidBody

	created    bool
	messages   int
	resyncData []byte

	// MessageHandler, when set, receives opaque node messages
	MessageHandler func(payload []byte)
}

// Type returns the node's type
func (n *Node) Type() *NodeType {
	return n.nodeType
}

// Scene returns the owning scene
func (n *Node) Scene() *Scene {
	return n.scene
}

// StreamID returns the node's protocol-assigned id
func (n *Node) StreamID() int {
	return n.streamID
}

// SetStreamID records the protocol-assigned id
func (n *Node) SetStreamID(id int) {
	n.streamID = id
}

// OnCreate fires post-construction initialization; the stream sends it once
// all of the node's initial attributes are assigned.
func (n *Node) OnCreate() {
	n.created = true
}

// Created reports whether OnCreate has fired
func (n *Node) Created() bool {
	return n.created
}

// SetAttr assigns an attribute value and pushes it along any connections
// rooted at that attribute. Propagation is a single hop; connections of the
// destination node do not fire again.
func (n *Node) SetAttr(index int, v AttrValue) error {
	if index < 0 {
		return errors.Errorf("invalid attribute index %d on node type %s", index, n.nodeType.Name())
	}
	n.attrs[index] = v
	for _, c := range n.connections {
		if c.SrcAttr == index && c.DstNode != nil {
			c.DstNode.attrs[c.DstAttr] = v
		}
	}
	return nil
}

// Attr returns the attribute value at index
func (n *Node) Attr(index int) (AttrValue, bool) {
	v, ok := n.attrs[index]
	return v, ok
}

// AttrIndices returns the indices of all assigned attributes in ascending order
func (n *Node) AttrIndices() []int {
	indices := make([]int, 0, len(n.attrs))
	for i := range n.attrs {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// ConnectAttribute wires a live data dependency from the node's srcAttr to
// dstNode's dstAttr. The current source value, if any, is pushed immediately.
func (n *Node) ConnectAttribute(srcAttr int, dstNode *Node, dstAttr int) error {
	if srcAttr < 0 || dstAttr < 0 {
		return errors.Errorf("invalid attribute connection %d -> %d", srcAttr, dstAttr)
	}
	n.connections = append(n.connections, AttrConnection{SrcAttr: srcAttr, DstNode: dstNode, DstAttr: dstAttr})
	if v, ok := n.attrs[srcAttr]; ok {
		dstNode.attrs[dstAttr] = v
	}
	return nil
}

// Connections returns the node's outgoing attribute connections
func (n *Node) Connections() []AttrConnection {
	return n.connections
}

// DispatchNodeMessage hands an opaque message payload to the node
func (n *Node) DispatchNodeMessage(payload []byte) {
	n.messages++
	if n.MessageHandler != nil {
		n.MessageHandler(payload)
	}
}

// MessageCount returns how many node messages have been dispatched
func (n *Node) MessageCount() int {
	return n.messages
}

// AddRigidBody creates a physics body in the given slot
func (n *Node) AddRigidBody(slot int) *RigidBody {
	b := &RigidBody{slot: slot}
	n.bodies[slot] = b
	return b
}

// GetRigidBody returns the body in the given slot, or nil
func (n *Node) GetRigidBody(slot int) *RigidBody {
	return n.bodies[slot]
}

// RigidBodySlots returns all occupied body slots in ascending order
func (n *Node) RigidBodySlots() []int {
	slots := make([]int, 0, len(n.bodies))
	for s := range n.bodies {
		slots = append(slots, s)
	}
	sort.Ints(slots)
	return slots
}

// ApplyResyncData hands node-specific correction payload to the node
func (n *Node) ApplyResyncData(data []byte) {
	n.resyncData = data
}

// ResyncData returns the last applied resync payload
func (n *Node) ResyncData() []byte {
	return n.resyncData
}
