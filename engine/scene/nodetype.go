package scene

import (
	"sync"

	"github.com/pkg/errors"
)

// NodeType describes one kind of node the stream can create. Types are
// registered by the hosting application at startup; the protocol refers to
// them by their registration order.
type NodeType struct {
	id   int
	name string
}

// ID returns the protocol-visible node type id
func (nt *NodeType) ID() int {
	return nt.id
}

// Name returns the node type name
func (nt *NodeType) Name() string {
	return nt.name
}

var (
	nodeTypesLock   sync.Mutex
	nodeTypesByID   []*NodeType
	nodeTypesByName = map[string]*NodeType{}
)

// RegisterNodeType registers a node type under the next free type id.
// Registering the same name twice returns the existing type.
func RegisterNodeType(name string) *NodeType {
	nodeTypesLock.Lock()
	defer nodeTypesLock.Unlock()

	if nt, ok := nodeTypesByName[name]; ok {
		return nt
	}
	nt := &NodeType{id: len(nodeTypesByID), name: name}
	nodeTypesByID = append(nodeTypesByID, nt)
	nodeTypesByName[name] = nt
	return nt
}

// NodeTypeByID looks up a node type by its protocol id
func NodeTypeByID(id int) (*NodeType, error) {
	nodeTypesLock.Lock()
	defer nodeTypesLock.Unlock()

	if id < 0 || id >= len(nodeTypesByID) {
		return nil, errors.Errorf("invalid node type id %d", id)
	}
	return nodeTypesByID[id], nil
}

// NodeTypeByName looks up a node type by name
func NodeTypeByName(name string) (*NodeType, error) {
	nodeTypesLock.Lock()
	defer nodeTypesLock.Unlock()

	if nt, ok := nodeTypesByName[name]; ok {
		return nt, nil
	}
	return nil, errors.Errorf("unknown node type %s", name)
}
