package scene

// Scene is one simulation scene reconstructed from the command stream. It
// owns its nodes in creation order; slot-indexed lookup lives in the session
// registry, not here.
type Scene struct {
	streamID  int
	startTime int64
	stepCount int64

	nodes []*Node
}

// New creates a scene with the given start time (milliseconds)
func New(startTime int64) *Scene {
	return &Scene{startTime: startTime}
}

// StreamID returns the scene's protocol-assigned id
func (s *Scene) StreamID() int {
	return s.streamID
}

// SetStreamID records the protocol-assigned id
func (s *Scene) SetStreamID(id int) {
	s.streamID = id
}

// StartTime returns the scene's start time
func (s *Scene) StartTime() int64 {
	return s.startTime
}

// StepCount returns how many simulation ticks the scene has advanced
func (s *Scene) StepCount() int64 {
	return s.stepCount
}

// Step advances the scene's internal simulation by one tick
func (s *Scene) Step() {
	s.stepCount++
}

// NewNode constructs a node of the given type within the scene
func (s *Scene) NewNode(nt *NodeType) *Node {
	n := &Node{
		nodeType: nt,
		scene:    s,
		attrs:    map[int]AttrValue{},
		bodies:   map[int]*RigidBody{},
	}
	s.nodes = append(s.nodes, n)
	return n
}

// DeleteNode removes the node from the scene's owned list
func (s *Scene) DeleteNode(n *Node) {
	for i, node := range s.nodes {
		if node == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the scene's nodes in creation order
func (s *Scene) Nodes() []*Node {
	return s.nodes
}
