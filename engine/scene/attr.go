package scene

// AttrKind identifies which member of an AttrValue is meaningful
type AttrKind int

const (
	AttrKindFloat AttrKind = iota
	AttrKindInt
	AttrKindBool
	AttrKindString
	AttrKindNode
	AttrKindTexture
	AttrKindSound
	AttrKindModel
	AttrKindCollideModel
	AttrKindFloats
	AttrKindInts
	AttrKindNodes
	AttrKindTextures
	AttrKindSounds
	AttrKindModels
	AttrKindCollideModels
	AttrKindMaterials
)

// AttrValue is one node attribute value. Ints travel as 32 bit on the wire
// but are stored widened to 64 bit locally. Reference members may be nil
// (explicit null); array members are typed slices resolved against the
// session registry before assignment.
type AttrValue struct {
	Kind AttrKind

	Float float32
	Int   int64
	Bool  bool
	Str   string

	Node         *Node
	Texture      *Texture
	Sound        *Sound
	Model        *Model
	CollideModel *CollideModel

	Floats        []float32
	Ints          []int64
	Nodes         []*Node
	Textures      []*Texture
	Sounds        []*Sound
	Models        []*Model
	CollideModels []*CollideModel
	Materials     []*Material
}

// FloatAttr makes a float attribute value
func FloatAttr(v float32) AttrValue { return AttrValue{Kind: AttrKindFloat, Float: v} }

// IntAttr makes an int attribute value
func IntAttr(v int64) AttrValue { return AttrValue{Kind: AttrKindInt, Int: v} }

// BoolAttr makes a bool attribute value
func BoolAttr(v bool) AttrValue { return AttrValue{Kind: AttrKindBool, Bool: v} }

// StringAttr makes a string attribute value
func StringAttr(v string) AttrValue { return AttrValue{Kind: AttrKindString, Str: v} }

// NodeAttr makes a node reference attribute value (nil allowed)
func NodeAttr(n *Node) AttrValue { return AttrValue{Kind: AttrKindNode, Node: n} }
