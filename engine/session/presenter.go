package session

import "github.com/scenecast/scenecast/engine/scene"

// BGDynamicsEmission describes one particle emission forwarded to the
// background dynamics subsystem.
type BGDynamicsEmission struct {
	EmitType    int
	Count       int
	ChunkType   int
	TendrilType int
	Position    [3]float32
	Velocity    [3]float32
	Scale       float32
	Spread      float32
}

// Presenter receives the stream's presentation side effects. Rendering and
// audio live outside this engine; a session with a nil presenter decodes
// and validates these commands but discards the effects.
type Presenter interface {
	PlaySound(s *scene.Sound, volume float32)
	PlaySoundAtPosition(s *scene.Sound, volume, x, y, z float32)
	ScreenMessageBottom(text string, color [3]float32)
	ScreenMessageTop(text string, texture, tintTexture *scene.Texture, color, tintColor, tint2Color [3]float32)
	EmitBGDynamics(e BGDynamicsEmission)
}
