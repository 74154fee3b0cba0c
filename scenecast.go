// Package scenecast reconstructs scene-graph state from serialized command
// streams, either live from a network feed or played back from replay files.
package scenecast

import (
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/session"
)

// RegisterNodeType registers a node type name and returns its type
func RegisterNodeType(name string) *scene.NodeType {
	return scene.RegisterNodeType(name)
}

// NewReplaySession opens a replay file for playback
func NewReplaySession(fileName string, presenter session.Presenter) (*session.ReplaySession, error) {
	return session.NewReplaySession(fileName, presenter)
}

// NewLiveSession creates a session fed by pushed network messages
func NewLiveSession(presenter session.Presenter) *session.LiveSession {
	return session.NewLiveSession(presenter)
}

// NewRecorder creates a replay-file writer; attach it to a session with
// AttachObserver to persist everything the session sees
func NewRecorder(fileName string, format byte) (*session.Recorder, error) {
	return session.NewRecorder(fileName, format)
}
