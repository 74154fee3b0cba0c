package session

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/sclog"
	"github.com/scenecast/scenecast/engine/scutils"
)

// ClientConn is the outbound half of an observer connection. Implementations
// must be safe for calls from the session's owning goroutine.
type ClientConn interface {
	// SendReliableMessage delivers one session-message envelope, in order
	SendReliableMessage(msg []byte) error
	// String identifies the connection in logs
	String() string
}

// AttachObserver snapshots the session's full state into the connection and
// then subscribes it to the live message stream. The snapshot is followed by
// non-blended dynamics corrections so the observer starts with exact physics
// state instead of waiting for the next periodic correction.
func (s *Session) AttachObserver(conn ClientConn) error {
	out := &OutStream{}
	s.DumpFullState(out)
	if msg := out.Message(); msg != nil {
		if err := conn.SendReliableMessage(msg); err != nil {
			return err
		}
	}
	for _, msg := range s.CorrectionMessages(false) {
		if err := conn.SendReliableMessage(msg); err != nil {
			return err
		}
	}

	s.obsMu.Lock()
	s.observers = append(s.observers, conn)
	s.obsMu.Unlock()
	sclog.Infof("session: observer %s attached", conn)
	return nil
}

// DetachObserver unsubscribes the connection; unknown connections are ignored
func (s *Session) DetachObserver(conn ClientConn) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, c := range s.observers {
		if c == conn {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			sclog.Infof("session: observer %s detached", conn)
			return
		}
	}
}

// ObserverCount returns the number of attached observers
func (s *Session) ObserverCount() int {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	return len(s.observers)
}

// broadcast sends one session-message envelope to every observer. A send
// failure (or panic) detaches that observer; the rest still receive the
// message.
func (s *Session) broadcast(msg []byte) {
	s.obsMu.Lock()
	conns := make([]ClientConn, len(s.observers))
	copy(conns, s.observers)
	s.obsMu.Unlock()

	var failed []ClientConn
	for _, conn := range conns {
		var err error
		if scutils.RunPanicless(func() { err = conn.SendReliableMessage(msg) }) {
			err = errors.New("send panicked")
		}
		if err != nil {
			sclog.Warnf("session: dropping observer %s: %v", conn, err)
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		s.DetachObserver(conn)
	}
}
