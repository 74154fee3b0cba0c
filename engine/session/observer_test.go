package session

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
)

// fakeConn collects sent messages; failing makes every send error
type fakeConn struct {
	name    string
	sent    [][]byte
	failing bool
}

func (c *fakeConn) SendReliableMessage(msg []byte) error {
	if c.failing {
		return errors.New("connection lost")
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) String() string { return c.name }

func TestAttachObserverSnapshot(t *testing.T) {
	src := buildPopulatedSession(t)
	n, _ := src.Registry().GetNode(1)
	n.AddRigidBody(0)

	conn := &fakeConn{name: "obs1"}
	assert.Equal(t, nil, src.AttachObserver(conn))
	assert.Equal(t, 1, src.ObserverCount())

	// snapshot first, then one non-blended correction per dynamic scene
	assert.Equal(t, 2, len(conn.sent))
	assert.Equal(t, byte(MsgSessionCommands), conn.sent[0][0])
	assert.Equal(t, byte(MsgSessionDynamicsCorrection), conn.sent[1][0])

	// the snapshot alone rebuilds the session state
	dst := New(nil, nil)
	assert.Equal(t, nil, dst.HandleSessionMessage(conn.sent[0]))
	assert.Equal(t, nil, dst.HandleSessionMessage(conn.sent[1]))
	feed(dst, cmdStep(10))
	dst.Update(10)
	assert.T(t, !dst.Ended(), "snapshot must rebuild cleanly")
	_, err := dst.Registry().GetNode(2)
	assert.Equal(t, nil, err)
}

func TestAttachObserverEmptySession(t *testing.T) {
	s := New(nil, nil)
	conn := &fakeConn{name: "obs"}
	assert.Equal(t, nil, s.AttachObserver(conn))
	assert.Equal(t, 0, len(conn.sent))
}

func TestDetachObserver(t *testing.T) {
	s := New(nil, nil)
	a := &fakeConn{name: "a"}
	b := &fakeConn{name: "b"}
	assert.Equal(t, nil, s.AttachObserver(a))
	assert.Equal(t, nil, s.AttachObserver(b))
	s.DetachObserver(a)
	assert.Equal(t, 1, s.ObserverCount())
	s.DetachObserver(a) // unknown detach is a no-op
	assert.Equal(t, 1, s.ObserverCount())
}

func TestBroadcastDropsFailedObservers(t *testing.T) {
	s := New(nil, nil)
	good := &fakeConn{name: "good"}
	bad := &fakeConn{name: "bad", failing: true}
	assert.Equal(t, nil, s.AttachObserver(good))
	assert.Equal(t, nil, s.AttachObserver(bad))

	s.broadcast([]byte{MsgSessionReset})
	assert.Equal(t, 1, len(good.sent))
	assert.Equal(t, 1, s.ObserverCount())

	// subsequent broadcasts no longer hit the dropped observer
	s.broadcast([]byte{MsgSessionReset})
	assert.Equal(t, 2, len(good.sent))
}

func TestResetBroadcastsToObservers(t *testing.T) {
	s := New(nil, nil)
	conn := &fakeConn{name: "obs"}
	assert.Equal(t, nil, s.AttachObserver(conn))
	s.Reset(false)
	assert.Equal(t, 1, len(conn.sent))
	assert.Equal(t, []byte{MsgSessionReset}, conn.sent[0])
}
