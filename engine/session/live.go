package session

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/sclog"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
)

// LiveSession consumes session messages pushed from a network receiver. The
// receiver goroutine calls Deliver; the owning goroutine drains the inbox
// inside Update. Unlike a replay, a live feed cannot pause its source, so an
// underrun just waits for the network to catch up.
type LiveSession struct {
	*Session

	inbox *xnsyncutil.SyncQueue
}

// NewLiveSession creates a live session fed through Deliver. presenter may
// be nil.
func NewLiveSession(presenter Presenter) *LiveSession {
	ls := &LiveSession{
		Session: New(nil, presenter),
		inbox:   xnsyncutil.NewSyncQueue(),
	}
	ls.SetDelegate(ls)
	return ls
}

// Deliver queues one raw session-message envelope from any goroutine. The
// stream is ordered, so a message that cannot be queued cannot be skipped
// either; inbox overflow ends the session like any other continuity failure.
func (ls *LiveSession) Deliver(msg []byte) {
	if ls.Ended() {
		return
	}
	if ls.inbox.Len() >= consts.SESSION_MESSAGE_QUEUE_SIZE {
		ls.fail(errors.Errorf("live session: inbox overflow (%d messages queued)",
			consts.SESSION_MESSAGE_QUEUE_SIZE))
		return
	}
	ls.inbox.Push(msg)
}

// FetchMessages drains the inbox on the owning goroutine
func (ls *LiveSession) FetchMessages() {
	for ls.inbox.Len() > 0 {
		msg := ls.inbox.Pop().([]byte)
		if err := ls.HandleSessionMessage(msg); err != nil {
			ls.fail(err)
			return
		}
		ls.broadcast(msg)
	}
}

// OnCommandBufferUnderrun lets the clock keep its target; the session will
// burst-execute once buffers arrive. Frequent underruns indicate the feed is
// not keeping up.
func (ls *LiveSession) OnCommandBufferUnderrun() {
	sclog.Debugf("live session: command buffer underrun at base time %d", ls.BaseTime())
}

// OnBaseTimeStepAdded nudges the consume rate toward draining backlog: the
// more stepped time is buffered, the faster playback runs, trading latency
// for smoothness.
func (ls *LiveSession) OnBaseTimeStepAdded(stepSize int32) {
	buffered := ls.BaseTimeBuffered()
	switch {
	case buffered > 500:
		ls.SetConsumeRate(1.1)
	case buffered > 200:
		ls.SetConsumeRate(1.05)
	default:
		ls.SetConsumeRate(1.0)
	}
}

// ActualTimeAdvance passes wall time through unscaled
func (ls *LiveSession) ActualTimeAdvance(advance int64) int64 {
	return advance
}

// OnSessionReset ignores rewind; a live feed has no beginning to return to
func (ls *LiveSession) OnSessionReset(rewind bool) {}

// OnSessionError surfaces the failure to the user
func (ls *LiveSession) OnSessionError(err error) {
	if ls.presenter != nil {
		ls.presenter.ScreenMessageBottom("Connection stream error.", [3]float32{1, 0, 0})
	}
}
