package session

import (
	"sync"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/scenecast/scenecast/engine/consts"
)

func TestLiveSessionDeliver(t *testing.T) {
	ls := NewLiveSession(nil)
	ls.Deliver(envelope(buildCmd(CmdAddScene, 0, 0), cmdStep(10)))

	ls.Update(10)
	assert.Equal(t, int64(10), ls.BaseTime())
	_, err := ls.Registry().GetScene(0)
	assert.Equal(t, nil, err)
}

func TestLiveSessionDeliverConcurrent(t *testing.T) {
	ls := NewLiveSession(nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				ls.Deliver(envelope(cmdStep(10)))
			}
		}()
	}
	wg.Wait()

	ls.Update(1000)
	assert.Equal(t, int64(1000), ls.BaseTime())
}

func TestLiveSessionUnderrunKeepsTarget(t *testing.T) {
	ls := NewLiveSession(nil)
	ls.Update(10)
	assert.Equal(t, int64(0), ls.BaseTime())
	assert.Equal(t, float64(10), ls.TargetBaseTime())

	// a late burst catches up to the target
	ls.Deliver(envelope(cmdStep(10)))
	ls.Update(0)
	assert.Equal(t, int64(10), ls.BaseTime())
}

func TestLiveSessionConsumeRateAdapts(t *testing.T) {
	ls := NewLiveSession(nil)
	for i := 0; i < 60; i++ {
		ls.Deliver(envelope(cmdStep(10)))
	}
	ls.FetchMessages()
	assert.T(t, ls.ConsumeRate() > 1.0, "large backlog speeds up playback")

	ls.Update(600)
	assert.Equal(t, int64(600), ls.BaseTime())

	// once the backlog drains, playback speed settles back to realtime
	ls.Deliver(envelope(cmdStep(10)))
	ls.FetchMessages()
	assert.Equal(t, 1.0, ls.ConsumeRate())
}

func TestLiveSessionInboxOverflowEndsSession(t *testing.T) {
	ls := NewLiveSession(nil)
	for i := 0; i < consts.SESSION_MESSAGE_QUEUE_SIZE; i++ {
		ls.Deliver(envelope(cmdStep(1)))
	}
	assert.T(t, !ls.Ended(), "session alive while the inbox has room")

	// an envelope the inbox cannot hold cannot be skipped either; the
	// stream is ordered, so continuing would diverge from the producer
	ls.Deliver(envelope(buildCmd(CmdAddScene, 0, 0), cmdStep(10)))
	assert.T(t, ls.Ended(), "inbox overflow is a stream-continuity failure")

	ls.Update(10)
	assert.Equal(t, int64(0), ls.BaseTime())
	_, err := ls.Registry().GetScene(0)
	assert.T(t, err != nil, "nothing past the overflow point executes")
}

func TestLiveSessionBadMessageEndsSession(t *testing.T) {
	ls := NewLiveSession(nil)
	ls.Deliver([]byte{0x7f})
	ls.Update(10)
	assert.T(t, ls.Ended(), "unknown envelope type is fatal")
}
