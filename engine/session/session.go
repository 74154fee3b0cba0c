package session

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/sclog"
	"github.com/scenecast/scenecast/engine/wire"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
)

// Session-message envelope types (outer layer around command buffers)
const (
	// MsgSessionReset tells the session to clear all state
	MsgSessionReset byte = 0x00
	// MsgSessionCommands carries length-prefixed command buffers
	MsgSessionCommands byte = 0x01
	// MsgSessionDynamicsCorrection carries a raw correction blob
	MsgSessionDynamicsCorrection byte = 0x02
)

const (
	rsRunning = iota
	rsEnded
)

// Delegate customizes session behavior per source flavor (replay file vs
// live network feed).
type Delegate interface {
	// FetchMessages pulls more ready buffers from the source if the ready
	// queue is empty; no-op when already populated.
	FetchMessages()
	// OnCommandBufferUnderrun fires when the scheduler needs a buffer and
	// none is ready; the policy decides whether to pause or soldier on.
	OnCommandBufferUnderrun()
	// OnBaseTimeStepAdded fires when a time-step command is queued, for
	// consume-rate adjustments.
	OnBaseTimeStepAdded(stepSize int32)
	// ActualTimeAdvance maps an external time advance to virtual time
	// (replay speed scaling).
	ActualTimeAdvance(advance int64) int64
	// OnSessionReset fires after session state is cleared; rewind asks the
	// source to restart from the beginning.
	OnSessionReset(rewind bool)
	// OnSessionError fires on the fatal-failure path before the session ends.
	OnSessionError(err error)
}

// NopDelegate is a Delegate with no behavior, for embedding
type NopDelegate struct{}

func (NopDelegate) FetchMessages()                        {}
func (NopDelegate) OnCommandBufferUnderrun()              {}
func (NopDelegate) OnBaseTimeStepAdded(stepSize int32)    {}
func (NopDelegate) ActualTimeAdvance(advance int64) int64 { return advance }
func (NopDelegate) OnSessionReset(rewind bool)            {}
func (NopDelegate) OnSessionError(err error)              {}

// Session reconstructs and advances world state from a stream of mutation
// commands. A single logical goroutine owns the registry, queues and clock;
// only AddCommand / HandleSessionMessage may be fed from other goroutines.
type Session struct {
	registry        *Registry
	foregroundScene *scene.Scene

	// Virtual clock. baseTime is executed time; targetBaseTime accumulates
	// scaled time advances; baseTimeBuffered is queued-but-unexecuted
	// stepped time and must never go negative.
	baseTime         int64
	targetBaseTime   float64
	baseTimeBuffered int64
	consumeRate      float64

	mu      sync.Mutex // guards pending, ready, baseTimeBuffered
	pending [][]byte
	ready   [][]byte

	currentCmd *wire.Packet

	runState  xnsyncutil.AtomicInt
	delegate  Delegate
	presenter Presenter

	obsMu     sync.Mutex
	observers []ClientConn

	endCallback func()
}

// New creates a running session. delegate may be nil for a purely push-fed
// session; presenter may be nil to discard presentation side effects.
func New(delegate Delegate, presenter Presenter) *Session {
	s := &Session{
		registry:    NewRegistry(),
		consumeRate: 1.0,
		delegate:    delegate,
		presenter:   presenter,
	}
	s.runState.Store(rsRunning)
	return s
}

// SetDelegate installs the delegate; used by source flavors that embed Session
func (s *Session) SetDelegate(d Delegate) {
	s.delegate = d
}

// SetEndCallback installs a hook invoked once when the session ends
func (s *Session) SetEndCallback(f func()) {
	s.endCallback = f
}

// Registry returns the session's entity registry
func (s *Session) Registry() *Registry {
	return s.registry
}

// ForegroundScene returns the current foreground scene, or nil
func (s *Session) ForegroundScene() *scene.Scene {
	return s.foregroundScene
}

// BaseTime returns executed session time (milliseconds)
func (s *Session) BaseTime() int64 {
	return s.baseTime
}

// TargetBaseTime returns the accumulated playback target time
func (s *Session) TargetBaseTime() float64 {
	return s.targetBaseTime
}

// BaseTimeBuffered returns queued-but-unexecuted stepped time
func (s *Session) BaseTimeBuffered() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseTimeBuffered
}

// ConsumeRate returns the current playback speed factor
func (s *Session) ConsumeRate() float64 {
	return s.consumeRate
}

// SetConsumeRate sets the playback speed factor
func (s *Session) SetConsumeRate(rate float64) {
	s.consumeRate = rate
}

// Ended reports whether the session has terminated
func (s *Session) Ended() bool {
	return s.runState.Load() == rsEnded
}

func (s *Session) clearSessionObjs() {
	s.registry.Clear()
	s.foregroundScene = nil
	s.currentCmd = nil
	s.mu.Lock()
	s.pending = nil
	s.ready = nil
	s.baseTimeBuffered = 0
	s.mu.Unlock()
}

// Reset clears all session state and zeroes the virtual clock. Observers are
// told to reset too; rewind additionally asks the source to restart.
func (s *Session) Reset(rewind bool) {
	if s.Ended() {
		return
	}
	s.clearSessionObjs()
	s.targetBaseTime = 0
	s.baseTime = 0
	s.broadcast([]byte{MsgSessionReset})
	if s.delegate != nil {
		s.delegate.OnSessionReset(rewind)
	}
}

// End transitions the session to ended; all externally-driven entry points
// become no-ops afterwards.
func (s *Session) End() {
	if s.runState.Load() == rsEnded {
		return
	}
	s.runState.Store(rsEnded)
	if s.endCallback != nil {
		s.endCallback()
	}
}

// fail is the single session-failure path: log a diagnostic, let the source
// release itself, end the session. The stream is assumed ordered, so one
// corrupt record poisons all subsequent offsets; nothing is retried.
func (s *Session) fail(err error) {
	sclog.Errorf("client session error (%s): %+v", Classify(err), err)
	if s.delegate != nil {
		s.delegate.OnSessionError(err)
	}
	s.End()
}

// AddCommand queues a single command buffer. Commands accumulate as pending
// until a time-step command arrives; then the whole pending run (step
// included) moves to the ready queue, so the scheduler never executes a
// half-applied tick. Safe to call from outside the owning goroutine.
func (s *Session) AddCommand(command []byte) {
	if s.Ended() {
		return
	}
	var step int32
	s.mu.Lock()
	s.pending = append(s.pending, command)
	if len(command) >= 5 && Command(command[0]) == CmdBaseTimeStep {
		step = int32(binary.LittleEndian.Uint32(command[1:5]))
		s.baseTimeBuffered += int64(step)
		s.ready = append(s.ready, s.pending...)
		s.pending = nil
	}
	s.mu.Unlock()

	if consts.DEBUG_QUEUES {
		sclog.Debugf("AddCommand: %s, %d bytes", Command(command[0]), len(command))
	}
	if step != 0 && s.delegate != nil {
		s.delegate.OnBaseTimeStepAdded(step)
	}
}

// addEndOfStreamCommand queues the synthetic end-of-stream marker directly
// onto the ready queue; any partial pending step is abandoned (the reset the
// marker triggers clears everything anyway).
func (s *Session) addEndOfStreamCommand() {
	s.mu.Lock()
	s.ready = append(s.ready, []byte{byte(CmdEndOfStream)})
	s.mu.Unlock()
}

func (s *Session) popReady() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		return nil, false
	}
	buf := s.ready[0]
	s.ready = s.ready[1:]
	return buf, true
}

// ReadyCount returns the number of buffers waiting for the scheduler
func (s *Session) ReadyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready)
}

// HandleSessionMessage feeds one raw session-message envelope to the session
func (s *Session) HandleSessionMessage(buffer []byte) error {
	if s.Ended() {
		return nil
	}
	if len(buffer) == 0 {
		return errors.Wrap(ErrUnknownMessage, "empty session message")
	}

	switch buffer[0] {
	case MsgSessionReset:
		s.Reset(false)
		return nil

	case MsgSessionCommands:
		// 16 bit length followed by command, repeated to the end of the
		// envelope.
		offset := 1
		for offset < len(buffer) {
			if offset+2 > len(buffer) {
				return errors.Wrap(ErrCorruptStream, "invalid state message")
			}
			size := int(binary.LittleEndian.Uint16(buffer[offset:]))
			offset += 2
			if offset+size > len(buffer) {
				return errors.Wrap(ErrCorruptStream, "invalid state message")
			}
			sub := make([]byte, size)
			copy(sub, buffer[offset:offset+size])
			s.AddCommand(sub)
			offset += size
		}
		return nil

	case MsgSessionDynamicsCorrection:
		// Drop it into the command stream verbatim, just switching the
		// message type byte to the correction opcode.
		out := make([]byte, len(buffer))
		copy(out, buffer)
		out[0] = byte(CmdDynamicsCorrection)
		s.AddCommand(out)
		return nil

	default:
		return errors.Wrapf(ErrUnknownMessage, "type %d of size %d", buffer[0], len(buffer))
	}
}

// Update advances the session by timeAdvance virtual time units, draining
// ready command buffers until executed time catches up to the target. An
// underrun suspends the tick without error; a decode or dispatch failure
// ends the session.
func (s *Session) Update(timeAdvance int64) {
	if s.Ended() {
		return
	}

	if s.delegate != nil {
		timeAdvance = s.delegate.ActualTimeAdvance(timeAdvance)
	}
	s.targetBaseTime += float64(timeAdvance) * s.consumeRate

	for float64(s.baseTime) < s.targetBaseTime {
		if s.delegate != nil {
			s.delegate.FetchMessages()
		}
		if s.Ended() {
			// the fetch may have hit a fatal source error
			return
		}

		buf, ok := s.popReady()
		if !ok {
			if s.delegate != nil {
				s.delegate.OnCommandBufferUnderrun()
			}
			break
		}

		s.verifyCurrentCmdConsumed()
		s.currentCmd = wire.PacketFromData(buf)
		if err := s.execCommand(s.currentCmd); err != nil {
			s.fail(err)
			return
		}
	}
	// the last buffer of the tick has no successor to trigger its check
	s.verifyCurrentCmdConsumed()
}

// verifyCurrentCmdConsumed checks that the previous command buffer was
// consumed exactly; a mismatch indicates an encode/decode size inconsistency
// and is logged, then the cursor is forcibly resynced.
func (s *Session) verifyCurrentCmdConsumed() {
	if !consts.DEBUG_COMMANDS || s.currentCmd == nil {
		return
	}
	if s.currentCmd.Pos() != s.currentCmd.Len() {
		data := s.currentCmd.Data()
		sclog.Errorf("size error for cmd %s: expected %d, got %d",
			Command(data[0]), s.currentCmd.Len(), s.currentCmd.Pos())
		s.currentCmd.SeekTo(s.currentCmd.Len())
	}
}
