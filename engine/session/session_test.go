package session

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/wire"
)

// recordingDelegate captures delegate callbacks for assertions
type recordingDelegate struct {
	NopDelegate
	underruns  int
	stepsAdded []int32
	resets     []bool
	errs       []error
}

func (d *recordingDelegate) OnCommandBufferUnderrun()           { d.underruns++ }
func (d *recordingDelegate) OnBaseTimeStepAdded(stepSize int32) { d.stepsAdded = append(d.stepsAdded, stepSize) }
func (d *recordingDelegate) OnSessionReset(rewind bool)         { d.resets = append(d.resets, rewind) }
func (d *recordingDelegate) OnSessionError(err error)           { d.errs = append(d.errs, err) }

func buildCmd(cmd Command, fields ...interface{}) []byte {
	p := wire.NewPacket()
	p.AppendByte(byte(cmd))
	for _, f := range fields {
		switch v := f.(type) {
		case int:
			p.AppendInt32(int32(v))
		case int32:
			p.AppendInt32(v)
		case float32:
			p.AppendFloat32(v)
		case string:
			p.AppendVarStr(v)
		case []byte:
			p.AppendBytes(v)
		default:
			panic("unsupported field type")
		}
	}
	return p.Data()
}

func cmdStep(ms int32) []byte {
	return buildCmd(CmdBaseTimeStep, ms)
}

func feed(s *Session, cmds ...[]byte) {
	for _, c := range cmds {
		s.AddCommand(c)
	}
}

var testNodeType = scene.RegisterNodeType("session_test_node")

func TestAddCommandQueueing(t *testing.T) {
	s := New(nil, nil)
	feed(s, buildCmd(CmdAddScene, 0, 0))
	assert.Equal(t, 0, s.ReadyCount())

	// a time-step command flushes the whole pending run, step included
	feed(s, cmdStep(10))
	assert.Equal(t, 2, s.ReadyCount())
	assert.Equal(t, int64(10), s.BaseTimeBuffered())
}

func TestAddCommandStepTallyFullWidth(t *testing.T) {
	s := New(nil, nil)
	feed(s, cmdStep(300)) // does not fit in one byte
	assert.Equal(t, int64(300), s.BaseTimeBuffered())
}

func TestOnBaseTimeStepAdded(t *testing.T) {
	d := &recordingDelegate{}
	s := New(d, nil)
	feed(s, cmdStep(10), cmdStep(20))
	assert.Equal(t, []int32{10, 20}, d.stepsAdded)
	assert.Equal(t, int64(30), s.BaseTimeBuffered())
}

func TestUpdatePacing(t *testing.T) {
	s := New(nil, nil)
	feed(s, buildCmd(CmdAddScene, 0, 0), cmdStep(10), cmdStep(10), cmdStep(10))

	s.Update(10)
	assert.Equal(t, int64(10), s.BaseTime())
	s.Update(20)
	assert.Equal(t, int64(30), s.BaseTime())
	assert.Equal(t, int64(0), s.BaseTimeBuffered())
	assert.T(t, !s.Ended(), "session should still run")
}

func TestUpdateConsumeRate(t *testing.T) {
	s := New(nil, nil)
	feed(s, cmdStep(10), cmdStep(10), cmdStep(10), cmdStep(10))
	s.SetConsumeRate(2.0)
	s.Update(10)
	assert.Equal(t, int64(20), s.BaseTime())
}

func TestUpdateUnderrun(t *testing.T) {
	d := &recordingDelegate{}
	s := New(d, nil)
	s.Update(10)
	assert.Equal(t, 1, d.underruns)
	assert.Equal(t, int64(0), s.BaseTime())

	// buffers arriving later are burst-executed up to the target
	feed(s, cmdStep(10))
	s.Update(0)
	assert.Equal(t, int64(10), s.BaseTime())
}

func TestUpdateVerifiesLastCommandCursor(t *testing.T) {
	s := New(nil, nil)
	feed(s, append(cmdStep(10), 0xee)) // trailing byte the decoder never reads
	s.Update(10)

	assert.Equal(t, int64(10), s.BaseTime())
	assert.T(t, !s.Ended(), "cursor drift is logged, not fatal")
	// the drift is caught at tick end even when no later buffer follows to
	// trigger the check, and the cursor is resynced
	assert.Equal(t, s.currentCmd.Len(), s.currentCmd.Pos())
}

func TestStepSizeValidation(t *testing.T) {
	for _, step := range []int32{0, -5, 10001} {
		s := New(nil, nil)
		err := s.execCommand(wire.PacketFromData(cmdStep(step)))
		assert.Equal(t, ErrCorruptStream, errors.Cause(err))
	}
}

func TestStepBufferedTimeUnderflow(t *testing.T) {
	// a step executed without being tallied into buffered time first
	// indicates a producer/consumer disagreement about the stream
	s := New(nil, nil)
	err := s.execCommand(wire.PacketFromData(cmdStep(50)))
	assert.Equal(t, ErrCorruptStream, errors.Cause(err))
}

func TestUpdateFailsSessionOnBadCommand(t *testing.T) {
	d := &recordingDelegate{}
	s := New(d, nil)
	feed(s, []byte{0xff}, cmdStep(10))
	s.Update(10)
	assert.T(t, s.Ended(), "bad opcode must end the session")
	assert.Equal(t, 1, len(d.errs))
	assert.Equal(t, FailureProtocol, Classify(d.errs[0]))
}

func TestHandleSessionMessageCommands(t *testing.T) {
	s := New(nil, nil)
	addScene := buildCmd(CmdAddScene, 0, 0)
	step := cmdStep(10)

	env := wire.NewPacket()
	env.AppendByte(MsgSessionCommands)
	env.AppendUint16(uint16(len(addScene)))
	env.AppendBytes(addScene)
	env.AppendUint16(uint16(len(step)))
	env.AppendBytes(step)

	assert.Equal(t, nil, s.HandleSessionMessage(env.Data()))
	assert.Equal(t, 2, s.ReadyCount())

	s.Update(10)
	assert.Equal(t, int64(10), s.BaseTime())
	_, err := s.Registry().GetScene(0)
	assert.Equal(t, nil, err)
}

func TestHandleSessionMessageTruncated(t *testing.T) {
	s := New(nil, nil)

	// length prefix cut short
	err := s.HandleSessionMessage([]byte{MsgSessionCommands, 0x05})
	assert.Equal(t, ErrCorruptStream, errors.Cause(err))

	// declared length exceeds remaining bytes
	err = s.HandleSessionMessage([]byte{MsgSessionCommands, 0x05, 0x00, 0x01})
	assert.Equal(t, ErrCorruptStream, errors.Cause(err))
}

func TestHandleSessionMessageUnknownType(t *testing.T) {
	s := New(nil, nil)
	err := s.HandleSessionMessage([]byte{0x7f, 1, 2, 3})
	assert.Equal(t, ErrUnknownMessage, errors.Cause(err))
	err = s.HandleSessionMessage(nil)
	assert.Equal(t, ErrUnknownMessage, errors.Cause(err))
}

func TestHandleSessionMessageReset(t *testing.T) {
	d := &recordingDelegate{}
	s := New(d, nil)
	feed(s, buildCmd(CmdAddScene, 0, 0), cmdStep(10))
	s.Update(10)
	assert.Equal(t, int64(10), s.BaseTime())

	assert.Equal(t, nil, s.HandleSessionMessage([]byte{MsgSessionReset}))
	assert.Equal(t, []bool{false}, d.resets)
	assert.Equal(t, int64(0), s.BaseTime())
	assert.Equal(t, float64(0), s.TargetBaseTime())
	_, err := s.Registry().GetScene(0)
	assert.T(t, err != nil, "registry must be cleared by reset")
}

func TestHandleSessionMessageDynamicsCorrection(t *testing.T) {
	s := New(nil, nil)
	// empty correction: blend off, zero nodes
	msg := []byte{MsgSessionDynamicsCorrection, 0, 0, 0}
	assert.Equal(t, nil, s.HandleSessionMessage(msg))

	// the correction rides the command queue: pending until a step flushes it
	assert.Equal(t, 0, s.ReadyCount())
	feed(s, cmdStep(10))
	assert.Equal(t, 2, s.ReadyCount())
	s.Update(10)
	assert.T(t, !s.Ended(), "empty correction should apply cleanly")
	// the original envelope must not be modified in place
	assert.Equal(t, byte(MsgSessionDynamicsCorrection), msg[0])
}

func TestEndOfStreamCommand(t *testing.T) {
	d := &recordingDelegate{}
	s := New(d, nil)
	feed(s, buildCmd(CmdAddScene, 1, 0), cmdStep(10))
	s.addEndOfStreamCommand()
	s.Update(10)
	assert.Equal(t, int64(10), s.BaseTime())
	s.Update(10)

	// end of stream resets with rewind; the source decides what comes next
	assert.Equal(t, []bool{true}, d.resets)
	assert.Equal(t, int64(0), s.BaseTime())
	assert.T(t, !s.Ended(), "end of stream alone does not end the session")
}

func TestEndIdempotent(t *testing.T) {
	ends := 0
	s := New(nil, nil)
	s.SetEndCallback(func() { ends++ })
	s.End()
	s.End()
	assert.Equal(t, 1, ends)
	assert.T(t, s.Ended(), "session should be ended")

	// entry points are no-ops after end
	feed(s, cmdStep(10))
	assert.Equal(t, 0, s.ReadyCount())
	assert.Equal(t, nil, s.HandleSessionMessage([]byte{0x7f}))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, FailureDecode, Classify(wire.ErrOutOfData))
	assert.Equal(t, FailureDecode, Classify(errors.Wrap(ErrCorruptStream, "ctx")))
	assert.Equal(t, FailureProtocol, Classify(ErrUnknownCommand))
	assert.Equal(t, FailureReference, Classify(errors.Wrap(ErrEmptySlot, "ctx")))
	assert.Equal(t, FailureInternal, Classify(errors.New("other")))
}
