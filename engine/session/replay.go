package session

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/compress"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/sclog"
)

// Replay-file payload compression formats, stored in the file header
const (
	CompressFormatNone   byte = 0
	CompressFormatSnappy byte = 1
	CompressFormatFlate  byte = 2
)

func compressorForFormat(format byte) (compress.Compressor, error) {
	switch format {
	case CompressFormatNone:
		return nil, nil
	case CompressFormatSnappy:
		return compress.NewCompressor("snappy")
	case CompressFormatFlate:
		return compress.NewCompressor("flate")
	default:
		return nil, errors.Wrapf(ErrCorruptStream, "unknown compress format %d", format)
	}
}

const (
	// frame length fits in one byte below this marker
	frameLen16 = 254
	frameLen32 = 255
)

// ReplaySession plays a recorded session stream back from a file. It is its
// own delegate: fetching pulls frames off the file, underruns pause the clock
// until more frames decode, and hitting EOF is a normal end of stream.
type ReplaySession struct {
	*Session

	fileName      string
	file          *os.File
	reader        *bufio.Reader
	compressor    compress.Compressor
	speedExponent int
	loop          bool
}

// NewReplaySession opens fileName, validates its header and returns a session
// ready to Update. presenter may be nil.
func NewReplaySession(fileName string, presenter Presenter) (*ReplaySession, error) {
	rs := &ReplaySession{
		Session:  New(nil, presenter),
		fileName: fileName,
		loop:     true,
	}
	rs.SetDelegate(rs)
	if err := rs.openFile(); err != nil {
		return nil, err
	}
	return rs, nil
}

// SpeedExponent returns the playback speed as a power-of-two exponent
func (rs *ReplaySession) SpeedExponent() int {
	return rs.speedExponent
}

// SetSpeedExponent sets playback speed to 2^exp, clamped to [-5, 5]
func (rs *ReplaySession) SetSpeedExponent(exp int) {
	if exp < -5 {
		exp = -5
	} else if exp > 5 {
		exp = 5
	}
	rs.speedExponent = exp
	sclog.Infof("replay: playback speed set to x%g", speedFactor(exp))
}

func speedFactor(exp int) float64 {
	f := 1.0
	for i := 0; i < exp; i++ {
		f *= 2
	}
	for i := 0; i > exp; i-- {
		f /= 2
	}
	return f
}

func (rs *ReplaySession) openFile() error {
	f, err := os.Open(rs.fileName)
	if err != nil {
		return errors.Wrapf(err, "replay: open %s", rs.fileName)
	}
	rs.file = f
	rs.reader = bufio.NewReader(f)
	if err := rs.readHeader(); err != nil {
		rs.closeFile()
		return err
	}
	return nil
}

func (rs *ReplaySession) closeFile() {
	if rs.file != nil {
		rs.file.Close()
		rs.file = nil
		rs.reader = nil
	}
}

// readHeader validates the replay file preamble: magic, protocol version and
// payload compression format. A truncated header is corrupt, not EOF.
func (rs *ReplaySession) readHeader() error {
	var header [7]byte
	if _, err := io.ReadFull(rs.reader, header[:]); err != nil {
		return errors.Wrapf(ErrCorruptStream, "replay: short header: %v", err)
	}
	fileID := binary.LittleEndian.Uint32(header[0:4])
	if fileID != consts.REPLAY_FILE_ID {
		return errors.Wrapf(ErrBadFileID, "got 0x%08x", fileID)
	}
	version := binary.LittleEndian.Uint16(header[4:6])
	if version < consts.REPLAY_PROTOCOL_VERSION_MIN || version > consts.REPLAY_PROTOCOL_VERSION {
		return errors.Wrapf(ErrVersionMismatch, "file version %d, supported %d..%d",
			version, consts.REPLAY_PROTOCOL_VERSION_MIN, consts.REPLAY_PROTOCOL_VERSION)
	}
	compressor, err := compressorForFormat(header[6])
	if err != nil {
		return err
	}
	rs.compressor = compressor
	return nil
}

// readFrame reads one length-prefixed frame. io.EOF at a frame boundary means
// the file is complete; a length prefix with missing payload is corrupt.
func (rs *ReplaySession) readFrame() ([]byte, error) {
	lenByte, err := rs.reader.ReadByte()
	if err != nil {
		return nil, err // io.EOF at a boundary propagates as-is
	}
	var size int
	switch lenByte {
	case frameLen16:
		var buf [2]byte
		if _, err := io.ReadFull(rs.reader, buf[:]); err != nil {
			return nil, errors.Wrapf(ErrCorruptStream, "replay: short frame length: %v", err)
		}
		size = int(binary.LittleEndian.Uint16(buf[:]))
	case frameLen32:
		var buf [4]byte
		if _, err := io.ReadFull(rs.reader, buf[:]); err != nil {
			return nil, errors.Wrapf(ErrCorruptStream, "replay: short frame length: %v", err)
		}
		size = int(binary.LittleEndian.Uint32(buf[:]))
	default:
		size = int(lenByte)
	}
	if size == 0 {
		return nil, errors.Wrap(ErrCorruptStream, "replay: zero-length frame")
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(rs.reader, frame); err != nil {
		return nil, errors.Wrapf(ErrCorruptStream, "replay: short frame payload: %v", err)
	}
	return frame, nil
}

// readMessage reads one frame and undoes per-message compression. The first
// frame byte flags whether the remainder was compressed when written.
func (rs *ReplaySession) readMessage() ([]byte, error) {
	frame, err := rs.readFrame()
	if err != nil {
		return nil, err
	}
	compressed := frame[0] != 0
	payload := frame[1:]
	if !compressed {
		return payload, nil
	}
	if rs.compressor == nil {
		return nil, errors.Wrap(ErrCorruptStream, "replay: compressed frame in uncompressed file")
	}
	data, err := rs.compressor.Decompress(payload)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptStream, "replay: decompress: %v", err)
	}
	return data, nil
}

// FetchMessages reads frames off the file until the ready queue is populated
// or the file runs out. End of file is not an error: a synthetic end-of-stream
// command is queued so playback terminates through the normal path.
func (rs *ReplaySession) FetchMessages() {
	for rs.ReadyCount() == 0 && rs.file != nil {
		msg, err := rs.readMessage()
		if err != nil {
			if errors.Cause(err) == io.EOF {
				sclog.Debugf("replay: end of file reached")
				rs.addEndOfStreamCommand()
				rs.closeFile()
				return
			}
			rs.fail(err)
			return
		}
		if err := rs.HandleSessionMessage(msg); err != nil {
			rs.fail(err)
			return
		}
		// Observers watching this replay get the stream verbatim.
		rs.broadcast(msg)
	}
}

// OnCommandBufferUnderrun pauses the clock: a replay that decodes slower than
// it plays must not skip ahead when frames arrive late.
func (rs *ReplaySession) OnCommandBufferUnderrun() {
	rs.targetBaseTime = float64(rs.baseTime)
}

// OnBaseTimeStepAdded is a no-op for replays; pacing comes from the file
func (rs *ReplaySession) OnBaseTimeStepAdded(stepSize int32) {}

// ActualTimeAdvance scales the external advance by the playback speed
func (rs *ReplaySession) ActualTimeAdvance(advance int64) int64 {
	if rs.speedExponent >= 0 {
		return advance << uint(rs.speedExponent)
	}
	return advance >> uint(-rs.speedExponent)
}

// SetLoop controls whether playback restarts from the top after the stream
// ends. Looping is the default.
func (rs *ReplaySession) SetLoop(loop bool) {
	rs.loop = loop
}

// OnSessionReset reopens the file from the start when a rewind is requested;
// the header is validated again (the file may have been swapped underneath).
// With looping disabled, a rewind at end of stream ends the session instead.
func (rs *ReplaySession) OnSessionReset(rewind bool) {
	if !rewind {
		return
	}
	if !rs.loop {
		rs.End()
		return
	}
	rs.closeFile()
	if err := rs.openFile(); err != nil {
		rs.fail(err)
	}
}

// OnSessionError surfaces the failure to the user and releases the file
func (rs *ReplaySession) OnSessionError(err error) {
	if rs.presenter != nil {
		rs.presenter.ScreenMessageBottom("Error in replay file.", [3]float32{1, 0, 0})
	}
	rs.closeFile()
}
