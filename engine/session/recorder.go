package session

import (
	"bufio"
	"encoding/binary"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/compress"
	"github.com/scenecast/scenecast/engine/consts"
)

// Recorder persists a session-message stream to a replay file. It implements
// ClientConn, so attaching one to a session as an observer records everything
// the session sees, full-state snapshot included.
type Recorder struct {
	mu         sync.Mutex
	file       *os.File
	writer     *bufio.Writer
	compressor compress.Compressor
	format     byte
	fileName   string
}

// NewRecorder creates fileName and writes the replay header. format selects
// per-message payload compression.
func NewRecorder(fileName string, format byte) (*Recorder, error) {
	compressor, err := compressorForFormat(format)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "recorder: create %s", fileName)
	}
	r := &Recorder{
		file:       f,
		writer:     bufio.NewWriter(f),
		compressor: compressor,
		format:     format,
		fileName:   fileName,
	}
	if err := r.writeHeader(); err != nil {
		f.Close()
		os.Remove(fileName)
		return nil, err
	}
	return r, nil
}

func (r *Recorder) writeHeader() error {
	var header [7]byte
	binary.LittleEndian.PutUint32(header[0:4], consts.REPLAY_FILE_ID)
	binary.LittleEndian.PutUint16(header[4:6], consts.REPLAY_PROTOCOL_VERSION)
	header[6] = r.format
	_, err := r.writer.Write(header[:])
	return errors.Wrap(err, "recorder: write header")
}

func (r *Recorder) writeFrameLen(size int) error {
	switch {
	case size < frameLen16:
		return r.writer.WriteByte(byte(size))
	case size <= 0xffff:
		var buf [3]byte
		buf[0] = frameLen16
		binary.LittleEndian.PutUint16(buf[1:], uint16(size))
		_, err := r.writer.Write(buf[:])
		return err
	default:
		var buf [5]byte
		buf[0] = frameLen32
		binary.LittleEndian.PutUint32(buf[1:], uint32(size))
		_, err := r.writer.Write(buf[:])
		return err
	}
}

// Record frames one session-message envelope into the file. Small messages
// are stored raw; larger ones are compressed when that actually shrinks them.
func (r *Recorder) Record(msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return errors.New("recorder: closed")
	}

	data := msg
	var flag byte
	if r.compressor != nil && len(msg) >= consts.MIN_DATA_SIZE_TO_COMPRESS {
		compressed, err := r.compressor.Compress(msg)
		if err != nil {
			return errors.Wrap(err, "recorder: compress")
		}
		if len(compressed) < len(msg) {
			data = compressed
			flag = 1
		}
	}

	if err := r.writeFrameLen(len(data) + 1); err != nil {
		return errors.Wrap(err, "recorder: write frame length")
	}
	if err := r.writer.WriteByte(flag); err != nil {
		return errors.Wrap(err, "recorder: write frame flag")
	}
	if _, err := r.writer.Write(data); err != nil {
		return errors.Wrap(err, "recorder: write frame payload")
	}
	return nil
}

// SendReliableMessage implements ClientConn by recording the message
func (r *Recorder) SendReliableMessage(msg []byte) error {
	return r.Record(msg)
}

// String implements ClientConn
func (r *Recorder) String() string {
	return "recorder:" + r.fileName
}

// Close flushes and closes the file; further Record calls fail
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	flushErr := r.writer.Flush()
	closeErr := r.file.Close()
	r.file = nil
	r.writer = nil
	if flushErr != nil {
		return errors.Wrap(flushErr, "recorder: flush")
	}
	return errors.Wrap(closeErr, "recorder: close")
}
