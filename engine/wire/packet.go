package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/consts"
)

var packetEndian = binary.LittleEndian

var (
	// ErrOutOfData is returned when a read would pass the end of the packet
	ErrOutOfData = errors.New("state read error: out of data")
	// ErrInvalidLength is returned for negative or absurd declared lengths
	ErrInvalidLength = errors.New("state read error: invalid length")
)

// Packet is a single command buffer: an immutable byte sequence plus a read
// cursor. Reads advance the cursor monotonically and never pass the end.
type Packet struct {
	bytes      []byte
	readCursor int
}

// NewPacket creates an empty packet for writing
func NewPacket() *Packet {
	return &Packet{}
}

// PacketFromData wraps existing bytes for reading; the bytes are not copied
// and must not be mutated while the packet is in use.
func PacketFromData(data []byte) *Packet {
	return &Packet{bytes: data}
}

// Data returns the whole underlying byte sequence
func (p *Packet) Data() []byte {
	return p.bytes
}

// Len returns the total packet length
func (p *Packet) Len() int {
	return len(p.bytes)
}

// Pos returns the current read cursor position
func (p *Packet) Pos() int {
	return p.readCursor
}

// Remaining returns the number of unread bytes
func (p *Packet) Remaining() int {
	return len(p.bytes) - p.readCursor
}

// SeekTo forcibly moves the read cursor to an absolute position
func (p *Packet) SeekTo(pos int) {
	p.readCursor = pos
}

func (p *Packet) checkRead(size int) error {
	if size < 0 || p.readCursor+size > len(p.bytes) {
		return ErrOutOfData
	}
	return nil
}

// ReadByte reads one byte from the read cursor
func (p *Packet) ReadByte() (byte, error) {
	if err := p.checkRead(1); err != nil {
		return 0, err
	}
	v := p.bytes[p.readCursor]
	p.readCursor++
	return v, nil
}

// ReadBool reads one byte as a bool (non-zero = true)
func (p *Packet) ReadBool() (bool, error) {
	v, err := p.ReadByte()
	return v != 0, err
}

// ReadUint16 reads one uint16
func (p *Packet) ReadUint16() (uint16, error) {
	if err := p.checkRead(2); err != nil {
		return 0, err
	}
	v := packetEndian.Uint16(p.bytes[p.readCursor:])
	p.readCursor += 2
	return v, nil
}

// ReadInt32 reads one int32
func (p *Packet) ReadInt32() (int32, error) {
	if err := p.checkRead(4); err != nil {
		return 0, err
	}
	v := int32(packetEndian.Uint32(p.bytes[p.readCursor:]))
	p.readCursor += 4
	return v, nil
}

// ReadUint32 reads one uint32
func (p *Packet) ReadUint32() (uint32, error) {
	if err := p.checkRead(4); err != nil {
		return 0, err
	}
	v := packetEndian.Uint32(p.bytes[p.readCursor:])
	p.readCursor += 4
	return v, nil
}

// ReadFloat32 reads one float32
func (p *Packet) ReadFloat32() (float32, error) {
	v, err := p.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadInt32s reads count int32 values
func (p *Packet) ReadInt32s(count int) ([]int32, error) {
	if err := p.checkRead(4 * count); err != nil {
		return nil, err
	}
	vals := make([]int32, count)
	for i := range vals {
		vals[i] = int32(packetEndian.Uint32(p.bytes[p.readCursor+4*i:]))
	}
	p.readCursor += 4 * count
	return vals, nil
}

// ReadFloat32s reads count float32 values
func (p *Packet) ReadFloat32s(count int) ([]float32, error) {
	if err := p.checkRead(4 * count); err != nil {
		return nil, err
	}
	vals := make([]float32, count)
	for i := range vals {
		vals[i] = math.Float32frombits(packetEndian.Uint32(p.bytes[p.readCursor+4*i:]))
	}
	p.readCursor += 4 * count
	return vals, nil
}

// ReadBytes reads size bytes; the returned slice is a copy
func (p *Packet) ReadBytes(size int) ([]byte, error) {
	if err := p.checkRead(size); err != nil {
		return nil, err
	}
	b := make([]byte, size)
	copy(b, p.bytes[p.readCursor:])
	p.readCursor += size
	return b, nil
}

// ReadVarStr reads an int32 length followed by that many bytes as text
func (p *Packet) ReadVarStr() (string, error) {
	size, err := p.ReadInt32()
	if err != nil {
		return "", err
	}
	if size < 0 || size > int32(consts.MAX_NODE_MESSAGE_SIZE) {
		return "", ErrInvalidLength
	}
	b, err := p.ReadBytes(int(size))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendByte appends one byte to the end of the packet
func (p *Packet) AppendByte(b byte) {
	p.bytes = append(p.bytes, b)
}

// AppendBool appends one byte 1/0 to the end of the packet
func (p *Packet) AppendBool(b bool) {
	if b {
		p.AppendByte(1)
	} else {
		p.AppendByte(0)
	}
}

// AppendUint16 appends one uint16 to the end of the packet
func (p *Packet) AppendUint16(v uint16) {
	p.bytes = packetEndian.AppendUint16(p.bytes, v)
}

// AppendInt32 appends one int32 to the end of the packet
func (p *Packet) AppendInt32(v int32) {
	p.bytes = packetEndian.AppendUint32(p.bytes, uint32(v))
}

// AppendUint32 appends one uint32 to the end of the packet
func (p *Packet) AppendUint32(v uint32) {
	p.bytes = packetEndian.AppendUint32(p.bytes, v)
}

// AppendFloat32 appends one float32 to the end of the packet
func (p *Packet) AppendFloat32(f float32) {
	p.AppendUint32(math.Float32bits(f))
}

// AppendInt32s appends a sequence of int32 values
func (p *Packet) AppendInt32s(vals []int32) {
	for _, v := range vals {
		p.AppendInt32(v)
	}
}

// AppendFloat32s appends a sequence of float32 values
func (p *Packet) AppendFloat32s(vals []float32) {
	for _, v := range vals {
		p.AppendFloat32(v)
	}
}

// AppendBytes appends raw bytes to the end of the packet
func (p *Packet) AppendBytes(v []byte) {
	p.bytes = append(p.bytes, v...)
}

// AppendVarStr appends an int32 length followed by the string bytes
func (p *Packet) AppendVarStr(s string) {
	p.AppendInt32(int32(len(s)))
	p.bytes = append(p.bytes, s...)
}
