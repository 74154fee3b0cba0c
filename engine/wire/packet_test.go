package wire

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestPacketRoundTrip(t *testing.T) {
	p := NewPacket()
	p.AppendByte(0x2a)
	p.AppendBool(true)
	p.AppendInt32(-77)
	p.AppendUint16(65000)
	p.AppendFloat32(1.5)
	p.AppendInt32s([]int32{1, -2, 3})
	p.AppendFloat32s([]float32{0.25, -8})
	p.AppendVarStr("hello session")

	r := PacketFromData(p.Data())
	b, err := r.ReadByte()
	assert.Equal(t, nil, err)
	assert.Equal(t, byte(0x2a), b)
	bl, _ := r.ReadBool()
	assert.Equal(t, true, bl)
	i, _ := r.ReadInt32()
	assert.Equal(t, int32(-77), i)
	u, _ := r.ReadUint16()
	assert.Equal(t, uint16(65000), u)
	f, _ := r.ReadFloat32()
	assert.Equal(t, float32(1.5), f)
	is, _ := r.ReadInt32s(3)
	assert.Equal(t, []int32{1, -2, 3}, is)
	fs, _ := r.ReadFloat32s(2)
	assert.Equal(t, []float32{0.25, -8}, fs)
	s, _ := r.ReadVarStr()
	assert.Equal(t, "hello session", s)
	assert.Equal(t, 0, r.Remaining())
}

// Every read past any boundary must fail with ErrOutOfData, never succeed
// with wrong values.
func TestPacketTruncation(t *testing.T) {
	p := NewPacket()
	p.AppendInt32(1234)
	p.AppendVarStr("abc")
	full := p.Data()

	for cut := 1; cut <= len(full); cut++ {
		r := PacketFromData(full[:len(full)-cut])
		_, err1 := r.ReadInt32()
		if err1 != nil {
			assert.Equal(t, ErrOutOfData, err1)
			continue
		}
		_, err2 := r.ReadVarStr()
		assert.NotEqual(t, nil, err2)
	}
}

func TestPacketNegativeStringLength(t *testing.T) {
	p := NewPacket()
	p.AppendInt32(-1)
	r := PacketFromData(p.Data())
	_, err := r.ReadVarStr()
	assert.Equal(t, ErrInvalidLength, err)
}

func TestPacketCursor(t *testing.T) {
	r := PacketFromData([]byte{1, 2, 3, 4, 5})
	_, _ = r.ReadByte()
	assert.Equal(t, 1, r.Pos())
	assert.Equal(t, 4, r.Remaining())
	r.SeekTo(5)
	assert.Equal(t, 0, r.Remaining())
	_, err := r.ReadByte()
	assert.Equal(t, ErrOutOfData, err)
}
