package compress

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// NewSnappyCompressor creates a Compressor using the snappy block format
func NewSnappyCompressor() Compressor {
	return &snappyCompressor{}
}

type snappyCompressor struct{}

func (sc *snappyCompressor) Compress(b []byte) ([]byte, error) {
	return snappy.Encode(nil, b), nil
}

func (sc *snappyCompressor) Decompress(c []byte) ([]byte, error) {
	b, err := snappy.Decode(nil, c)
	if err != nil {
		return nil, errors.Wrap(err, "snappy decompress")
	}
	return b, nil
}
