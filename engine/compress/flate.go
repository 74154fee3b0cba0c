package compress

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/pkg/errors"
)

// NewFlateCompressor creates a Compressor using DEFLATE at BestSpeed
func NewFlateCompressor() Compressor {
	fc := &flateCompressor{
		reader: flate.NewReader(bytes.NewReader(nil)),
	}
	var err error
	fc.writer, err = flate.NewWriter(io.Discard, flate.BestSpeed)
	if err != nil {
		panic(err)
	}
	return fc
}

type flateCompressor struct {
	writer *flate.Writer
	reader io.ReadCloser
}

func (fc *flateCompressor) Compress(b []byte) ([]byte, error) {
	wb := bytes.Buffer{}
	fc.writer.Reset(&wb)
	n, err := fc.writer.Write(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, errNotFullyCompressed
	}

	if err = fc.writer.Close(); err != nil {
		return nil, err
	}
	return wb.Bytes(), nil
}

func (fc *flateCompressor) Decompress(c []byte) ([]byte, error) {
	if err := fc.reader.(flate.Resetter).Reset(bytes.NewReader(c), nil); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(fc.reader)
	if err != nil {
		return nil, errors.Wrap(err, "flate decompress")
	}
	return b, nil
}
