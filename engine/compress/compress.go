package compress

import (
	"strings"

	"github.com/pkg/errors"
)

// Compressor compresses and decompresses whole replay records.
//
// Record payloads are self-contained: Decompress must recover the exact byte
// sequence passed to Compress with no out-of-band length information.
type Compressor interface {
	Compress(b []byte) ([]byte, error)
	Decompress(c []byte) ([]byte, error)
}

var (
	errNotFullyCompressed = errors.Errorf("not fully compressed")
)

// NewCompressor creates a Compressor of the specified format ("snappy" / "flate")
func NewCompressor(compressFormat string) (Compressor, error) {
	compressFormat = strings.ToLower(compressFormat)
	if compressFormat == "snappy" {
		return NewSnappyCompressor(), nil
	} else if compressFormat == "flate" {
		return NewFlateCompressor(), nil
	} else {
		return nil, errors.Errorf("unknown compress format: %s", compressFormat)
	}
}
