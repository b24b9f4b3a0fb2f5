package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Recognized event file suffixes, matched case-sensitively.
const (
	extJSON = ".json"
	extGzip = ".json.gz"
	extZstd = ".json.zst"
)

// zstdDecoder is shared by all workers; DecodeAll is safe for concurrent use.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("filesystem: zstd decoder initialization failed: " + err.Error())
	}
}

func isEventFile(name string) bool {
	return strings.HasSuffix(name, extJSON) ||
		strings.HasSuffix(name, extGzip) ||
		strings.HasSuffix(name, extZstd)
}

// readEventFile returns the decompressed contents of path.
func readEventFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, extGzip):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case strings.HasSuffix(path, extZstd):
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	}
	return data, nil
}
