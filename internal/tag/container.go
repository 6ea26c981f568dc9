package tag

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/oriumgames/nbt"
)

// Decode gunzips data and decodes the uncompressed big-endian tag tree inside.
// Every failure wraps ErrMalformed.
func Decode(data []byte) (Compound, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip decompress: %v", ErrMalformed, err)
	}
	defer gz.Close()

	var root map[string]any
	if err := nbt.NewDecoderWithEncoding(gz, nbt.BigEndian).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: decode nbt: %v", ErrMalformed, err)
	}
	return root, nil
}

// Encode serializes v as an uncompressed big-endian tag tree and gzips the result.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := nbt.NewEncoderWithEncoding(gz, nbt.BigEndian).Encode(v); err != nil {
		gz.Close()
		return nil, fmt.Errorf("encode nbt: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}
