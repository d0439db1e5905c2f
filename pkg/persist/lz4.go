package persist

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Extension is appended to the inner codec's extension.
const lz4Extension = ".lz4"

// LZ4Codec wraps another codec with LZ4 frame compression. Checkpoint
// payloads carry long repetitive float slices that compress well.
type LZ4Codec struct {
	inner Codec
}

// NewLZ4Codec creates an LZ4 codec wrapping the given inner codec.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{inner: inner}
}

// Encode implements Codec.Encode by compressing the inner codec's output.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	encodeErr := c.inner.Encode(zw, state)
	if encodeErr != nil {
		zw.Close()

		return fmt.Errorf("lz4 encode: %w", encodeErr)
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 flush: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode by decompressing before the inner decode.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	err := c.inner.Decode(lz4.NewReader(r), state)
	if err != nil {
		return fmt.Errorf("lz4 decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension by stacking the lz4 suffix on the
// inner codec's extension (e.g. ".gob.lz4").
func (c *LZ4Codec) Extension() string {
	return c.inner.Extension() + lz4Extension
}
