package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Zstd wraps another codec and compresses its output with zstd.
type Zstd struct {
	Inner Codec
}

// Marshal encodes v with the inner codec and compresses the result.
func (z Zstd) Marshal(v any) ([]byte, error) {
	raw, err := z.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Unmarshal decompresses data and decodes it with the inner codec.
func (z Zstd) Unmarshal(data []byte, v any) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	return z.inner().Unmarshal(raw, v)
}

// Name returns "<inner>+zstd".
func (z Zstd) Name() string { return z.inner().Name() + "+zstd" }

func (z Zstd) inner() Codec {
	if z.Inner == nil {
		return Default
	}
	return z.Inner
}

// LZ4 wraps another codec and compresses its output with the lz4 frame format.
type LZ4 struct {
	Inner Codec
}

// Marshal encodes v with the inner codec and compresses the result.
func (l LZ4) Marshal(v any) ([]byte, error) {
	raw, err := l.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses data and decodes it with the inner codec.
func (l LZ4) Unmarshal(data []byte, v any) error {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("lz4: %w", err)
	}
	return l.inner().Unmarshal(raw, v)
}

// Name returns "<inner>+lz4".
func (l LZ4) Name() string { return l.inner().Name() + "+lz4" }

func (l LZ4) inner() Codec {
	if l.Inner == nil {
		return Default
	}
	return l.Inner
}
