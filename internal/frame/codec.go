package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/bencode/internal/bencode"
	"github.com/danmuck/bencode/internal/observability"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// Codec moves bencoded values across a framed byte stream. One frame holds
// exactly one top-level value.
type Codec struct {
	dec      *bencode.Decoder
	limits   Limits
	compress bool

	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

// NewCodec builds a Codec. A nil dec uses bencode defaults. When compress is
// set, written payloads are zstd-compressed; compressed frames are always
// accepted on read.
func NewCodec(dec *bencode.Decoder, limits Limits, compress bool) (*Codec, error) {
	if dec == nil {
		dec = bencode.NewDecoder()
	}
	if limits.MaxDecodedBytes == 0 {
		limits.MaxDecodedBytes = DefaultLimits().MaxDecodedBytes
	}
	zdec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(limits.MaxDecodedBytes))
	if err != nil {
		return nil, fmt.Errorf("frame: zstd decoder: %w", err)
	}
	zenc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		zdec.Close()
		return nil, fmt.Errorf("frame: zstd encoder: %w", err)
	}
	return &Codec{dec: dec, limits: limits, compress: compress, zenc: zenc, zdec: zdec}, nil
}

// Close releases compressor resources.
func (c *Codec) Close() {
	c.zdec.Close()
	_ = c.zenc.Close()
}

// WriteMessage encodes v into one frame.
func (c *Codec) WriteMessage(w io.Writer, v bencode.Value) error {
	raw, err := bencode.Marshal(v)
	if err != nil {
		return err
	}
	f := Frame{Payload: raw}
	if c.compress {
		f.Payload = c.zenc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
		f.Header.Flags |= FlagCompressed
	}
	log.Debug().
		Int("raw_bytes", len(raw)).
		Int("payload_bytes", len(f.Payload)).
		Bool("compressed", c.compress).
		Msg("frame.WriteMessage")
	if err := WriteFrame(w, f, c.limits); err != nil {
		return err
	}
	observability.RecordFrame(observability.DirectionWrite, len(raw), c.compress)
	return nil
}

// ReadMessage reads one frame and decodes its value. Bytes left over after
// the value inside the frame are an error. Every rejected frame is logged and
// counted under its reason.
func (c *Codec) ReadMessage(r io.Reader) (bencode.Value, error) {
	f, err := ReadFrame(r, c.limits)
	if err != nil {
		return nil, c.reject(err, "read frame", 0)
	}
	payload, err := c.Payload(f)
	if err != nil {
		return nil, c.reject(err, "payload", len(f.Payload))
	}
	compressed := f.Header.Flags&FlagCompressed != 0
	v, err := c.dec.Unmarshal(payload)
	if err != nil {
		return nil, c.reject(fmt.Errorf("frame: decode payload: %w", err), "decode", len(payload))
	}
	observability.RecordFrame(observability.DirectionRead, len(payload), compressed)
	log.Debug().Str("kind", v.Kind().String()).Int("payload_bytes", len(payload)).Msg("frame.ReadMessage")
	return v, nil
}

func (c *Codec) reject(err error, stage string, size int) error {
	reason := Reason(err)
	observability.RecordDecodeError(reason)
	log.Error().
		Err(err).
		Str("stage", stage).
		Str("reason", reason).
		Int("payload_bytes", size).
		Msg("frame.ReadMessage rejected")
	return err
}

// Payload returns the bencoded bytes of f, decompressing when flagged.
// Output past Limits.MaxDecodedBytes fails with ErrPayloadTooLarge.
func (c *Codec) Payload(f Frame) ([]byte, error) {
	if f.Header.Flags&FlagCompressed == 0 {
		return f.Payload, nil
	}
	out, err := c.zdec.DecodeAll(f.Payload, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: decompressed size over %d bytes", ErrPayloadTooLarge, c.limits.MaxDecodedBytes)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if uint64(len(out)) > c.limits.MaxDecodedBytes {
		return nil, fmt.Errorf("%w: decompressed size %d over %d bytes", ErrPayloadTooLarge, len(out), c.limits.MaxDecodedBytes)
	}
	return out, nil
}

// Reason names the failure behind err for logs and metrics. Frame errors get
// their own names; anything else falls through to bencode.Reason.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrShortHeader):
		return "short_header"
	case errors.Is(err, ErrInvalidMagic):
		return "invalid_magic"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, ErrShortPayload):
		return "short_payload"
	case errors.Is(err, ErrDecompress):
		return "decompress"
	default:
		return bencode.Reason(err)
	}
}
