package plugin

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"imagemin/pkg/imgutil"
)

type pngOptions struct {
	Level string `hcl:"level,optional"`
}

type pngTransform struct {
	encoder png.Encoder
}

func newPNG(decode DecodeFunc) (Transform, error) {
	opts := pngOptions{Level: "best"}
	if err := decode(&opts); err != nil {
		return nil, err
	}

	level, err := parsePNGLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	return &pngTransform{encoder: png.Encoder{CompressionLevel: level}}, nil
}

func parsePNGLevel(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(name) {
	case "best", "":
		return png.BestCompression, nil
	case "default":
		return png.DefaultCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "none":
		return png.NoCompression, nil
	default:
		return 0, fmt.Errorf("invalid level %q: want best, default, speed or none", name)
	}
}

func (t *pngTransform) Name() string { return "png" }

// Apply re-encodes the pixels with the configured deflate level. Ancillary
// chunks do not survive the round trip.
func (t *pngTransform) Apply(ctx context.Context, data []byte) ([]byte, error) {
	if imgutil.Detect(data) != imgutil.KindPNG {
		return data, nil
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	if err := t.encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return smaller(data, buf.Bytes()), nil
}
