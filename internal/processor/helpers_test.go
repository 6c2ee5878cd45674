package processor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imagemin/internal/plugin"
)

type stubTransform struct {
	name string
	fn   func([]byte) ([]byte, error)
}

func (s stubTransform) Name() string { return s.name }

func (s stubTransform) Apply(_ context.Context, data []byte) ([]byte, error) {
	return s.fn(data)
}

var errCorrupt = errors.New("corrupt image data")

// failOn fails items whose payload equals bad and halves everything else.
func failOn(bad string) plugin.Chain {
	return plugin.Chain{stubTransform{name: "halve", fn: func(data []byte) ([]byte, error) {
		if string(data) == bad {
			return nil, errCorrupt
		}
		return data[:len(data)/2], nil
	}}}
}

func writeFixture(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

// uncompressedPNG returns a PNG stored without deflate compression, so any
// real optimizer shrinks it.
func uncompressedPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}
