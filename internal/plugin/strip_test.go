package plugin

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestStripJPEGRemovesExif(t *testing.T) {
	input := buildJPEGWithExif(0)

	transform, err := NewRegistry().Build("strip", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := transform.Apply(context.Background(), input)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if bytes.Contains(out, jpegExifHeader) {
		t.Fatal("EXIF segment survived stripping")
	}
	if !bytes.Equal(out, []byte{0xff, 0xd8, 0xff, 0xd9}) {
		t.Fatalf("unexpected stripped bytes: % x", out)
	}
}

func TestStripJPEGKeepsRotatedExif(t *testing.T) {
	input := buildJPEGWithExif(6)
	if got := exifOrientation(input); got != 6 {
		t.Fatalf("fixture orientation = %d, want 6", got)
	}

	transform, _ := NewRegistry().Build("strip", nil)
	out, err := transform.Apply(context.Background(), input)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !bytes.Contains(out, jpegExifHeader) {
		t.Fatal("EXIF with orientation should be kept")
	}

	drop := func(target any) error {
		target.(*stripOptions).KeepOrientation = false
		return nil
	}
	transform, _ = NewRegistry().Build("strip", drop)
	out, err = transform.Apply(context.Background(), input)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if bytes.Contains(out, jpegExifHeader) {
		t.Fatal("EXIF should be dropped when orientation is not kept")
	}
}

func TestStripPNGRemovesMetadataChunks(t *testing.T) {
	input, err := buildPNGWithMetadata()
	if err != nil {
		t.Fatalf("build PNG: %v", err)
	}

	transform, _ := NewRegistry().Build("strip", nil)
	out, err := transform.Apply(context.Background(), input)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	for _, chunk := range []string{"tEXt", "tIME", "eXIf"} {
		if bytes.Contains(out, []byte(chunk)) {
			t.Fatalf("%s chunk survived stripping", chunk)
		}
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("stripped png does not decode: %v", err)
	}
}

func TestStripPNGPolicy(t *testing.T) {
	icc := buildPNGChunk("iCCP", []byte("sRGB\x00\x00profile"))
	rotated := buildPNGChunk("eXIf", buildExifTIFF(6))

	tests := []struct {
		name    string
		chunk   []byte
		opts    stripOptions
		keep    []string
		dropped []string
	}{
		{"icc dropped by default", icc, stripOptions{KeepOrientation: true}, nil, []string{"iCCP"}},
		{"icc preserved", icc, stripOptions{PreserveICC: true, KeepOrientation: true}, []string{"iCCP"}, nil},
		{"rotated exif kept", rotated, stripOptions{KeepOrientation: true}, []string{"eXIf"}, nil},
		{"rotated exif dropped", rotated, stripOptions{}, nil, []string{"eXIf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := buildPNGWithChunks(tt.chunk)
			if err != nil {
				t.Fatalf("build PNG: %v", err)
			}
			transform := &stripTransform{preserveICC: tt.opts.PreserveICC, keepOrientation: tt.opts.KeepOrientation}

			out, err := transform.Apply(context.Background(), input)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			for _, chunk := range tt.keep {
				if !bytes.Contains(out, []byte(chunk)) {
					t.Fatalf("%s chunk should survive", chunk)
				}
			}
			for _, chunk := range tt.dropped {
				if bytes.Contains(out, []byte(chunk)) {
					t.Fatalf("%s chunk should be dropped", chunk)
				}
			}
			if _, err := png.Decode(bytes.NewReader(out)); err != nil {
				t.Fatalf("stripped png does not decode: %v", err)
			}
		})
	}
}

func TestStripPNGRejectsTruncatedChunk(t *testing.T) {
	input, err := buildPNGWithChunks()
	if err != nil {
		t.Fatalf("build PNG: %v", err)
	}
	if _, err := stripPNG(input[:len(input)-6], pngPolicy{}); err == nil {
		t.Fatal("expected an error for a truncated chunk")
	}

	overrun := append([]byte{}, pngSignature...)
	overrun = append(overrun, 0x00, 0x00, 0x10, 0x00, 't', 'E', 'X', 't', 0, 0, 0, 0)
	if _, err := stripPNG(overrun, pngPolicy{}); err == nil {
		t.Fatal("expected an error for a chunk longer than the file")
	}
}

func buildJPEGWithExif(orientation uint16) []byte {
	exif := append([]byte("Exif\x00\x00"), buildExifTIFF(orientation)...)

	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8})
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(exif)+2))
	buf.Write(exif)
	buf.Write([]byte{0xff, 0xd9})
	return buf.Bytes()
}

// buildExifTIFF writes a little-endian IFD0 with Model and DateTime, plus
// Orientation when orientation is non-zero.
func buildExifTIFF(orientation uint16) []byte {
	entries := uint16(2)
	if orientation != 0 {
		entries = 3
	}
	dataStart := uint32(8 + 2 + 12*uint32(entries) + 4)

	le := binary.LittleEndian
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, le, uint32(8))
	_ = binary.Write(&tiff, le, entries)

	_ = binary.Write(&tiff, le, uint16(0x0110))
	_ = binary.Write(&tiff, le, uint16(2))
	_ = binary.Write(&tiff, le, uint32(8))
	_ = binary.Write(&tiff, le, dataStart)

	if orientation != 0 {
		_ = binary.Write(&tiff, le, uint16(0x0112))
		_ = binary.Write(&tiff, le, uint16(3))
		_ = binary.Write(&tiff, le, uint32(1))
		_ = binary.Write(&tiff, le, orientation)
		_ = binary.Write(&tiff, le, uint16(0))
	}

	_ = binary.Write(&tiff, le, uint16(0x0132))
	_ = binary.Write(&tiff, le, uint16(2))
	_ = binary.Write(&tiff, le, uint32(20))
	_ = binary.Write(&tiff, le, dataStart+8)

	_ = binary.Write(&tiff, le, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write([]byte("2024:01:02 03:04:05\x00"))
	return tiff.Bytes()
}

func buildPNGWithMetadata() ([]byte, error) {
	return buildPNGWithChunks(
		buildPNGChunk("tEXt", []byte("Model\x00TestCam")),
		buildPNGChunk("tIME", []byte{0x07, 0xE8, 0x01, 0x02, 0x03, 0x04, 0x05}),
		buildPNGChunk("eXIf", buildExifTIFF(0)),
	)
}

// buildPNGWithChunks encodes a 1x1 image and inserts chunks before IEND.
func buildPNGWithChunks(chunks ...[]byte) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	insertAt := len(data) - 12
	out := append([]byte{}, data[:insertAt]...)
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	out = append(out, data[insertAt:]...)
	return out, nil
}

func buildPNGChunk(chunkType string, data []byte) []byte {
	chunk := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(chunk[:4], uint32(len(data)))
	copy(chunk[4:], chunkType)
	chunk = append(chunk, data...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	return binary.BigEndian.AppendUint32(chunk, crc)
}
