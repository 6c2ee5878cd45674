package imgutil

import (
	"bytes"
	"errors"
	"strings"
)

// Kind identifies an image format by content.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindTIFF
	KindGIF
	KindWebP
	KindAVIF
	KindSVG
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindAVIF:
		return "avif"
	case KindSVG:
		return "svg"
	default:
		return "unknown"
	}
}

// Ext returns the canonical file extension for k, or "" for KindUnknown.
func (k Kind) Ext() string {
	switch k {
	case KindJPEG:
		return ".jpg"
	case KindUnknown:
		return ""
	default:
		return "." + k.String()
	}
}

// KindFromExt maps a file extension (with or without the dot) to a Kind.
func KindFromExt(ext string) Kind {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "jpe", "jfif":
		return KindJPEG
	case "png":
		return KindPNG
	case "tif", "tiff":
		return KindTIFF
	case "gif":
		return KindGIF
	case "webp":
		return KindWebP
	case "avif":
		return KindAVIF
	case "svg":
		return KindSVG
	default:
		return KindUnknown
	}
}

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	gif87Sig  = []byte("GIF87a")
	gif89Sig  = []byte("GIF89a")
	riffSig   = []byte("RIFF")
	webpTag   = []byte("WEBP")
	ftypTag   = []byte("ftyp")
)

// svgWindow bounds how far into a text payload the <svg root is searched for.
const svgWindow = 1024

// DetectHeader inspects the first bytes of a payload for binary signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 8 {
		return KindUnknown, errors.New("header too short")
	}

	if bytes.HasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if bytes.HasPrefix(header, pngSig) {
		return KindPNG, nil
	}
	if bytes.HasPrefix(header, tiffSigLE) || bytes.HasPrefix(header, tiffSigBE) {
		return KindTIFF, nil
	}
	if bytes.HasPrefix(header, gif87Sig) || bytes.HasPrefix(header, gif89Sig) {
		return KindGIF, nil
	}
	if len(header) >= 12 && bytes.HasPrefix(header, riffSig) && bytes.Equal(header[8:12], webpTag) {
		return KindWebP, nil
	}
	if len(header) >= 12 && bytes.Equal(header[4:8], ftypTag) {
		switch string(header[8:12]) {
		case "avif", "avis":
			return KindAVIF, nil
		}
	}

	return KindUnknown, nil
}

// Detect sniffs a whole in-memory payload. Short or unrecognised data is
// KindUnknown.
func Detect(data []byte) Kind {
	if kind, err := DetectHeader(data); err == nil && kind != KindUnknown {
		return kind
	}
	if isSVG(data) {
		return KindSVG
	}
	return KindUnknown
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > svgWindow {
		head = head[:svgWindow]
	}
	head = bytes.TrimLeft(head, "\xef\xbb\xbf \t\r\n")
	if !bytes.HasPrefix(head, []byte("<")) {
		return false
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}
