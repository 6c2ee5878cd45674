package plugin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// pngChunkOverhead is the length, type and CRC around a chunk's payload.
const pngChunkOverhead = 12

type pngPolicy struct {
	preserveICC bool
	keepExif    bool
}

func (p pngPolicy) drop(chunkType string) bool {
	switch chunkType {
	case "tEXt", "zTXt", "iTXt", "tIME":
		return true
	case "eXIf":
		return !p.keepExif
	case "iCCP":
		return !p.preserveICC
	default:
		return false
	}
}

// stripPNG returns data without the chunks policy drops. Chunks are copied
// whole, CRC included; anything after IEND is discarded.
func stripPNG(data []byte, policy pngPolicy) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("invalid PNG signature")
	}

	out := make([]byte, 0, len(data))
	out = append(out, pngSignature...)

	offset := len(pngSignature)
	for offset < len(data) {
		rest := data[offset:]
		if len(rest) < pngChunkOverhead {
			return nil, fmt.Errorf("truncated chunk at offset %d", offset)
		}
		size := uint64(binary.BigEndian.Uint32(rest[:4])) + pngChunkOverhead
		if size > uint64(len(rest)) {
			return nil, fmt.Errorf("chunk %q at offset %d overruns the file", rest[4:8], offset)
		}

		chunkType := string(rest[4:8])
		if !policy.drop(chunkType) {
			out = append(out, rest[:size]...)
		}
		offset += int(size)

		if chunkType == "IEND" {
			break
		}
	}
	return out, nil
}
