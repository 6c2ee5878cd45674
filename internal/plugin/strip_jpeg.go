package plugin

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	jpegExifHeader = []byte("Exif\x00\x00")
	jpegXmpHeader  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	jpegPhotoshop  = []byte("Photoshop 3.0\x00")
	jpegICCHeader  = []byte("ICC_PROFILE\x00")
)

const (
	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOS  = 0xda
	markerAPP1 = 0xe1
	markerAPP2 = 0xe2
	markerAPPD = 0xed
	markerCOM  = 0xfe
)

type jpegPolicy struct {
	preserveICC bool
	keepExif    bool
}

// stripJPEG copies the segment stream from r to w, dropping metadata
// segments. Everything from SOS on is copied verbatim.
func stripJPEG(r io.Reader, w io.Writer, policy jpegPolicy) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return err
	}
	if soi[0] != 0xff || soi[1] != markerSOI {
		return errors.New("invalid JPEG SOI")
	}
	if _, err := bw.Write(soi); err != nil {
		return err
	}

	for {
		prefix, err := br.ReadByte()
		if err != nil {
			return err
		}
		for prefix != 0xff {
			if prefix, err = br.ReadByte(); err != nil {
				return err
			}
		}

		marker, err := br.ReadByte()
		if err != nil {
			return err
		}
		for marker == 0xff {
			if marker, err = br.ReadByte(); err != nil {
				return err
			}
		}

		switch {
		case marker == markerEOI:
			if _, err := bw.Write([]byte{0xff, markerEOI}); err != nil {
				return err
			}
			return bw.Flush()
		case marker == markerSOS:
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			if _, err := io.Copy(bw, br); err != nil {
				return err
			}
			return bw.Flush()
		case marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7):
			// standalone markers carry no length
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return errors.New("invalid JPEG segment length")
		}
		payload := make([]byte, segLen-2)
		if _, err := io.ReadFull(br, payload); err != nil {
			return err
		}

		if dropJPEGSegment(marker, payload, policy) {
			continue
		}

		if _, err := bw.Write([]byte{0xff, marker}); err != nil {
			return err
		}
		if _, err := bw.Write(lenBuf); err != nil {
			return err
		}
		if _, err := bw.Write(payload); err != nil {
			return err
		}
	}
}

func dropJPEGSegment(marker byte, payload []byte, policy jpegPolicy) bool {
	switch marker {
	case markerAPP1:
		if bytes.HasPrefix(payload, jpegExifHeader) {
			return !policy.keepExif
		}
		return bytes.HasPrefix(payload, jpegXmpHeader)
	case markerAPPD:
		return bytes.HasPrefix(payload, jpegPhotoshop)
	case markerAPP2:
		return !policy.preserveICC && bytes.HasPrefix(payload, jpegICCHeader)
	case markerCOM:
		return true
	}
	return false
}
