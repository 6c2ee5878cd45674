package plugin

import (
	"bytes"
	"context"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"

	"imagemin/pkg/imgutil"
)

type stripOptions struct {
	PreserveICC     bool `hcl:"preserve_icc,optional"`
	KeepOrientation bool `hcl:"keep_orientation,optional"`
}

// stripTransform removes EXIF, XMP, IPTC and text metadata without touching
// the compressed image data.
type stripTransform struct {
	preserveICC     bool
	keepOrientation bool
}

func newStrip(decode DecodeFunc) (Transform, error) {
	opts := stripOptions{KeepOrientation: true}
	if err := decode(&opts); err != nil {
		return nil, err
	}
	return &stripTransform{
		preserveICC:     opts.PreserveICC,
		keepOrientation: opts.KeepOrientation,
	}, nil
}

func (t *stripTransform) Name() string { return "strip" }

func (t *stripTransform) Apply(ctx context.Context, data []byte) ([]byte, error) {
	switch imgutil.Detect(data) {
	case imgutil.KindJPEG:
		var buf bytes.Buffer
		buf.Grow(len(data))
		policy := jpegPolicy{preserveICC: t.preserveICC, keepExif: t.keepsExif(data)}
		if err := stripJPEG(bytes.NewReader(data), &buf, policy); err != nil {
			return nil, fmt.Errorf("strip jpeg: %w", err)
		}
		return smaller(data, buf.Bytes()), nil
	case imgutil.KindPNG:
		policy := pngPolicy{preserveICC: t.preserveICC, keepExif: t.keepsExif(data)}
		out, err := stripPNG(data, policy)
		if err != nil {
			return nil, fmt.Errorf("strip png: %w", err)
		}
		return smaller(data, out), nil
	default:
		return data, nil
	}
}

// keepsExif reports whether the EXIF block must stay because it rotates
// the image.
func (t *stripTransform) keepsExif(data []byte) bool {
	return t.keepOrientation && exifOrientation(data) > 1
}

// exifOrientation returns the EXIF Orientation tag of data, or 1 (upright)
// when there is no readable EXIF block.
func exifOrientation(data []byte) int {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 1
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 1
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" {
			continue
		}
		if values, ok := tag.Value.([]uint16); ok && len(values) > 0 {
			return int(values[0])
		}
	}
	return 1
}
