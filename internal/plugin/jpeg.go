package plugin

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"imagemin/pkg/imgutil"
)

type jpegOptions struct {
	Quality int `hcl:"quality,optional"`
}

type jpegTransform struct {
	quality int
}

func newJPEG(decode DecodeFunc) (Transform, error) {
	opts := jpegOptions{Quality: 85}
	if err := decode(&opts); err != nil {
		return nil, err
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, fmt.Errorf("quality must be in range 1-100, got %d", opts.Quality)
	}
	return &jpegTransform{quality: opts.Quality}, nil
}

func (t *jpegTransform) Name() string { return "jpeg" }

func (t *jpegTransform) Apply(ctx context.Context, data []byte) ([]byte, error) {
	if imgutil.Detect(data) != imgutil.KindJPEG {
		return data, nil
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return smaller(data, buf.Bytes()), nil
}
