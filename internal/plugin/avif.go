package plugin

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"

	"imagemin/pkg/imgutil"
)

type avifOptions struct {
	Quality      int `hcl:"quality,optional"`
	QualityAlpha int `hcl:"quality_alpha,optional"`
	Speed        int `hcl:"speed,optional"`
}

func (o avifOptions) validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("quality must be in range 0-100")
	}
	if o.QualityAlpha < 0 || o.QualityAlpha > 100 {
		return fmt.Errorf("alpha quality must be in range 0-100")
	}
	if o.Speed < 0 || o.Speed > 10 {
		return fmt.Errorf("encoding speed must be in range 0-10")
	}
	return nil
}

type avifTransform struct {
	options avif.Options
}

func newAVIF(decode DecodeFunc) (Transform, error) {
	opts := avifOptions{Quality: 60, QualityAlpha: 60, Speed: 8}
	if err := decode(&opts); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &avifTransform{options: avif.Options{
		Quality:           opts.Quality,
		QualityAlpha:      opts.QualityAlpha,
		Speed:             opts.Speed,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	}}, nil
}

func (t *avifTransform) Name() string { return "avif" }

// Apply converts raster input to AVIF. The result is kept even when larger:
// the caller asked for a format change.
func (t *avifTransform) Apply(ctx context.Context, data []byte) ([]byte, error) {
	switch imgutil.Detect(data) {
	case imgutil.KindJPEG, imgutil.KindPNG, imgutil.KindGIF, imgutil.KindWebP:
	default:
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := avif.Encode(&buf, img, t.options); err != nil {
		return nil, fmt.Errorf("encode avif: %w", err)
	}
	return buf.Bytes(), nil
}
