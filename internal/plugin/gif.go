package plugin

import (
	"bytes"
	"context"
	"fmt"
	"image/gif"

	"imagemin/pkg/imgutil"
)

type gifTransform struct{}

func newGIF(decode DecodeFunc) (Transform, error) {
	var opts struct{}
	if err := decode(&opts); err != nil {
		return nil, err
	}
	return gifTransform{}, nil
}

func (gifTransform) Name() string { return "gif" }

// Apply decodes every frame and writes them back with the stdlib encoder,
// which drops comment and application extensions.
func (gifTransform) Apply(ctx context.Context, data []byte) ([]byte, error) {
	if imgutil.Detect(data) != imgutil.KindGIF {
		return data, nil
	}

	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return smaller(data, buf.Bytes()), nil
}
