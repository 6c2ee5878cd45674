package plugin

import (
	"context"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"

	"imagemin/pkg/imgutil"
)

const svgMediaType = "image/svg+xml"

type svgOptions struct {
	Precision    int  `hcl:"precision,optional"`
	KeepComments bool `hcl:"keep_comments,optional"`
}

type svgTransform struct {
	m *minify.M
}

func newSVG(decode DecodeFunc) (Transform, error) {
	var opts svgOptions
	if err := decode(&opts); err != nil {
		return nil, err
	}
	if opts.Precision < 0 {
		return nil, fmt.Errorf("precision must not be negative, got %d", opts.Precision)
	}

	m := minify.New()
	m.Add(svgMediaType, &svg.Minifier{
		Precision:    opts.Precision,
		KeepComments: opts.KeepComments,
	})
	return &svgTransform{m: m}, nil
}

func (t *svgTransform) Name() string { return "svg" }

func (t *svgTransform) Apply(ctx context.Context, data []byte) ([]byte, error) {
	if imgutil.Detect(data) != imgutil.KindSVG {
		return data, nil
	}

	out, err := t.m.Bytes(svgMediaType, data)
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}
	return smaller(data, out), nil
}
