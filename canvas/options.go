// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package canvas

// Option configures a Canvas.
type Option func(*options)

type options struct {
	lineWidth float32
	pointSize float32
}

func defaultOptions() options {
	return options{
		lineWidth: 1.5,
		pointSize: 4,
	}
}

// WithLineWidth sets the stroke width of line strips in pixels.
// Non-positive values are ignored.
func WithLineWidth(px float32) Option {
	return func(o *options) {
		if px > 0 {
			o.lineWidth = px
		}
	}
}

// WithPointSize sets the side of point squares in pixels.
// Non-positive values are ignored.
func WithPointSize(px float32) Option {
	return func(o *options) {
		if px > 0 {
			o.pointSize = px
		}
	}
}
