// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/flowarc"
)

// LabelSize is the label font size in points at 72 DPI.
const LabelSize = 12

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func labelFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("canvas: failed to parse font: %w", err)
			return
		}
		face, faceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    LabelSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return face, faceErr
}

// Label draws s with its baseline starting at (x, y).
func (c *Canvas) Label(x, y int, s string, col color.Color) error {
	f, err := labelFace()
	if err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: f,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
	return nil
}

// Stats summarizes a rendered scene for the legend.
type Stats struct {
	Trips    int
	Skipped  int
	Stations int
	Vertices int
}

// LegendLines formats stats with the number conventions of lang.
func LegendLines(stats Stats, lang language.Tag) []string {
	p := message.NewPrinter(lang)
	lines := []string{
		p.Sprintf("%d trips", stats.Trips),
		p.Sprintf("%d vertices", stats.Vertices),
	}
	if stats.Stations > 0 {
		lines = append(lines, p.Sprintf("%d stations", stats.Stations))
	}
	if stats.Skipped > 0 {
		lines = append(lines, p.Sprintf("%d rows skipped", stats.Skipped))
	}
	return lines
}

// Legend draws the stats in the top-left corner.
func (c *Canvas) Legend(stats Stats, lang language.Tag, col color.Color) error {
	f, err := labelFace()
	if err != nil {
		return err
	}
	lh := f.Metrics().Height.Ceil()
	for i, line := range LegendLines(stats, lang) {
		if err := c.Label(8, 8+lh*(i+1), line, col); err != nil {
			return err
		}
	}
	return nil
}

// Ramp fills r with a left-to-right gradient between two colors, composited
// over the canvas.
func (c *Canvas) Ramp(r image.Rectangle, from, to flowarc.RGBA) {
	x0, full := r.Min.X, r.Dx()
	r = r.Intersect(c.img.Rect)
	for x := r.Min.X; x < r.Max.X; x++ {
		t := 0.0
		if full > 1 {
			t = float64(x-x0) / float64(full-1)
		}
		col := image.NewUniform(from.Lerp(to, t).Color())
		draw.Draw(c.img, image.Rect(x, r.Min.Y, x+1, r.Max.Y), col, image.Point{}, draw.Over)
	}
}
