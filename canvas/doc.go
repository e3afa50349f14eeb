// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package canvas is a software render target for flow nodes.
//
// A Canvas implements render.Target over an *image.RGBA. Line strips are
// rasterized one segment at a time as stroked quads with
// golang.org/x/image/vector and composited source-over; point lists are
// drawn as squares. There is no depth test: later draws cover earlier ones.
//
// The canvas also carries the overlay a headless render needs: text labels
// in Go Regular and a localized legend line.
//
//	c := canvas.New(800, 600)
//	c.Clear(color.Black)
//	if err := render.RenderFrame(host, cfg, c, arcs, stations); err != nil {
//		return err
//	}
//	return c.SavePNG("flows.png")
package canvas
