// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/flowarc/mat4"
)

// FrameConfig is the model transform and projection settings for one frame.
//
// It is a value: the host reads its controls once per frame, builds a
// FrameConfig and passes it to Render. Nothing holds on to it between
// frames. Angles are in degrees.
type FrameConfig struct {
	Scale     mat4.Vec3
	Rotate    mat4.Vec3
	Translate mat4.Vec3

	FOV  float32
	Near float32
	Far  float32
}

// DefaultFrameConfig returns the identity transform with a 45° field of view.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		Scale: mat4.Vec3{1, 1, 1},
		FOV:   45,
		Near:  0.1,
		Far:   100,
	}
}

// WithScale returns a copy with the given scale.
func (c FrameConfig) WithScale(x, y, z float32) FrameConfig {
	c.Scale = mat4.Vec3{x, y, z}
	return c
}

// WithRotate returns a copy with the given rotation in degrees.
func (c FrameConfig) WithRotate(x, y, z float32) FrameConfig {
	c.Rotate = mat4.Vec3{x, y, z}
	return c
}

// WithTranslate returns a copy with the given translation.
func (c FrameConfig) WithTranslate(x, y, z float32) FrameConfig {
	c.Translate = mat4.Vec3{x, y, z}
	return c
}

// WithClip returns a copy with the given near and far planes.
func (c FrameConfig) WithClip(near, far float32) FrameConfig {
	c.Near, c.Far = near, far
	return c
}

// Model returns translate · rotateX · rotateY · rotateZ · scale.
func (c FrameConfig) Model() mat4.Mat4 {
	return mat4.Translate(c.Translate[0], c.Translate[1], c.Translate[2]).
		Mul(mat4.RotateX(mat4.Radians(c.Rotate[0]))).
		Mul(mat4.RotateY(mat4.Radians(c.Rotate[1]))).
		Mul(mat4.RotateZ(mat4.Radians(c.Rotate[2]))).
		Mul(mat4.Scale(c.Scale[0], c.Scale[1], c.Scale[2]))
}

// Projection returns the perspective projection for the given aspect ratio.
func (c FrameConfig) Projection(aspect float32) mat4.Mat4 {
	return mat4.Perspective(mat4.Radians(c.FOV), aspect, c.Near, c.Far)
}

// Camera holds the host's view and projection for a viewport.
type Camera struct {
	View       mat4.Mat4
	Projection mat4.Mat4
	Width      int
	Height     int
}

// Aspect returns width/height, or 1 for an empty viewport.
func (c Camera) Aspect() float32 {
	if c.Width <= 0 || c.Height <= 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// OrbitCamera places a camera around target on a Z-up map.
//
// distance is measured from target to the eye. heading rotates the eye
// clockwise from south of the target (0 looks north); tilt is the angle from
// straight down (0 is a top-down view). Angles are in degrees. The
// projection uses cfg's field of view and clip planes.
func OrbitCamera(target mat4.Vec3, distance, heading, tilt float32, cfg FrameConfig, width, height int) Camera {
	sh, ch := math32.Sincos(mat4.Radians(heading))
	st, ct := math32.Sincos(mat4.Radians(tilt))

	eye := target.Add(mat4.Vec3{-distance * st * sh, -distance * st * ch, distance * ct})
	up := mat4.Vec3{0, 0, 1}
	if st < 1e-3 {
		up = mat4.Vec3{sh, ch, 0}
	}

	cam := Camera{Width: width, Height: height, View: mat4.LookAt(eye, target, up)}
	cam.Projection = cfg.Projection(cam.Aspect())
	return cam
}

// Frame is everything a Hook needs to draw one frame.
type Frame struct {
	Camera Camera
	Config FrameConfig
}
