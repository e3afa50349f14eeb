// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Host is implemented by the application that owns the GPU device and the
// scene camera.
//
// The device side is the gpucontext.DeviceProvider contract, so any gogpu
// host can be passed in directly. Camera returns the camera for the frame
// about to be drawn.
type Host interface {
	gpucontext.DeviceProvider

	Camera() Camera
}

// Headless is a Host without a GPU. Draws go to a CPU target such as the
// canvas package. The zero value reports an RGBA8 surface.
type Headless struct {
	Cam    Camera
	Format gputypes.TextureFormat
}

// Device returns nil for the headless host.
func (*Headless) Device() gpucontext.Device { return nil }

// Queue returns nil for the headless host.
func (*Headless) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the headless host.
func (*Headless) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports a software adapter.
func (*Headless) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "headless", Type: gpucontext.AdapterTypeSoftware}
}

// SurfaceFormat returns the configured format, RGBA8Unorm by default.
func (h *Headless) SurfaceFormat() gputypes.TextureFormat {
	if h.Format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return h.Format
}

// Camera returns the configured camera.
func (h *Headless) Camera() Camera {
	return h.Cam
}

// Ensure Headless implements Host.
var _ Host = (*Headless)(nil)
