// Package gpu draws render nodes through the gogpu/wgpu hardware
// abstraction layer.
//
// Host opens a HAL backend and serves its device to render hooks. Target
// implements render.Target on top of that device: Bind turns a
// render.Pipeline into a HAL render pipeline built from the program's
// SPIR-V, the vertex layout and the blend state, uploads the vertex data
// and uniforms, and Draw records one draw call per strip into the frame's
// render pass.
//
//	host, err := gpu.Open(noop.API{}, cam)
//	...
//	t, err := gpu.NewTarget(host, width, height)
//	...
//	t.Begin(gputypes.Color{A: 1})
//	render.RenderFrame(host, cfg, t, nodes...)
//	t.Submit()
package gpu
