// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render connects flow-arc vertex data to an external renderer.
//
// # Key Principle
//
// render RECEIVES its device, camera and draw target from the host; it never
// creates them. A host (a map SDK, a windowing app, or the headless canvas)
// implements [Host] and invokes the [Hook] capability:
//
//	Uninitialized ──Setup──▶ Ready ──Render──▶ Ready
//	      ▲                    │
//	      └──────Dispose───────┘
//
// # Core Types
//
//   - Layout: gputypes vertex buffer and primitive description
//   - FrameConfig: immutable per-frame transform/projection snapshot
//   - Camera: view and projection matrices supplied by the host
//   - Node: a Hook drawing one VertexData as line strips or points
//   - Target: receives bind and draw calls
//
// # Usage
//
//	node := render.NewNode("arcs", batch.Buffers(origin), gputypes.PrimitiveTopologyLineStrip)
//	host := &render.Headless{Cam: camera}
//	if err := node.Setup(host); err != nil {
//	    return err
//	}
//	err := node.Render(render.Frame{Camera: host.Camera(), Config: cfg}, target)
package render
