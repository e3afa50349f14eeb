// Package flowarc generates 3D flow arcs between pairs of projected
// coordinates and packs them into vertex buffers for line-strip rendering.
//
// # Overview
//
// A flow arc is a symmetric parabolic arch drawn between two endpoints on a
// planar map (for example Web Mercator meters). The arch lies in the vertical
// plane through both endpoints, starts and ends at elevation zero and peaks
// above the chord midpoint. Its height scales with the chord length.
//
// # Quick Start
//
//	import "github.com/gogpu/flowarc"
//
//	start := flowarc.Endpoint{Pos: flowarc.V2(0, 0), Color: flowarc.Red}
//	end := flowarc.Endpoint{Pos: flowarc.V2(100, 0), Color: flowarc.Green}
//
//	arc, err := flowarc.GenerateArc(start, end, flowarc.WithSegments(5))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// arc[2].Pos.Z == 25
//
// # Batches
//
// Many arcs are concatenated into a [Batch], which produces the flat position
// and color buffers consumed by a line-strip draw call, one strip per arc.
//
// # Packages
//
//   - geo: Web Mercator projection of longitude/latitude
//   - trips: CSV trip and station loading
//   - mat4: column-major 4x4 matrices for the MVP pipeline
//   - shader: WGSL programs compiled to SPIR-V and GLSL ES
//   - render: vertex layouts, the host hook lifecycle and draw issuing
//   - canvas: headless software target writing PNG images
//   - scene: small demo meshes (random points, axis markers, cube)
package flowarc
