// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scene builds small reference geometries for checking a render
// setup before real trip data is loaded: random clip-space points, axis
// markers and a colored cube.
package scene
