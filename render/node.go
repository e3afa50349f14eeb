// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/shader"
)

// ErrNotReady is returned when a node is rendered before Setup.
var ErrNotReady = errors.New("render: node not set up")

// Hook is the capability a host invokes to let external code draw into its
// scene. Setup runs once the host's device is ready; Render runs every frame
// while ready; Dispose releases what Setup acquired.
type Hook interface {
	Setup(host Host) error
	Render(frame Frame, target Target) error
	Dispose()
}

// State is the lifecycle state of a Node.
type State int

const (
	// StateUninitialized is the state before Setup and after Dispose.
	StateUninitialized State = iota
	// StateReady means the pipeline is built and Render may be called.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Node draws one set of vertex data with the flow shader. Line strip and
// triangle nodes issue one draw per strip; point nodes and nodes without
// strips draw every element at once.
//
// Node is safe for concurrent use; the host may call Dispose from another
// goroutine than Render.
type Node struct {
	name     string
	data     flowarc.VertexData
	topology gputypes.PrimitiveTopology

	mu       sync.Mutex
	state    State
	pipeline *Pipeline
}

// NewNode returns an uninitialized node. The vertex data is owned by the
// node from here on.
func NewNode(name string, data flowarc.VertexData, topology gputypes.PrimitiveTopology) *Node {
	return &Node{name: name, data: data, topology: topology}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// State returns the current lifecycle state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Pipeline returns the pipeline built by Setup, or nil.
func (n *Node) Pipeline() *Pipeline {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pipeline
}

// Setup validates the vertex data and builds the pipeline for the host's
// surface format. Calling Setup on a ready node does nothing.
func (n *Node) Setup(host Host) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateReady {
		return nil
	}

	layout := FlowLayout(n.topology)
	if err := layout.Validate(&n.data); err != nil {
		return fmt.Errorf("render: setup %s: %w", n.name, err)
	}
	prog, err := shader.CompileFlow()
	if err != nil {
		return fmt.Errorf("render: setup %s: %w", n.name, err)
	}

	info := host.AdapterInfo()
	n.pipeline = &Pipeline{Program: prog, Layout: layout, ColorFormat: host.SurfaceFormat()}
	n.state = StateReady
	flowarc.Logger().Info("render: node ready",
		"node", n.name,
		"adapter", info.Name,
		"vertices", n.data.VertexCount(),
		"strips", len(n.data.Strips))
	return nil
}

// Render binds the pipeline and draws the node's vertices. The model-view
// matrix is the camera view times the frame's model transform.
func (n *Node) Render(frame Frame, target Target) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateReady {
		return fmt.Errorf("%w: %s", ErrNotReady, n.name)
	}

	u := Uniforms{
		Projection: frame.Camera.Projection,
		ModelView:  frame.Camera.View.Mul(frame.Config.Model()),
	}
	if err := target.Bind(n.pipeline, u, &n.data); err != nil {
		return fmt.Errorf("render: bind %s: %w", n.name, err)
	}

	if n.topology == gputypes.PrimitiveTopologyPointList || len(n.data.Strips) == 0 {
		return n.draw(target, 0, n.data.ElementCount())
	}
	for _, s := range n.data.Strips {
		if err := n.draw(target, s.First, s.Count); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) draw(target Target, first, count int) error {
	if count == 0 {
		return nil
	}
	if err := target.Draw(first, count); err != nil {
		return fmt.Errorf("render: draw %s: %w", n.name, err)
	}
	return nil
}

// Dispose drops the pipeline and returns the node to StateUninitialized.
func (n *Node) Dispose() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pipeline = nil
	n.state = StateUninitialized
}

// RenderFrame renders every hook with the host's current camera.
func RenderFrame(host Host, cfg FrameConfig, target Target, hooks ...Hook) error {
	frame := Frame{Camera: host.Camera(), Config: cfg}
	for _, h := range hooks {
		if err := h.Render(frame, target); err != nil {
			return err
		}
	}
	return nil
}

// Watch drives hooks from host readiness events: true sets every hook up,
// false disposes them. It returns when ready is closed or ctx is done,
// disposing the hooks on the way out. A failed Setup disposes the hooks
// and is returned.
func Watch(ctx context.Context, ready <-chan bool, host Host, hooks ...Hook) error {
	defer disposeAll(hooks)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ok, open := <-ready:
			if !open {
				return nil
			}
			if !ok {
				flowarc.Logger().Debug("render: host not ready, disposing", "hooks", len(hooks))
				disposeAll(hooks)
				continue
			}
			for _, h := range hooks {
				if err := h.Setup(host); err != nil {
					return err
				}
			}
		}
	}
}

func disposeAll(hooks []Hook) {
	for _, h := range hooks {
		h.Dispose()
	}
}

var _ Hook = (*Node)(nil)
