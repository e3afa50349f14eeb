package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/render"
	"github.com/gogpu/flowarc/shader"
)

// Errors returned by Target.
var (
	ErrNoDevice       = errors.New("gpu: host has no HAL device")
	ErrNoSPIRV        = errors.New("gpu: program has no SPIR-V")
	ErrFormatMismatch = errors.New("gpu: pipeline color format differs from target")
	ErrNoPass         = errors.New("gpu: bind outside Begin/Submit")
	ErrNotBound       = errors.New("gpu: draw without bind")
	ErrOutOfRange     = errors.New("gpu: draw range outside vertex data")
)

// Stats counts the work recorded since the target was created.
type Stats struct {
	Frames   int
	Binds    int
	Draws    int
	Elements int
	Uploaded int
}

// Target is a render.Target that records into a HAL render pass with a
// color and a depth attachment.
type Target struct {
	device hal.Device
	queue  hal.Queue
	width  uint32
	height uint32
	format gputypes.TextureFormat

	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView

	pipelines map[*render.Pipeline]*pipelineState

	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	frame   []*bindings
	bound   *bindings

	stats Stats
}

// NewTarget creates a width x height target on the host's device. The
// host's Device and Queue must be a hal.Device and a hal.Queue.
func NewTarget(host render.Host, width, height int) (*Target, error) {
	device, ok := host.Device().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoDevice
	}
	queue, ok := host.Queue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrNoDevice
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid target size %dx%d", width, height)
	}

	t := &Target{
		device:    device,
		queue:     queue,
		width:     uint32(width),
		height:    uint32(height),
		format:    host.SurfaceFormat(),
		pipelines: make(map[*render.Pipeline]*pipelineState),
	}
	if err := t.createAttachments(); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

func (t *Target) createAttachments() error {
	var err error
	t.color, t.colorView, err = t.createAttachment("flowarc_color", t.format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	t.depth, t.depthView, err = t.createAttachment("flowarc_depth", render.DepthFormat,
		gputypes.TextureUsageRenderAttachment)
	return err
}

func (t *Target) createAttachment(label string, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("gpu: create %s view: %w", label, err)
	}
	return tex, view, nil
}

// Size returns the target size in pixels.
func (t *Target) Size() (width, height int) { return int(t.width), int(t.height) }

// Stats returns the recorded work counters.
func (t *Target) Stats() Stats { return t.stats }

// Begin starts a frame: the color attachment is cleared to clear and depth
// to the far plane.
func (t *Target) Begin(clear gputypes.Color) error {
	if t.pass != nil {
		return fmt.Errorf("gpu: begin: frame already open")
	}
	encoder, err := t.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "flowarc_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("flowarc_frame"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}
	t.encoder = encoder
	t.pass = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "flowarc_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	return nil
}

// Bind implements render.Target.
func (t *Target) Bind(p *render.Pipeline, u render.Uniforms, data *flowarc.VertexData) error {
	if t.pass == nil {
		return ErrNoPass
	}
	if p == nil || data == nil {
		return fmt.Errorf("gpu: bind: nil pipeline or vertex data")
	}
	ps, err := t.pipeline(p)
	if err != nil {
		return err
	}
	b, err := t.upload(ps, u, data)
	if err != nil {
		return err
	}
	t.frame = append(t.frame, b)

	t.pass.SetPipeline(ps.pipeline)
	t.pass.SetBindGroup(0, b.bindGroup, nil)
	if b.positions != nil {
		t.pass.SetVertexBuffer(render.PositionLocation, b.positions, 0)
		t.pass.SetVertexBuffer(render.ColorLocation, b.colors, 0)
	}
	if b.indices != nil {
		t.pass.SetIndexBuffer(b.indices, render.IndexFormat, 0)
	}
	t.bound = b
	t.stats.Binds++
	return nil
}

// Draw implements render.Target. Indexed data is drawn with DrawIndexed
// over the index range.
func (t *Target) Draw(first, count int) error {
	if t.bound == nil || t.pass == nil {
		return ErrNotBound
	}
	if first < 0 || count < 0 || first+count > t.bound.elements {
		return fmt.Errorf("%w: [%d,+%d) of %d", ErrOutOfRange, first, count, t.bound.elements)
	}
	if t.bound.indices != nil {
		t.pass.DrawIndexed(uint32(count), 1, uint32(first), 0, 0)
	} else {
		t.pass.Draw(uint32(count), 1, uint32(first), 0)
	}
	t.stats.Draws++
	t.stats.Elements += count
	return nil
}

// Submit ends the render pass, submits the frame and releases its buffers
// once the device is idle.
func (t *Target) Submit() error {
	if t.pass == nil {
		return ErrNoPass
	}
	t.pass.End()
	t.pass = nil
	t.bound = nil
	defer t.releaseFrame()

	cmd, err := t.encoder.EndEncoding()
	t.encoder = nil
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer t.device.FreeCommandBuffer(cmd)

	if _, err := t.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	if err := t.device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: wait: %w", err)
	}
	t.stats.Frames++
	flowarc.Logger().Debug("gpu: frame submitted",
		"draws", t.stats.Draws, "uploaded", t.stats.Uploaded)
	return nil
}

func (t *Target) releaseFrame() {
	for _, b := range t.frame {
		b.destroy(t.device)
	}
	t.frame = t.frame[:0]
}

// Destroy releases every GPU object the target created. An open frame is
// discarded.
func (t *Target) Destroy() {
	if t.pass != nil {
		t.pass.End()
		t.pass = nil
	}
	if t.encoder != nil {
		t.encoder.DiscardEncoding()
		t.encoder = nil
	}
	t.bound = nil
	t.releaseFrame()
	for p, ps := range t.pipelines {
		ps.destroy(t.device)
		delete(t.pipelines, p)
	}
	if t.depthView != nil {
		t.device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depth != nil {
		t.device.DestroyTexture(t.depth)
		t.depth = nil
	}
	if t.colorView != nil {
		t.device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.color != nil {
		t.device.DestroyTexture(t.color)
		t.color = nil
	}
}

// pipelineState holds the HAL objects built for one render.Pipeline.
type pipelineState struct {
	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	layout        hal.PipelineLayout
	pipeline      hal.RenderPipeline
}

func (ps *pipelineState) destroy(device hal.Device) {
	if ps.pipeline != nil {
		device.DestroyRenderPipeline(ps.pipeline)
	}
	if ps.layout != nil {
		device.DestroyPipelineLayout(ps.layout)
	}
	if ps.uniformLayout != nil {
		device.DestroyBindGroupLayout(ps.uniformLayout)
	}
	if ps.shader != nil {
		device.DestroyShaderModule(ps.shader)
	}
}

// pipeline returns the HAL pipeline for p, creating it on first use.
func (t *Target) pipeline(p *render.Pipeline) (*pipelineState, error) {
	if ps, ok := t.pipelines[p]; ok {
		return ps, nil
	}
	if p.Program == nil || len(p.Program.SPIRV) == 0 {
		return nil, ErrNoSPIRV
	}
	if p.ColorFormat != t.format {
		return nil, fmt.Errorf("%w: %v, target is %v", ErrFormatMismatch, p.ColorFormat, t.format)
	}
	if len(p.Layout.Buffers) != 2 {
		return nil, fmt.Errorf("%w: %d vertex buffers in layout, want 2", render.ErrInvalidVertexData, len(p.Layout.Buffers))
	}

	ps := &pipelineState{}
	var err error
	ps.shader, err = t.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.Program.Name,
		Source: hal.ShaderSource{SPIRV: p.Program.SPIRV},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s shader: %w", p.Program.Name, err)
	}
	ps.uniformLayout, err = t.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "flowarc_uniform_layout",
		Entries: uniformLayoutEntries(),
	})
	if err != nil {
		ps.destroy(t.device)
		return nil, fmt.Errorf("gpu: create uniform layout: %w", err)
	}
	ps.layout, err = t.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "flowarc_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{ps.uniformLayout},
	})
	if err != nil {
		ps.destroy(t.device)
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	ps.pipeline, err = t.device.CreateRenderPipeline(pipelineDescriptor(p, ps.shader, ps.layout))
	if err != nil {
		ps.destroy(t.device)
		return nil, fmt.Errorf("gpu: create %s pipeline: %w", p.Program.Name, err)
	}

	t.pipelines[p] = ps
	flowarc.Logger().Debug("gpu: pipeline created",
		"program", p.Program.Name,
		"topology", p.Topology(),
		"spirv_words", len(p.Program.SPIRV))
	return ps, nil
}

func uniformLayoutEntries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: render.UniformSize,
		},
	}}
}

// pipelineDescriptor maps a render.Pipeline onto a HAL render pipeline.
func pipelineDescriptor(p *render.Pipeline, module hal.ShaderModule, layout hal.PipelineLayout) *hal.RenderPipelineDescriptor {
	blend := p.Layout.Blend
	return &hal.RenderPipelineDescriptor{
		Label:  p.Program.Name + "_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntry,
			Buffers:    p.Layout.Buffers,
		},
		Primitive: p.Layout.Primitive,
		DepthStencil: &hal.DepthStencilState{
			Format:            render.DepthFormat,
			DepthWriteEnabled: p.Layout.DepthWrite,
			DepthCompare:      p.Layout.DepthCompare,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    p.ColorFormat,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	}
}

// bindings are the buffers and bind group uploaded by one Bind.
type bindings struct {
	positions hal.Buffer
	colors    hal.Buffer
	indices   hal.Buffer
	uniforms  hal.Buffer
	bindGroup hal.BindGroup
	elements  int
}

func (b *bindings) destroy(device hal.Device) {
	if b.bindGroup != nil {
		device.DestroyBindGroup(b.bindGroup)
	}
	for _, buf := range []hal.Buffer{b.uniforms, b.indices, b.colors, b.positions} {
		if buf != nil {
			device.DestroyBuffer(buf)
		}
	}
}

func (t *Target) upload(ps *pipelineState, u render.Uniforms, data *flowarc.VertexData) (*bindings, error) {
	b := &bindings{elements: data.ElementCount()}
	fail := func(err error) (*bindings, error) {
		b.destroy(t.device)
		return nil, err
	}

	var err error
	b.uniforms, err = t.createAndUpload("flowarc_uniforms", u.Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fail(err)
	}
	b.bindGroup, err = t.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "flowarc_bind",
		Layout: ps.uniformLayout,
		Entries: []gputypes.BindGroupEntry{{
			Binding: 0,
			Resource: gputypes.BufferBinding{
				Buffer: b.uniforms.NativeHandle(),
				Offset: 0,
				Size:   render.UniformSize,
			},
		}},
	})
	if err != nil {
		return fail(fmt.Errorf("gpu: create bind group: %w", err))
	}

	if data.VertexCount() == 0 {
		return b, nil
	}
	positions, err := binary.Append(nil, binary.LittleEndian, data.Positions)
	if err != nil {
		return fail(fmt.Errorf("gpu: encode positions: %w", err))
	}
	vertexUsage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if b.positions, err = t.createAndUpload("flowarc_positions", positions, vertexUsage); err != nil {
		return fail(err)
	}
	if b.colors, err = t.createAndUpload("flowarc_colors", data.Colors, vertexUsage); err != nil {
		return fail(err)
	}
	if len(data.Indices) > 0 {
		indices, err := binary.Append(nil, binary.LittleEndian, data.Indices)
		if err != nil {
			return fail(fmt.Errorf("gpu: encode indices: %w", err))
		}
		b.indices, err = t.createAndUpload("flowarc_indices", indices,
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fail(err)
		}
	}
	return b, nil
}

// createAndUpload creates a GPU buffer and uploads data.
func (t *Target) createAndUpload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	if err := t.queue.WriteBuffer(buf, 0, data); err != nil {
		t.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("gpu: upload %s: %w", label, err)
	}
	t.stats.Uploaded += len(data)
	return buf, nil
}

var _ render.Target = (*Target)(nil)
