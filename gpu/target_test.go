package gpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/mat4"
	"github.com/gogpu/flowarc/render"
	"github.com/gogpu/flowarc/scene"
	"github.com/gogpu/flowarc/shader"
)

// createNoopHost opens the noop backend for testing.
// Returns the host and a cleanup function.
func createNoopHost(t *testing.T) (*Host, func()) {
	t.Helper()
	cam := render.Camera{View: mat4.Identity(), Projection: mat4.Identity(), Width: 64, Height: 64}
	host, err := Open(noop.API{}, cam)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return host, host.Close
}

func createTarget(t *testing.T, host *Host) *Target {
	t.Helper()
	target, err := NewTarget(host, 64, 64)
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	return target
}

// readBuffer copies n bytes out of a noop buffer.
func readBuffer(t *testing.T, device hal.Device, buf hal.Buffer, n int) []byte {
	t.Helper()
	m, err := device.MapBuffer(buf, 0, uint64(n))
	if err != nil {
		t.Fatalf("MapBuffer failed: %v", err)
	}
	defer func() { _ = device.UnmapBuffer(buf) }()
	return bytes.Clone(unsafe.Slice((*byte)(m.Ptr), n))
}

func arcNode(t *testing.T) *render.Node {
	t.Helper()
	b, err := flowarc.GenerateArcs([]flowarc.Pair{
		{Start: flowarc.Endpoint{Pos: flowarc.V2(0, 0)}, End: flowarc.Endpoint{Pos: flowarc.V2(10, 0)}},
		{Start: flowarc.Endpoint{Pos: flowarc.V2(0, 5)}, End: flowarc.Endpoint{Pos: flowarc.V2(10, 5)}},
	}, flowarc.WithSegments(4))
	if err != nil {
		t.Fatalf("GenerateArcs: %v", err)
	}
	return render.NewNode("arcs", b.Buffers(nil), gputypes.PrimitiveTopologyLineStrip)
}

func TestOpen(t *testing.T) {
	host, cleanup := createNoopHost(t)
	defer cleanup()

	if host.Device() == nil || host.Queue() == nil || host.Adapter() == nil {
		t.Fatal("noop host should expose a device, queue and adapter")
	}
	if _, ok := host.Device().(hal.Device); !ok {
		t.Errorf("Device() is %T, want hal.Device", host.Device())
	}
	info := host.AdapterInfo()
	if info.Name != "Noop Adapter" || info.Type != gpucontext.AdapterTypeUnknown {
		t.Errorf("AdapterInfo() = %+v", info)
	}
	if host.SurfaceFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat() = %v", host.SurfaceFormat())
	}
}

func TestAdapterType(t *testing.T) {
	tests := []struct {
		in   gputypes.DeviceType
		want gpucontext.AdapterType
	}{
		{gputypes.DeviceTypeDiscreteGPU, gpucontext.AdapterTypeDiscrete},
		{gputypes.DeviceTypeIntegratedGPU, gpucontext.AdapterTypeIntegrated},
		{gputypes.DeviceTypeCPU, gpucontext.AdapterTypeSoftware},
		{gputypes.DeviceTypeOther, gpucontext.AdapterTypeUnknown},
	}
	for _, tt := range tests {
		if got := adapterType(tt.in); got != tt.want {
			t.Errorf("adapterType(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewTargetNeedsDevice(t *testing.T) {
	if _, err := NewTarget(&render.Headless{}, 8, 8); !errors.Is(err, ErrNoDevice) {
		t.Errorf("NewTarget(headless) = %v, want ErrNoDevice", err)
	}

	host, cleanup := createNoopHost(t)
	defer cleanup()
	if _, err := NewTarget(host, 0, 8); err == nil {
		t.Error("NewTarget with zero width should fail")
	}
}

func TestRenderFrame(t *testing.T) {
	host, cleanup := createNoopHost(t)
	defer cleanup()
	target := createTarget(t, host)
	defer target.Destroy()

	node := arcNode(t)
	if err := node.Setup(host); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer node.Dispose()

	if err := target.Begin(gputypes.Color{A: 1}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := render.RenderFrame(host, render.DefaultFrameConfig(), target, node); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if err := target.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := Stats{
		Frames:   1,
		Binds:    1,
		Draws:    2, // one per arc
		Elements: 8,
		// 8 positions, 8 colors and one uniform block.
		Uploaded: 8*12 + 8*4 + render.UniformSize,
	}
	if diff := cmp.Diff(want, target.Stats()); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	if len(target.pipelines) != 1 {
		t.Errorf("pipelines = %d, want 1", len(target.pipelines))
	}

	// A second frame reuses the pipeline.
	if err := target.Begin(gputypes.Color{}); err != nil {
		t.Fatal(err)
	}
	if err := render.RenderFrame(host, render.DefaultFrameConfig(), target, node); err != nil {
		t.Fatal(err)
	}
	if err := target.Submit(); err != nil {
		t.Fatal(err)
	}
	if len(target.pipelines) != 1 || target.Stats().Frames != 2 {
		t.Errorf("after two frames: pipelines=%d frames=%d", len(target.pipelines), target.Stats().Frames)
	}
}

func TestBindUploads(t *testing.T) {
	host, cleanup := createNoopHost(t)
	defer cleanup()
	target := createTarget(t, host)
	defer target.Destroy()

	node := arcNode(t)
	if err := node.Setup(host); err != nil {
		t.Fatal(err)
	}
	var data flowarc.VertexData
	data.Append([3]float32{1, 2, 3}, flowarc.RGBA8(10, 20, 30, 40))
	data.Append([3]float32{4, 5, 6}, flowarc.RGBA8(50, 60, 70, 80))

	u := render.Uniforms{
		Projection: mat4.Perspective(mat4.Radians(45), 1, 0.1, 100),
		ModelView:  mat4.Translate(1, 2, 3),
	}
	if err := target.Begin(gputypes.Color{}); err != nil {
		t.Fatal(err)
	}
	if err := target.Bind(node.Pipeline(), u, &data); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	b := target.bound
	device := host.Device().(hal.Device)

	if got := readBuffer(t, device, b.uniforms, render.UniformSize); !bytes.Equal(got, u.Bytes()) {
		t.Error("uniform buffer does not hold Uniforms.Bytes()")
	}
	positions := readBuffer(t, device, b.positions, 24)
	for i, want := range data.Positions {
		got := binary.LittleEndian.Uint32(positions[i*4:])
		if got != math.Float32bits(want) {
			t.Fatalf("position %d = %#x, want %v", i, got, want)
		}
	}
	if got := readBuffer(t, device, b.colors, 8); !bytes.Equal(got, data.Colors) {
		t.Errorf("colors = %v, want %v", got, data.Colors)
	}
	if b.indices != nil {
		t.Error("line data should not get an index buffer")
	}
	if err := target.Submit(); err != nil {
		t.Fatal(err)
	}
}

func TestIndexedCubes(t *testing.T) {
	host, cleanup := createNoopHost(t)
	defer cleanup()
	target := createTarget(t, host)
	defer target.Destroy()

	centers := []flowarc.Vec3{flowarc.V3(0, 0, 0), flowarc.V3(3, 0, 0), flowarc.V3(0, 3, 0)}
	data := scene.Instances(scene.Cube(1), centers, nil)
	node := render.NewNode("cubes", data, gputypes.PrimitiveTopologyTriangleList)
	if err := node.Setup(host); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if err := target.Begin(gputypes.Color{}); err != nil {
		t.Fatal(err)
	}
	if err := render.RenderFrame(host, render.DefaultFrameConfig(), target, node); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	got := readBuffer(t, host.Device().(hal.Device), target.bound.indices, len(data.Indices)*4)
	for i, want := range data.Indices {
		if v := binary.LittleEndian.Uint32(got[i*4:]); v != want {
			t.Fatalf("index %d = %d, want %d", i, v, want)
		}
	}
	if err := target.Submit(); err != nil {
		t.Fatal(err)
	}

	if s := target.Stats(); s.Draws != 3 || s.Elements != 3*36 {
		t.Errorf("Draws=%d Elements=%d, want 3 and 108", s.Draws, s.Elements)
	}
}

func TestPipelineDescriptor(t *testing.T) {
	prog, err := shader.CompileFlow()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		topology   gputypes.PrimitiveTopology
		depthWrite bool
	}{
		{"lines", gputypes.PrimitiveTopologyLineStrip, false},
		{"points", gputypes.PrimitiveTopologyPointList, false},
		{"triangles", gputypes.PrimitiveTopologyTriangleList, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &render.Pipeline{
				Program:     prog,
				Layout:      render.FlowLayout(tt.topology),
				ColorFormat: gputypes.TextureFormatBGRA8Unorm,
			}
			desc := pipelineDescriptor(p, nil, nil)

			if diff := cmp.Diff(p.Layout.Buffers, desc.Vertex.Buffers); diff != "" {
				t.Errorf("vertex buffers mismatch (-want +got):\n%s", diff)
			}
			if desc.Vertex.EntryPoint != shader.VertexEntry || desc.Fragment.EntryPoint != shader.FragmentEntry {
				t.Errorf("entry points = %q, %q", desc.Vertex.EntryPoint, desc.Fragment.EntryPoint)
			}
			if desc.Primitive != p.Layout.Primitive {
				t.Errorf("Primitive = %+v, want %+v", desc.Primitive, p.Layout.Primitive)
			}
			target := desc.Fragment.Targets[0]
			if target.Format != gputypes.TextureFormatBGRA8Unorm {
				t.Errorf("color format = %v", target.Format)
			}
			if target.Blend == nil || *target.Blend != p.Layout.Blend {
				t.Errorf("blend = %+v, want %+v", target.Blend, p.Layout.Blend)
			}
			ds := desc.DepthStencil
			if ds.Format != render.DepthFormat || ds.DepthWriteEnabled != tt.depthWrite || ds.DepthCompare != gputypes.CompareFunctionLess {
				t.Errorf("depth = %+v", ds)
			}
		})
	}
}

func TestBindErrors(t *testing.T) {
	host, cleanup := createNoopHost(t)
	defer cleanup()
	target := createTarget(t, host)
	defer target.Destroy()

	node := arcNode(t)
	if err := node.Setup(host); err != nil {
		t.Fatal(err)
	}
	good := node.Pipeline()
	var data flowarc.VertexData
	data.Append([3]float32{}, flowarc.White)

	if err := target.Bind(good, render.Uniforms{}, &data); !errors.Is(err, ErrNoPass) {
		t.Errorf("Bind before Begin = %v, want ErrNoPass", err)
	}
	if err := target.Draw(0, 1); !errors.Is(err, ErrNotBound) {
		t.Errorf("Draw before Bind = %v, want ErrNotBound", err)
	}
	if err := target.Begin(gputypes.Color{}); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = target.Submit() }()

	noSPIRV := *good
	noSPIRV.Program = &shader.Program{Name: "flow", WGSL: good.Program.WGSL}
	bgra := *good
	bgra.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	noBuffers := *good
	noBuffers.Layout.Buffers = nil

	tests := []struct {
		name string
		p    *render.Pipeline
		want error
	}{
		{"no spirv", &noSPIRV, ErrNoSPIRV},
		{"format mismatch", &bgra, ErrFormatMismatch},
		{"no vertex buffers", &noBuffers, render.ErrInvalidVertexData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := target.Bind(tt.p, render.Uniforms{}, &data); !errors.Is(err, tt.want) {
				t.Errorf("Bind = %v, want %v", err, tt.want)
			}
		})
	}

	if err := target.Bind(good, render.Uniforms{}, &data); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := target.Draw(0, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Draw past end = %v, want ErrOutOfRange", err)
	}
}
