package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/render"
)

// ErrNoAdapter is returned when a backend exposes no adapter.
var ErrNoAdapter = errors.New("gpu: no adapter")

// Host is a render.Host backed by a HAL device.
type Host struct {
	instance hal.Instance
	adapter  hal.Adapter
	info     gputypes.AdapterInfo
	device   hal.Device
	queue    hal.Queue

	// Format is the color format targets are created with.
	Format gputypes.TextureFormat
	// Cam is the camera returned to render hooks.
	Cam render.Camera
}

// Open creates an instance of backend and opens its first adapter.
func Open(backend hal.Backend, cam render.Camera) (*Host, error) {
	instance, err := backend.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	exposed := adapters[0]
	open, err := exposed.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open %s: %w", exposed.Info.Name, err)
	}

	flowarc.Logger().Info("gpu: device opened",
		"adapter", exposed.Info.Name,
		"backend", exposed.Info.Backend)
	return &Host{
		instance: instance,
		adapter:  exposed.Adapter,
		info:     exposed.Info,
		device:   open.Device,
		queue:    open.Queue,
		Format:   gputypes.TextureFormatRGBA8Unorm,
		Cam:      cam,
	}, nil
}

// Close releases the device and the instance.
func (h *Host) Close() {
	if h.device != nil {
		h.device.Destroy()
		h.device = nil
	}
	if h.instance != nil {
		h.instance.Destroy()
		h.instance = nil
	}
}

// Device returns the hal.Device.
func (h *Host) Device() gpucontext.Device { return h.device }

// Queue returns the hal.Queue.
func (h *Host) Queue() gpucontext.Queue { return h.queue }

// Adapter returns the hal.Adapter.
func (h *Host) Adapter() gpucontext.Adapter { return h.adapter }

// AdapterInfo reports the adapter's name and type.
func (h *Host) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: h.info.Name, Type: adapterType(h.info.DeviceType)}
}

// SurfaceFormat returns Format.
func (h *Host) SurfaceFormat() gputypes.TextureFormat { return h.Format }

// Camera returns Cam.
func (h *Host) Camera() render.Camera { return h.Cam }

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

var _ render.Host = (*Host)(nil)
