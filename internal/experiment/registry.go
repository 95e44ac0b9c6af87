package experiment

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/stabctl/internal/device"
	"github.com/san-kum/stabctl/internal/storage"
)

// DeviceOptions carries what the device constructors need beyond the plan.
type DeviceOptions struct {
	Store  *storage.Store
	RunID  string
	Seed   uint64
	Limit  int
	Pace   time.Duration
	Plant  device.PlantConfig
	Logger zerolog.Logger
}

type Registry struct {
	devices map[string]func(Plan, DeviceOptions) (device.Device, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		devices: make(map[string]func(Plan, DeviceOptions) (device.Device, error)),
	}

	r.devices["sim"] = func(p Plan, o DeviceOptions) (device.Device, error) {
		plant := o.Plant
		if plant == (device.PlantConfig{}) {
			plant = device.DefaultPlant()
		}
		return device.NewSimulator(device.SimConfig{
			SamplingFreq: p.Request.SamplingFreq,
			BatchSize:    p.Request.BatchSize,
			Plant:        plant,
			Signal:       p.Signal,
			Seed:         o.Seed,
			Limit:        o.Limit,
			Pace:         o.Pace,
		}, o.Logger), nil
	}
	r.devices["replay"] = func(p Plan, o DeviceOptions) (device.Device, error) {
		if o.Store == nil || o.RunID == "" {
			return nil, fmt.Errorf("replay needs a capture id")
		}
		return device.NewReplay(o.Store, o.RunID, o.Pace, o.Logger)
	}

	return r
}

// Register adds or replaces a device constructor.
func (r *Registry) Register(name string, fn func(Plan, DeviceOptions) (device.Device, error)) {
	r.devices[name] = fn
}

func (r *Registry) GetDevice(name string, plan Plan, opts DeviceOptions) (device.Device, error) {
	fn, ok := r.devices[name]
	if !ok {
		return nil, fmt.Errorf("unknown device: %s", name)
	}
	return fn(plan, opts)
}

func (r *Registry) ListDevices() []string {
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
