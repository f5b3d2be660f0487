package runtime

import "sync"

// Device identifies an accelerator device. DeviceCPU means no
// accelerator is selected.
type Device int32

const DeviceCPU Device = -1

// DeviceRegister models the ambient "current device" shared by every
// dispatch in the process. It is the one piece of shared mutable state
// at this layer, so access is serialized.
type DeviceRegister struct {
	mu  sync.Mutex
	cur Device
}

// NewDeviceRegister returns a register pointing at the CPU.
func NewDeviceRegister() *DeviceRegister {
	return &DeviceRegister{cur: DeviceCPU}
}

// Current reads the register.
func (r *DeviceRegister) Current() Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur
}

// Enter switches the register to d and returns a guard that restores
// the previous device. The guard must be released on every exit path.
func (r *DeviceRegister) Enter(d Device) *DeviceGuard {
	r.mu.Lock()
	prev := r.cur
	r.cur = d
	r.mu.Unlock()
	return &DeviceGuard{reg: r, prev: prev}
}

// DeviceGuard is the scoped acquisition of the device register.
type DeviceGuard struct {
	reg      *DeviceRegister
	prev     Device
	released bool
}

// Release restores the previously selected device. Safe to call more
// than once; only the first call restores.
func (g *DeviceGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.reg.mu.Lock()
	g.reg.cur = g.prev
	g.reg.mu.Unlock()
}

// DeviceForInputs picks the device implied by the tensor inputs in the
// trailing n-entry window: the first tensor's device, or CPU when no
// tensor input carries one.
func DeviceForInputs(s *Stack, n int) Device {
	if n > s.Len() {
		n = s.Len()
	}
	for i := 0; i < n; i++ {
		v := s.PeekAt(i, n)
		switch v.Kind {
		case KindTensor:
			if t := v.AsTensor(); t != nil {
				return t.Device
			}
		case KindTensorList:
			for _, t := range v.AsTensorList() {
				if t != nil {
					return t.Device
				}
			}
		}
	}
	return DeviceCPU
}
