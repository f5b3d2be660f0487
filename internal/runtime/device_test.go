package runtime

import "testing"

func TestDeviceGuardRestores(t *testing.T) {
	reg := NewDeviceRegister()
	if reg.Current() != DeviceCPU {
		t.Fatalf("fresh register = %d", reg.Current())
	}

	g := reg.Enter(Device(1))
	if reg.Current() != Device(1) {
		t.Fatalf("after enter = %d, want 1", reg.Current())
	}

	inner := reg.Enter(Device(2))
	if reg.Current() != Device(2) {
		t.Fatalf("after nested enter = %d, want 2", reg.Current())
	}
	inner.Release()
	if reg.Current() != Device(1) {
		t.Fatalf("after inner release = %d, want 1", reg.Current())
	}

	g.Release()
	g.Release() // second release is a no-op
	if reg.Current() != DeviceCPU {
		t.Fatalf("after release = %d, want CPU", reg.Current())
	}
}

func TestDeviceForInputs(t *testing.T) {
	s := NewStack()
	s.Push(IntVal(3))
	if d := DeviceForInputs(s, 1); d != DeviceCPU {
		t.Fatalf("no tensors: device = %d, want CPU", d)
	}

	s.Push(TensorVal(&Tensor{Device: Device(2)}))
	if d := DeviceForInputs(s, 2); d != Device(2) {
		t.Fatalf("device = %d, want 2", d)
	}
}

func TestDeviceForInputsTensorList(t *testing.T) {
	s := NewStack()
	s.Push(TensorListVal([]*Tensor{{Device: Device(1)}, {Device: Device(3)}}))
	s.Push(IntVal(0))
	if d := DeviceForInputs(s, 2); d != Device(1) {
		t.Fatalf("device = %d, want 1", d)
	}
}
