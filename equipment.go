package main

import "sync"

// ActuatorKind distinguishes pumps (single run direction) from fans
// (forward/reverse).
type ActuatorKind int

const (
	KindPump ActuatorKind = iota
	KindFan
)

// Actuator is the authoritative in-memory state for one SWP/FWP/FAN,
// grounded in regs.go's typed-struct idiom and the Python original's
// self.equipment dict-of-dicts (same fields: running/ess_on/abnormal/
// hz/auto_mode/vfd_mode).
type Actuator struct {
	Name string
	Kind ActuatorKind

	Running bool // pumps only
	RunFwd  bool // fans only
	RunBwd  bool // fans only

	EssOn       bool
	Abnormal    bool
	CommandedHz float64
	AutoMode    bool
	VFDMode     bool

	RatedCurrentA float64 // nameplate current, VFD telemetry baseline

	NumStarts  uint32
	KWhCounter uint32
	RunHours   uint32
}

// IsRunning reports whether the actuator is moving air or water,
// regardless of kind.
func (a *Actuator) IsRunning() bool {
	if a.Kind == KindFan {
		return a.RunFwd || a.RunBwd
	}
	return a.Running
}

// EquipmentModel owns the ten actuators behind a single mutex. The
// command poller is the sole writer of run-state and mode, and sets
// CommandedHz when it services a start/stop/bwd command; the VFD
// telemetry emitter slews CommandedHz toward the Edge-AI setpoint.
// This lock is always acquired outermost: it may be held while taking
// the register-store lock, never taken while holding that lock.
type EquipmentModel struct {
	mu        sync.Mutex
	actuators [ActuatorCount]Actuator
}

// NewEquipmentModel builds the ten actuators with the boot defaults of
// spec §6: SWP1/2, FWP1/2, FAN1/2 running, all auto, all VFD.
func NewEquipmentModel() *EquipmentModel {
	m := &EquipmentModel{}
	for i, name := range ActuatorNames {
		kind := KindPump
		if i >= NumPumps {
			kind = KindFan
		}
		a := &m.actuators[i]
		a.Name = name
		a.Kind = kind
		a.AutoMode = true
		a.VFDMode = true
		a.RatedCurrentA = 42.0
		if kind == KindFan {
			a.RatedCurrentA = 35.0
		}
		// NumStarts is lazily seeded by the VFD emitter on its first
		// tick (spec §4.F: "initialized to randint(100,500) if zero").

		if defaultRunning[name] {
			if kind == KindPump {
				a.Running = true
			} else {
				a.RunFwd = true
			}
			a.EssOn = true
			a.CommandedHz = 45.0
		}
	}
	return m
}

// With runs fn while holding the lock, giving callers atomic
// read-modify-write access to a single actuator by index.
func (m *EquipmentModel) With(i int, fn func(a *Actuator)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.actuators[i])
}

// Snapshot returns a value copy of all ten actuators for readers that
// need a consistent view across the whole bank (sensor simulator,
// equipment-status packing, status printer, metrics).
func (m *EquipmentModel) Snapshot() [ActuatorCount]Actuator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actuators
}

// RunningIndices returns the indices of all actuators currently moving
// air or water, used by the VFD anomaly scheduler to pick targets.
func (m *EquipmentModel) RunningIndices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for i := range m.actuators {
		if m.actuators[i].IsRunning() {
			out = append(out, i)
		}
	}
	return out
}
