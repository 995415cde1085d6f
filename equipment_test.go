package main

import "testing"

func TestNewEquipmentModelBootDefaults(t *testing.T) {
	m := NewEquipmentModel()
	snap := m.Snapshot()

	running := map[string]bool{}
	for _, a := range snap {
		running[a.Name] = a.IsRunning()
	}
	for _, name := range []string{"SWP1", "SWP2", "FWP1", "FWP2", "FAN1", "FAN2"} {
		if !running[name] {
			t.Errorf("%s expected running at boot", name)
		}
	}
	for _, name := range []string{"SWP3", "FWP3", "FAN3", "FAN4"} {
		if running[name] {
			t.Errorf("%s expected stopped at boot", name)
		}
	}
}

func TestActuatorIsRunningByKind(t *testing.T) {
	pump := Actuator{Kind: KindPump, Running: true}
	if !pump.IsRunning() {
		t.Error("running pump should report IsRunning true")
	}
	fan := Actuator{Kind: KindFan, RunFwd: true}
	if !fan.IsRunning() {
		t.Error("fan running forward should report IsRunning true")
	}
	idleFan := Actuator{Kind: KindFan}
	if idleFan.IsRunning() {
		t.Error("idle fan should report IsRunning false")
	}
}

func TestEquipmentModelWithIsAtomic(t *testing.T) {
	m := NewEquipmentModel()
	m.With(0, func(a *Actuator) { a.Running = false })
	snap := m.Snapshot()
	if snap[0].Running {
		t.Error("With should have applied the mutation before Snapshot observed it")
	}
}

func TestRunningIndicesMatchesSnapshot(t *testing.T) {
	m := NewEquipmentModel()
	indices := m.RunningIndices()
	snap := m.Snapshot()
	for _, i := range indices {
		if !snap[i].IsRunning() {
			t.Errorf("actuator %d listed as running but snapshot disagrees", i)
		}
	}
}
