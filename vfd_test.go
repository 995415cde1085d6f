package main

import "testing"

func TestVFDEmitterIdleActuatorReportsZeroFrequency(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	applyRegisterDefaults(store)
	anomaly := &VFDAnomalyCycle{}
	v := NewVFDEmitter(store, eq)

	// SWP3 (index 2) is stopped at boot.
	v.Emit(anomaly)

	base := uint16(AddrVFDBase + VFDBlockSize*2)
	raw, err := store.ReadHolding1(base + wFrequency)
	if err != nil {
		t.Fatalf("ReadHolding1: %v", err)
	}
	if RawToHz(raw) != 0 {
		t.Errorf("stopped actuator frequency = %.1f Hz, want 0", RawToHz(raw))
	}
}

func TestVFDEmitterRunningActuatorSeedsNumStarts(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	applyRegisterDefaults(store)
	anomaly := &VFDAnomalyCycle{}
	v := NewVFDEmitter(store, eq)

	v.Emit(anomaly)

	snap := eq.Snapshot()
	if snap[0].NumStarts < 100 || snap[0].NumStarts > 500 {
		t.Errorf("SWP1 NumStarts = %d, want seeded in [100,500]", snap[0].NumStarts)
	}
}

func TestVFDEmitterAppliesAnomalyOverride(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	applyRegisterDefaults(store)
	anomaly := &VFDAnomalyCycle{
		state:    cycleFiring,
		selected: map[int]AnomalyType{0: AnomalyMotorOverheat},
	}
	v := NewVFDEmitter(store, eq)
	v.Emit(anomaly)

	base := uint16(AddrVFDBase)
	raw, err := store.ReadHolding1(base + wMotorThermal)
	if err != nil {
		t.Fatalf("ReadHolding1: %v", err)
	}
	eff := anomalyEffects[AnomalyMotorOverheat]
	if int(raw) < eff.MotorThermal.Lo || int(raw) > eff.MotorThermal.Hi {
		t.Errorf("motor_thermal = %d, want in [%d,%d]", raw, eff.MotorThermal.Lo, eff.MotorThermal.Hi)
	}
}

func TestVFDEmitterSlewNeverOvershootsEdgeAITarget(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	applyRegisterDefaults(store)
	anomaly := &VFDAnomalyCycle{}
	v := NewVFDEmitter(store, eq)

	// SWP1 (index 0) is running, auto+VFD at boot with CommandedHz=45.
	if err := store.WriteHolding1(AddrAITargetHz+0, HzToRaw(60.0)); err != nil {
		t.Fatalf("WriteHolding1: %v", err)
	}

	prev := 45.0
	for i := 0; i < 40; i++ {
		v.Emit(anomaly)
		snap := eq.Snapshot()
		cur := snap[0].CommandedHz
		if diff := cur - prev; diff > 0.5+1e-9 || diff < -0.5-1e-9 {
			t.Fatalf("tick %d: commandedHz moved by %.3f, want |delta| <= 0.5", i, diff)
		}
		if cur > 60.0+1e-9 {
			t.Fatalf("tick %d: commandedHz = %.2f overshot target 60.0", i, cur)
		}
		prev = cur
	}
	snap := eq.Snapshot()
	if snap[0].CommandedHz != 60.0 {
		t.Errorf("commandedHz = %.2f after converging, want 60.0", snap[0].CommandedHz)
	}
}

func TestVFDEmitterSlewHoldsOnZeroTarget(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	applyRegisterDefaults(store)
	anomaly := &VFDAnomalyCycle{}
	v := NewVFDEmitter(store, eq)

	// HR 5000 defaults to 0 ("no setpoint written yet"); the slew must
	// not walk SWP1's CommandedHz down from its boot value of 45.
	for i := 0; i < 5; i++ {
		v.Emit(anomaly)
	}
	snap := eq.Snapshot()
	if snap[0].CommandedHz != 45.0 {
		t.Errorf("commandedHz = %.2f with zero Edge-AI target, want unchanged at 45.0", snap[0].CommandedHz)
	}
}

func TestVFDEmitterOvercurrentAnomalyStaysAboveRated(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	applyRegisterDefaults(store)
	anomaly := &VFDAnomalyCycle{
		state:    cycleFiring,
		selected: map[int]AnomalyType{0: AnomalyOvercurrent},
	}
	v := NewVFDEmitter(store, eq)
	v.Emit(anomaly)

	raw, err := store.ReadHolding1(AddrVFDBase + wMotorCurrent)
	if err != nil {
		t.Fatalf("ReadHolding1: %v", err)
	}
	snap := eq.Snapshot()
	current := float64(raw) / 10.0
	lo := snap[0].RatedCurrentA * 1.15
	hi := snap[0].RatedCurrentA * 1.35
	if current < lo-1e-6 || current > hi+1e-6 {
		t.Errorf("overcurrent motor_current = %.1fA, want in [%.1f,%.1f] (1.15-1.35x rated %.1fA)", current, lo, hi, snap[0].RatedCurrentA)
	}
}

func TestRandintRespectsBounds(t *testing.T) {
	v := NewVFDEmitter(NewRegisterStore(), NewEquipmentModel())
	for i := 0; i < 50; i++ {
		n := randint(v.noise, 5, 5)
		if n != 5 {
			t.Fatalf("randint(5,5) = %d, want 5", n)
		}
	}
}
