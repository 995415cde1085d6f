package main

import (
	"log"
	"math/rand"
	"time"
)

// VFD block word offsets (spec §4.F/§6: 20 words per actuator at
// 160+20*i). kWh at words 9/10 and run-hours at words 18/19 are named
// explicitly in spec; the rest of the layout is this module's own
// choice, made to fit frequency, motor current, phase currents,
// thermals, torque, dc link and num_starts into the block with four
// words spare for future telemetry. No power word is emitted.
const (
	wFrequency       = 0
	wMotorCurrent    = 1
	wMotorThermal    = 2
	wHeatsink        = 3
	wInverterThermal = 4
	wSystemTemp      = 5
	wTorque          = 6
	wPhaseU          = 7
	wPhaseV          = 8
	wKWhLo           = 9
	wKWhHi           = 10
	wNumStarts       = 11
	wDCLink          = 12
	wPhaseW          = 13
	// 14..17 reserved
	wRunHoursLo = 18
	wRunHoursHi = 19
)

// VFDEmitter is the per-actuator telemetry pass of spec §4.F: it
// slews CommandedHz toward the Edge-AI setpoint, synthesizes normal-
// running telemetry, applies the active VFD-anomaly override table,
// and advances the kWh/run-hour counters.
type VFDEmitter struct {
	store     *RegisterStore
	equipment *EquipmentModel
	noise     *rand.Rand
}

func NewVFDEmitter(store *RegisterStore, eq *EquipmentModel) *VFDEmitter {
	return &VFDEmitter{store: store, equipment: eq, noise: rand.New(rand.NewSource(time.Now().UnixNano() ^ 0x5a5a5a5a))}
}

// Emit runs one tick of telemetry emission for all ten actuators.
func (v *VFDEmitter) Emit(anomaly *VFDAnomalyCycle) {
	for i := 0; i < ActuatorCount; i++ {
		v.emitOne(i, anomaly)
	}
}

func (v *VFDEmitter) emitOne(i int, anomaly *VFDAnomalyCycle) {
	base := uint16(AddrVFDBase + VFDBlockSize*i)

	var block [VFDBlockSize]uint16
	var running bool
	var actuatorAuto, actuatorVFD bool

	v.equipment.With(i, func(a *Actuator) {
		running = a.IsRunning()
		actuatorAuto = a.AutoMode
		actuatorVFD = a.VFDMode

		v.slew(a, i, running)

		actualHz := 0.0
		if running {
			actualHz = clamp(a.CommandedHz+uniform(v.noise, -0.3, 0.3), 0, 60)
		}
		block[wFrequency] = HzToRaw(actualHz)

		if !running {
			block[wHeatsink] = 25
			block[wSystemTemp] = 25
			v.writeCounters(a, &block, false)
			return
		}

		motorCurrent := a.RatedCurrentA * uniform(v.noise, 0.70, 0.85)
		block[wMotorCurrent] = uint16(int64(motorCurrent * 10))
		block[wMotorThermal] = uint16(randint(v.noise, 50, 75))
		block[wHeatsink] = uint16(randint(v.noise, 40, 55))
		block[wInverterThermal] = uint16(randint(v.noise, 45, 70))
		block[wSystemTemp] = uint16(randint(v.noise, 35, 50))
		block[wTorque] = uint16(int64(actualHz*2 + uniform(v.noise, -5, 5)))

		perPhase := motorCurrent / 1.7320508075688772 // /√3
		block[wPhaseU] = uint16(int64((perPhase + uniform(v.noise, -2, 2)) * 10))
		block[wPhaseV] = uint16(int64((perPhase + uniform(v.noise, -2, 2)) * 10))
		block[wPhaseW] = uint16(int64((perPhase + uniform(v.noise, -2, 2)) * 10))

		block[wDCLink] = uint16(randint(v.noise, 540, 560))

		if t, ok := anomaly.TypeFor(i); ok {
			v.applyAnomaly(t, &block, a.RatedCurrentA)
		}

		v.writeCounters(a, &block, true)
	})

	if err := v.store.WriteHolding(base, block[:]); err != nil {
		log.Printf("vfd: write block for actuator %d: %v", i, err)
	}
	if err := v.store.WriteCoil(autoCoilAddr(i), actuatorAuto); err != nil {
		log.Printf("vfd: mirror auto coil %d: %v", i, err)
	}
	if err := v.store.WriteCoil(vfdCoilAddr(i), actuatorVFD); err != nil {
		log.Printf("vfd: mirror vfd coil %d: %v", i, err)
	}
}

// slew moves a.CommandedHz toward the Edge-AI setpoint at ±0.5 Hz/s
// when auto+VFD+running, per spec §4.F. A target register of 0 means
// no setpoint has been written yet, not "stop" (plc_simulator.py's
// update_vfd_data guards on ai_freq_raw > 0 for the same reason) — hold
// CommandedHz unchanged rather than slewing every auto+VFD actuator to
// a standstill the first time this register reads back zero.
func (v *VFDEmitter) slew(a *Actuator, i int, running bool) {
	if !(a.AutoMode && a.VFDMode && running) {
		return
	}
	raw, err := v.store.ReadHolding1(uint16(AddrAITargetHz + i))
	if err != nil || raw == 0 {
		return
	}
	target := RawToHz(raw)
	delta := target - a.CommandedHz
	if delta > 0.5 {
		a.CommandedHz += 0.5
	} else if delta < -0.5 {
		a.CommandedHz -= 0.5
	} else {
		a.CommandedHz = target
	}
	a.CommandedHz = clamp(a.CommandedHz, 0, 60)
}

func (v *VFDEmitter) writeCounters(a *Actuator, block *[VFDBlockSize]uint16, running bool) {
	if a.NumStarts == 0 {
		a.NumStarts = uint32(randint(v.noise, 100, 500))
	}
	if running {
		a.KWhCounter++
		a.RunHours++
	}
	block[wNumStarts] = uint16(a.NumStarts)
	block[wKWhLo], block[wKWhHi] = splitU32LE(a.KWhCounter)
	block[wRunHoursLo], block[wRunHoursHi] = splitU32LE(a.RunHours)
}

func (v *VFDEmitter) applyAnomaly(t AnomalyType, block *[VFDBlockSize]uint16, ratedCurrentA float64) {
	eff, ok := anomalyEffects[t]
	if !ok {
		return
	}
	setIfNonZero := func(w int, r AnomalyRange) {
		if r.Hi == 0 && r.Lo == 0 {
			return
		}
		block[w] = uint16(r.sample(v.noise))
	}
	setIfNonZero(wMotorThermal, eff.MotorThermal)
	setIfNonZero(wHeatsink, eff.Heatsink)
	setIfNonZero(wInverterThermal, eff.InverterThermal)
	setIfNonZero(wSystemTemp, eff.SystemTemp)
	setIfNonZero(wTorque, eff.Torque)
	setIfNonZero(wDCLink, eff.DCLink)

	// current ratio 1.15..1.35 x rated (spec §4.E), not x the
	// already-sampled 0.70..0.85xrated normal current — that would let
	// "overcurrent" land below rated current.
	if eff.CurrentRatioPct.Hi != 0 {
		ratio := float64(eff.CurrentRatioPct.sample(v.noise)) / 100.0
		current := ratedCurrentA * ratio
		block[wMotorCurrent] = uint16(int64(current * 10))
	}
	if eff.PhaseImbalancePct.Hi != 0 {
		imbalancePct := float64(eff.PhaseImbalancePct.sample(v.noise))
		base := float64(block[wPhaseU])
		block[wPhaseV] = uint16(int64(base * (1 + imbalancePct/100.0)))
		block[wPhaseW] = uint16(int64(base * (1 - imbalancePct/100.0/2)))
	}
}

func randint(rnd *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return rnd.Intn(hi-lo+1) + lo
}
