package main

import (
	"math/rand"
	"sync"
)

// AlarmCatalogEntry is one of the 10 forceable sensor-alarm conditions
// (spec §3, §4.D/E). Code/Kind match the Alarm Detector's own
// numbering (§4.G) so a fired entry can be cross-referenced directly
// against a RecentAlarm ring entry. Override values are derived from
// the default thresholds (HR 7000..7009, spec §6): TX1..TX7 override
// at threshold+2.0°C (the two values spec.md gives explicitly, TX1=32
// and TX2=52, both match threshold+2 exactly); PX1/PU1 overrides are
// stated directly in spec §4.D.
var AlarmCatalog = [10]AlarmCatalogEntry{
	{Code: 1, Kind: 1, Sensor: "TX1", Override: 32.0, Noise: 0.5},
	{Code: 2, Kind: 1, Sensor: "TX2", Override: 52.0, Noise: 0.5},
	{Code: 3, Kind: 1, Sensor: "TX3", Override: 52.0, Noise: 0.5},
	{Code: 4, Kind: 1, Sensor: "TX4", Override: 52.0, Noise: 0.5},
	{Code: 5, Kind: 1, Sensor: "TX5", Override: 42.0, Noise: 0.5},
	{Code: 6, Kind: 1, Sensor: "TX6", Override: 52.0, Noise: 0.5},
	{Code: 7, Kind: 1, Sensor: "TX7", Override: 42.0, Noise: 0.5},
	{Code: 10, Kind: 2, Sensor: "PX1", Override: 1.0, Noise: 0},
	{Code: 10, Kind: 1, Sensor: "PX1", Override: 4.2, Noise: 0},
	{Code: 11, Kind: 1, Sensor: "PU1", Override: 90.0, Noise: 1.0},
}

type AlarmCatalogEntry struct {
	Code     int
	Kind     int // 1=high, 2=low
	Sensor   string
	Override float64
	Noise    float64 // uniform noise half-width applied around Override
}

// cycleState is shared by both schedulers in this file (spec §4.E:
// "Two independent state machines ... states = {Idle, Firing}").
type cycleState int

const (
	cycleIdle cycleState = iota
	cycleFiring
)

const (
	sensorAlarmIdleTicks   = 90
	sensorAlarmFiringTicks = 15
	vfdAnomalyIdleTicks    = 60
	vfdAnomalyFiringTicks  = 60
)

// SensorAlarmCycle is the state machine that periodically forces 2
// sensors into their alarm reading (spec §4.E).
type SensorAlarmCycle struct {
	mu          sync.Mutex
	state       cycleState
	counter     int
	duration    int
	cycleNumber int
	selected    []int // indices into AlarmCatalog
}

// Advance runs one tick of the sensor-alarm state machine. Call this
// before computing sensor values so overrides apply within the same
// tick (spec §4.D step 2).
func (c *SensorAlarmCycle) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case cycleIdle:
		c.counter++
		if c.counter >= sensorAlarmIdleTicks {
			c.cycleNumber++
			c.state = cycleFiring
			c.duration = 0
			sel := rand.New(rand.NewSource(int64(c.cycleNumber)))
			c.selected = sel.Perm(len(AlarmCatalog))[:2]
		}
	case cycleFiring:
		c.duration++
		if c.duration >= sensorAlarmFiringTicks {
			c.state = cycleIdle
			c.counter = 0
			c.selected = nil
		}
	}
}

// ActiveOverrides returns the catalog entries currently forced onto
// the register bank, or nil when the cycle is idle.
func (c *SensorAlarmCycle) ActiveOverrides() []AlarmCatalogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != cycleFiring {
		return nil
	}
	out := make([]AlarmCatalogEntry, len(c.selected))
	for i, idx := range c.selected {
		out[i] = AlarmCatalog[idx]
	}
	return out
}

// overrideFor finds the active override (if any) for a given sensor
// name; PX1 can have both a high and a low entry selected in the same
// catalog draw (spec treats them as distinct entries), so callers that
// care about kind should inspect the slice directly instead.
func overrideFor(entries []AlarmCatalogEntry, sensor string) (AlarmCatalogEntry, bool) {
	for _, e := range entries {
		if e.Sensor == sensor {
			return e, true
		}
	}
	return AlarmCatalogEntry{}, false
}

// AnomalyType enumerates the six VFD fault archetypes of spec §4.E.
type AnomalyType int

const (
	AnomalyMotorOverheat AnomalyType = iota
	AnomalyInverterOverheat
	AnomalyCurrentImbalance
	AnomalyOvercurrent
	AnomalyHighLoad
	AnomalyDCVoltageAbnormal
)

// AnomalyRange is an inclusive integer range sampled with
// rand.Intn(hi-lo+1)+lo, matching Python's random.randint(lo,hi).
type AnomalyRange struct{ Lo, Hi int }

func (r AnomalyRange) sample(rnd *rand.Rand) int {
	if r.Hi <= r.Lo {
		return r.Lo
	}
	return rnd.Intn(r.Hi-r.Lo+1) + r.Lo
}

// AnomalyEffect is the per-type perturbation table of spec §4.E.
// Fields left as a zero Range (Lo==Hi==0) are not perturbed by that
// type; the emitter falls back to the normal-running formula for them.
type AnomalyEffect struct {
	MotorThermal     AnomalyRange
	Heatsink         AnomalyRange
	InverterThermal  AnomalyRange
	PhaseImbalancePct AnomalyRange // current_imbalance only
	CurrentRatioPct  AnomalyRange // overcurrent only: x100, e.g. 115..135
	SystemTemp       AnomalyRange // motor/inverter overheat only
	Torque           AnomalyRange // high_load only
	DCLink           AnomalyRange // dc_voltage_abnormal only
	Severity         int
}

var anomalyEffects = map[AnomalyType]AnomalyEffect{
	AnomalyMotorOverheat: {
		MotorThermal: AnomalyRange{95, 110}, Heatsink: AnomalyRange{72, 85},
		InverterThermal: AnomalyRange{85, 95}, SystemTemp: AnomalyRange{55, 70}, Severity: 2,
	},
	AnomalyInverterOverheat: {
		MotorThermal: AnomalyRange{82, 92}, Heatsink: AnomalyRange{75, 88},
		InverterThermal: AnomalyRange{95, 115}, SystemTemp: AnomalyRange{58, 72}, Severity: 2,
	},
	AnomalyCurrentImbalance: {
		MotorThermal: AnomalyRange{83, 93}, Heatsink: AnomalyRange{62, 72},
		PhaseImbalancePct: AnomalyRange{18, 35}, Severity: 2,
	},
	AnomalyOvercurrent: {
		MotorThermal: AnomalyRange{98, 115}, Heatsink: AnomalyRange{74, 86},
		InverterThermal: AnomalyRange{88, 100}, CurrentRatioPct: AnomalyRange{115, 135}, Severity: 3,
	},
	AnomalyHighLoad: {
		MotorThermal: AnomalyRange{85, 98}, Heatsink: AnomalyRange{65, 75},
		Torque: AnomalyRange{140, 180}, Severity: 1,
	},
	AnomalyDCVoltageAbnormal: {
		MotorThermal: AnomalyRange{82, 92}, InverterThermal: AnomalyRange{83, 93},
		DCLink: AnomalyRange{480, 520}, Severity: 2,
	},
}

// VFDAnomalyCycle is the state machine that periodically forces 1-2
// running drives into one of the six anomaly archetypes (spec §4.E).
type VFDAnomalyCycle struct {
	mu          sync.Mutex
	state       cycleState
	counter     int
	duration    int
	cycleNumber int
	selected    map[int]AnomalyType // actuator index -> type
}

// Advance runs one tick of the VFD-anomaly state machine. running is
// the set of actuator indices currently moving air/water.
func (c *VFDAnomalyCycle) Advance(running []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case cycleIdle:
		c.counter++
		if c.counter >= vfdAnomalyIdleTicks {
			if len(running) == 0 {
				// Retry next tick without resetting the counter
				// (spec §4.E): stay in Idle, but don't let counter
				// advance further than the trigger point.
				c.counter = vfdAnomalyIdleTicks
				return
			}
			c.cycleNumber++
			c.state = cycleFiring
			c.duration = 0
			sel := rand.New(rand.NewSource(int64(c.cycleNumber)))
			n := 1
			if len(running) >= 2 {
				n = sel.Intn(2) + 1 // uniform{1, min(2,nRunning)}
			}
			perm := sel.Perm(len(running))[:n]
			c.selected = make(map[int]AnomalyType, n)
			for _, p := range perm {
				c.selected[running[p]] = AnomalyType(sel.Intn(len(anomalyEffects)))
			}
		}
	case cycleFiring:
		c.duration++
		if c.duration >= vfdAnomalyFiringTicks {
			c.state = cycleIdle
			c.counter = 0
			c.selected = nil
		}
	}
}

// TypeFor reports whether actuator i is under an active anomaly and,
// if so, which type.
func (c *VFDAnomalyCycle) TypeFor(i int) (AnomalyType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != cycleFiring {
		return 0, false
	}
	t, ok := c.selected[i]
	return t, ok
}
