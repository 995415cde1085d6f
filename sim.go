package main

import (
	"log"
	"math"
	"math/rand"
	"time"
)

// TempCycle drives a sinusoidal temperature per spec §3/§4.D:
// cyclicTemp(k) = mid + amp*sin(2π*(simTick+phase)/period).
type TempCycle struct {
	Min, Max   float64
	PeriodS    float64
	PhaseS     float64
}

func (c TempCycle) mid() float64 { return (c.Min + c.Max) / 2 }
func (c TempCycle) amp() float64 { return (c.Max - c.Min) / 2 }

func (c TempCycle) value(simTick int64) float64 {
	return c.mid() + c.amp()*math.Sin(2*math.Pi*(float64(simTick)+c.PhaseS)/c.PeriodS)
}

// TX cycles and the load cycle, per spec §6 defaults.
var (
	cycleTX4 = TempCycle{Min: 43, Max: 47, PeriodS: 180, PhaseS: 0}
	cycleTX5 = TempCycle{Min: 33, Max: 37, PeriodS: 180, PhaseS: 60}
	cycleTX6 = TempCycle{Min: 38, Max: 48, PeriodS: 180, PhaseS: 0}
	cycleLoad = TempCycle{Min: 15, Max: 45, PeriodS: 180, PhaseS: 0}
)

const (
	seawaterTemp = 24.0
	ambientTemp  = 28.0
)

func uniform(rnd *rand.Rand, a, b float64) float64 {
	return a + rnd.Float64()*(b-a)
}

// SensorSimulator is the 1 Hz tick loop of spec §4.D: it advances the
// anomaly schedulers, computes seven temperatures, one pressure, and
// the main-engine load, encodes them into HR 10..19, then runs the
// status-pack, VFD emission, and alarm-detection passes in order
// (spec §4.D steps 8-10, §5 ordering guarantee).
type SensorSimulator struct {
	store     *RegisterStore
	equipment *EquipmentModel
	sensorAl  *SensorAlarmCycle
	vfdAl     *VFDAnomalyCycle
	vfd       *VFDEmitter
	alarms    *AlarmDetector

	noise *rand.Rand

	simTick     int64
	prevMELoad  float64
}

func NewSensorSimulator(store *RegisterStore, eq *EquipmentModel, sensorAl *SensorAlarmCycle, vfdAl *VFDAnomalyCycle, vfd *VFDEmitter, alarms *AlarmDetector) *SensorSimulator {
	return &SensorSimulator{
		store:      store,
		equipment:  eq,
		sensorAl:   sensorAl,
		vfdAl:      vfdAl,
		vfd:        vfd,
		alarms:     alarms,
		noise:      rand.New(rand.NewSource(time.Now().UnixNano())),
		prevMELoad: cycleLoad.value(0),
	}
}

// Tick runs exactly one iteration of the sensor simulation tick.
// Errors are logged and swallowed per spec §7 ("internal simulation
// exceptions are logged and the tick skipped; the next tick
// proceeds") — the caller's loop never aborts on a Tick error.
func (s *SensorSimulator) Tick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("sim: tick %d panicked: %v (skipping)", s.simTick, r)
		}
	}()

	s.simTick++

	// Step 2: advance schedulers before computing values.
	s.sensorAl.Advance()
	s.vfdAl.Advance(s.equipment.RunningIndices())

	overrides := s.sensorAl.ActiveOverrides()

	// Step 3: heat load factor from the previous tick's meLoad.
	heatLoadFactor := s.prevMELoad / 60.0

	tx1 := s.computeTX1(overrides, heatLoadFactor)
	tx2 := s.computeTXWithCoeff("TX2", overrides, tx1, heatLoadFactor, 8.0)
	tx3 := s.computeTXWithCoeff("TX3", overrides, tx1, heatLoadFactor, 6.0)
	tx4 := s.computeCyclic("TX4", overrides, cycleTX4)
	tx5 := s.computeCyclic("TX5", overrides, cycleTX5)
	tx6 := s.computeCyclic("TX6", overrides, cycleTX6)
	tx7 := s.computeTX7(overrides)

	px1 := s.computePX1(overrides, heatLoadFactor)
	meLoad := s.computeMELoad(overrides)

	if err := s.store.WriteHolding(AddrTX1, []uint16{
		TempToRaw(tx1), TempToRaw(tx2), TempToRaw(tx3),
		TempToRaw(tx4), TempToRaw(tx5), TempToRaw(tx6), TempToRaw(tx7),
	}); err != nil {
		log.Printf("sim: write TX block: %v", err)
	}
	if err := s.store.WriteHolding1(AddrPX1, PressureToRaw(px1)); err != nil {
		log.Printf("sim: write PX1: %v", err)
	}
	if err := s.store.WriteHolding1(AddrMELoad, PercentToRaw(meLoad)); err != nil {
		log.Printf("sim: write meLoad: %v", err)
	}

	s.prevMELoad = meLoad

	packEquipmentStatus(s.store, s.equipment)
	s.vfd.Emit(s.vfdAl)
	s.alarms.Detect()

	return nil
}

func (s *SensorSimulator) computeTX1(overrides []AlarmCatalogEntry, _ float64) float64 {
	if e, ok := overrideFor(overrides, "TX1"); ok {
		return e.Override + uniform(s.noise, -e.Noise, e.Noise)
	}
	return seawaterTemp + uniform(s.noise, -0.5, 0.5)
}

func (s *SensorSimulator) computeTXWithCoeff(name string, overrides []AlarmCatalogEntry, tx1, heatLoadFactor, coeff float64) float64 {
	if e, ok := overrideFor(overrides, name); ok {
		return e.Override + uniform(s.noise, -e.Noise, e.Noise)
	}
	return math.Min(tx1+coeff*heatLoadFactor+uniform(s.noise, -0.5, 0.5), 48.5)
}

func (s *SensorSimulator) computeCyclic(name string, overrides []AlarmCatalogEntry, cycle TempCycle) float64 {
	if e, ok := overrideFor(overrides, name); ok {
		return e.Override + uniform(s.noise, -e.Noise, e.Noise)
	}
	return cycle.value(s.simTick) + uniform(s.noise, -0.3, 0.3)
}

func (s *SensorSimulator) computeTX7(overrides []AlarmCatalogEntry) float64 {
	if e, ok := overrideFor(overrides, "TX7"); ok {
		return e.Override + uniform(s.noise, -e.Noise, e.Noise)
	}
	return ambientTemp + uniform(s.noise, -1.0, 1.0)
}

func (s *SensorSimulator) computePX1(overrides []AlarmCatalogEntry, heatLoadFactor float64) float64 {
	for _, e := range overrides {
		if e.Sensor == "PX1" {
			return e.Override
		}
	}
	nSWPRunning := 0
	snap := s.equipment.Snapshot()
	for i := 0; i < NumSWP; i++ {
		if snap[i].Running {
			nSWPRunning++
		}
	}
	px1 := 1.5 + 0.5*float64(nSWPRunning) + 0.3*heatLoadFactor + uniform(s.noise, -0.1, 0.1)
	return clamp(px1, 1.5, 3.5)
}

func (s *SensorSimulator) computeMELoad(overrides []AlarmCatalogEntry) float64 {
	if e, ok := overrideFor(overrides, "PU1"); ok {
		return e.Override + uniform(s.noise, -e.Noise, e.Noise)
	}
	return cycleLoad.value(s.simTick)
}

// packEquipmentStatus writes HR 4000..4001 from the equipment model,
// per the bit layout of spec §6 (ported directly from the original
// simulator's update_equipment_status).
func packEquipmentStatus(store *RegisterStore, eq *EquipmentModel) {
	snap := eq.Snapshot()
	var w0, w1 uint16

	setBit := func(w *uint16, bit int, v bool) {
		if v {
			*w |= 1 << uint(bit)
		}
	}

	// HR4000: SWP1{0,1,2}, SWP2{3,4,5}, SWP3{6,7,8}, FWP1{9,10,11},
	// FWP2{12,13,14}, FWP3.run{15}.
	setBit(&w0, 0, snap[0].Running)
	setBit(&w0, 1, snap[0].EssOn)
	setBit(&w0, 2, snap[0].Abnormal)
	setBit(&w0, 3, snap[1].Running)
	setBit(&w0, 4, snap[1].EssOn)
	setBit(&w0, 5, snap[1].Abnormal)
	setBit(&w0, 6, snap[2].Running)
	setBit(&w0, 7, snap[2].EssOn)
	setBit(&w0, 8, snap[2].Abnormal)
	setBit(&w0, 9, snap[3].Running)
	setBit(&w0, 10, snap[3].EssOn)
	setBit(&w0, 11, snap[3].Abnormal)
	setBit(&w0, 12, snap[4].Running)
	setBit(&w0, 13, snap[4].EssOn)
	setBit(&w0, 14, snap[4].Abnormal)
	setBit(&w0, 15, snap[5].Running)

	// HR4001: FWP3{ess:0,abn:1}, then FAN1..4 {runFwd,runBwd,abn} x3.
	setBit(&w1, 0, snap[5].EssOn)
	setBit(&w1, 1, snap[5].Abnormal)
	for i := 0; i < NumFans; i++ {
		base := 2 + i*3
		fan := snap[NumPumps+i]
		setBit(&w1, base, fan.RunFwd)
		setBit(&w1, base+1, fan.RunBwd)
		setBit(&w1, base+2, fan.Abnormal)
	}

	if err := store.WriteHolding(AddrEquipStatus0, []uint16{w0, w1}); err != nil {
		log.Printf("sim: write equipment status: %v", err)
	}
}
