package main

import (
	"log"
	"math/rand"
	"time"
)

// CommandPoller is the 10 Hz coil scan: it translates momentary
// start/stop/bwd coil transitions into Equipment-Model mutations and
// mirrors the two level-sensitive mode coils, applying a registry-of-
// addressable-things idiom to coils instead of holding-register fields.
type CommandPoller struct {
	store     *RegisterStore
	equipment *EquipmentModel
	noise     *rand.Rand
}

func NewCommandPoller(store *RegisterStore, eq *EquipmentModel) *CommandPoller {
	return &CommandPoller{store: store, equipment: eq, noise: rand.New(rand.NewSource(time.Now().UnixNano() ^ 0x1234))}
}

// Poll runs exactly one scan of all ten actuators' control coils. A
// panic during the scan is logged and the scan skipped; the next poll
// proceeds.
func (p *CommandPoller) Poll() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("poller: scan panicked: %v (skipping)", r)
		}
	}()

	for i := 0; i < ActuatorCount; i++ {
		if i < NumPumps {
			p.pollPump(i)
		} else {
			p.pollFan(i)
		}
		p.pollModeCoils(i)
	}
}

func (p *CommandPoller) pollPump(i int) {
	start, err := p.store.ReadCoil1(startCoilAddr(i))
	if err != nil {
		log.Printf("poller: read start coil %d: %v", i, err)
		return
	}
	stop, err := p.store.ReadCoil1(stopCoilAddr(i))
	if err != nil {
		log.Printf("poller: read stop coil %d: %v", i, err)
		return
	}

	if start {
		p.equipment.With(i, func(a *Actuator) {
			if !a.Running {
				a.Running = true
				a.EssOn = true
				a.CommandedHz = 45 + uniform(p.noise, -2, 2)
				log.Printf("poller: %s START -> running at %.1f Hz", a.Name, a.CommandedHz)
			}
		})
		p.clearCoil(startCoilAddr(i))
	}
	if stop {
		p.equipment.With(i, func(a *Actuator) {
			if a.Running {
				a.Running = false
				a.EssOn = false
				a.CommandedHz = 0
				log.Printf("poller: %s STOP -> stopped", a.Name)
			}
		})
		p.clearCoil(stopCoilAddr(i))
	}
}

func (p *CommandPoller) pollFan(i int) {
	start, err := p.store.ReadCoil1(startCoilAddr(i))
	if err != nil {
		log.Printf("poller: read start coil %d: %v", i, err)
		return
	}
	stop, err := p.store.ReadCoil1(stopCoilAddr(i))
	if err != nil {
		log.Printf("poller: read stop coil %d: %v", i, err)
		return
	}
	bwd, err := p.store.ReadCoil1(bwdCoilAddr(i))
	if err != nil {
		log.Printf("poller: read bwd coil %d: %v", i, err)
		return
	}

	if start {
		p.equipment.With(i, func(a *Actuator) {
			a.RunFwd = true
			a.RunBwd = false
			a.CommandedHz = 45 + uniform(p.noise, -2, 2)
			log.Printf("poller: %s FWD START -> running at %.1f Hz", a.Name, a.CommandedHz)
		})
		p.clearCoil(startCoilAddr(i))
	}
	if stop {
		p.equipment.With(i, func(a *Actuator) {
			a.RunFwd = false
			a.RunBwd = false
			a.CommandedHz = 0
			log.Printf("poller: %s STOP -> stopped", a.Name)
		})
		p.clearCoil(stopCoilAddr(i))
	}
	if bwd {
		p.equipment.With(i, func(a *Actuator) {
			a.RunFwd = false
			a.RunBwd = true
			a.CommandedHz = 45 + uniform(p.noise, -2, 2)
			log.Printf("poller: %s BWD START -> running at %.1f Hz", a.Name, a.CommandedHz)
		})
		p.clearCoil(bwdCoilAddr(i))
	}
}

// pollModeCoils adopts the current value of the level-sensitive
// auto/vfd coils as Equipment-Model state, logging on the edge. These
// coils are never cleared — that's the distinction from the momentary
// start/stop/bwd coils above (spec §4.H, §9).
func (p *CommandPoller) pollModeCoils(i int) {
	auto, err := p.store.ReadCoil1(autoCoilAddr(i))
	if err != nil {
		log.Printf("poller: read auto coil %d: %v", i, err)
		return
	}
	vfd, err := p.store.ReadCoil1(vfdCoilAddr(i))
	if err != nil {
		log.Printf("poller: read vfd coil %d: %v", i, err)
		return
	}

	p.equipment.With(i, func(a *Actuator) {
		if a.AutoMode != auto {
			a.AutoMode = auto
			mode := "MANUAL"
			if auto {
				mode = "AUTO"
			}
			log.Printf("poller: %s mode -> %s", a.Name, mode)
		}
		if a.VFDMode != vfd {
			a.VFDMode = vfd
			mode := "BYPASS"
			if vfd {
				mode = "VFD"
			}
			log.Printf("poller: %s drive mode -> %s", a.Name, mode)
		}
	})
}

func (p *CommandPoller) clearCoil(addr uint16) {
	if err := p.store.WriteCoil(addr, false); err != nil {
		log.Printf("poller: clear coil %d: %v", addr, err)
	}
}
