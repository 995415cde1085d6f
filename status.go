package main

import "log"

// printStatus logs a human-readable one-liner summarizing plant state,
// in the shape of the original simulator's print_status: which
// actuators are running, and the headline TX1/TX6/PX1 readings. The
// caller sets the cadence (every -status-every simulation ticks).
func printStatus(store *RegisterStore, eq *EquipmentModel) {
	snap := eq.Snapshot()
	running := make([]string, 0, ActuatorCount)
	for _, a := range snap {
		if a.IsRunning() {
			running = append(running, a.Name)
		}
	}

	tx1raw, err := store.ReadHolding1(AddrTX1)
	if err != nil {
		log.Printf("status: read TX1: %v", err)
		return
	}
	tx6raw, err := store.ReadHolding1(AddrTX1 + 5)
	if err != nil {
		log.Printf("status: read TX6: %v", err)
		return
	}
	px1raw, err := store.ReadHolding1(AddrPX1)
	if err != nil {
		log.Printf("status: read PX1: %v", err)
		return
	}

	log.Printf("status: running=%v TX1=%.1fC TX6=%.1fC PX1=%.2fbar",
		running, RawToTemp(tx1raw), RawToTemp(tx6raw), RawToPressure(px1raw))
}
