package main

import "log"

// validateRegisterMap checks the address table for internal
// consistency before the server starts accepting connections: a
// startup-time sanity pass over static constants, not a runtime
// condition.
func validateRegisterMap() {
	if AddrTX7 != AddrTX1+6 {
		log.Fatalf("register map: AddrTX7 (%d) does not follow AddrTX1 (%d) by 6", AddrTX7, AddrTX1)
	}
	if len(defaultThresholds) != ThresholdCount {
		log.Fatalf("register map: defaultThresholds has %d entries, want %d", len(defaultThresholds), ThresholdCount)
	}
	if len(ActuatorNames) != ActuatorCount {
		log.Fatalf("register map: ActuatorNames has %d entries, want %d", len(ActuatorNames), ActuatorCount)
	}
	if NumPumps+NumFans != ActuatorCount {
		log.Fatalf("register map: NumPumps(%d)+NumFans(%d) != ActuatorCount(%d)", NumPumps, NumFans, ActuatorCount)
	}
	base := uint16(AddrVFDBase + VFDBlockSize*(ActuatorCount-1) + VFDBlockSize)
	if int(base) > tableSize {
		log.Fatalf("register map: VFD block table overruns table size (ends at %d)", base)
	}
}

// applyRegisterDefaults seeds the holding-register map with its boot
// values: the alarm thresholds (HR 7000..7009) and the Edge-AI-owned
// VFD diagnostic-score block (HR 5200..5209, 100 each), which the PLC
// itself never writes. Every other register starts at zero. Errors
// are fatal here — they can
// only mean a programming mistake in the address table, not a runtime
// condition, so this is the one place that deviates from "log and
// continue".
//
// HR 5000..5009 (Edge-AI target Hz) is deliberately left at its
// zero-initialized default, matching the original
// (`self.store.setValues(3, 5000, [0]*10)`): 0 means "no setpoint
// written yet", not "stop" — see VFDEmitter.slew's zero-guard.
func applyRegisterDefaults(store *RegisterStore) {
	if err := store.WriteHolding(AddrThresholds, defaultThresholds[:]); err != nil {
		log.Fatalf("defaults: write thresholds: %v", err)
	}

	diag := make([]uint16, EdgeAITargetCount)
	for i := range diag {
		diag[i] = 100
	}
	if err := store.WriteHolding(AddrVFDDiag, diag); err != nil {
		log.Fatalf("defaults: write VFD diag block: %v", err)
	}
}
