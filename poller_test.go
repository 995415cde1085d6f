package main

import "testing"

func TestCommandPollerStartsStoppedPump(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	p := NewCommandPoller(store, eq)

	// SWP3 (index 2) is stopped at boot.
	if err := store.WriteCoil(startCoilAddr(2), true); err != nil {
		t.Fatalf("WriteCoil: %v", err)
	}
	p.Poll()

	snap := eq.Snapshot()
	if !snap[2].Running {
		t.Error("SWP3 should be running after a start-coil pulse")
	}
	started, err := store.ReadCoil1(startCoilAddr(2))
	if err != nil {
		t.Fatalf("ReadCoil1: %v", err)
	}
	if started {
		t.Error("start coil should be cleared after being serviced")
	}
}

func TestCommandPollerStopsRunningPump(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	p := NewCommandPoller(store, eq)

	if err := store.WriteCoil(stopCoilAddr(0), true); err != nil {
		t.Fatalf("WriteCoil: %v", err)
	}
	p.Poll()

	snap := eq.Snapshot()
	if snap[0].Running {
		t.Error("SWP1 should be stopped after a stop-coil pulse")
	}
}

func TestCommandPollerFanBackward(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	p := NewCommandPoller(store, eq)

	fanIdx := NumPumps // FAN1
	if err := store.WriteCoil(bwdCoilAddr(fanIdx), true); err != nil {
		t.Fatalf("WriteCoil: %v", err)
	}
	p.Poll()

	snap := eq.Snapshot()
	if !snap[fanIdx].RunBwd || snap[fanIdx].RunFwd {
		t.Errorf("FAN1 expected RunBwd=true,RunFwd=false, got RunBwd=%v RunFwd=%v", snap[fanIdx].RunBwd, snap[fanIdx].RunFwd)
	}
}

func TestCommandPollerModeCoilsAreLevelSensitive(t *testing.T) {
	store := NewRegisterStore()
	eq := NewEquipmentModel()
	p := NewCommandPoller(store, eq)

	if err := store.WriteCoil(autoCoilAddr(0), false); err != nil {
		t.Fatalf("WriteCoil: %v", err)
	}
	if err := store.WriteCoil(vfdCoilAddr(0), true); err != nil {
		t.Fatalf("WriteCoil: %v", err)
	}
	p.Poll()
	p.Poll() // mode coils are not cleared; a second poll should keep the adopted value

	snap := eq.Snapshot()
	if snap[0].AutoMode {
		t.Error("AutoMode should have been adopted as false and stay false")
	}
	v, err := store.ReadCoil1(vfdCoilAddr(0))
	if err != nil {
		t.Fatalf("ReadCoil1: %v", err)
	}
	if !v {
		t.Error("mode coil should not be cleared by the poller")
	}
}
