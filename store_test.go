package main

import "testing"

func TestRegisterStoreHoldingRoundTrip(t *testing.T) {
	s := NewRegisterStore()
	if err := s.WriteHolding(100, []uint16{1, 2, 3}); err != nil {
		t.Fatalf("WriteHolding: %v", err)
	}
	got, err := s.ReadHolding(100, 3)
	if err != nil {
		t.Fatalf("ReadHolding: %v", err)
	}
	want := []uint16{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadHolding[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRegisterStoreOutOfRangeRejected(t *testing.T) {
	s := NewRegisterStore()
	_, err := s.ReadHolding(65534, 10)
	if err == nil {
		t.Fatal("expected out-of-range error reading past table end")
	}
	se, ok := err.(*SimError)
	if !ok {
		t.Fatalf("expected *SimError, got %T (%v)", err, err)
	}
	if se.Kind != OutOfRange {
		t.Errorf("expected OutOfRange kind, got %v", se.Kind)
	}
}

func TestRegisterStoreCoilsRoundTrip(t *testing.T) {
	s := NewRegisterStore()
	if err := s.WriteCoil(64064, true); err != nil {
		t.Fatalf("WriteCoil: %v", err)
	}
	got, err := s.ReadCoil1(64064)
	if err != nil {
		t.Fatalf("ReadCoil1: %v", err)
	}
	if !got {
		t.Error("expected coil to read back true")
	}
}

func TestRegisterStoreDiscreteInputsDefaultZero(t *testing.T) {
	s := NewRegisterStore()
	vals, err := s.ReadDiscrete(0, 5)
	if err != nil {
		t.Fatalf("ReadDiscrete: %v", err)
	}
	for i, v := range vals {
		if v {
			t.Errorf("discrete input %d defaulted true, want false", i)
		}
	}
}
