package main

import "testing"

func TestTempRoundTrip(t *testing.T) {
	cases := []float64{0, 24.0, -5.3, 48.5, 52.0}
	for _, c := range cases {
		raw := TempToRaw(c)
		got := RawToTemp(raw)
		if diff := got - c; diff > 0.1 || diff < -0.1 {
			t.Errorf("TempToRaw/RawToTemp(%v) round-tripped to %v", c, got)
		}
	}
}

func TestTempNegativeEncodesAsTwosComplement(t *testing.T) {
	raw := TempToRaw(-10.0)
	if raw != uint16(int16(-100)) {
		t.Errorf("TempToRaw(-10.0) = %#04x, want two's-complement -100", raw)
	}
}

func TestPressureRoundTrip(t *testing.T) {
	raw := PressureToRaw(2.5)
	got := RawToPressure(raw)
	if diff := got - 2.5; diff > 0.01 || diff < -0.01 {
		t.Errorf("PressureToRaw/RawToPressure(2.5) round-tripped to %v", got)
	}
}

func TestPercentRoundTrip(t *testing.T) {
	raw := PercentToRaw(45.0)
	got := RawToPercent(raw)
	if diff := got - 45.0; diff > 0.01 || diff < -0.01 {
		t.Errorf("PercentToRaw/RawToPercent(45.0) round-tripped to %v", got)
	}
}

func TestSaturateRawClampsToUint16Union(t *testing.T) {
	if got := saturateRaw(1e9); got != 65535 {
		t.Errorf("saturateRaw(1e9) = %d, want 65535", got)
	}
	if got := saturateRaw(-1e9); got != -32768 {
		t.Errorf("saturateRaw(-1e9) = %d, want -32768", got)
	}
}

func TestSplitJoinU32LE(t *testing.T) {
	v := uint32(0x1234ABCD)
	lo, hi := splitU32LE(v)
	if joinU32LE(lo, hi) != v {
		t.Errorf("splitU32LE/joinU32LE round trip failed for %#x", v)
	}
}

func TestClamp(t *testing.T) {
	if clamp(5, 1, 3) != 3 {
		t.Error("clamp should cap at hi")
	}
	if clamp(-5, 1, 3) != 1 {
		t.Error("clamp should floor at lo")
	}
	if clamp(2, 1, 3) != 2 {
		t.Error("clamp should pass through in-range values")
	}
}
