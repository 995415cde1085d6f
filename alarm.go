package main

import (
	"log"
	"sync"
	"time"
)

// RecentAlarm is one ring entry (spec §3): code/kind identify the
// condition, actual/threshold are the raw register values that
// tripped it, TS is Unix seconds, AckStatus is always 0 in this
// implementation (spec §9 open question: no ack coil exists yet).
type RecentAlarm struct {
	Code         int
	Kind         int // 1=high, 2=low
	ActualRaw    uint16
	ThresholdRaw uint16
	TS           int64
	AckStatus    int
}

// AlarmDetector compares holding-register sensor values against
// threshold registers, sets the HR 7100/7101 bitmaps, and maintains
// the 10-entry de-duplicated recent-alarm ring (spec §4.G).
type AlarmDetector struct {
	store *RegisterStore

	mu   sync.Mutex
	ring []RecentAlarm
}

func NewAlarmDetector(store *RegisterStore) *AlarmDetector {
	return &AlarmDetector{store: store}
}

// Detect runs one alarm-detection pass. An error reading the register
// store is logged and the rest of the pass is skipped; an error writing
// the status block is logged and the ring is still serialized.
func (d *AlarmDetector) Detect() {
	thresholds, err := d.store.ReadHolding(AddrThresholds, ThresholdCount)
	if err != nil {
		log.Printf("alarm: read thresholds: %v", err)
		return
	}
	temps, err := d.store.ReadHolding(AddrTX1, 7)
	if err != nil {
		log.Printf("alarm: read TX block: %v", err)
		return
	}
	px1raw, err := d.store.ReadHolding1(AddrPX1)
	if err != nil {
		log.Printf("alarm: read PX1: %v", err)
		return
	}
	pu1raw, err := d.store.ReadHolding1(AddrMELoad)
	if err != nil {
		log.Printf("alarm: read meLoad: %v", err)
		return
	}

	var tempBits, pressBits uint16
	var signalled bool

	for i := 0; i < 7; i++ {
		if temps[i] > thresholds[i] {
			tempBits |= 1 << uint(i)
			d.addRecent(i+1, 1, temps[i], thresholds[i])
			signalled = true
		}
	}

	pxLowThresh, pxHighThresh := thresholds[7], thresholds[8]
	pu1Thresh := thresholds[9]

	if float64(px1raw)/pressScale < float64(pxLowThresh)/100 {
		pressBits |= 1 << 0
		d.addRecent(10, 2, px1raw, pxLowThresh)
		signalled = true
	}
	if float64(px1raw)/pressScale > float64(pxHighThresh)/100 {
		pressBits |= 1 << 1
		d.addRecent(10, 1, px1raw, pxHighThresh)
		signalled = true
	}
	if float64(pu1raw)/percentScale > float64(pu1Thresh)/10 {
		pressBits |= 1 << 2
		d.addRecent(11, 1, pu1raw, pu1Thresh)
		signalled = true
	}

	unackCount := d.unackCount()
	newAlarmFlag := uint16(0)
	if signalled {
		newAlarmFlag = 1
	}

	if err := d.store.WriteHolding(AddrAlarmStatus, []uint16{tempBits, pressBits, unackCount, newAlarmFlag}); err != nil {
		log.Printf("alarm: write status: %v", err)
	}
	d.serializeRing()
}

// addRecent appends a new ring entry unless one already exists for
// this (code, kind, ackStatus=0) — the de-duplication key of spec
// §4.G. The oldest entry is evicted once the ring reaches capacity.
func (d *AlarmDetector) addRecent(code, kind int, actual, threshold uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range d.ring {
		if e.Code == code && e.Kind == kind && e.AckStatus == 0 {
			return
		}
	}

	entry := RecentAlarm{
		Code: code, Kind: kind,
		ActualRaw: actual, ThresholdRaw: threshold,
		TS: time.Now().Unix(),
	}
	d.ring = append(d.ring, entry)
	if len(d.ring) > AlarmRingEntries {
		d.ring = d.ring[len(d.ring)-AlarmRingEntries:]
	}
}

func (d *AlarmDetector) unackCount() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n uint16
	for _, e := range d.ring {
		if e.AckStatus == 0 {
			n++
		}
	}
	return n
}

// serializeRing writes the ring into HR 7200..7279 as 10 blocks of 8
// words: [code, kind, actualRaw, thresholdRaw, tsHigh, tsLow,
// ackStatus, 0].
func (d *AlarmDetector) serializeRing() {
	d.mu.Lock()
	ring := make([]RecentAlarm, len(d.ring))
	copy(ring, d.ring)
	d.mu.Unlock()

	var words [AlarmRingEntries * AlarmRingStride]uint16
	for i, e := range ring {
		ts := uint32(e.TS)
		base := i * AlarmRingStride
		words[base+0] = uint16(e.Code)
		words[base+1] = uint16(e.Kind)
		words[base+2] = e.ActualRaw
		words[base+3] = e.ThresholdRaw
		words[base+4] = uint16(ts >> 16)
		words[base+5] = uint16(ts)
		words[base+6] = uint16(e.AckStatus)
		words[base+7] = 0
	}

	if err := d.store.WriteHolding(AddrAlarmRing, words[:]); err != nil {
		log.Printf("alarm: write ring: %v", err)
	}
}
