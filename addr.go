package main

// Register and coil address constants for the ESS engine-room plant.
// Holding-register addresses match the external ABI in spec §6 bit for
// bit; nothing here may change without breaking HMI/Edge-AI clients.
const (
	AddrTX1 = 10 // TX1..TX7, °C x10, signed
	AddrTX7 = 16

	AddrPX1    = 17 // bar x4608
	AddrMELoad = 19 // % x276.48

	AddrVFDBase  = 160 // + 20*i, i=0..9
	VFDBlockSize = 20

	AddrEquipStatus0 = 4000
	AddrEquipStatus1 = 4001

	AddrAITargetHz = 5000 // +i, Hz x10, Ext-owned
	AddrSavings    = 5100 // +i, kW x10, Ext-owned
	AddrVFDDiag    = 5200 // +i, 0..100, Ext-owned
	AddrSysSavings = 5300 // +0..3, % x10, Ext-owned
	AddrCumKWh     = 5400 // +0..1, Ext-owned
	AddrPowerBrk   = 5500 // +0..23, kW x10, Ext-owned
	AddrPowerSnap  = 5620 // +0..9, kW x10, Ext-owned

	AddrThresholds  = 7000 // +0..9
	AddrAlarmStatus = 7100 // [tempBits, pressBits, unackCount, newAlarmFlag]
	AddrAlarmRing   = 7200 // 10 x 8 words

	AlarmRingEntries  = 10
	AlarmRingStride   = 8
	ThresholdCount    = 10
	ActuatorCount     = 10
	NumPumps          = 6
	NumSWP            = 3
	NumFWP            = 3
	NumFans           = 4
	EdgeAITargetCount = 10
)

// Coil addresses. i indexes actuators 0..9 in order
// [SWP1,SWP2,SWP3,FWP1,FWP2,FWP3,FAN1,FAN2,FAN3,FAN4].
const (
	AddrCoilBase = 64064 // start = base+2i, stop = base+2i+1
	AddrFanBwd   = 64084 // +(i-6), fans only (i=6..9)
	AddrAutoCoil = 64160 // +i, level: 1=AUTO
	AddrVFDCoil  = 64320 // +i, level: 1=VFD
)

func startCoilAddr(i int) uint16 { return uint16(AddrCoilBase + 2*i) }
func stopCoilAddr(i int) uint16  { return uint16(AddrCoilBase + 2*i + 1) }
func bwdCoilAddr(i int) uint16   { return uint16(AddrFanBwd + (i - NumPumps)) }
func autoCoilAddr(i int) uint16  { return uint16(AddrAutoCoil + i) }
func vfdCoilAddr(i int) uint16   { return uint16(AddrVFDCoil + i) }

// Network identity, ported from the original PLC simulator's
// ModbusDeviceIdentification block (no FC43 support in the server
// library we bind to, so this is carried as constants + a startup log
// line and a metrics-page footer instead).
const (
	DeviceVendorName    = "OMTech"
	DeviceProductCode   = "ESS-HMI"
	DeviceVendorURL     = "http://www.omtech.com"
	DeviceProductName   = "ESS PLC Simulator"
	DeviceModelName     = "ESS-SIM-001"
	DeviceRevision      = "1.0.0"
	DeviceModbusUnitID  = 3
	DefaultModbusListen = "0.0.0.0:502"
)

// ActuatorNames fixes the canonical actuator order used everywhere:
// coil math, the equipment-status bitfield, and the VFD block index.
var ActuatorNames = [ActuatorCount]string{
	"SWP1", "SWP2", "SWP3", "FWP1", "FWP2", "FWP3", "FAN1", "FAN2", "FAN3", "FAN4",
}

// defaultRunning lists the actuators running at boot (spec §6 defaults).
var defaultRunning = map[string]bool{
	"SWP1": true, "SWP2": true,
	"FWP1": true, "FWP2": true,
	"FAN1": true, "FAN2": true,
}

// defaultThresholds is HR 7000..7009 at boot.
var defaultThresholds = [ThresholdCount]uint16{300, 500, 500, 500, 400, 500, 400, 150, 400, 850}
