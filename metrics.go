package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors regs.go's RegisterRegMetrics/addGauge/addGaugeVec/
// UpdatePrometheus shape: a small registry of named gauges, populated
// from simulated state instead of polled state (SPEC_FULL.md §2).
var (
	regGauges    = map[string]prometheus.Gauge{}
	regGaugeVecs = map[string]*prometheus.GaugeVec{}
)

func RegisterSimMetrics() {
	addGauge("ess_tx_celsius_1", "TX1 seawater inlet temperature (°C)")
	addGaugeVec("ess_tx_celsius", "TXn temperature (°C)", "sensor")
	addGauge("ess_px1_bar", "PX1 seawater discharge pressure (bar)")
	addGauge("ess_me_load_percent", "Main engine load (%)")
	addGaugeVec("ess_actuator_running", "1 if the actuator is moving air/water", "actuator")
	addGaugeVec("ess_actuator_commanded_hz", "Commanded VFD frequency (Hz)", "actuator")
	addGauge("ess_unack_alarm_count", "Unacknowledged recent-alarm count")
	addGauge("ess_new_alarm_flag", "1 if an alarm condition was (re-)signalled this tick")
	addGauge("ess_sensor_alarm_firing", "1 if the sensor-alarm cycle is currently firing")
	addGauge("ess_vfd_anomaly_firing", "1 if the VFD-anomaly cycle is currently firing")

	for _, g := range regGauges {
		prometheus.MustRegister(g)
	}
	for _, gv := range regGaugeVecs {
		prometheus.MustRegister(gv)
	}
}

func addGauge(name, help string) {
	regGauges[name] = prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

func addGaugeVec(name, help string, label string) {
	regGaugeVecs[name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{label})
}

func setGauge(name string, v float64) {
	if g, ok := regGauges[name]; ok {
		g.Set(v)
	}
}

// UpdateSimMetrics is called once per sensor tick to refresh every
// gauge from current register/equipment state.
func UpdateSimMetrics(store *RegisterStore, eq *EquipmentModel, sensorAl *SensorAlarmCycle, vfdAl *VFDAnomalyCycle) {
	temps, err := store.ReadHolding(AddrTX1, 7)
	if err == nil {
		names := []string{"TX1", "TX2", "TX3", "TX4", "TX5", "TX6", "TX7"}
		for i, n := range names {
			regGaugeVecs["ess_tx_celsius"].WithLabelValues(n).Set(RawToTemp(temps[i]))
		}
		setGauge("ess_tx_celsius_1", RawToTemp(temps[0]))
	}
	if raw, err := store.ReadHolding1(AddrPX1); err == nil {
		setGauge("ess_px1_bar", RawToPressure(raw))
	}
	if raw, err := store.ReadHolding1(AddrMELoad); err == nil {
		setGauge("ess_me_load_percent", RawToPercent(raw))
	}

	snap := eq.Snapshot()
	for i, a := range snap {
		_ = i
		running := 0.0
		if a.IsRunning() {
			running = 1.0
		}
		regGaugeVecs["ess_actuator_running"].WithLabelValues(a.Name).Set(running)
		regGaugeVecs["ess_actuator_commanded_hz"].WithLabelValues(a.Name).Set(a.CommandedHz)
	}

	if status, err := store.ReadHolding(AddrAlarmStatus, 4); err == nil {
		setGauge("ess_unack_alarm_count", float64(status[2]))
		setGauge("ess_new_alarm_flag", float64(status[3]))
	}

	sensorFiring := 0.0
	if len(sensorAl.ActiveOverrides()) > 0 {
		sensorFiring = 1.0
	}
	setGauge("ess_sensor_alarm_firing", sensorFiring)

	vfdFiring := 0.0
	for i := 0; i < ActuatorCount; i++ {
		if _, ok := vfdAl.TypeFor(i); ok {
			vfdFiring = 1.0
			break
		}
	}
	setGauge("ess_vfd_anomaly_firing", vfdFiring)
}

func metricsIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "%s %s (%s) unit %d\nsee /metrics\n",
		DeviceVendorName, DeviceProductName, DeviceProductCode, DeviceModbusUnitID)
}
