package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command-line options, validated top-of-main (flag vars + log.Fatalf
// guards, no framework).
var (
	flagListen      = flag.String("listen", DefaultModbusListen, "Modbus TCP listen address")
	flagSimPeriodMS = flag.Uint("sim-period-ms", 1000, "sensor/VFD simulation tick period, in milliseconds")
	flagPollHz      = flag.Uint("poll-hz", 10, "command-coil poll frequency, in Hz")
	flagStatusEvery = flag.Uint("status-every", 15, "status log line cadence, in simulation ticks")
	flagMetricsAddr = flag.String("metrics-listen", ":9090", "HTTP listen address for /metrics")
)

func main() {
	flag.Parse()

	if *flagListen == "" {
		log.Fatal("listen address is required")
	}
	if *flagSimPeriodMS == 0 {
		log.Fatal("sim-period-ms must be greater than 0")
	}
	if *flagPollHz == 0 {
		log.Fatal("poll-hz must be greater than 0")
	}
	if *flagStatusEvery == 0 {
		log.Fatal("status-every must be greater than 0")
	}
	if *flagMetricsAddr == "" {
		log.Fatal("metrics-listen address is required")
	}

	validateRegisterMap()

	store := NewRegisterStore()
	equipment := NewEquipmentModel()
	applyRegisterDefaults(store)

	sensorAlarms := &SensorAlarmCycle{}
	vfdAnomalies := &VFDAnomalyCycle{}
	vfd := NewVFDEmitter(store, equipment)
	alarms := NewAlarmDetector(store)
	sim := NewSensorSimulator(store, equipment, sensorAlarms, vfdAnomalies, vfd, alarms)
	poller := NewCommandPoller(store, equipment)

	RegisterSimMetrics()
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/", metricsIndexHandler)
	go func() {
		log.Printf("metrics: listening on %s", *flagMetricsAddr)
		if err := http.ListenAndServe(*flagMetricsAddr, nil); err != nil {
			log.Fatalf("metrics server failed: %v", err)
		}
	}()

	srv, err := StartModbusServer(*flagListen, store)
	if err != nil {
		log.Fatalf("Failed to start Modbus server: %v", err)
	}

	log.Printf("%s %s model %s rev %s starting, unit id %d",
		DeviceVendorName, DeviceProductName, DeviceModelName, DeviceRevision, DeviceModbusUnitID)

	simPeriod := time.Duration(*flagSimPeriodMS) * time.Millisecond
	pollPeriod := time.Second / time.Duration(*flagPollHz)

	stop := make(chan struct{})
	var tickCount uint64

	go func() {
		ticker := time.NewTicker(simPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sim.Tick(); err != nil {
					log.Printf("sim: tick error: %v", err)
				}
				UpdateSimMetrics(store, equipment, sensorAlarms, vfdAnomalies)
				tickCount++
				if tickCount%uint64(*flagStatusEvery) == 0 {
					printStatus(store, equipment)
				}
			case <-stop:
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(pollPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				poller.Poll()
			case <-stop:
				return
			}
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Print("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	shutdownModbusServer(ctx, srv)
	fmt.Println("bye")
}
