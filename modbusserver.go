package main

import (
	"context"
	"log"

	"github.com/simonvetter/modbus"
)

// FrontEnd implements modbus.RequestHandler, binding the Modbus TCP
// server directly to the RegisterStore. It is the only place in this
// module that imports github.com/simonvetter/modbus, used here in
// server mode rather than client mode.
type FrontEnd struct {
	store *RegisterStore
}

func NewFrontEnd(store *RegisterStore) *FrontEnd {
	return &FrontEnd{store: store}
}

// unitIDMismatch reports whether a request addresses a unit id other
// than this device's (spec §4.I/§6: unit id 3 only; Non-goal:
// "multi-unit service beyond unit 3"). The original's
// `ModbusServerContext(slaves={3: self.store}, single=False)` gives no
// valid response to any other slave id; simonvetter/modbus hands the
// unit id to us per-request instead of dispatching by slave table, so
// each handler below checks it before touching the register store.
func unitIDMismatch(unitID uint8) bool {
	return unitID != DeviceModbusUnitID
}

// HandleCoils serves function codes 1 (read), 5 (write single), and
// 15 (write multiple).
func (f *FrontEnd) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	if unitIDMismatch(req.UnitId) {
		return nil, modbus.ErrGatewayTargetDeviceFailedToRespond
	}
	if req.IsWrite {
		if err := f.store.WriteCoils(req.Addr, req.Args); err != nil {
			return nil, toModbusErr(err)
		}
		return nil, nil
	}
	vals, err := f.store.ReadCoils(req.Addr, int(req.Quantity))
	if err != nil {
		return nil, toModbusErr(err)
	}
	return vals, nil
}

// HandleDiscreteInputs serves function code 2 (read). Discrete inputs
// carry no simulated state in this plant (spec §6's register map is
// entirely holding registers); reads simply return zeros for any
// address within range.
func (f *FrontEnd) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	if unitIDMismatch(req.UnitId) {
		return nil, modbus.ErrGatewayTargetDeviceFailedToRespond
	}
	vals, err := f.store.ReadDiscrete(req.Addr, int(req.Quantity))
	if err != nil {
		return nil, toModbusErr(err)
	}
	return vals, nil
}

// HandleHoldingRegisters serves function codes 3 (read), 6 (write
// single), and 16 (write multiple) — the bulk of the external ABI.
func (f *FrontEnd) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	if unitIDMismatch(req.UnitId) {
		return nil, modbus.ErrGatewayTargetDeviceFailedToRespond
	}
	if req.IsWrite {
		if err := f.store.WriteHolding(req.Addr, req.Args); err != nil {
			return nil, toModbusErr(err)
		}
		return nil, nil
	}
	vals, err := f.store.ReadHolding(req.Addr, int(req.Quantity))
	if err != nil {
		return nil, toModbusErr(err)
	}
	return vals, nil
}

// HandleInputRegisters serves function code 4 (read).
func (f *FrontEnd) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	if unitIDMismatch(req.UnitId) {
		return nil, modbus.ErrGatewayTargetDeviceFailedToRespond
	}
	vals, err := f.store.ReadInput(req.Addr, int(req.Quantity))
	if err != nil {
		return nil, toModbusErr(err)
	}
	return vals, nil
}

// toModbusErr maps a SimError's Kind onto the exception code spec §7
// requires: OUT_OF_RANGE -> illegal data address (02), everything else
// the store can return here -> illegal data value (03).
func toModbusErr(err error) error {
	se, ok := err.(*SimError)
	if !ok {
		return modbus.ErrServerDeviceFailure
	}
	switch se.Kind {
	case OutOfRange:
		return modbus.ErrIllegalDataAddress
	default:
		return modbus.ErrIllegalDataValue
	}
}

// StartModbusServer binds the front-end to TCP and begins accepting
// clients. It returns once the listener is up; the caller is
// responsible for calling Stop on shutdown (spec §5: listener and all
// client sockets must close within 1s of shutdown).
func StartModbusServer(listen string, store *RegisterStore) (*modbus.ModbusServer, error) {
	srv, err := modbus.NewServer(&modbus.ServerConfiguration{
		URL:        "tcp://" + listen,
		MaxClients: 16,
	}, NewFrontEnd(store))
	if err != nil {
		return nil, err
	}
	if err := srv.Start(); err != nil {
		return nil, err
	}
	log.Printf("modbus: listening on %s, unit id %d (%s %s)", listen, DeviceModbusUnitID, DeviceVendorName, DeviceProductCode)
	return srv, nil
}

// shutdownModbusServer stops accepting new requests and closes any open
// client sockets. Stop() is synchronous in the underlying library, so
// the context here only bounds how long we wait for it to log before
// giving up (spec §5: listener and client sockets close within 1s).
func shutdownModbusServer(ctx context.Context, srv *modbus.ModbusServer) {
	done := make(chan struct{})
	go func() {
		if err := srv.Stop(); err != nil {
			log.Printf("modbus: stop: %v", err)
		}
		close(done)
	}()
	select {
	case <-done:
		log.Print("modbus: server stopped")
	case <-ctx.Done():
		log.Print("modbus: stop did not complete within deadline")
	}
}
