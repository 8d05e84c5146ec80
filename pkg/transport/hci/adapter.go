package hci

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
)

// Adapter implements transport.Transport and transport.Scanner on the
// host's Bluetooth adapter. One Adapter serves any number of
// connections, but only one scan may run at a time (a radio
// constraint, not a package one).
type Adapter struct {
	ble    *bluetooth.Adapter
	logger log.Logger

	scanMu sync.Mutex
}

// New enables the default Bluetooth adapter and returns it wrapped as
// a Transport. Pass nil to disable logging.
func New(logger log.Logger) (*Adapter, error) {
	ble := bluetooth.DefaultAdapter
	if err := ble.Enable(); err != nil {
		return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
	}
	return &Adapter{ble: ble, logger: log.OrNoop(logger)}, nil
}

// Scan invokes fn for every advertisement observed until the context
// is cancelled. Advertisements that cannot be attributed to a valid
// MAC are dropped.
func (a *Adapter) Scan(ctx context.Context, fn func(adv.Advertisement)) error {
	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- a.ble.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			ad, err := advFromScanResult(result)
			if err != nil {
				return
			}
			fn(ad)
		})
	}()

	select {
	case <-ctx.Done():
		_ = a.ble.StopScan()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Connect scans for the device, establishes the GATT connection, and
// subscribes to response notifications.
func (a *Adapter) Connect(ctx context.Context, mac adv.MAC) (transport.Conn, error) {
	addr, err := a.findDevice(ctx, mac)
	if err != nil {
		return nil, err
	}

	device, err := a.ble.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", transport.ErrConnectFailed, mac, err)
	}

	conn, err := newConn(device, mac, a.logger)
	if err != nil {
		_ = device.Disconnect()
		return nil, fmt.Errorf("%w: %s: %v", transport.ErrConnectFailed, mac, err)
	}
	return conn, nil
}

// findDevice scans until the target MAC advertises, then stops the scan.
func (a *Adapter) findDevice(ctx context.Context, mac adv.MAC) (bluetooth.Address, error) {
	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	found := make(chan bluetooth.Address, 1)
	done := make(chan error, 1)
	target := mac.String()
	go func() {
		done <- a.ble.Scan(func(ble *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !strings.EqualFold(result.Address.String(), target) {
				return
			}
			_ = ble.StopScan()
			select {
			case found <- result.Address:
			default:
			}
		})
	}()

	select {
	case <-ctx.Done():
		_ = a.ble.StopScan()
		<-done
		return bluetooth.Address{}, ctx.Err()
	case addr := <-found:
		<-done
		return addr, nil
	case err := <-done:
		if err == nil {
			// Scan ended without a match.
			err = fmt.Errorf("%w: %s: device not found", transport.ErrConnectFailed, mac)
		}
		return bluetooth.Address{}, err
	}
}

// advFromScanResult converts a raw scan result into the package's
// advertisement representation.
func advFromScanResult(result bluetooth.ScanResult) (adv.Advertisement, error) {
	mac, err := adv.ParseMAC(result.Address.String())
	if err != nil {
		return adv.Advertisement{}, err
	}

	ad := adv.Advertisement{MAC: mac, RSSI: int(result.RSSI)}
	for _, sd := range result.ServiceData() {
		if sd.UUID == advServiceDataUUID || sd.UUID == serviceUUID {
			ad.ServiceData = sd.Data
			break
		}
	}
	for _, md := range result.ManufacturerData() {
		if md.CompanyID == manufacturerID {
			ad.ManufacturerData = md.Data
			break
		}
	}
	return ad, nil
}

// Compile-time interface satisfaction checks.
var (
	_ transport.Transport = (*Adapter)(nil)
	_ transport.Scanner   = (*Adapter)(nil)
)
