package switchbot_test

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/switchbot-protocol/switchbot-go/internal/bletest"
	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/device"
	"github.com/switchbot-protocol/switchbot-go/pkg/envelope"
	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/session"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

var (
	botMAC  = adv.MAC{0xc0, 0x4b, 0x2f, 0x11, 0x22, 0x33}
	lockMAC = adv.MAC{0xc0, 0x4b, 0x2f, 0x77, 0x88, 0x99}
)

func fastSession() session.Config {
	return session.Config{
		ConnectTimeout:  100 * time.Millisecond,
		ResponseTimeout: 100 * time.Millisecond,
		MaxAttempts:     3,
		RetryBackoff:    session.BackoffConfig{Initial: time.Millisecond, Jitter: 0},
	}
}

// TestE2E_BotCommandWithEventLog drives a bot through the full stack and
// verifies the CBOR event log captures the exchange end to end.
func TestE2E_BotCommandWithEventLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.cborlog")
	fl, err := log.NewFileLogger(logPath)
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}

	tr := bletest.NewTransport()
	tr.Handle(bletest.StaticResponder([]byte{0x01}))

	bot := device.NewBot(tr, botMAC, device.Options{Session: fastSession(), Logger: fl})
	if err := bot.Press(context.Background()); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	if err := bot.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	// The log must contain the decoded command and response at the wire
	// layer, attributed to the device.
	var commands, responses int
	reader, err := log.NewFilteredReader(logPath, log.Filter{DeviceAddr: botMAC.String()})
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	defer reader.Close()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		if event.ConnectionID == "" {
			t.Error("wire event missing connection ID")
		}
		switch {
		case event.Command != nil:
			commands++
			if event.Command.Subcommand != 0x01 {
				t.Errorf("Subcommand = 0x%02x, want 0x01", event.Command.Subcommand)
			}
		case event.Response != nil:
			responses++
			if event.Response.Status != wire.StatusOK {
				t.Errorf("Status = %v, want OK", event.Response.Status)
			}
		}
	}
	if commands != 1 || responses != 1 {
		t.Errorf("logged %d commands and %d responses, want 1 each", commands, responses)
	}
}

// TestE2E_LockSealedExchange runs a sealed lock/unlock exchange against a
// responder that actually decrypts and re-encrypts with the shared key.
func TestE2E_LockSealedExchange(t *testing.T) {
	key, err := keys.ParseHex("0f", "000102030405060708090a0b0c0d0e0f")
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	deviceSealer, err := envelope.NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer failed: %v", err)
	}

	locked := false
	tr := bletest.NewTransport()
	tr.Handle(func(cmd []byte) [][]byte {
		e, err := envelope.ParseEnvelope(cmd)
		if err != nil {
			return nil
		}
		plain, err := envelope.Open(key, e)
		if err != nil {
			return [][]byte{{byte(wire.StatusKeyMismatch)}}
		}
		frame, err := wire.ParseFrame(plain)
		if err != nil {
			return nil
		}
		response := []byte{0x01}
		switch {
		case frame.Subcommand == wire.SubcommandExtended && len(frame.Payload) > 0 && frame.Payload[0] == 0x4e:
			locked = frame.Payload[len(frame.Payload)-1]&0x80 == 0
		case frame.Subcommand == wire.SubcommandExtended && len(frame.Payload) > 0 && frame.Payload[0] == 0x4f:
			state := byte(0x90) // calibrated, unlocked
			if locked {
				state = 0x80 // calibrated, locked
			}
			response = []byte{0x01, state, 0x00}
		}
		sealed, err := deviceSealer.Seal(response)
		if err != nil {
			return nil
		}
		return [][]byte{sealed.Bytes()}
	})

	lock, err := device.NewLock(tr, lockMAC, key, device.Options{Session: fastSession()})
	if err != nil {
		t.Fatalf("NewLock failed: %v", err)
	}

	ctx := context.Background()
	if err := lock.Lock(ctx); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	info, err := lock.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.State != wire.LockStateLocked {
		t.Errorf("State = %v, want locked", info.State)
	}

	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	info, err = lock.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.State != wire.LockStateUnlocked {
		t.Errorf("State = %v, want unlocked", info.State)
	}
}

// TestE2E_RetryAfterFlakyConnect exercises the retry machinery: the first
// two connection attempts are refused, the third succeeds.
func TestE2E_RetryAfterFlakyConnect(t *testing.T) {
	tr := bletest.NewTransport()
	tr.Script(bletest.ConnectRefuse, bletest.ConnectRefuse, bletest.ConnectOK)
	tr.Handle(bletest.StaticResponder([]byte{0x01}))

	bot := device.NewBot(tr, botMAC, device.Options{Session: fastSession()})
	if err := bot.Press(context.Background()); err != nil {
		t.Fatalf("Press failed after flaky connects: %v", err)
	}
	if got := tr.ConnectCount(); got != 3 {
		t.Errorf("ConnectCount = %d, want 3", got)
	}
}

// TestE2E_ConcurrentFacadesShareNothing runs independent devices in
// parallel over one transport.
func TestE2E_ConcurrentFacadesShareNothing(t *testing.T) {
	tr := bletest.NewTransport()
	tr.Handle(bletest.StaticResponder([]byte{0x01}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		mac := adv.MAC{0xc0, 0x4b, 0x2f, 0x00, 0x00, byte(i)}
		curtain := device.NewCurtain(tr, mac, device.CurtainOptions{
			Options: device.Options{Session: fastSession()},
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			if err := curtain.Open(ctx); err != nil {
				t.Errorf("Open failed: %v", err)
			}
			if err := curtain.SetPosition(ctx, 40); err != nil {
				t.Errorf("SetPosition failed: %v", err)
			}
			if err := curtain.Release(); err != nil {
				t.Errorf("Release failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// One connection per device, two writes each.
	conns := tr.Conns()
	if len(conns) != 4 {
		t.Fatalf("expected 4 connections, got %d", len(conns))
	}
	for _, c := range conns {
		if got := len(c.Writes()); got != 2 {
			t.Errorf("connection %s saw %d writes, want 2", c.MAC(), got)
		}
		if !c.Closed() {
			t.Errorf("connection %s not closed after release", c.MAC())
		}
	}
}

// TestE2E_AdvertisementToFacade parses a scanner advertisement and feeds
// it into a facade's cached state.
func TestE2E_AdvertisementToFacade(t *testing.T) {
	tr := bletest.NewTransport()
	meter := device.NewMeter(tr, botMAC, device.Options{Session: fastSession()})

	desc, err := adv.Parse(adv.Advertisement{
		MAC:         botMAC,
		ServiceData: []byte{0x54, 0x00, 0x5f, 0x06, 0x99, 0x2d},
		RSSI:        -55,
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := meter.UpdateFromAdvertisement(desc); err != nil {
		t.Fatalf("UpdateFromAdvertisement failed: %v", err)
	}

	state, ok := meter.State()
	if !ok {
		t.Fatal("expected cached meter state")
	}
	if state.TemperatureC != 25.6 {
		t.Errorf("TemperatureC = %v, want 25.6", state.TemperatureC)
	}
	if state.Humidity != 45 {
		t.Errorf("Humidity = %d, want 45", state.Humidity)
	}

	// No advertisement handling may touch the radio.
	if got := tr.ConnectCount(); got != 0 {
		t.Errorf("ConnectCount = %d, want 0", got)
	}
}
