package wire

import (
	"errors"
	"testing"
)

func TestDecodeBotInfo(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		// battery 90, fw 4.6, strength 100, timers 2, switch+inverse, hold 3s
		payload := []byte{90, 46, 100, 0, 0, 0, 0, 2, 0x11, 3}
		info, err := DecodeBotInfo(payload)
		if err != nil {
			t.Fatalf("DecodeBotInfo() error = %v", err)
		}
		if info.Battery != 90 {
			t.Errorf("Battery = %d, want 90", info.Battery)
		}
		if info.Firmware != 4.6 {
			t.Errorf("Firmware = %v, want 4.6", info.Firmware)
		}
		if info.Strength != 100 {
			t.Errorf("Strength = %d, want 100", info.Strength)
		}
		if !info.SwitchMode || !info.Inverse {
			t.Errorf("mode bits = %v/%v, want true/true", info.SwitchMode, info.Inverse)
		}
		if info.HoldSeconds != 3 {
			t.Errorf("HoldSeconds = %d, want 3", info.HoldSeconds)
		}
	})

	t.Run("Short", func(t *testing.T) {
		if _, err := DecodeBotInfo([]byte{90, 46}); !errors.Is(err, ErrProtocolMismatch) {
			t.Errorf("DecodeBotInfo(short) error = %v, want ErrProtocolMismatch", err)
		}
	})
}

func TestDecodeCurtainInfo(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		payload := []byte{
			85,         // battery
			30,         // fw 3.0
			1,          // chain length
			0b11000000, // right-to-left, touch-to-open
			0b00001100, // solar, calibrated
			42,         // position
			0,          // timers
			0,
		}
		info, err := DecodeCurtainInfo(payload)
		if err != nil {
			t.Fatalf("DecodeCurtainInfo() error = %v", err)
		}
		if info.Battery != 85 {
			t.Errorf("Battery = %d, want 85", info.Battery)
		}
		if !info.RightToLeft || !info.TouchToOpen {
			t.Errorf("direction bits wrong: %+v", info)
		}
		if !info.SolarPanel || !info.Calibrated {
			t.Errorf("panel/calibration bits wrong: %+v", info)
		}
		if info.InMotion {
			t.Error("InMotion = true, want false")
		}
		if info.Position != 42 {
			t.Errorf("Position = %d, want 42", info.Position)
		}
	})

	t.Run("PositionClamped", func(t *testing.T) {
		payload := []byte{85, 30, 1, 0, 0, 240, 0, 0}
		info, err := DecodeCurtainInfo(payload)
		if err != nil {
			t.Fatalf("DecodeCurtainInfo() error = %v", err)
		}
		if info.Position != 100 {
			t.Errorf("Position = %d, want clamped to 100", info.Position)
		}
	})

	t.Run("Short", func(t *testing.T) {
		if _, err := DecodeCurtainInfo([]byte{85}); !errors.Is(err, ErrProtocolMismatch) {
			t.Errorf("DecodeCurtainInfo(short) error = %v, want ErrProtocolMismatch", err)
		}
	})
}

func TestDecodeMeterReading(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantTemp float64
		wantHum  uint8
	}{
		{"positive", []byte{0x05, 0x80 | 23, 45}, 23.5, 45},
		{"negative", []byte{0x02, 5, 60}, -5.2, 60},
		{"zero", []byte{0x00, 0x80, 0}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeMeterReading(tt.payload)
			if err != nil {
				t.Fatalf("DecodeMeterReading() error = %v", err)
			}
			if r.TemperatureC != tt.wantTemp {
				t.Errorf("TemperatureC = %v, want %v", r.TemperatureC, tt.wantTemp)
			}
			if r.Humidity != tt.wantHum {
				t.Errorf("Humidity = %d, want %d", r.Humidity, tt.wantHum)
			}
		})
	}

	t.Run("Short", func(t *testing.T) {
		if _, err := DecodeMeterReading([]byte{1, 2}); !errors.Is(err, ErrProtocolMismatch) {
			t.Errorf("DecodeMeterReading(short) error = %v, want ErrProtocolMismatch", err)
		}
	})
}

func TestDecodeLockInfo(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want LockInfo
	}{
		{
			name: "locked calibrated",
			data: []byte{0b10000000, 0x00},
			want: LockInfo{Calibrated: true, State: LockStateLocked},
		},
		{
			name: "unlocked door open",
			data: []byte{0b00010100, 0x00},
			want: LockInfo{State: LockStateUnlocked, DoorOpen: true},
		},
		{
			name: "unlocking with alarms",
			data: []byte{0b00110000, 0b00110000},
			want: LockInfo{State: LockStateUnlocking, UnclosedAlarm: true, UnlockedAlarm: true},
		},
		{
			name: "unknown status bits",
			data: []byte{0b01110000, 0x00},
			want: LockInfo{State: LockStateUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLockInfo(tt.data)
			if err != nil {
				t.Fatalf("DecodeLockInfo() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeLockInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}

	t.Run("Short", func(t *testing.T) {
		if _, err := DecodeLockInfo([]byte{0x00}); !errors.Is(err, ErrProtocolMismatch) {
			t.Errorf("DecodeLockInfo(short) error = %v, want ErrProtocolMismatch", err)
		}
	})
}

func TestLockStateMoving(t *testing.T) {
	if !LockStateLocking.Moving() || !LockStateUnlocking.Moving() {
		t.Error("transit states should report Moving")
	}
	if LockStateLocked.Moving() || LockStateLockingBlocked.Moving() {
		t.Error("rest/blocked states should not report Moving")
	}
}
