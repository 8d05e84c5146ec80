package adv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

var testMAC = MAC{0xe7, 0x2d, 0x35, 0x01, 0x02, 0x03}

func TestParseMAC(t *testing.T) {
	m, err := ParseMAC("e7:2d:35:01:02:03")
	require.NoError(t, err)
	assert.Equal(t, testMAC, m)
	assert.Equal(t, "e7:2d:35:01:02:03", m.String())

	_, err = ParseMAC("not-a-mac")
	assert.ErrorIs(t, err, ErrInvalidMAC)

	// EUI-64 addresses are not BLE public addresses
	_, err = ParseMAC("01:02:03:04:05:06:07:08")
	assert.ErrorIs(t, err, ErrInvalidMAC)
}

func TestParseLock(t *testing.T) {
	// Model 'o' (lock) with encryption flag, battery 100, locked and
	// calibrated mechanism bits in manufacturer data.
	a := Advertisement{
		MAC:         testMAC,
		ServiceData: []byte{'o' | 0x80, 0x00, 0x64},
		ManufacturerData: []byte{
			0xe7, 0x2d, 0x35, 0x01, 0x02, 0x03, // reversed address echo
			0x00,
			0b10000000, // calibrated, state LOCKED
			0b00000000,
		},
		RSSI: -60,
	}

	d, err := Parse(a)
	require.NoError(t, err)
	assert.Equal(t, wire.ModelLock, d.Model)
	assert.Equal(t, uint8(100), d.Battery)
	assert.True(t, d.Encrypted)
	require.NotNil(t, d.Lock)
	assert.True(t, d.Lock.Calibrated)
	assert.Equal(t, wire.LockStateLocked, d.Lock.State)
	assert.False(t, d.Lock.DoorOpen)
}

func TestParseLockWithoutMfrData(t *testing.T) {
	d, err := Parse(Advertisement{
		MAC:         testMAC,
		ServiceData: []byte{'o', 0x00, 0x32},
	})
	require.NoError(t, err)
	require.NotNil(t, d.Lock)
	assert.Equal(t, wire.LockStateUnknown, d.Lock.State)
	assert.Equal(t, uint8(50), d.Battery)
}

func TestParseBot(t *testing.T) {
	tests := []struct {
		name       string
		stateByte  byte
		switchMode bool
		on         bool
	}{
		{"press mode", 0x00, false, false},
		{"switch mode on", 0x80, true, true},
		{"switch mode off", 0xc0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(Advertisement{
				MAC:         testMAC,
				ServiceData: []byte{'H', tt.stateByte, 0x5a},
			})
			require.NoError(t, err)
			assert.Equal(t, wire.ModelBot, d.Model)
			assert.Equal(t, uint8(90), d.Battery)
			require.NotNil(t, d.Bot)
			assert.Equal(t, tt.switchMode, d.Bot.SwitchMode)
			assert.Equal(t, tt.on, d.Bot.On)
		})
	}
}

func TestParseCurtain(t *testing.T) {
	t.Run("ServiceData", func(t *testing.T) {
		d, err := Parse(Advertisement{
			MAC: testMAC,
			// calibrated, battery 85, in motion at position 25, light 3, chain 1
			ServiceData: []byte{'c', 0x40, 0x55, 0x80 | 25, 0x31, 0x00},
		})
		require.NoError(t, err)
		assert.Equal(t, wire.ModelCurtain, d.Model)
		require.NotNil(t, d.Curtain)
		assert.True(t, d.Curtain.Calibrated)
		assert.True(t, d.Curtain.InMotion)
		assert.Equal(t, uint8(25), d.Curtain.Position)
		assert.Equal(t, uint8(3), d.Curtain.LightLevel)
		assert.Equal(t, uint8(1), d.Curtain.DeviceChain)
	})

	t.Run("ManufacturerDataPreferred", func(t *testing.T) {
		d, err := Parse(Advertisement{
			MAC:              testMAC,
			ServiceData:      []byte{'c', 0x40, 0x55, 99, 0xff, 0xff},
			ManufacturerData: []byte{0, 0, 0, 0, 0, 0, 0, 0, 42, 0x21, 0},
		})
		require.NoError(t, err)
		require.NotNil(t, d.Curtain)
		assert.Equal(t, uint8(42), d.Curtain.Position)
		assert.Equal(t, uint8(2), d.Curtain.LightLevel)
	})
}

func TestParseMeter(t *testing.T) {
	d, err := Parse(Advertisement{
		MAC:         testMAC,
		ServiceData: []byte{'T', 0x00, 0x63, 0x05, 0x80 | 23, 45},
	})
	require.NoError(t, err)
	require.NotNil(t, d.Meter)
	assert.True(t, d.Meter.Valid)
	assert.Equal(t, 23.5, d.Meter.TemperatureC)
	assert.Equal(t, uint8(45), d.Meter.Humidity)
}

func TestParseUnknownModel(t *testing.T) {
	d, err := Parse(Advertisement{
		MAC:         testMAC,
		ServiceData: []byte{'Z', 0x12, 0x40},
		RSSI:        -80,
	})
	require.NoError(t, err, "unknown models must degrade, not fail")
	assert.Equal(t, wire.ModelUnknown, d.Model)
	assert.Equal(t, uint8(64), d.Battery)
	assert.Equal(t, -80, d.RSSI)
	assert.Nil(t, d.Bot)
	assert.Nil(t, d.Lock)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		a    Advertisement
	}{
		{"empty", Advertisement{MAC: testMAC}},
		{"one byte", Advertisement{MAC: testMAC, ServiceData: []byte{'H'}}},
		{"two bytes", Advertisement{MAC: testMAC, ServiceData: []byte{'H', 0x00}}},
		{"mfr only", Advertisement{MAC: testMAC, ManufacturerData: []byte{1, 2, 3, 4, 5, 6, 7, 8}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.a)
			assert.ErrorIs(t, err, ErrMalformedAdvertisement)
		})
	}
}

// Parsing must be total over arbitrary input: typed error or degraded
// descriptor, never a panic or out-of-bounds read.
func TestParseGarbage(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		service := make([]byte, rng.Intn(20))
		mfr := make([]byte, rng.Intn(20))
		rng.Read(service)
		rng.Read(mfr)

		d, err := Parse(Advertisement{MAC: testMAC, ServiceData: service, ManufacturerData: mfr})
		if err != nil {
			assert.ErrorIs(t, err, ErrMalformedAdvertisement)
			continue
		}
		if d.Model == wire.ModelUnknown && d.Bot != nil {
			t.Fatalf("unknown model carries bot state for input %x", service)
		}
	}
}

func TestDescriptorSuperseded(t *testing.T) {
	first, err := Parse(Advertisement{MAC: testMAC, ServiceData: []byte{'H', 0x80, 0x5a}})
	require.NoError(t, err)

	second, err := Parse(Advertisement{MAC: testMAC, ServiceData: []byte{'H', 0xc0, 0x59}})
	require.NoError(t, err)

	// The first descriptor is untouched by the second parse.
	assert.True(t, first.Bot.On)
	assert.False(t, second.Bot.On)
	assert.Equal(t, uint8(90), first.Battery)
}
