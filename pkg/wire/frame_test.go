package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestCommandFrameBytes(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		f := NewCommand(SubcommandAct, 0x00)
		first := f.Bytes()
		for i := 0; i < 10; i++ {
			if !bytes.Equal(f.Bytes(), first) {
				t.Fatalf("serialization not deterministic on iteration %d", i)
			}
		}
	})

	t.Run("WireOrder", func(t *testing.T) {
		f := NewCommand(SubcommandExtended, 0x45, 0x01, 0x05, 0xff, 0x64)
		want := []byte{0x57, 0x0f, 0x45, 0x01, 0x05, 0xff, 0x64}
		if got := f.Bytes(); !bytes.Equal(got, want) {
			t.Errorf("Bytes() = %x, want %x", got, want)
		}
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		f := NewCommand(SubcommandBasicInfo)
		want := []byte{0x57, 0x02}
		if got := f.Bytes(); !bytes.Equal(got, want) {
			t.Errorf("Bytes() = %x, want %x", got, want)
		}
	})
}

func TestCommandFrameValidate(t *testing.T) {
	ok := NewCommand(SubcommandAct, make([]byte, MaxPayloadLength)...)
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() at limit = %v, want nil", err)
	}

	big := NewCommand(SubcommandAct, make([]byte, MaxPayloadLength+1)...)
	if err := big.Validate(); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Validate() over limit = %v, want ErrPayloadTooLarge", err)
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    CommandFrame
		wantErr bool
	}{
		{
			name: "press",
			data: []byte{0x57, 0x01, 0x00},
			want: CommandFrame{Opcode: 0x57, Subcommand: 0x01, Payload: []byte{0x00}},
		},
		{
			name: "no payload",
			data: []byte{0x57, 0x02},
			want: CommandFrame{Opcode: 0x57, Subcommand: 0x02},
		},
		{name: "single byte", data: []byte{0x57}, wantErr: true},
		{name: "empty", data: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrame(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrProtocolMismatch) {
					t.Fatalf("ParseFrame() error = %v, want ErrProtocolMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrame() error = %v", err)
			}
			if !bytes.Equal(got.Bytes(), tt.want.Bytes()) {
				t.Errorf("ParseFrame() = %x, want %x", got.Bytes(), tt.want.Bytes())
			}
		})
	}
}

func TestParseFrameRoundTrip(t *testing.T) {
	frames := []CommandFrame{
		PressCommand(),
		OnCommand(),
		OffCommand(),
		BasicInfoCommand(),
		OpenCommand(),
		CloseCommand(),
		StopCommand(),
		LockCommand(),
		UnlockCommand(),
		LockInfoCommand(),
	}
	for _, f := range frames {
		got, err := ParseFrame(f.Bytes())
		if err != nil {
			t.Fatalf("ParseFrame(%x) error = %v", f.Bytes(), err)
		}
		if !bytes.Equal(got.Bytes(), f.Bytes()) {
			t.Errorf("round trip %x -> %x", f.Bytes(), got.Bytes())
		}
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantStatus ResponseStatus
		wantLen    int
		wantErr    bool
	}{
		{name: "ok with payload", data: []byte{0x01, 0x64, 0x2a}, wantStatus: StatusOK, wantLen: 2},
		{name: "bare status", data: []byte{0x01}, wantStatus: StatusOK},
		{name: "busy", data: []byte{0x03}, wantStatus: StatusBusy},
		{name: "key required", data: []byte{0x07}, wantStatus: StatusKeyRequired},
		{name: "key mismatch", data: []byte{0x09}, wantStatus: StatusKeyMismatch},
		{name: "empty", data: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrProtocolMismatch) {
					t.Fatalf("ParseResponse() error = %v, want ErrProtocolMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse() error = %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if len(got.Payload) != tt.wantLen {
				t.Errorf("len(Payload) = %d, want %d", len(got.Payload), tt.wantLen)
			}
		})
	}
}

func TestResponseStatusAcceptance(t *testing.T) {
	tests := []struct {
		status          ResponseStatus
		ok, actuationOK bool
	}{
		{StatusOK, true, true},
		{StatusUnsupported, false, true},
		{StatusError, false, false},
		{StatusBusy, false, false},
		{StatusKeyRequired, false, false},
	}
	for _, tt := range tests {
		if got := tt.status.OK(); got != tt.ok {
			t.Errorf("%v.OK() = %v, want %v", tt.status, got, tt.ok)
		}
		if got := tt.status.ActuationOK(); got != tt.actuationOK {
			t.Errorf("%v.ActuationOK() = %v, want %v", tt.status, got, tt.actuationOK)
		}
	}
}

func TestResponseStatusString(t *testing.T) {
	if got := StatusOK.String(); got != "OK" {
		t.Errorf("StatusOK.String() = %q", got)
	}
	if got := ResponseStatus(0xAB).String(); got != "UNKNOWN(0xab)" {
		t.Errorf("unknown status String() = %q", got)
	}
}
