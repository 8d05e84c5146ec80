package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
	"github.com/switchbot-protocol/switchbot-go/pkg/session"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Duration wraps time.Duration with YAML support for "5s" style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// DeviceConfig describes one device the tool can talk to.
type DeviceConfig struct {
	// Name is the handle used in interactive commands.
	Name string `yaml:"name"`

	// MAC is the device's BLE address.
	MAC string `yaml:"mac"`

	// Model is one of: bot, curtain, meter, meter_plus, lock.
	Model string `yaml:"model"`

	// KeyID and Key are the hex-encoded encryption key slot and
	// secret (locks only).
	KeyID string `yaml:"key_id,omitempty"`
	Key   string `yaml:"key,omitempty"`

	// Reverse flips the curtain position scale (100 = open).
	Reverse bool `yaml:"reverse,omitempty"`
}

// RetryConfig holds session timing parameters.
type RetryConfig struct {
	ConnectTimeout  Duration `yaml:"connect_timeout,omitempty"`
	ResponseTimeout Duration `yaml:"response_timeout,omitempty"`
	MaxAttempts     int      `yaml:"max_attempts,omitempty"`
}

// Config is the tool configuration.
type Config struct {
	Devices []DeviceConfig `yaml:"devices"`
	Retry   RetryConfig    `yaml:"retry,omitempty"`

	// LogFile receives the CBOR protocol event stream when set.
	LogFile string `yaml:"log_file,omitempty"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cfg.Devices))
	for i, dev := range cfg.Devices {
		if dev.Name == "" {
			return Config{}, fmt.Errorf("device %d: name is required", i)
		}
		if seen[dev.Name] {
			return Config{}, fmt.Errorf("duplicate device name %q", dev.Name)
		}
		seen[dev.Name] = true

		if _, err := adv.ParseMAC(dev.MAC); err != nil {
			return Config{}, fmt.Errorf("device %q: %w", dev.Name, err)
		}
		model, err := modelFromName(dev.Model)
		if err != nil {
			return Config{}, fmt.Errorf("device %q: %w", dev.Name, err)
		}
		if model.RequiresKey() {
			if _, err := keys.ParseHex(dev.KeyID, dev.Key); err != nil {
				return Config{}, fmt.Errorf("device %q: %w", dev.Name, err)
			}
		}
	}
	return cfg, nil
}

// SessionConfig converts the retry settings into session parameters.
// Zero fields keep the session defaults.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		ConnectTimeout:  time.Duration(c.Retry.ConnectTimeout),
		ResponseTimeout: time.Duration(c.Retry.ResponseTimeout),
		MaxAttempts:     c.Retry.MaxAttempts,
	}
}

// modelFromName maps a config model string to a wire model.
func modelFromName(name string) (wire.Model, error) {
	switch name {
	case "bot":
		return wire.ModelBot, nil
	case "curtain":
		return wire.ModelCurtain, nil
	case "meter":
		return wire.ModelMeter, nil
	case "meter_plus":
		return wire.ModelMeterPlus, nil
	case "lock":
		return wire.ModelLock, nil
	default:
		return wire.ModelUnknown, fmt.Errorf("unknown model %q", name)
	}
}
