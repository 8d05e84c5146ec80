// Command switchbot-ctl is an interactive controller for SwitchBot-class
// BLE devices.
//
// Usage:
//
//	switchbot-ctl -config devices.yaml [flags]
//
// Flags:
//
//	-config string      Configuration file path (required)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-log-file string    CBOR protocol event log (overrides config)
//
// Example configuration:
//
//	devices:
//	  - name: desk-bot
//	    mac: c0:4b:2f:11:22:33
//	    model: bot
//	  - name: front-door
//	    mac: c0:4b:2f:44:55:66
//	    model: lock
//	    key_id: "0f"
//	    key: "000102030405060708090a0b0c0d0e0f"
//	retry:
//	  connect_timeout: 5s
//	  response_timeout: 5s
//	  max_attempts: 3
//	log_file: switchbot.cborlog
//
// Interactive Commands:
//
//	scan [seconds]  - Scan for advertisements
//	devices         - List configured devices
//	press <name>    - Press a bot
//	open <name>     - Open a curtain
//	lock <name>     - Throw a lock's deadbolt
//	status <name>   - Query device status
//	quit            - Exit
package main

import (
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/switchbot-protocol/switchbot-go/cmd/switchbot-ctl/interactive"
	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport/hci"
)

var (
	configFile string
	logLevel   string
	logFile    string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (required)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "CBOR protocol event log (overrides config)")
}

func main() {
	flag.Parse()

	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	if configFile == "" {
		stdlog.Fatal("-config is required")
	}
	cfg, err := LoadConfig(configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	logger, closeLog, err := buildLogger(cfg, logLevel)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	transport, err := hci.New(logger)
	if err != nil {
		stdlog.Fatalf("Failed to initialize BLE adapter: %v", err)
	}

	devices := make([]interactive.Device, 0, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		// LoadConfig already validated all of these.
		mac, _ := adv.ParseMAC(dc.MAC)
		model, _ := modelFromName(dc.Model)
		dev := interactive.Device{
			Name:    dc.Name,
			MAC:     mac,
			Model:   model,
			Reverse: dc.Reverse,
		}
		if model.RequiresKey() {
			dev.Key, _ = keys.ParseHex(dc.KeyID, dc.Key)
		}
		devices = append(devices, dev)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ic, err := interactive.New(transport, transport, devices, cfg.SessionConfig(), logger)
	if err != nil {
		stdlog.Fatalf("Failed to create interactive controller: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input
	stdlog.SetOutput(ic.Stdout())
	go ic.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		stdlog.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Cancelled by the quit command.
	}

	stdlog.Println("Goodbye!")
}

// buildLogger assembles the protocol event logger: a CBOR file logger
// when configured, plus an slog mirror at debug level.
func buildLogger(cfg Config, level string) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeLog := func() {}

	if cfg.LogFile != "" {
		fl, err := log.NewFileLogger(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeLog = func() { _ = fl.Close() }
	}

	if level == "debug" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeLog, nil
	case 1:
		return loggers[0], closeLog, nil
	default:
		return log.NewMultiLogger(loggers...), closeLog, nil
	}
}
