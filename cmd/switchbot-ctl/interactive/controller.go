// Package interactive provides the interactive command-line interface
// for switchbot-ctl.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/device"
	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/session"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Device describes one configured device.
type Device struct {
	Name    string
	MAC     adv.MAC
	Model   wire.Model
	Key     keys.Key // zero unless the model requires one
	Reverse bool     // curtain position scale
}

// facades holds the lazily created facade for one device; only the
// field matching the model is set.
type facades struct {
	bot     *device.Bot
	curtain *device.Curtain
	meter   *device.Meter
	lock    *device.Lock
}

// Controller handles interactive mode for switchbot-ctl.
type Controller struct {
	transport  transport.Transport
	scanner    transport.Scanner
	sessionCfg session.Config
	logger     log.Logger

	devices map[string]Device
	cache   map[string]*facades

	rl *readline.Instance
}

// New creates a new interactive controller handler.
func New(t transport.Transport, s transport.Scanner, devices []Device, sessionCfg session.Config, logger log.Logger) (*Controller, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "switchbot> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Controller{
		transport:  t,
		scanner:    s,
		sessionCfg: sessionCfg,
		logger:     log.OrNoop(logger),
		devices:    make(map[string]Device, len(devices)),
		cache:      make(map[string]*facades),
		rl:         rl,
	}
	for _, d := range devices {
		c.devices[d.Name] = d
	}
	return c, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Controller) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Controller) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "devices", "list", "ls":
			c.cmdDevices()

		case "scan":
			c.cmdScan(ctx, args)

		case "press", "on", "off", "up", "down":
			c.cmdBotAct(ctx, cmd, args)

		case "mode":
			c.cmdBotMode(ctx, args)

		case "open", "close", "stop":
			c.cmdCurtainMove(ctx, cmd, args)

		case "pos":
			c.cmdCurtainPos(ctx, args)

		case "lock", "unlock":
			c.cmdLockAct(ctx, cmd, args)

		case "status":
			c.cmdStatus(ctx, args)

		case "release":
			c.cmdRelease(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			c.releaseAll()
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Controller) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
switchbot-ctl Commands:
  Discovery:
    scan [seconds]          - Scan for advertisements (default 5s)
    devices                 - List configured devices

  Bot:
    press <name>            - Press once
    on/off <name>           - Switch on/off (switch mode)
    up/down <name>          - Raise/lower the arm
    mode <name> press|switch [strength] - Change actuation mode

  Curtain:
    open/close/stop <name>  - Drive or halt the curtain
    pos <name> <0-100>      - Drive to position

  Lock:
    lock/unlock <name>      - Throw/retract the deadbolt

  General:
    status <name>           - Query device status
    release <name>          - Drop the BLE link
    help                    - Show this help
    quit                    - Exit`)
}

func (c *Controller) cmdDevices() {
	if len(c.devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices configured")
		return
	}
	names := make([]string, 0, len(c.devices))
	for name := range c.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := c.devices[name]
		fmt.Fprintf(c.rl.Stdout(), "  %-12s %s  %s\n", d.Name, d.MAC, d.Model)
	}
}

func (c *Controller) cmdScan(ctx context.Context, args []string) {
	seconds := 5
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: scan [seconds]")
			return
		}
		seconds = n
	}

	fmt.Fprintf(c.rl.Stdout(), "Scanning for %ds...\n", seconds)
	sctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	defer cancel()

	seen := make(map[adv.MAC]bool)
	err := c.scanner.Scan(sctx, func(a adv.Advertisement) {
		desc, err := adv.Parse(a)
		if err != nil || seen[desc.MAC] {
			return
		}
		seen[desc.MAC] = true
		line := fmt.Sprintf("  %s  %-10s rssi=%d", desc.MAC, desc.Model, desc.RSSI)
		if desc.Battery != adv.BatteryUnknown {
			line += fmt.Sprintf("  battery=%d%%", desc.Battery)
		}
		if desc.Encrypted {
			line += "  encrypted"
		}
		fmt.Fprintln(c.rl.Stdout(), line)

		// Refresh cached state on facades we already built.
		if f, ok := c.facadeForMAC(desc.MAC); ok {
			_ = f.update(desc)
		}
	})
	if err != nil && err != context.DeadlineExceeded && ctx.Err() == nil {
		fmt.Fprintf(c.rl.Stdout(), "Scan failed: %v\n", err)
	}
	fmt.Fprintf(c.rl.Stdout(), "Found %d device(s)\n", len(seen))
}

func (c *Controller) cmdBotAct(ctx context.Context, cmd string, args []string) {
	bot, ok := c.bot(args)
	if !ok {
		return
	}
	var err error
	switch cmd {
	case "press":
		err = bot.Press(ctx)
	case "on":
		err = bot.On(ctx)
	case "off":
		err = bot.Off(ctx)
	case "up":
		err = bot.ArmUp(ctx)
	case "down":
		err = bot.ArmDown(ctx)
	}
	c.report(cmd, err)
}

func (c *Controller) cmdBotMode(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: mode <name> press|switch [strength]")
		return
	}
	bot, ok := c.bot(args[:1])
	if !ok {
		return
	}

	var switchMode bool
	switch args[1] {
	case "press":
	case "switch":
		switchMode = true
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: mode <name> press|switch [strength]")
		return
	}

	strength := uint8(100)
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 || n > 100 {
			fmt.Fprintln(c.rl.Stdout(), "Strength must be 0-100")
			return
		}
		strength = uint8(n)
	}
	c.report("mode", bot.SetMode(ctx, switchMode, false, strength))
}

func (c *Controller) cmdCurtainMove(ctx context.Context, cmd string, args []string) {
	curtain, ok := c.curtain(args)
	if !ok {
		return
	}
	var err error
	switch cmd {
	case "open":
		err = curtain.Open(ctx)
	case "close":
		err = curtain.Close(ctx)
	case "stop":
		err = curtain.Stop(ctx)
	}
	c.report(cmd, err)
}

func (c *Controller) cmdCurtainPos(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: pos <name> <0-100>")
		return
	}
	curtain, ok := c.curtain(args[:1])
	if !ok {
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 || n > 100 {
		fmt.Fprintln(c.rl.Stdout(), "Position must be 0-100")
		return
	}
	c.report("pos", curtain.SetPosition(ctx, uint8(n)))
}

func (c *Controller) cmdLockAct(ctx context.Context, cmd string, args []string) {
	lock, ok := c.lock(args)
	if !ok {
		return
	}
	var err error
	if cmd == "lock" {
		err = lock.Lock(ctx)
	} else {
		err = lock.Unlock(ctx)
	}
	c.report(cmd, err)
}

func (c *Controller) cmdStatus(ctx context.Context, args []string) {
	f, dev, ok := c.facade(args)
	if !ok {
		return
	}
	out := c.rl.Stdout()

	switch {
	case f.bot != nil:
		info, err := f.bot.Info(ctx)
		if err != nil {
			c.report("status", err)
			return
		}
		mode := "press"
		if info.SwitchMode {
			mode = "switch"
		}
		fmt.Fprintf(out, "%s: battery=%d%% firmware=%.1f mode=%s strength=%d\n",
			dev.Name, info.Battery, info.Firmware, mode, info.Strength)

	case f.curtain != nil:
		info, err := f.curtain.Info(ctx)
		if err != nil {
			c.report("status", err)
			return
		}
		fmt.Fprintf(out, "%s: battery=%d%% firmware=%.1f position=%d calibrated=%v moving=%v\n",
			dev.Name, info.Battery, info.Firmware, info.Position, info.Calibrated, info.InMotion)

	case f.meter != nil:
		reading, err := f.meter.Read(ctx)
		if err != nil {
			c.report("status", err)
			return
		}
		fmt.Fprintf(out, "%s: %.1f°C humidity=%d%%\n", dev.Name, reading.TemperatureC, reading.Humidity)

	case f.lock != nil:
		info, err := f.lock.Info(ctx)
		if err != nil {
			c.report("status", err)
			return
		}
		fmt.Fprintf(out, "%s: state=%s door_open=%v calibrated=%v\n",
			dev.Name, info.State, info.DoorOpen, info.Calibrated)
	}
}

func (c *Controller) cmdRelease(args []string) {
	f, _, ok := c.facade(args)
	if !ok {
		return
	}
	c.report("release", f.release())
}

func (c *Controller) releaseAll() {
	for _, f := range c.cache {
		_ = f.release()
	}
}

func (c *Controller) report(cmd string, err error) {
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "%s failed: %v\n", cmd, err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s: OK\n", cmd)
}

// facade resolves args[0] to a configured device and its facade,
// building it on first use.
func (c *Controller) facade(args []string) (*facades, Device, bool) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Device name required")
		return nil, Device{}, false
	}
	dev, ok := c.devices[args[0]]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown device %q (see 'devices')\n", args[0])
		return nil, Device{}, false
	}

	if f, ok := c.cache[dev.Name]; ok {
		return f, dev, true
	}

	f := &facades{}
	opts := device.Options{Session: c.sessionCfg, Logger: c.logger}
	switch dev.Model {
	case wire.ModelBot:
		f.bot = device.NewBot(c.transport, dev.MAC, opts)
	case wire.ModelCurtain:
		f.curtain = device.NewCurtain(c.transport, dev.MAC, device.CurtainOptions{Options: opts, ReverseMode: dev.Reverse})
	case wire.ModelMeter:
		f.meter = device.NewMeter(c.transport, dev.MAC, opts)
	case wire.ModelMeterPlus:
		f.meter = device.NewMeterPlus(c.transport, dev.MAC, opts)
	case wire.ModelLock:
		lock, err := device.NewLock(c.transport, dev.MAC, dev.Key, opts)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Cannot use %q: %v\n", dev.Name, err)
			return nil, Device{}, false
		}
		f.lock = lock
	default:
		fmt.Fprintf(c.rl.Stdout(), "Model %s has no commands\n", dev.Model)
		return nil, Device{}, false
	}
	c.cache[dev.Name] = f
	return f, dev, true
}

func (c *Controller) facadeForMAC(mac adv.MAC) (*facades, bool) {
	for name, dev := range c.devices {
		if dev.MAC == mac {
			f, ok := c.cache[name]
			return f, ok
		}
	}
	return nil, false
}

func (c *Controller) bot(args []string) (*device.Bot, bool) {
	f, dev, ok := c.facade(args)
	if !ok {
		return nil, false
	}
	if f.bot == nil {
		fmt.Fprintf(c.rl.Stdout(), "%q is a %s, not a bot\n", dev.Name, dev.Model)
		return nil, false
	}
	return f.bot, true
}

func (c *Controller) curtain(args []string) (*device.Curtain, bool) {
	f, dev, ok := c.facade(args)
	if !ok {
		return nil, false
	}
	if f.curtain == nil {
		fmt.Fprintf(c.rl.Stdout(), "%q is a %s, not a curtain\n", dev.Name, dev.Model)
		return nil, false
	}
	return f.curtain, true
}

func (c *Controller) lock(args []string) (*device.Lock, bool) {
	f, dev, ok := c.facade(args)
	if !ok {
		return nil, false
	}
	if f.lock == nil {
		fmt.Fprintf(c.rl.Stdout(), "%q is a %s, not a lock\n", dev.Name, dev.Model)
		return nil, false
	}
	return f.lock, true
}

// update refreshes cached advertisement state on whichever facade is set.
func (f *facades) update(desc adv.DeviceDescriptor) error {
	switch {
	case f.bot != nil:
		return f.bot.UpdateFromAdvertisement(desc)
	case f.curtain != nil:
		return f.curtain.UpdateFromAdvertisement(desc)
	case f.meter != nil:
		return f.meter.UpdateFromAdvertisement(desc)
	case f.lock != nil:
		return f.lock.UpdateFromAdvertisement(desc)
	}
	return nil
}

// release drops the BLE link on whichever facade is set.
func (f *facades) release() error {
	switch {
	case f.bot != nil:
		return f.bot.Release()
	case f.curtain != nil:
		return f.curtain.Release()
	case f.meter != nil:
		return f.meter.Release()
	case f.lock != nil:
		return f.lock.Release()
	}
	return nil
}
