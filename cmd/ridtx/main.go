package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/config"
	"github.com/opendroneid/transmitter-linux/gpsd"
	"github.com/opendroneid/transmitter-linux/hostapd"
	"github.com/opendroneid/transmitter-linux/linux"
	"github.com/opendroneid/transmitter-linux/linux/hci"
	"github.com/opendroneid/transmitter-linux/location"
	"github.com/opendroneid/transmitter-linux/odid"
	"github.com/opendroneid/transmitter-linux/transmit"
)

var logger = transmitter.NewLogger("ridtx")

func main() {
	app := cli.NewApp()

	app.Name = "ridtx"
	app.Usage = "Broadcast Open Drone ID Remote ID over Bluetooth and Wi-Fi beacons"
	app.Version = "0.1.0"
	app.ArgsUsage = "[b] [l] [4] [5] [p] [g]"
	app.Description = `The letters select the same transports as the flags:
   b  Wi-Fi beacon    l  Bluetooth 4 legacy    4  Bluetooth 5 extended
   5  Bluetooth 5 long range    p  message packs    g  location from gpsd`
	app.Flags = []cli.Flag{
		flgBeacon, flgLegacy, flgBT4, flgBT5, flgPacks, flgGPS, flgOnce,
		flgConfig, flgDevice, flgGPSD, flgHostapd,
		flgLogFile, flgDebug,
	}
	app.Before = setupLog
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ridtx: %v\n", err)
		os.Exit(1)
	}
}

func setupLog(c *cli.Context) error {
	if c.Bool("debug") {
		transmitter.SetLogLevel(log.LevelDebug)
	}
	if fn := c.String("log-file"); fn != "" {
		transmitter.SetLogOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   fn,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}
	return nil
}

// parseSelection merges the flags with the single letter arguments.
func parseSelection(sel transmitter.Selection, args []string) (transmitter.Selection, error) {
	for _, a := range args {
		switch a {
		case "b":
			sel.Beacon = true
		case "l":
			sel.Legacy = true
		case "4":
			sel.BT4 = true
		case "5":
			sel.BT5 = true
		case "p":
			sel.Packs = true
		case "g":
			sel.GPS = true
		default:
			return sel, errors.Errorf("unknown argument %q", a)
		}
	}
	return sel, nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if fn := c.String("config"); fn != "" {
		var err error
		if cfg, err = config.Load(fn); err != nil {
			return nil, err
		}
	}
	if c.IsSet("device") {
		cfg.HCI.Device = c.Int("device")
	}
	if s := c.String("gpsd"); s != "" {
		cfg.GPSD.Addr = s
	}
	if s := c.String("hostapd"); s != "" {
		cfg.Hostapd.Ctrl = s
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	sel, err := parseSelection(transmitter.Selection{
		Beacon: c.Bool("beacon"),
		Legacy: c.Bool("legacy"),
		BT4:    c.Bool("bt4"),
		BT5:    c.Bool("bt5"),
		Packs:  c.Bool("packs"),
		GPS:    c.Bool("gps"),
	}, c.Args())
	if err != nil {
		return err
	}
	warnings, err := sel.Validate()
	if errors.Cause(err) == transmitter.ErrNothingSelected {
		return cli.ShowAppHelp(c)
	}
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data := odid.ExampleData()
	if cfg.Identity != nil {
		cfg.Identity.Apply(&data)
	}
	if !sel.GPS {
		data.Location = odid.ExampleLocation()
	}
	snap := transmitter.NewSnapshot(data)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = transmitter.WithSigHandler(ctx, cancel)

	var (
		wg         sync.WaitGroup
		transports []transmit.Transport
		errMu      sync.Mutex
		bgErr      error
	)
	defer wg.Wait()
	defer cancel()

	if sel.Bluetooth() {
		d, err := linux.NewDevice(
			hci.OptDeviceID(cfg.HCI.Device),
			hci.OptInterval(transmitter.Legacy, cfg.HCI.Legacy),
			hci.OptInterval(transmitter.ExtendedStandard, cfg.HCI.Standard),
			hci.OptInterval(transmitter.ExtendedLongRange, cfg.HCI.LongRange),
		)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Advertise(sel.Kinds()...); err != nil {
			return err
		}
		transports = append(transports, d)
	}

	if sel.Beacon {
		conn, err := hostapd.Dial(cfg.Hostapd.Ctrl)
		if err != nil {
			return err
		}
		defer conn.Close()
		select {
		case <-conn.Ready():
		case <-ctx.Done():
			return nil
		case <-time.After(10 * time.Second):
			return errors.Errorf("hostapd at %s does not answer", cfg.Hostapd.Ctrl)
		}
		a := transmit.NewAsync(hostapd.NewBeacon(conn, hostapd.OptSettle(cfg.Hostapd.Settle)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Run(ctx)
		}()
		transports = append(transports, a)
	}

	if sel.GPS {
		client, err := gpsd.Dial(cfg.GPSD.Addr)
		if err != nil {
			return err
		}
		defer client.Close()
		s := location.NewSampler(client, snap, location.OptWaitTimeout(cfg.GPSD.WaitTimeout))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				logger.Error("location sampling stopped", "err", err)
				errMu.Lock()
				bgErr = err
				errMu.Unlock()
				cancel()
			}
		}()
	}

	if fn := c.String("config"); fn != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := config.Watch(ctx, fn, config.DefaultDebounce, func(cfg *config.Config) {
				if cfg.Identity != nil {
					snap.Update(cfg.Identity.Apply)
				}
			})
			if err != nil {
				logger.Warn("config not watched", "err", err)
			}
		}()
	}

	daemon.SdNotify(false, daemon.SdNotifyReady)
	defer daemon.SdNotify(false, daemon.SdNotifyStopping)

	opts := []transmit.Option{transmit.OptTransport(transports...), transmit.OptPacks(sel.Packs)}
	if c.Bool("once") {
		opts = append(opts, transmit.OptOnce())
	}
	logger.Info("transmitting", "packs", sel.Packs, "transports", len(transports))
	err = transmit.New(snap, opts...).Run(ctx)
	cancel()
	wg.Wait()
	if err != nil {
		return err
	}
	errMu.Lock()
	defer errMu.Unlock()
	return bgErr
}
