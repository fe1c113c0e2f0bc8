package main

import "github.com/urfave/cli"

var (
	flgBeacon = cli.BoolFlag{Name: "beacon, b", Usage: "Broadcast in the Wi-Fi beacon through hostapd"}
	flgLegacy = cli.BoolFlag{Name: "legacy, l", Usage: "Bluetooth 4 legacy advertising"}
	flgBT4    = cli.BoolFlag{Name: "bt4, 4", Usage: "Bluetooth 5 extended advertising with legacy PDUs"}
	flgBT5    = cli.BoolFlag{Name: "bt5, 5", Usage: "Bluetooth 5 long range (LE Coded PHY)"}
	flgPacks  = cli.BoolFlag{Name: "packs, p", Usage: "Send message packs instead of single messages"}
	flgGPS    = cli.BoolFlag{Name: "gps, g", Usage: "Read the location from gpsd"}
	flgOnce   = cli.BoolFlag{Name: "once", Usage: "Stop after one transmission cycle"}

	flgConfig  = cli.StringFlag{Name: "config, c", Usage: "YAML configuration file, reloaded on change"}
	flgDevice  = cli.IntFlag{Name: "device, d", Value: -1, Usage: "HCI device id, -1 for the first usable"}
	flgGPSD    = cli.StringFlag{Name: "gpsd", Usage: "gpsd address (default localhost:2947)"}
	flgHostapd = cli.StringFlag{Name: "hostapd", Usage: "hostapd control socket (default /var/run/hostapd/wlan0)"}

	flgLogFile = cli.StringFlag{Name: "log-file", Usage: "Also log to this file, rotated"}
	flgDebug   = cli.BoolFlag{Name: "debug", Usage: "Log at debug level"}
)
