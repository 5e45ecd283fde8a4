// Command gopper-host is a low-level MCU dictionary probe: it connects
// directly to a Klipper-protocol microcontroller, retrieves its
// command/response dictionary, and offers a tiny REPL for poking at
// raw named commands without going through the motion core at all.
//
// Adapted to motionhost's import paths and wired to hostcli for
// colorized output in place of the original's bare fmt.Printf console.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"motionhost/host/mcu"
	"motionhost/hostcli"
)

var (
	device = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud   = flag.Int("baud", 250000, "Baud rate (ignored for USB CDC)")
)

func main() {
	flag.Parse()

	hostcli.Banner("gopper-host - Klipper protocol MCU probe")

	mcuConn := mcu.NewMCU()

	hostcli.Info("connecting to MCU on %s...", *device)
	if err := mcuConn.ConnectWithRetry(*device, 5*time.Second); err != nil {
		hostcli.Error("failed to connect: %v", err)
		os.Exit(1)
	}
	defer mcuConn.Close()
	hostcli.OK("connected")

	if err := mcuConn.RetrieveDictionary(); err != nil {
		hostcli.Error("failed to retrieve dictionary: %v", err)
		os.Exit(1)
	}
	printDictionary(mcuConn)

	hostcli.Info("enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		hostcli.Prompt("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			hostcli.OK("goodbye!")
			return

		case "help", "?":
			printHelp()

		case "dict":
			printDictionary(mcuConn)

		case "raw":
			raw := mcuConn.GetDictionaryRaw()
			hostcli.Info("raw dictionary data (%d bytes):", len(raw))
			fmt.Println(string(raw))

		case "get_uptime":
			sendNamed(mcuConn, "get_uptime")

		case "get_clock":
			sendNamed(mcuConn, "get_clock")

		case "get_config":
			sendNamed(mcuConn, "get_config")

		case "reconnect":
			if err := mcuConn.Reconnect(); err != nil {
				hostcli.Error("reconnect failed: %v", err)
			} else {
				hostcli.OK("reconnected")
			}

		default:
			hostcli.Warn("unknown command: %s (type 'help' for available commands)", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		hostcli.Error("reading input: %v", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println()
	fmt.Println("Available commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  dict           - Print dictionary summary")
	fmt.Println("  raw            - Print raw dictionary data")
	fmt.Println("  get_uptime     - Get MCU uptime")
	fmt.Println("  get_clock      - Get MCU clock")
	fmt.Println("  get_config     - Get MCU configuration")
	fmt.Println("  reconnect      - Close and reopen the serial connection")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println()
}

func printDictionary(mcuConn *mcu.MCU) {
	dict := mcuConn.GetDictionary()
	if dict == nil {
		hostcli.Warn("no dictionary loaded")
		return
	}
	hostcli.Info("MCU version: %s", dict.Version)
	hostcli.Info("build versions: %s", dict.BuildVersions)
	hostcli.Info("%d commands, %d responses, %d config entries",
		len(dict.Commands), len(dict.Responses), len(dict.Config))
}

// sendNamed sends a named command with no arguments and waits briefly
// for its response, printing the raw payload; none of these commands
// have a parsed response type on the probe side, so this is a liveness
// check rather than a decoded query.
func sendNamed(mcuConn *mcu.MCU, name string) {
	hostcli.Info("sending %s...", name)
	payload, err := mcuConn.SendCommandSync(name, nil, time.Second)
	if err != nil {
		hostcli.Error("%s failed: %v", name, err)
		return
	}
	hostcli.OK("%s response payload: %v", name, payload)
}
