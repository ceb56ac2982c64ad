// Command segaslider-emu is an interactive operator console for the touch
// slider emulator: it binds a protocol.Device to a real transport and lets
// an operator poke touch state and watch LED output without a physical
// cabinet attached.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/shlex"

	"github.com/dogtopus/sega-slider/frontend/headless"
	"github.com/dogtopus/sega-slider/protocol"
	"github.com/dogtopus/sega-slider/transport"
)

var stdinScanner = bufio.NewScanner(os.Stdin)

// readLine reads one line from stdin, stripped of its trailing newline.
func readLine() (string, error) {
	if !stdinScanner.Scan() {
		if err := stdinScanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("eof")
	}
	return stdinScanner.Text(), nil
}

type console struct {
	cfg    config
	logger *log.Logger
	front  *headless.Frontend
	mode   protocol.Mode

	conn *transport.Connection
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "segaslider-emu:", err)
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	mode, ok := protocol.ParseMode(cfg.Mode)
	if !ok {
		logger.Fatal("unknown mode", "mode", cfg.Mode)
	}

	front := headless.New(mode)
	front.SetGamma(cfg.Gamma)

	c := &console{cfg: cfg, logger: logger, front: front, mode: mode}

	stop := c.startTicker()
	defer stop()

	logger.Info("segaslider-emu starting", "port", cfg.Port, "mode", mode)
	c.repl()
}

// startTicker runs the periodic input-report loop at cfg.TickHz, sending
// the front-end's current touch state whenever the host has enabled
// reporting. It returns a func that stops the loop.
func (c *console) startTicker() func() {
	if c.cfg.TickHz <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / c.cfg.TickHz))
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if c.conn == nil || !c.front.Reporting() {
					continue
				}
				if err := c.conn.Device().SendInputReport(c.front.InputReport()); err != nil {
					c.logger.Error("send input report", "err", err)
				}
			}
		}
	}()
	return func() { close(done) }
}

func (c *console) repl() {
	fmt.Println("segaslider-emu console. Type 'help' for commands, 'quit' to exit.")
	for {
		fmt.Print("> ")
		line, err := readLine()
		if err != nil {
			return
		}
		args, err := shlex.Split(line)
		if err != nil || len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help", "?":
			c.printHelp()
		case "connect":
			c.cmdConnect()
		case "poke":
			c.cmdPoke(args[1:])
		case "show":
			c.cmdShow()
		case "quit", "exit", "q":
			return
		default:
			fmt.Printf("unknown command %q (try 'help')\n", args[0])
		}
	}
}

func (c *console) printHelp() {
	fmt.Println(`commands:
  connect              (re)connect to the configured port
  poke INDEX on|off    set a touch electrode by its display index
  show                 print current touch state and LED colors
  quit                 exit`)
}

func (c *console) cmdConnect() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	conn, err := transport.CreateConnection(c.cfg.Port, c.mode, c.front, c.logger)
	if err != nil {
		c.logger.Error("connect failed", "err", err)
		return
	}
	c.conn = conn
	c.logger.Info("connected", "port", c.cfg.Port)
}

func (c *console) cmdPoke(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: poke INDEX on|off")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("bad index:", args[0])
		return
	}
	var v byte
	switch args[1] {
	case "on":
		v = 0xfe
	case "off":
		v = 0x00
	default:
		fmt.Println("expected 'on' or 'off'")
		return
	}
	c.front.SetElectrode(idx, v)
}

func (c *console) cmdShow() {
	fmt.Printf("touch: % x\n", c.front.InputReport())
	fmt.Println("leds:")
	for i, col := range c.front.LEDs() {
		fmt.Printf("  %2d: r=%.3f g=%.3f b=%.3f\n", i, col.R, col.G, col.B)
	}
}
