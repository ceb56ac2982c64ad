package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// config holds everything the surrounding collaborator (this command)
// needs beyond the core: the connection URI, the cabinet mode, the
// front-end's gamma, and the input-report cadence. The core itself only
// ever consumes mode and the URI (see the external-interfaces contract on
// configuration ownership).
type config struct {
	Port   string  `yaml:"port"`
	Mode   string  `yaml:"mode"`
	TickHz float64 `yaml:"tick_hz"`
	Gamma  float64 `yaml:"gamma"`
	Verbose bool   `yaml:"verbose"`
}

func defaultConfig() config {
	return config{
		Port:    "serial:/dev/ttyUSB0",
		Mode:    "diva",
		TickHz:  60,
		Gamma:   0.5,
		Verbose: false,
	}
}

// loadConfig starts from the built-in defaults, overlays a YAML file if
// one was named on the command line, then overlays any pflag flags the
// operator actually set, in that order of increasing priority.
func loadConfig(args []string) (config, error) {
	cfg := defaultConfig()

	fs := pflag.NewFlagSet("segaslider-emu", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", "", "YAML config file overlay")
	port := fs.StringP("port", "p", cfg.Port, "connection uri (tcp://, serial:, rfcomm://)")
	mode := fs.StringP("mode", "m", cfg.Mode, "cabinet mode (diva or chu)")
	tickHz := fs.Float64P("tick-hz", "t", cfg.TickHz, "input report cadence in Hz")
	gamma := fs.Float64P("gamma", "g", cfg.Gamma, "LED gamma correction")
	verbose := fs.BoolP("verbose", "v", cfg.Verbose, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", *configFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", *configFile, err)
		}
	}

	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("mode") {
		cfg.Mode = *mode
	}
	if fs.Changed("tick-hz") {
		cfg.TickHz = *tickHz
	}
	if fs.Changed("gamma") {
		cfg.Gamma = *gamma
	}
	if fs.Changed("verbose") {
		cfg.Verbose = *verbose
	}

	return cfg, nil
}
