package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/migadu/sievefilter/config"
	"github.com/migadu/sievefilter/logger"
	"github.com/migadu/sievefilter/pkg/metrics"
)

// errInvalidScript is returned by check when any script has problems.
var errInvalidScript = errors.New("invalid script")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]
	var err error
	switch command {
	case "check":
		err = runCheck(os.Args[2:], os.Stdout)
	case "list":
		err = runList(os.Args[2:], os.Stdout)
	case "capabilities":
		err = runCapabilities(os.Args[2:], os.Stdout)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage(os.Stdout)
		os.Exit(1)
	}

	if errors.Is(err, errInvalidScript) {
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%s: %v", command, err)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Sieve rules tool

Usage:
  sieverules <command> [options]

Commands:
  check         Validate scripts and report rule errors and missing requires
  list          List the rules of a script
  capabilities  Show the enabled extensions and the capabilities rules can use
  help          Show this help message

Examples:
  sieverules check --config sieverules.toml user.sieve
  sieverules list --json user.sieve
  sieverules capabilities --all

Use 'sieverules <command> --help' for more information about a command.
`)
}

// setup loads the configuration, initializes logging and returns a function
// to run when the command is done.
func setup(configPath string) (*config.Config, func(), error) {
	cfg := config.NewDefaultConfig()
	if configPath != "" {
		if err := config.LoadConfigFromFile(configPath, &cfg); err != nil {
			return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logFile, err := logger.Initialize(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	done := func() {
		if cfg.Metrics.Enabled {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Error("Failed to export metrics", "error", err)
			}
		}
		if logFile != nil {
			logFile.Close()
		}
	}
	return &cfg, done, nil
}

func readScript(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
