// Package main is the entry point for the confkit configuration tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/confkit/internal/config"
	"github.com/dshills/confkit/internal/config/event"
	"github.com/dshills/confkit/internal/config/loader"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	var fileOpts []config.FileOption
	if opts.Format != "" {
		format, err := formatFromName(opts.Format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fileOpts = append(fileOpts, config.WithFormat(format))
	}

	cfg, err := config.NewFileConfiguration(opts.ConfigPath, fileOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", opts.ConfigPath, err)
		return 1
	}

	if opts.EnvPrefix != "" {
		if err := applyEnvOverrides(cfg, opts.EnvPrefix); err != nil {
			fmt.Fprintf(os.Stderr, "Error: applying environment overrides: %v\n", err)
			return 1
		}
	}

	if opts.Detail {
		cfg.SetDetailEvents(true)
	}

	if err := printKeys(cfg, opts.Keys); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !opts.Watch {
		return 0
	}

	// Print every change event until interrupted.
	cfg.AddListener(event.TypeAny, event.ListenerFunc(func(e event.Event) error {
		phase := "after"
		if e.BeforeUpdate {
			phase = "before"
		}
		if e.Name == "" {
			fmt.Printf("%-14s %s\n", e.Type, phase)
		} else if e.Value == nil {
			fmt.Printf("%-14s %s %s\n", e.Type, phase, e.Name)
		} else {
			fmt.Printf("%-14s %s %s = %v\n", e.Type, phase, e.Name, e.Value)
		}
		return nil
	}))

	if err := cfg.StartWatching(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to watch %s: %v\n", opts.ConfigPath, err)
		return 1
	}
	defer cfg.StopWatching()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", opts.ConfigPath)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	return 0
}

// formatFromName maps a -format flag value to a Format.
func formatFromName(name string) (config.Format, error) {
	switch name {
	case "toml":
		return config.FormatTOML, nil
	case "yaml", "yml":
		return config.FormatYAML, nil
	case "json":
		return config.FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want toml, yaml or json)", name)
	}
}

// applyEnvOverrides sets properties from prefixed environment variables,
// e.g. CONFKIT_EDITOR_TAB_SIZE overrides editor.tabSize.
func applyEnvOverrides(cfg *config.FileConfiguration, prefix string) error {
	doc, err := loader.NewEnvLoader(prefix).Load()
	if err != nil {
		return err
	}

	flat := loader.Flatten(doc)
	for _, key := range loader.FlatKeys(doc) {
		if err := cfg.SetProperty(key, flat[key]); err != nil {
			return err
		}
	}
	return nil
}

// printKeys prints the requested keys, or all properties when none are given.
func printKeys(cfg *config.FileConfiguration, keys []string) error {
	if len(keys) == 0 {
		for _, key := range cfg.Keys() {
			v, _ := cfg.Get(key)
			fmt.Printf("%s = %v\n", key, v)
		}
		return nil
	}

	for _, key := range keys {
		v, ok := cfg.Get(key)
		if !ok {
			return fmt.Errorf("%w: %s", config.ErrPropertyNotFound, key)
		}
		fmt.Printf("%s = %v\n", key, v)
	}
	return nil
}

// options holds the parsed command line.
type options struct {
	ConfigPath string
	Format     string
	EnvPrefix  string
	Watch      bool
	Detail     bool
	Keys       []string
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Format, "format", "", "File format (toml, yaml or json; default from extension)")
	flag.StringVar(&opts.EnvPrefix, "env", "CONFKIT_", "Environment variable prefix for overrides (empty disables)")
	flag.BoolVar(&opts.Watch, "watch", false, "Watch the file and print change events")
	flag.BoolVar(&opts.Watch, "w", false, "Watch the file and print change events (shorthand)")
	flag.BoolVar(&opts.Detail, "detail", false, "Include detail events while watching")
	flag.BoolVar(&opts.Detail, "d", false, "Include detail events while watching (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Confkit - configuration store inspector\n\n")
		fmt.Fprintf(os.Stderr, "Usage: confkit -c <file> [options] [keys...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  confkit -c app.toml                 Print all properties\n")
		fmt.Fprintf(os.Stderr, "  confkit -c app.toml editor.tabSize  Print one property\n")
		fmt.Fprintf(os.Stderr, "  confkit -c app.yaml -w              Watch and print change events\n")
		fmt.Fprintf(os.Stderr, "  confkit -c app.json -w -d           Watch with detail events\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Confkit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.ConfigPath == "" {
		fmt.Fprintf(os.Stderr, "Error: no configuration file given (use -c)\n")
		flag.Usage()
		os.Exit(1)
	}

	// Remaining arguments are property names to print
	opts.Keys = flag.Args()

	return opts
}
