package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/config"
	"github.com/lixenwraith/gridpath/logging"
)

var (
	configPath = flag.String("config", "", "TOML config file (default: built-in)")
	logLevel   = flag.String("log-level", "", "Override logging level: debug|info|warn|error")
)

type command struct {
	usage string
	run   func(env *env, args []string) error
}

var commands = map[string]command{
	"solve":   {"solve a single query and draw it", runSolve},
	"gen":     {"generate a maze or scatter grid", runGen},
	"verify":  {"check scenario queries against the Dijkstra oracle", runVerify},
	"bench":   {"time random queries on a generated grid", runBench},
	"serve":   {"serve the websocket solver and editor page", runServe},
	"history": {"list recorded runs", runHistory},
}

// env is what every subcommand shares
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "gridpath: %v\n", err)
			os.Exit(1)
		}
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridpath: logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cmd.run(&env{cfg: cfg, log: log}, flag.Args()[1:]); err != nil {
		log.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: gridpath [-config file] [-log-level level] <command> [flags]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}
