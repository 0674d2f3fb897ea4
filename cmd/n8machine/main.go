package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"n8machine/internal/config"
	"n8machine/internal/log"
	"n8machine/internal/machine"
	"n8machine/internal/romimage"
	"n8machine/internal/transport"
)

const version = "0.1.0"

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		fmt.Println("n8machine", version)
		return
	default:
		runROM(cli.Run)
	}
}

func runROM(run Run) {
	var cfg config.Config
	if run.Config != "" {
		var err error
		cfg, err = config.Load(run.Config)
		checkf(err, "failed to load config %s", run.Config)
	} else {
		cfg = config.LoadOrDefault()
	}

	rom, err := romimage.Open(run.RomPath)
	checkf(err, "failed to open rom %s", run.RomPath)

	var symbols *romimage.Symbols
	symPath := run.SymPath
	if symPath == "" {
		symPath = cfg.ROM.SymbolPath
	}
	if symPath != "" {
		symbols, err = romimage.LoadSymbols(symPath)
		checkf(err, "failed to load symbols %s", symPath)
	}

	m := machine.New()
	m.LoadROM(rom, symbols)
	m.Reset()

	m.Debug.SetStepGuard(cfg.GDB.StepGuard)
	if len(cfg.Debug.Breakpoints) > 0 {
		for _, addr := range cfg.Debug.Breakpoints {
			m.Debug.SetBreakpoint(addr)
		}
		m.Debug.EnableBreakpoints(true)
	}
	if cfg.Debug.Log != "" {
		checkf(applyLogSpec(cfg.Debug.Log), "failed to apply debug.log from config")
	}

	if run.DumpState {
		fmt.Println(m.DumpState())
	}

	addr := run.GDBAddr
	if addr == "" {
		addr = cfg.GDB.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if run.NoGDB {
		log.ModMachine.Info("running headless, no GDB stub")
		<-ctx.Done()
	} else {
		tr := transport.New(addr, m)
		if err := tr.Run(ctx); err != nil {
			log.ModMachine.Errorf("transport: %v", err)
		}
	}

	if run.DumpState {
		fmt.Println(m.DumpState())
	}
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s: %s\n", fmt.Sprintf(format, args...), err)
	os.Exit(1)
}
