package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"n8machine/internal/log"
)

type mode byte

const (
	runMode mode = iota
	versionMode
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run a ROM image, optionally serving the GDB stub." default:"true"`
		Version Version `cmd:"" help:"Show version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"true" type:"existingfile"`

		SymPath   string `name:"sym" help:"Path to a symbol file." type:"path"`
		GDBAddr   string `name:"gdb-addr" help:"Address to serve the GDB remote stub on." default:"localhost:2331"`
		NoGDB     bool   `name:"no-gdb" help:"Run headless, without starting the GDB stub."`
		Config    string `name:"config" help:"Path to a config file, overriding the default." type:"path"`
		DumpState bool   `name:"dump-state" help:"Print a JSON state snapshot to stdout at startup and on exit."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help": "ROM image to load at the fixed load address.",
	"log_help":     "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("n8machine"),
		kong.Description("8-bit microcomputer emulator with a GDB remote stub."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s
  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}
		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}
	return nil
}

type logModMask log.ModuleMask

// Decode parses a comma-separated list of module names and applies it to
// the global log mask via applyLogSpec; the receiver itself is not set.
// Implements kong.MapperValue.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	return applyLogSpec(tok.Value.(string))
}

// applyLogSpec parses a comma-separated module list (as accepted by --log
// and the config file's debug.log key) and applies it to the global log
// mask. "no" disables all modules, "all" enables all modules, otherwise
// each name is looked up and OR'd into the enabled mask.
func applyLogSpec(spec string) error {
	nolog := false
	allLogs := false
	var mask logModMask

	for _, v := range strings.Split(spec, ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			mask |= logModMask(mod.Mask())
		}
	}

	switch {
	case nolog:
		log.DisableDebugModules(log.ModuleMaskAll)
	case allLogs:
		log.EnableDebugModules(log.ModuleMaskAll)
	default:
		log.EnableDebugModules(log.ModuleMask(mask))
	}
	return nil
}
