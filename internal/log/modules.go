// Package log provides module-scoped, level-gated logging on top of logrus.
package log

import "gopkg.in/Sirupsen/logrus.v0"

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

// Module identifies a logging subsystem. Debug-level output for a module is
// gated independently so hot paths (the per-tick bus decode) can stay quiet.
type Module uint

const (
	ModMachine Module = iota + 1
	ModCPU
	ModBus
	ModTTY
	ModDebugger
	ModGDBStub
	ModTransport

	endStandardMods
)

var modCount = endStandardMods

var modNames = []string{
	"<error>", "machine", "cpu", "bus", "tty", "debugger", "gdbstub", "transport",
}

type ModuleMask uint64

const ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF

var modDebugMask ModuleMask

// NewModule registers an additional named module beyond the standard set.
func NewModule(name string) Module {
	mod := modCount
	modCount++
	modNames = append(modNames, name)
	return mod
}

// ModuleNames lists every registered module name, in registration order,
// for CLI help text.
func ModuleNames() []string {
	return modNames[1:]
}

func ModuleByName(name string) (Module, bool) {
	for idx, s := range modNames {
		if s == name {
			return Module(idx), true
		}
	}
	return Module(0), false
}

func EnableDebugModules(mask ModuleMask) { modDebugMask |= mask }

func DisableDebugModules(mask ModuleMask) { modDebugMask &^= mask }

func (mod Module) String() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return "<unknown>"
}

func (mod Module) Mask() ModuleMask { return 1 << ModuleMask(mod) }

func (mod Module) Enabled(level Level) bool {
	return level <= WarnLevel || modDebugMask&mod.Mask() != 0
}

func (mod Module) WithField(key string, value any) Entry {
	return Entry{mod: mod}.WithField(key, value)
}

func (mod Module) WithFields(fields Fields) Entry {
	return Entry{mod: mod}.WithFields(fields)
}

func (mod Module) Debugf(format string, args ...any) { Entry{mod: mod}.Debugf(format, args...) }
func (mod Module) Infof(format string, args ...any)  { Entry{mod: mod}.Infof(format, args...) }
func (mod Module) Warnf(format string, args ...any)  { Entry{mod: mod}.Warnf(format, args...) }
func (mod Module) Errorf(format string, args ...any) { Entry{mod: mod}.Errorf(format, args...) }
func (mod Module) Fatalf(format string, args ...any) { Entry{mod: mod}.Fatalf(format, args...) }

func (mod Module) Debug(args ...any) { Entry{mod: mod}.Debug(args...) }
func (mod Module) Info(args ...any)  { Entry{mod: mod}.Info(args...) }
func (mod Module) Warn(args ...any)  { Entry{mod: mod}.Warn(args...) }
func (mod Module) Error(args ...any) { Entry{mod: mod}.Error(args...) }
