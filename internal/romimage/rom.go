// Package romimage loads the flat 6502 ROM image and the optional symbol
// file, grounded on original_source/src/emulator.cpp's emulator_loadrom and
// emu_labels.cpp, using an explicit constructor rather than a package-level
// global.
package romimage

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadBase is the fixed address ROM images are mapped at; spec.md §6
// specifies no header and no relocation.
const LoadBase = 0xD000

// MaxSize is the largest ROM image the address window at LoadBase can hold
// before running into the top of the 64 KiB space.
const MaxSize = 0x3000

// ROM is a raw, unheadered binary image.
type ROM struct {
	Data []byte
}

// Open reads path and validates its size against MaxSize.
func Open(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romimage: open %s: %w", path, err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("romimage: %s is %d bytes, exceeds max %d", path, len(data), MaxSize)
	}
	return &ROM{Data: data}, nil
}

// LoadInto copies the ROM image into mem at LoadBase.
func (r *ROM) LoadInto(mem []byte) {
	copy(mem[LoadBase:], r.Data)
}

// Symbols is a 65,536-slot multimap from address to an ordered list of
// labels, populated from a .sym file.
type Symbols struct {
	byAddr [65536][]string
}

// Lookup returns the labels recorded at addr, in file order.
func (s *Symbols) Lookup(addr uint16) []string { return s.byAddr[addr] }

// LoadSymbols parses path, a newline-separated record file. Only records
// beginning with the token "al" are of interest: "al <hex-addr> .<label>".
// Every other line, and any malformed "al" line, is silently skipped —
// matching original_source/src/emu_labels.cpp's permissive sscanf-based
// parser rather than rejecting the file outright.
func LoadSymbols(path string) (*Symbols, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("romimage: open symbols %s: %w", path, err)
	}
	defer f.Close()

	syms := &Symbols{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "al" {
			continue
		}
		addr, err := parseHexAddr(fields[1])
		if err != nil {
			continue
		}
		label := fields[2]
		if !strings.HasPrefix(label, ".") {
			continue
		}
		label = strings.TrimPrefix(label, ".")
		syms.byAddr[addr] = append(syms.byAddr[addr], label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("romimage: read symbols %s: %w", path, err)
	}
	return syms, nil
}

func parseHexAddr(s string) (uint16, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "%x", &v)
	if err != nil || v > 0xFFFF {
		return 0, fmt.Errorf("romimage: bad address %q", s)
	}
	return uint16(v), nil
}
