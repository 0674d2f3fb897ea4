package gdbstub

// targetXML and memoryMapXML are the two fixed blobs served via qXfer,
// per spec.md §4.6. GDB may request either in arbitrarily small chunks;
// qXferRead below must reassemble byte-exact regardless of chunk size.
const targetXML = `<?xml version="1.0"?>
<!DOCTYPE target SYSTEM "gdb-target.dtd">
<target>
  <architecture>mos6502</architecture>
  <feature name="org.n8machine.cpu">
    <reg name="a" bitsize="8" regnum="0"/>
    <reg name="x" bitsize="8" regnum="1"/>
    <reg name="y" bitsize="8" regnum="2"/>
    <reg name="sp" bitsize="8" regnum="3"/>
    <reg name="pc" bitsize="16" regnum="4" type="code_ptr"/>
    <reg name="flags" bitsize="8" regnum="5"/>
  </feature>
</target>
`

const memoryMapXML = `<?xml version="1.0"?>
<!DOCTYPE memory-map PUBLIC "+//IDN gnu.org//DTD GDB Memory Map V1.0//EN" "http://sourceware.org/gdb/gdb-memory-map.dtd">
<memory-map>
  <memory type="ram" start="0x0000" length="0xc000"/>
  <memory type="ram" start="0xc000" length="0x0100"/>
  <memory type="ram" start="0xc100" length="0x0010"/>
  <memory type="ram" start="0xc110" length="0x0ef0"/>
  <memory type="rom" start="0xd000" length="0x3000"/>
</memory-map>
`

// qXferRead implements the chunked-read contract of spec.md §4.5/§4.6: a
// response prefixed "l" when this chunk ends the blob (possibly with data,
// possibly empty when off is past the end), "m" when more remains.
func qXferRead(blob string, off, length int) string {
	if off >= len(blob) {
		return "l"
	}
	end := off + length
	if end >= len(blob) {
		return "l" + blob[off:]
	}
	return "m" + blob[off:end]
}
