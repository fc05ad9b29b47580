package debug

import (
	"github.com/valerio/go-chip8/chip8/disasm"
)

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly lists up to maxLines instructions from the snapshot,
// centred on pc when it falls inside the snapshot.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	end := snapshot.StartAddr + uint16(len(snapshot.Bytes))
	if pc < snapshot.StartAddr || pc >= end {
		lines := disassembleFrom(snapshot, 0, pc, maxLines-1)
		return append(lines, DisasmLine{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		})
	}

	// keep instruction alignment with pc
	pcOffset := int(pc - snapshot.StartAddr)
	startOffset := pcOffset - (maxLines/2)*disasm.InstructionLength
	for startOffset < 0 {
		startOffset += disasm.InstructionLength
	}

	lines := disassembleFrom(snapshot, startOffset, pc, maxLines)

	// near the end of the snapshot, pull earlier lines in to fill the view
	for len(lines) < maxLines && startOffset >= disasm.InstructionLength {
		startOffset -= disasm.InstructionLength
		lines = disassembleFrom(snapshot, startOffset, pc, maxLines)
	}

	return lines
}

func disassembleFrom(snapshot *MemorySnapshot, offset int, pc uint16, maxLines int) []DisasmLine {
	lines := make([]DisasmLine, 0, maxLines)
	for i := offset; i < len(snapshot.Bytes) && len(lines) < maxLines; {
		instruction, length := disasm.DisassembleBytes(snapshot.Bytes, i)
		if length == 0 {
			break
		}
		address := snapshot.StartAddr + uint16(i)
		lines = append(lines, DisasmLine{
			Address:     address,
			Instruction: instruction,
			IsCurrent:   address == pc,
		})
		i += length
	}
	return lines
}
