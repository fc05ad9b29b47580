package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected Op
	}{
		{"CLS", 0x00E0, OpCLS},
		{"RET", 0x00EE, OpRET},
		{"JP", 0x1ABC, OpJP},
		{"CALL", 0x2ABC, OpCALL},
		{"SE Vx, byte", 0x3122, OpSEByte},
		{"SNE Vx, byte", 0x4122, OpSNEByte},
		{"SE Vx, Vy", 0x5120, OpSEReg},
		{"LD Vx, byte", 0x6A42, OpLDByte},
		{"ADD Vx, byte", 0x7A42, OpADDByte},
		{"LD Vx, Vy", 0x8120, OpLDReg},
		{"OR", 0x8121, OpOR},
		{"AND", 0x8122, OpAND},
		{"XOR", 0x8123, OpXOR},
		{"ADD Vx, Vy", 0x8124, OpADDReg},
		{"SUB", 0x8125, OpSUB},
		{"SHR", 0x8126, OpSHR},
		{"SUBN", 0x8127, OpSUBN},
		{"SHL", 0x812E, OpSHL},
		{"SNE Vx, Vy", 0x9120, OpSNEReg},
		{"LD I", 0xA123, OpLDI},
		{"JP V0", 0xB123, OpJPV0},
		{"RND", 0xC1FF, OpRND},
		{"DRW", 0xD125, OpDRW},
		{"SKP", 0xE19E, OpSKP},
		{"SKNP", 0xE1A1, OpSKNP},
		{"LD Vx, DT", 0xF107, OpLDVxDT},
		{"LD Vx, K", 0xF10A, OpLDVxK},
		{"LD DT, Vx", 0xF115, OpLDDTVx},
		{"LD ST, Vx", 0xF118, OpLDSTVx},
		{"ADD I, Vx", 0xF11E, OpADDI},
		{"LD F, Vx", 0xF129, OpLDF},
		{"LD B, Vx", 0xF133, OpLDB},
		{"LD [I], Vx", 0xF155, OpLDIVx},
		{"LD Vx, [I]", 0xF165, OpLDVxI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instr, err := Decode(tt.opcode)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, instr.Op)
			assert.Equal(t, tt.opcode, instr.Raw)
		})
	}
}

func TestDecode_Fields(t *testing.T) {
	instr, err := Decode(0xD12F)
	require.NoError(t, err)

	assert.Equal(t, uint8(0x1), instr.X)
	assert.Equal(t, uint8(0x2), instr.Y)
	assert.Equal(t, uint8(0xF), instr.N)
	assert.Equal(t, uint8(0x2F), instr.KK)
	assert.Equal(t, uint16(0x12F), instr.NNN)
}

func TestDecode_Unknown(t *testing.T) {
	opcodes := []uint16{
		0x0000, // SYS calls are not supported
		0x0123,
		0x00E1,
		0x5121, // 5xy_ needs a zero low nibble
		0x8128,
		0x812F,
		0x9121,
		0xE100,
		0xE19F,
		0xF100,
		0xF1FF,
	}

	for _, opcode := range opcodes {
		instr, err := Decode(opcode)
		assert.ErrorIs(t, err, ErrUnknownOpcode, "opcode 0x%04X", opcode)
		assert.Equal(t, OpInvalid, instr.Op)
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		opcode   uint16
		expected string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x1234, "JP 0x234"},
		{0x2ABC, "CALL 0xABC"},
		{0x6A2F, "LD VA, 0x2F"},
		{0x8124, "ADD V1, V2"},
		{0x812E, "SHL V1"},
		{0xA300, "LD I, 0x300"},
		{0xB200, "JP V0, 0x200"},
		{0xD015, "DRW V0, V1, 5"},
		{0xF30A, "LD V3, K"},
		{0xF355, "LD [I], V3"},
		{0xF365, "LD V3, [I]"},
	}

	for _, tt := range tests {
		instr, err := Decode(tt.opcode)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, instr.String())
	}

	invalid, _ := Decode(0xFFFF)
	assert.Equal(t, "DW 0xFFFF", invalid.String())
}
