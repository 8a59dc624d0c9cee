package encoder

import (
	"bytes"
	"testing"

	"github.com/wippyai/script-bridge/wat/internal/ast"
)

func TestBuffer_LEB128(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Buffer)
		want  []byte
	}{
		{"u32 zero", func(b *Buffer) { b.WriteU32(0) }, []byte{0x00}},
		{"u32 624485", func(b *Buffer) { b.WriteU32(624485) }, []byte{0xE5, 0x8E, 0x26}},
		{"i64 -1", func(b *Buffer) { b.WriteI64(-1) }, []byte{0x7F}},
		{"i64 63", func(b *Buffer) { b.WriteI64(63) }, []byte{0x3F}},
		{"i64 64", func(b *Buffer) { b.WriteI64(64) }, []byte{0xC0, 0x00}},
		{"i64 -123456", func(b *Buffer) { b.WriteI64(-123456) }, []byte{0xC0, 0xBB, 0x78}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Buffer{}
			tt.write(b)
			if !bytes.Equal(b.Bytes, tt.want) {
				t.Fatalf("got % X, want % X", b.Bytes, tt.want)
			}
		})
	}
}

func TestEncode_ImportAndExport(t *testing.T) {
	m := &ast.Module{
		Types:   []ast.FuncType{{Results: []ast.ValType{ast.ValTypeI64}}},
		Imports: []ast.Import{{Module: "m", Name: "f", TypeIdx: 0}},
		Funcs:   []uint32{0},
		Exports: []ast.Export{{Name: "g", Idx: 1}},
		Code: []ast.FuncBody{{Code: []ast.Instr{
			{Opcode: ast.OpCall, Imm: uint32(0)},
			{Opcode: ast.OpEnd},
		}}},
	}

	want := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7E, // type: () -> i64
		0x02, 0x07, 0x01, 0x01, 'm', 0x01, 'f', 0x00, 0x00, // import m.f
		0x03, 0x02, 0x01, 0x00, // func section
		0x07, 0x05, 0x01, 0x01, 'g', 0x00, 0x01, // export g = func 1
		0x0A, 0x06, 0x01, 0x04, 0x00, 0x10, 0x00, 0x0B, // code: call 0; end
	}

	got := Encode(m)
	if !bytes.Equal(got, want) {
		t.Fatalf("got  % X\nwant % X", got, want)
	}
}
