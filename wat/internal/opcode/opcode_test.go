package opcode

import (
	"testing"

	"github.com/wippyai/script-bridge/wat/internal/ast"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		imm  Imm
		op   byte
	}{
		{"call", ImmFunc, ast.OpCall},
		{"local.get", ImmLocal, ast.OpLocalGet},
		{"br_if", ImmLabel, ast.OpBrIf},
		{"i64.const", ImmI64, ast.OpI64Const},
		{"i32.add", ImmNone, 0x6A},
		{"i32.ge_u", ImmNone, 0x4F},
	}
	for _, tt := range tests {
		info, ok := Lookup(tt.name)
		if !ok {
			t.Fatalf("%s not found", tt.name)
		}
		if info.Imm != tt.imm || info.Opcode != tt.op {
			t.Errorf("%s = %+v, want imm %d op 0x%02X", tt.name, info, tt.imm, tt.op)
		}
	}

	for _, name := range []string{"block", "loop", "if", "memory.grow"} {
		if _, ok := Lookup(name); ok {
			t.Errorf("%s should not be a plain instruction", name)
		}
	}
}
