package opcode

import "github.com/wippyai/script-bridge/wat/internal/ast"

// Imm describes the immediate an instruction takes.
type Imm int

const (
	ImmNone Imm = iota
	ImmLocal
	ImmFunc
	ImmLabel
	ImmI32
	ImmI64
)

type Info struct {
	Imm    Imm
	Opcode byte
}

var table = map[string]Info{
	"unreachable": {ImmNone, ast.OpUnreachable},
	"nop":         {ImmNone, ast.OpNop},
	"return":      {ImmNone, ast.OpReturn},
	"drop":        {ImmNone, ast.OpDrop},
	"select":      {ImmNone, ast.OpSelect},
	"br":          {ImmLabel, ast.OpBr},
	"br_if":       {ImmLabel, ast.OpBrIf},
	"call":        {ImmFunc, ast.OpCall},
	"local.get":   {ImmLocal, ast.OpLocalGet},
	"local.set":   {ImmLocal, ast.OpLocalSet},
	"local.tee":   {ImmLocal, ast.OpLocalTee},
	"i32.const":   {ImmI32, ast.OpI32Const},
	"i64.const":   {ImmI64, ast.OpI64Const},

	"i32.eqz":  {ImmNone, 0x45},
	"i32.eq":   {ImmNone, 0x46},
	"i32.ne":   {ImmNone, 0x47},
	"i32.lt_s": {ImmNone, 0x48},
	"i32.lt_u": {ImmNone, 0x49},
	"i32.gt_s": {ImmNone, 0x4A},
	"i32.gt_u": {ImmNone, 0x4B},
	"i32.le_s": {ImmNone, 0x4C},
	"i32.le_u": {ImmNone, 0x4D},
	"i32.ge_s": {ImmNone, 0x4E},
	"i32.ge_u": {ImmNone, 0x4F},
	"i64.eqz":  {ImmNone, 0x50},
	"i64.eq":   {ImmNone, 0x51},
	"i64.ne":   {ImmNone, 0x52},
	"i64.lt_s": {ImmNone, 0x53},
	"i64.lt_u": {ImmNone, 0x54},
	"i64.gt_s": {ImmNone, 0x55},
	"i64.gt_u": {ImmNone, 0x56},

	"i32.add":   {ImmNone, 0x6A},
	"i32.sub":   {ImmNone, 0x6B},
	"i32.mul":   {ImmNone, 0x6C},
	"i32.div_s": {ImmNone, 0x6D},
	"i32.div_u": {ImmNone, 0x6E},
	"i32.rem_s": {ImmNone, 0x6F},
	"i32.rem_u": {ImmNone, 0x70},
	"i32.and":   {ImmNone, 0x71},
	"i32.or":    {ImmNone, 0x72},
	"i32.xor":   {ImmNone, 0x73},
	"i64.add":   {ImmNone, 0x7C},
	"i64.sub":   {ImmNone, 0x7D},
	"i64.mul":   {ImmNone, 0x7E},
	"i64.and":   {ImmNone, 0x83},
	"i64.or":    {ImmNone, 0x84},

	"i32.wrap_i64":     {ImmNone, 0xA7},
	"i64.extend_i32_s": {ImmNone, 0xAC},
	"i64.extend_i32_u": {ImmNone, 0xAD},
}

// Lookup returns the encoding of a plain instruction. Structured control
// instructions (block, loop, if) are handled by the parser.
func Lookup(name string) (Info, bool) {
	info, ok := table[name]
	return info, ok
}
