// Package wat compiles the WebAssembly text format into binary modules.
//
// Script modules run against a context's host functions: they import
// context_id and the event_target_* family from the context's host module
// and export their entry points. The compiler covers what such modules
// need:
//
//	wasm, err := wat.Compile(`(module
//		(import "script-bridge/context/1" "event_target_new" (func $new (result i64)))
//		(func (export "make") (result i64)
//			(call $new)))`)
//
// Supported:
//   - Function imports and exports, inline and as module fields
//   - Functions with params, results, locals (named and indexed)
//   - Control flow: block, loop, if/then/else, br, br_if, return
//   - call, drop, select, local.get/set/tee
//   - i32/i64 constants, arithmetic, comparisons, wrap and extend
//   - Comments: line (;;) and block (; ;)
//
// Not supported: memory, tables, globals, float ops, multi-value blocks.
package wat
