package engine

import (
	"fmt"
	"strings"

	"github.com/wippyai/script-bridge/identity"
	"github.com/wippyai/script-bridge/wat"
)

// Script entry points every context exports besides the host function
// wrappers. Each takes a count n and returns how many host calls succeeded.
const (
	// ScriptChurn creates n event targets and releases each one.
	ScriptChurn = "churn"
	// ScriptSpawn creates n event targets and keeps them.
	ScriptSpawn = "spawn"
	// ScriptAbandon creates n event targets and forgets them.
	ScriptAbandon = "abandon"
)

// ScriptPrefix prefixes the script module name of every context.
const ScriptPrefix = "script-bridge/script/"

// scriptTemplate is the script module of a context. %[1]q is the host module
// name, %[2]s holds extra function fields from Config.Script.
const scriptTemplate = `(module
  (import %[1]q "context_id" (func $context_id (result i32)))
  (import %[1]q "event_target_new" (func $new (result i64)))
  (import %[1]q "event_target_retain" (func $retain (param i64) (result i32)))
  (import %[1]q "event_target_release" (func $release (param i64) (result i32)))
  (import %[1]q "event_target_forget" (func $forget (param i64) (result i32)))

  (func (export "context_id") (result i32) (call $context_id))
  (func (export "event_target_new") (result i64) (call $new))
  (func (export "event_target_retain") (param $id i64) (result i32) (call $retain (local.get $id)))
  (func (export "event_target_release") (param $id i64) (result i32) (call $release (local.get $id)))
  (func (export "event_target_forget") (param $id i64) (result i32) (call $forget (local.get $id)))

  ;; churn: new then release, n times
  (func (export "churn") (param $n i32) (result i32)
    (local $i i32) (local $ok i32)
    (block $done
      (loop $next
        (br_if $done (i32.ge_u (local.get $i) (local.get $n)))
        (local.set $ok (i32.add (local.get $ok) (call $release (call $new))))
        (local.set $i (i32.add (local.get $i) (i32.const 1)))
        (br $next)))
    (local.get $ok))

  ;; spawn: new n times, counting non-zero identities
  (func (export "spawn") (param $n i32) (result i32)
    (local $i i32) (local $ok i32)
    (block $done
      (loop $next
        (br_if $done (i32.ge_u (local.get $i) (local.get $n)))
        (local.set $ok (i32.add (local.get $ok) (i64.ne (call $new) (i64.const 0))))
        (local.set $i (i32.add (local.get $i) (i32.const 1)))
        (br $next)))
    (local.get $ok))

  ;; abandon: new then forget, n times
  (func (export "abandon") (param $n i32) (result i32)
    (local $i i32) (local $ok i32)
    (block $done
      (loop $next
        (br_if $done (i32.ge_u (local.get $i) (local.get $n)))
        (local.set $ok (i32.add (local.get $ok) (call $forget (call $new))))
        (local.set $i (i32.add (local.get $i) (i32.const 1)))
        (br $next)))
    (local.get $ok))
%[2]s)`

// ScriptSource returns the script module text for a context. extra is
// spliced in as additional module fields and may call the imported
// $context_id, $new, $retain, $release and $forget.
func ScriptSource(id identity.ContextID, extra string) string {
	return fmt.Sprintf(scriptTemplate, moduleName(id), strings.TrimSpace(extra))
}

func compileScript(id identity.ContextID, extra string) ([]byte, error) {
	return wat.Compile(ScriptSource(id, extra))
}

func scriptName(id identity.ContextID) string {
	return fmt.Sprintf("%s%d", ScriptPrefix, id)
}
