// Package verify implements the core's single failure channel: precondition
// violations are not handled locally, they are turned into a diagnostic and
// propagated to whatever owns the model.
package verify

import (
	"fmt"
	"runtime"
)

// ViolationError reports a broken invariant: the expression that should
// have held, where the check lives, and the operands involved. It is
// modelled on the pc::assertion_error of the original implementation;
// Error renders it as "file:line failed assertion `expr` [a b]".
type ViolationError struct {
	Expr string
	File string
	Line int
	Info []any
}

func (e *ViolationError) Error() string {
	msg := fmt.Sprintf("%s:%d failed assertion `%s`", e.File, e.Line, e.Expr)
	if len(e.Info) > 0 {
		msg += fmt.Sprintf(" %v", e.Info)
	}
	return msg
}

func violation(expr string, info []any) error {
	_, file, line, _ := runtime.Caller(2)
	return &ViolationError{Expr: expr, File: file, Line: line, Info: info}
}

// Assert panics with a *ViolationError when ok is false. The core never
// recovers from a broken invariant locally; callers that can degrade instead
// of crashing (the live ingestion boundary, see router.Router) must check the
// condition themselves before calling into the core rather than relying on
// recover.
func Assert(ok bool, expr string, info ...any) {
	if !ok {
		panic(violation(expr, info))
	}
}

// Usage panics with a *ViolationError the same way Assert does, but is used
// for CLI/input-shape violations (odd argc, unknown flag, mismatched column
// sizes) rather than model invariants. The separate name marks the failure
// class at the call site only: the panic value is the same type with no
// field telling the two apart, so a recover() cannot distinguish them
// (cmd/replay prints usage text for both).
func Usage(ok bool, expr string, info ...any) {
	if !ok {
		panic(violation(expr, info))
	}
}
