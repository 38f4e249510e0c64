// Package assert provides lightweight invariant checks for conditions that
// indicate a bug rather than a network or environment failure. Network and
// environment failures are reported through internal/logger instead.
package assert

import "fmt"

// Assert panics with a formatted message if cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic("assertion failed: " + fmt.Sprintf(format, args...))
	}
}

// IsNil panics if err is non-nil.
func IsNil(err error) {
	if err != nil {
		panic("assertion failed: expected nil error, got: " + err.Error())
	}
}

// IsNotNil panics with the given message if v is nil.
func IsNotNil(v any, format string, args ...any) {
	if v == nil {
		panic("assertion failed: " + fmt.Sprintf(format, args...))
	}
}

// Never panics unconditionally. Used to mark unreachable code paths.
func Never() {
	panic("assertion failed: unreachable code reached")
}
