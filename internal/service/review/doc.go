// Package review implements the spaced-repetition review workflow: resolving
// which words of a list are due, running bounded revision sessions over a
// snapshot of those words, and feeding each answer through the scheduling
// algorithm in internal/domain/srs.
//
// The package is transport agnostic. Every operation that depends on the
// current time takes it from the service clock so tests can pin it.
package review
