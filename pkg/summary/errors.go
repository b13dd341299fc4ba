package summary

import "errors"

var (
	// ErrInvalidSupernode indicates an id that does not currently head a supernode.
	ErrInvalidSupernode = errors.New("summary: invalid supernode id")
	// ErrSelfMerge indicates an attempt to merge a supernode with itself.
	ErrSelfMerge = errors.New("summary: cannot merge a supernode with itself")
	// ErrVertexOutOfRange indicates a vertex id outside [0, n).
	ErrVertexOutOfRange = errors.New("summary: vertex out of range")
	// ErrIndeterminate indicates a 0/0 similarity or savings value.
	ErrIndeterminate = errors.New("summary: indeterminate result")
	// ErrGraphMismatch indicates a graph and partition of different sizes.
	ErrGraphMismatch = errors.New("summary: graph and partition sizes differ")
	// ErrNegativeErrorBound indicates a drop pass with error_bound < 0.
	ErrNegativeErrorBound = errors.New("summary: error bound must be non-negative")
	// ErrBudgetUnderflow indicates a per-vertex drop budget went negative.
	ErrBudgetUnderflow = errors.New("summary: drop budget underflow")
	// ErrUnknownEncoder indicates an unrecognised encoder name.
	ErrUnknownEncoder = errors.New("summary: unknown encoder")
	// ErrUnknownFormat indicates an unrecognised report format.
	ErrUnknownFormat = errors.New("summary: unknown report format")
	// ErrNilStrategy indicates Run was called without a strategy.
	ErrNilStrategy = errors.New("summary: nil strategy")
)
