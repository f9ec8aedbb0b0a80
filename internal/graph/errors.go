package graph

import "errors"

var (
	// ErrSizeMismatch indicates a configuration or state whose length is not the node count.
	ErrSizeMismatch = errors.New("graph: configuration length does not match node count")

	ErrNodeRange     = errors.New("graph: node index out of range")
	ErrSelfLoop      = errors.New("graph: self-loop not allowed")
	ErrDuplicateEdge = errors.New("graph: duplicate edge")
	ErrBadWeight     = errors.New("graph: edge weight must be positive and finite")

	// ErrBadParameter indicates generator arguments outside their domain.
	ErrBadParameter = errors.New("graph: generator parameter out of range")

	// ErrFormat indicates malformed input in the sparse text format.
	ErrFormat = errors.New("graph: malformed sparse format")

	// ErrDisconnected is returned by generators that give up before finding a connected sample.
	ErrDisconnected = errors.New("graph: could not generate a connected graph")

	// ErrTooLarge guards exhaustive routines against exponential blowup.
	ErrTooLarge = errors.New("graph: too many nodes for exhaustive search")
)
