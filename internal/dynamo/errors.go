package dynamo

import "errors"

// Domain errors for model construction.
var (
	// ErrUnknownCoupling indicates a kernel name with no registered kernel.
	ErrUnknownCoupling = errors.New("dynamo: unknown coupling kernel")

	// ErrParameterBounds indicates a model constant outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrNilGraph indicates a model built without a graph.
	ErrNilGraph = errors.New("dynamo: model needs a graph")
)
