package network

import "errors"

// Sentinel errors returned by dataset construction and the belief hooks.
// Callers match them with errors.Is; wrapped messages carry the offending
// node or feature position.
var (
	// ErrEmpty is returned when a dataset has no nodes or no feature columns.
	ErrEmpty = errors.New("network: empty dataset")

	// ErrShape indicates that features, labels, edges and mask disagree on N.
	ErrShape = errors.New("network: shape mismatch")

	// ErrNonBinary indicates a feature value outside {0,1}.
	ErrNonBinary = errors.New("network: feature value not binary")

	// ErrLabelRange indicates a Labeled node whose label is not 0 or 1, or a
	// belief outside [0,1].
	ErrLabelRange = errors.New("network: label out of range")

	// ErrNegativeWeight indicates a negative, NaN or infinite edge weight.
	ErrNegativeWeight = errors.New("network: invalid edge weight")

	// ErrLabeledNode is returned when a belief write targets a Labeled node.
	ErrLabeledNode = errors.New("network: node is labeled")

	// ErrOutOfRange indicates a node position outside [0,N).
	ErrOutOfRange = errors.New("network: node index out of range")
)
