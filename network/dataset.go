// Package network holds the node-classification dataset: binary node
// features, node labels (ground truth for Labeled nodes, current beliefs for
// Unlabeled ones), a weighted adjacency matrix and the Labeled/Unlabeled
// partition.
//
// All structures share one node ordering. Matrices are gonum dense matrices
// so that callers can feed them straight into linear-algebra routines.
package network

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dataset is a network of N nodes with F binary features each.
type Dataset struct {
	Nodes        *Index
	FeatureNames *Index

	// Features is N×F with values in {0,1}.
	Features *mat.Dense
	// Labels holds the class of Labeled nodes and the current belief
	// P(Y=1) of Unlabeled nodes.
	Labels []float64
	// Edges is N×N; Edges[i,j] is the weight of the edge from i to j.
	Edges *mat.Dense
	// Labeled marks the Labeled partition; the rest is Unlabeled.
	Labeled []bool
}

// New validates the inputs and assembles a dataset with sequential node and
// feature names. The slices are retained, not copied.
func New(features *mat.Dense, labels []float64, edges *mat.Dense, labeled []bool) (*Dataset, error) {
	if features == nil || edges == nil {
		return nil, ErrEmpty
	}
	n, f := features.Dims()
	ds := &Dataset{
		Nodes:        NewSequentialIndex(n),
		FeatureNames: NewSequentialIndex(f),
		Features:     features,
		Labels:       labels,
		Edges:        edges,
		Labeled:      labeled,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the structural invariants of the dataset.
func (d *Dataset) Validate() error {
	if d.Features == nil || d.Edges == nil {
		return ErrEmpty
	}
	n, f := d.Features.Dims()
	if n == 0 || f == 0 {
		return ErrEmpty
	}
	if len(d.Labels) != n || len(d.Labeled) != n {
		return fmt.Errorf("%w: %d feature rows, %d labels, %d mask entries", ErrShape, n, len(d.Labels), len(d.Labeled))
	}
	if r, c := d.Edges.Dims(); r != n || c != n {
		return fmt.Errorf("%w: edges are %dx%d, want %dx%d", ErrShape, r, c, n, n)
	}
	if d.Nodes != nil && d.Nodes.Size() != n {
		return fmt.Errorf("%w: %d node names for %d nodes", ErrShape, d.Nodes.Size(), n)
	}
	if d.FeatureNames != nil && d.FeatureNames.Size() != f {
		return fmt.Errorf("%w: %d feature names for %d features", ErrShape, d.FeatureNames.Size(), f)
	}

	for i := range n {
		for j := range f {
			if v := d.Features.At(i, j); v != 0 && v != 1 {
				return fmt.Errorf("%w: node %d feature %d = %v", ErrNonBinary, i, j, v)
			}
		}
		y := d.Labels[i]
		if d.Labeled[i] {
			if y != 0 && y != 1 {
				return fmt.Errorf("%w: labeled node %d has label %v", ErrLabelRange, i, y)
			}
		} else if math.IsNaN(y) || y < 0 || y > 1 {
			return fmt.Errorf("%w: unlabeled node %d has belief %v", ErrLabelRange, i, y)
		}
		for j := range n {
			if w := d.Edges.At(i, j); w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: edge %d->%d = %v", ErrNegativeWeight, i, j, w)
			}
		}
	}
	return nil
}

// N returns the number of nodes.
func (d *Dataset) N() int {
	return len(d.Labels)
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	_, f := d.Features.Dims()
	return f
}

// LabeledIndices returns the Labeled node positions in ascending order.
func (d *Dataset) LabeledIndices() []int {
	return d.partition(true)
}

// UnlabeledIndices returns the Unlabeled node positions in ascending order.
func (d *Dataset) UnlabeledIndices() []int {
	return d.partition(false)
}

func (d *Dataset) partition(labeled bool) []int {
	out := make([]int, 0, len(d.Labeled))
	for i, l := range d.Labeled {
		if l == labeled {
			out = append(out, i)
		}
	}
	return out
}

// LabeledRate returns the mean label over the Labeled partition, or NaN when
// nothing is labeled.
func (d *Dataset) LabeledRate() float64 {
	var sum float64
	var count int
	for i, l := range d.Labeled {
		if l {
			sum += d.Labels[i]
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// SetBelief records the current belief P(Y=1) for an Unlabeled node. It is
// the write side of an external collective-inference loop: relational-joint
// inference reads these values as neighbor labels.
func (d *Dataset) SetBelief(node int, p float64) error {
	if node < 0 || node >= len(d.Labels) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, node)
	}
	if d.Labeled[node] {
		return fmt.Errorf("%w: %d", ErrLabeledNode, node)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: belief %v for node %d", ErrLabelRange, p, node)
	}
	d.Labels[node] = p
	return nil
}

// SetBeliefs writes column 1 of an Unlabeled×2 probability matrix back into
// Labels, in UnlabeledIndices order. Rows containing NaN (indeterminate
// predictions) leave the previous belief untouched.
func (d *Dataset) SetBeliefs(proba mat.Matrix) error {
	rows := d.UnlabeledIndices()
	if r, c := proba.Dims(); r != len(rows) || c != 2 {
		return fmt.Errorf("%w: probabilities are %dx%d, want %dx2", ErrShape, r, c, len(rows))
	}
	for k, node := range rows {
		p := proba.At(k, 1)
		if math.IsNaN(p) {
			continue
		}
		if err := d.SetBelief(node, p); err != nil {
			return err
		}
	}
	return nil
}

// WithMask returns a copy of the dataset using a different Labeled
// partition. Matrices are shared; labels and mask are copied so beliefs can
// be written without touching the original.
func (d *Dataset) WithMask(labeled []bool) (*Dataset, error) {
	if len(labeled) != len(d.Labels) {
		return nil, fmt.Errorf("%w: mask has %d entries, want %d", ErrShape, len(labeled), len(d.Labels))
	}
	labels := make([]float64, len(d.Labels))
	copy(labels, d.Labels)
	mask := make([]bool, len(labeled))
	copy(mask, labeled)
	return &Dataset{
		Nodes:        d.Nodes,
		FeatureNames: d.FeatureNames,
		Features:     d.Features,
		Labels:       labels,
		Edges:        d.Edges,
		Labeled:      mask,
	}, nil
}
