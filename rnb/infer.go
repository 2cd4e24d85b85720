package rnb

import (
	"fmt"
	"math"
	"slices"

	"github.com/rohansaphal97/rmllib/network"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Indeterminate is the label Predict reports for a node whose class
// likelihoods are all zero.
const Indeterminate = -1

// PredictProba returns an N_unlabeled×2 matrix of class probabilities, rows
// in ds.UnlabeledIndices() order. A row is all NaN when the node could not
// be classified.
//
// With relationalUpdateOnly the prior+feature logits of the previous full
// call are reused and only the relational term is recomputed. This is valid
// only while the Unlabeled features and the fitted parameters are unchanged;
// a changed Unlabeled node set is reported as ErrCacheMembership.
func (m *Model) PredictProba(ds *network.Dataset, relationalUpdateOnly bool) (*mat.Dense, error) {
	if m.params == nil {
		return nil, ErrNotFitted
	}
	rows := ds.UnlabeledIndices()
	if len(rows) == 0 {
		return nil, ErrNoUnlabeled
	}

	var logits *mat.Dense
	if relationalUpdateOnly {
		if m.cache == nil {
			return nil, ErrNoCache
		}
		if !slices.Equal(m.cache.rows, rows) {
			return nil, fmt.Errorf("%w: cached %d nodes, got %d", ErrCacheMembership, len(m.cache.rows), len(rows))
		}
		logits = mat.DenseCopyOf(m.cache.logits)
	} else {
		logits = m.params.baseLogits(ds.Features, rows)
		m.cache = &baseCache{rows: rows, logits: mat.DenseCopyOf(logits)}
	}

	switch m.cfg.InferMethod {
	case RelationalIID:
		if m.params.NeighborLogProb == nil {
			return nil, ErrMissingRelational
		}
		pos, neg := neighborEvidence(ds.Edges, ds.Labels, rows, ds.LabeledIndices(), 1)
		m.params.addRelational(logits, pos, neg)
	case RelationalJoint:
		if m.params.NeighborLogProb == nil {
			return nil, ErrMissingRelational
		}
		pos, neg := neighborEvidence(ds.Edges, ds.Labels, rows, nil, m.cfg.UnlabeledConfidence)
		m.params.addRelational(logits, pos, neg)
	}

	proba := normalize(logits)
	if m.cfg.Calibrate {
		rate := ds.LabeledRate()
		if math.IsNaN(rate) {
			rate = m.params.LabeledRate
		}
		calibrate(proba, rate)
	}
	return proba, nil
}

// Predict returns the most probable class of every Unlabeled node, ties
// going to class 0, or Indeterminate for rows PredictProba could not
// classify.
func (m *Model) Predict(ds *network.Dataset) ([]int, error) {
	proba, err := m.PredictProba(ds, false)
	if err != nil {
		return nil, err
	}
	return Argmax(proba), nil
}

// Argmax reduces an n×2 probability matrix to labels.
func Argmax(proba mat.Matrix) []int {
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := range r {
		p0, p1 := proba.At(i, 0), proba.At(i, 1)
		switch {
		case math.IsNaN(p0) || math.IsNaN(p1):
			out[i] = Indeterminate
		case p1 > p0:
			out[i] = 1
		}
	}
	return out
}

// baseLogits computes class_log_prior[y] + sum_j log P(X_j | y) for the
// given rows of x.
func (p *Parameters) baseLogits(x mat.Matrix, rows []int) *mat.Dense {
	_, f := x.Dims()
	out := mat.NewDense(len(rows), 2, nil)
	for k, i := range rows {
		for y := range 2 {
			s := p.ClassLogPrior[y]
			for j := range f {
				v := 0
				if x.At(i, j) != 0 {
					v = 1
				}
				s += p.FeatureLogProb[y][v][j]
			}
			out.Set(k, y, s)
		}
	}
	return out
}

// addRelational adds PosN*log P(1|y) + NegN*log P(0|y) to each row.
func (p *Parameters) addRelational(logits *mat.Dense, pos, neg []float64) {
	nl := p.NeighborLogProb
	for k := range pos {
		for y := range 2 {
			corr := weighted(pos[k], nl[y][1]) + weighted(neg[k], nl[y][0])
			logits.Set(k, y, logits.At(k, y)+corr)
		}
	}
}

// weighted returns w*logp, treating zero evidence as contributing nothing
// even when logp is -Inf or NaN.
func weighted(w, logp float64) float64 {
	if w == 0 {
		return 0
	}
	return w * logp
}

// neighborEvidence returns, for each node in rows, the edge-weighted sum of
// neighbor labels (PosN) and of their complements (NegN) over the neighbor
// columns, scaled by scale. A nil neighbors slice means every node.
func neighborEvidence(edges mat.Matrix, labels []float64, rows, neighbors []int, scale float64) (pos, neg []float64) {
	pos = make([]float64, len(rows))
	neg = make([]float64, len(rows))
	sub := network.Submatrix(edges, rows, neighbors)
	if sub == nil {
		return pos, neg
	}

	yn := network.Gather(labels, neighbors)
	notYn := make([]float64, len(yn))
	for i, v := range yn {
		notYn[i] = 1 - v
	}

	var pv, nv mat.VecDense
	pv.MulVec(sub, mat.NewVecDense(len(yn), yn))
	nv.MulVec(sub, mat.NewVecDense(len(notYn), notYn))
	for i := range rows {
		pos[i] = pv.AtVec(i)
		neg[i] = nv.AtVec(i)
	}
	floats.Scale(scale, pos)
	floats.Scale(scale, neg)
	return pos, neg
}

// normalize converts per-row class logits to probabilities with a
// max-shifted softmax. Rows whose logits are all -Inf, or contain NaN, are
// returned as NaN.
func normalize(logits *mat.Dense) *mat.Dense {
	r, c := logits.Dims()
	out := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := range r {
		mat.Row(row, i, logits)
		if floats.HasNaN(row) {
			fillNaN(out, i)
			continue
		}
		maxLogit := floats.Max(row)
		if math.IsInf(maxLogit, -1) {
			fillNaN(out, i)
			continue
		}
		var sum float64
		for j, l := range row {
			row[j] = math.Exp(l - maxLogit)
			sum += row[j]
		}
		for j, v := range row {
			out.Set(i, j, v/sum)
		}
	}
	return out
}

func fillNaN(m *mat.Dense, i int) {
	_, c := m.Dims()
	for j := range c {
		m.Set(i, j, math.NaN())
	}
}
