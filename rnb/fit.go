package rnb

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/rohansaphal97/rmllib/network"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Fit estimates the model parameters from the Labeled nodes of ds and
// returns the model for chaining. Any cached inference state is dropped.
//
// Degenerate conditionals (a feature constant within a class) are kept as
// log(0) = -Inf unless Smoothing is set. A class with no Labeled members is
// an error.
func (m *Model) Fit(ds *network.Dataset) (*Model, error) {
	if ds == nil {
		return nil, ErrNoLabeled
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("rnb: invalid dataset: %w", err)
	}
	lab := ds.LabeledIndices()
	if len(lab) == 0 {
		return nil, ErrNoLabeled
	}
	y := network.Gather(ds.Labels, lab)

	var members [2]int
	for _, v := range y {
		members[int(v)]++
	}
	for c, n := range members {
		if n == 0 {
			return nil, fmt.Errorf("%w: class %d among %d labeled nodes", ErrEmptyClass, c, len(lab))
		}
	}

	rate := stat.Mean(y, nil)
	p := &Parameters{
		ClassLogPrior: [2]float64{math.Log(1 - rate), math.Log(rate)},
		LabeledRate:   rate,
	}

	means := classFeatureMeans(ds.Features, ds.Labels, lab, m.cfg.Smoothing)
	for c := range 2 {
		f := len(means[c])
		p.FeatureLogProb[c][0] = make([]float64, f)
		p.FeatureLogProb[c][1] = make([]float64, f)
		for j, mu := range means[c] {
			p.FeatureLogProb[c][1][j] = math.Log(mu)
			p.FeatureLogProb[c][0][j] = math.Log(1 - mu)
		}
	}

	switch m.cfg.LearnMethod {
	case RelationalIID:
		counts := neighborLabelCounts(ds.Edges, ds.Labels, lab, lab, 1)
		p.NeighborLogProb = neighborLogProb(counts, m.cfg.Smoothing)
	case RelationalJoint:
		counts := neighborLabelCounts(ds.Edges, ds.Labels, lab, nil, m.cfg.UnlabeledConfidence)
		p.NeighborLogProb = neighborLogProb(counts, m.cfg.Smoothing)
	}

	m.params = p
	m.cache = nil

	slog.Debug("Fitted relational naive Bayes",
		"learn", m.cfg.LearnMethod.String(),
		"labeled", len(lab),
		"positive_rate", rate,
		"features", ds.NumFeatures())
	if p.NeighborLogProb != nil {
		nl := p.NeighborLogProb
		slog.Debug("Neighbor conditionals",
			"p(1|1)", math.Exp(nl[1][1]), "p(0|1)", math.Exp(nl[1][0]),
			"p(1|0)", math.Exp(nl[0][1]), "p(0|0)", math.Exp(nl[0][0]))
	}
	return m, nil
}

// classFeatureMeans groups the given rows of X by label and returns, per
// class, the per-feature mean P(X_j=1 | y). With alpha > 0 the mean becomes
// (count+alpha)/(n+2*alpha).
func classFeatureMeans(x mat.Matrix, labels []float64, rows []int, alpha float64) [2][]float64 {
	var byClass [2][]int
	for _, i := range rows {
		c := int(labels[i])
		byClass[c] = append(byClass[c], i)
	}

	_, f := x.Dims()
	var means [2][]float64
	for c := range 2 {
		means[c] = make([]float64, f)
		sub := network.Submatrix(x, byClass[c], nil)
		if sub == nil {
			continue
		}
		n := float64(len(byClass[c]))
		col := make([]float64, len(byClass[c]))
		for j := range f {
			mat.Col(col, j, sub)
			means[c][j] = (floats.Sum(col) + alpha) / (n + 2*alpha)
		}
	}
	return means
}

// neighborLabelCounts accumulates counts[y][yn]: the edge weight from center
// nodes with label y to neighbors with label yn, scaled by scale. Neighbor
// labels may be fractional beliefs; center labels are ground truth.
func neighborLabelCounts(edges mat.Matrix, labels []float64, centers, neighbors []int, scale float64) [2][2]float64 {
	pos, neg := neighborEvidence(edges, labels, centers, neighbors, scale)
	yc := network.Gather(labels, centers)
	notYc := make([]float64, len(yc))
	for i, v := range yc {
		notYc[i] = 1 - v
	}

	var counts [2][2]float64
	counts[1][1] = floats.Dot(yc, pos)
	counts[1][0] = floats.Dot(yc, neg)
	counts[0][1] = floats.Dot(notYc, pos)
	counts[0][0] = floats.Dot(notYc, neg)
	return counts
}

// neighborLogProb normalizes each center-label row of counts to a
// distribution over neighbor labels and takes logs. A row with no edge
// weight and no smoothing is 0/0 and stays NaN.
func neighborLogProb(counts [2][2]float64, alpha float64) *[2][2]float64 {
	var out [2][2]float64
	for y := range 2 {
		total := counts[y][0] + counts[y][1]
		if total == 0 && alpha == 0 {
			slog.Warn("No edge weight from labeled nodes of class; neighbor conditionals undefined", "class", y)
		}
		for yn := range 2 {
			out[y][yn] = math.Log((counts[y][yn] + alpha) / (total + 2*alpha))
		}
	}
	return &out
}
