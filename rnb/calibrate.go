package rnb

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// calibrate shifts the positive-class logits of proba in place so that the
// logit at the rate*100 percentile maps to probability 0.5. The transform is
// monotonic; NaN rows are skipped and do not take part in the percentile.
// When that percentile is infinite (most rows certain) proba is left as is.
func calibrate(proba *mat.Dense, rate float64) {
	r, _ := proba.Dims()
	logits := make([]float64, r)
	valid := make([]float64, 0, r)
	for i := range r {
		logits[i] = logit(proba.At(i, 1))
		if !math.IsNaN(logits[i]) {
			valid = append(valid, logits[i])
		}
	}
	if len(valid) == 0 {
		return
	}
	sort.Float64s(valid)
	shift := percentile(valid, rate*100)
	if math.IsNaN(shift) || math.IsInf(shift, 0) {
		slog.Warn("Calibration skipped: base-rate logit is not finite", "rate", rate, "shift", shift)
		return
	}

	for i, l := range logits {
		if math.IsNaN(l) {
			continue
		}
		p := expit(l - shift)
		proba.Set(i, 1, p)
		proba.Set(i, 0, 1-p)
	}
}

// percentile returns the q-th percentile (0..100) of sorted values using
// linear interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q / 100
	lo := int(math.Floor(h))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func logit(p float64) float64 {
	return math.Log(p) - math.Log1p(-p)
}

func expit(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
