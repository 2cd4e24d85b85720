package rmllib

import (
	"fmt"
	"log/slog"

	"github.com/rohansaphal97/rmllib/network"
	"github.com/rohansaphal97/rmllib/rnb"
)

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Folds int
	Model rnb.Config
}

// EvalResult holds cross-validation results over the Labeled nodes.
type EvalResult struct {
	Accuracy      float64
	Correct       int
	Total         int
	Indeterminate int
	// Confusion[truth][predicted]; indeterminate predictions are not counted.
	Confusion [2][2]int
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluate runs k-fold cross-validation over the Labeled nodes of ds. Each
// fold hides its nodes' labels, initialises their beliefs to the training
// positive rate, fits on the rest and runs one full inference pass.
func Evaluate(ds *network.Dataset, config *EvalConfig) (*EvalResult, error) {
	nFolds := 10
	cfg := rnb.DefaultConfig()
	if config != nil {
		if config.Folds != 0 {
			nFolds = config.Folds
		}
		cfg = config.Model
	}
	if nFolds < 2 {
		return nil, fmt.Errorf("rmllib: need at least 2 folds, got %d", nFolds)
	}

	labeled := ds.LabeledIndices()
	if len(labeled) < 2 {
		return nil, fmt.Errorf("rmllib: %w: %d labeled nodes", rnb.ErrNoLabeled, len(labeled))
	}
	folds := kFold(len(labeled), nFolds)

	result := &EvalResult{}
	for k, fold := range folds {
		mask := make([]bool, len(ds.Labeled))
		copy(mask, ds.Labeled)
		for _, pos := range fold {
			mask[labeled[pos]] = false
		}
		train, err := ds.WithMask(mask)
		if err != nil {
			return nil, fmt.Errorf("rmllib: fold %d: %w", k, err)
		}
		rate := train.LabeledRate()
		for _, pos := range fold {
			if err := train.SetBelief(labeled[pos], rate); err != nil {
				return nil, fmt.Errorf("rmllib: fold %d: %w", k, err)
			}
		}

		m, err := rnb.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("rmllib: %w", err)
		}
		if _, err := m.Fit(train); err != nil {
			return nil, fmt.Errorf("rmllib: fold %d: %w", k, err)
		}
		proba, err := m.PredictProba(train, false)
		if err != nil {
			return nil, fmt.Errorf("rmllib: fold %d: %w", k, err)
		}
		pred := rnb.Argmax(proba)

		rowOf := make(map[int]int, len(pred))
		for row, node := range train.UnlabeledIndices() {
			rowOf[node] = row
		}
		for _, pos := range fold {
			node := labeled[pos]
			truth := int(ds.Labels[node])
			p := pred[rowOf[node]]
			result.Total++
			if p == rnb.Indeterminate {
				result.Indeterminate++
				continue
			}
			result.Confusion[truth][p]++
			if p == truth {
				result.Correct++
			}
		}
		slog.Debug("Fold evaluated", "fold", k, "held_out", len(fold), "correct", result.Correct, "total", result.Total)
	}

	result.Accuracy = ratio(result.Correct, result.Total)
	tp := result.Confusion[1][1]
	result.Precision = ratio(tp, tp+result.Confusion[0][1])
	result.Recall = ratio(tp, tp+result.Confusion[1][0])
	if result.Precision+result.Recall > 0 {
		result.F1 = 2 * result.Precision * result.Recall / (result.Precision + result.Recall)
	}
	return result, nil
}

// kFold assigns positions 0..n-1 to folds round-robin. The fold count is
// capped at n.
func kFold(n, nFolds int) [][]int {
	if nFolds > n {
		nFolds = n
	}
	folds := make([][]int, nFolds)
	for i := range n {
		folds[i%nFolds] = append(folds[i%nFolds], i)
	}
	return folds
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
