// Package rmllib classifies the unlabeled nodes of a partially labeled
// network with a relational naive Bayes model.
//
//	ds, _ := rmllib.LoadDataset(ctx, "data/cora", false)
//	res, _ := rmllib.Classify(ds, rnb.Config{
//	    LearnMethod: rnb.RelationalIID,
//	    InferMethod: rnb.RelationalIID,
//	    UnlabeledConfidence: 1,
//	})
//	for _, n := range res.Nodes {
//	    fmt.Println(n.Node, n.Label) // "paper-17" 1
//	}
package rmllib

import (
	"context"
	"fmt"
	"math"

	"github.com/rohansaphal97/rmllib/internal/storage"
	"github.com/rohansaphal97/rmllib/network"
	"github.com/rohansaphal97/rmllib/rnb"
)

// NodeResult holds the prediction for one Unlabeled node.
type NodeResult struct {
	Node          string    `json:"node"`
	Label         int       `json:"label"`
	Proba         []float64 `json:"proba,omitempty"`
	Indeterminate bool      `json:"indeterminate,omitempty"`
}

// Result holds the predictions for every Unlabeled node, in node order.
type Result struct {
	LearnMethod string       `json:"learn_method"`
	InferMethod string       `json:"infer_method"`
	Calibrated  bool         `json:"calibrated"`
	Nodes       []NodeResult `json:"nodes"`
}

// LoadDataset reads a dataset folder (nodes.csv, edges.csv) or a SQLite
// database file. With symmetric every edge is mirrored.
func LoadDataset(ctx context.Context, path string, symmetric bool) (*network.Dataset, error) {
	ds, err := storage.Open(ctx, path, storage.LoadOptions{Symmetric: symmetric})
	if err != nil {
		return nil, fmt.Errorf("rmllib: %w", err)
	}
	return ds, nil
}

// Classify fits a model on the Labeled nodes of ds and predicts the
// Unlabeled ones.
func Classify(ds *network.Dataset, cfg rnb.Config) (*Result, error) {
	m, err := rnb.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("rmllib: %w", err)
	}
	if _, err := m.Fit(ds); err != nil {
		return nil, fmt.Errorf("rmllib: %w", err)
	}
	proba, err := m.PredictProba(ds, false)
	if err != nil {
		return nil, fmt.Errorf("rmllib: %w", err)
	}
	labels := rnb.Argmax(proba)

	rows := ds.UnlabeledIndices()
	out := &Result{
		LearnMethod: cfg.LearnMethod.String(),
		InferMethod: cfg.InferMethod.String(),
		Calibrated:  cfg.Calibrate,
		Nodes:       make([]NodeResult, len(rows)),
	}
	for k, node := range rows {
		r := NodeResult{
			Node:  nodeName(ds, node),
			Label: labels[k],
		}
		p0, p1 := proba.At(k, 0), proba.At(k, 1)
		if math.IsNaN(p0) || math.IsNaN(p1) {
			r.Indeterminate = true
		} else {
			r.Proba = []float64{p0, p1}
		}
		out.Nodes[k] = r
	}
	return out, nil
}

func nodeName(ds *network.Dataset, node int) string {
	if ds.Nodes == nil {
		return fmt.Sprint(node)
	}
	return ds.Nodes.Name(node)
}
