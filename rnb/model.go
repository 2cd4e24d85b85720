// Package rnb implements a relational naive Bayes classifier for binary node
// labels.
//
// Parameters are estimated from the Labeled nodes of a network.Dataset:
// class priors, per-feature Bernoulli conditionals and, in the relational
// learning modes, the distribution of a neighbor's label given the label of
// the node it is attached to. Inference scores every Unlabeled node with its
// own features and, in the relational inference modes, with edge-weighted
// counts of positive and negative neighbors.
//
//	m, _ := rnb.New(rnb.Config{LearnMethod: rnb.RelationalIID, InferMethod: rnb.RelationalIID})
//	if _, err := m.Fit(ds); err != nil { ... }
//	proba, _ := m.PredictProba(ds, false)
//
// A collective-inference loop that only rewrites neighbor beliefs between
// calls (network.Dataset.SetBeliefs) can pass relationalUpdateOnly=true to
// reuse the feature term computed by the previous full call.
//
// Model is not safe for concurrent use.
package rnb

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Method selects a learning or inference regime.
type Method int

const (
	// Independent uses node features only.
	Independent Method = iota
	// RelationalIID adds evidence from Labeled neighbors.
	RelationalIID
	// RelationalJoint adds evidence from all neighbors, reading the current
	// beliefs of Unlabeled ones, discounted by the unlabeled confidence.
	RelationalJoint
)

func (m Method) String() string {
	switch m {
	case Independent:
		return "independent"
	case RelationalIID:
		return "relational-iid"
	case RelationalJoint:
		return "relational-joint"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses a method name. The short names iid, r_iid and r_joint
// are accepted as aliases.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "independent", "iid":
		return Independent, nil
	case "relational-iid", "r_iid":
		return RelationalIID, nil
	case "relational-joint", "r_joint":
		return RelationalJoint, nil
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, s)
}

// Config holds model options.
type Config struct {
	LearnMethod Method
	InferMethod Method
	// Calibrate shifts positive-class logits so the decision point matches
	// the Labeled positive rate.
	Calibrate bool
	// UnlabeledConfidence discounts relational-joint evidence, in [0,1].
	UnlabeledConfidence float64
	// Smoothing is an additive (Laplace) pseudo-count applied to feature and
	// neighbor conditionals. Zero reproduces the unsmoothed estimator.
	Smoothing float64
}

// DefaultConfig returns the independent, uncalibrated, unsmoothed model.
func DefaultConfig() Config {
	return Config{
		LearnMethod:         Independent,
		InferMethod:         Independent,
		UnlabeledConfidence: 1.0,
	}
}

// Validate checks option ranges and that relational inference has a
// relational learning mode to draw neighbor conditionals from.
func (c Config) Validate() error {
	for _, m := range []Method{c.LearnMethod, c.InferMethod} {
		if m < Independent || m > RelationalJoint {
			return fmt.Errorf("%w: unknown method %d", ErrInvalidConfig, int(m))
		}
	}
	if !(c.UnlabeledConfidence >= 0 && c.UnlabeledConfidence <= 1) {
		return fmt.Errorf("%w: unlabeled confidence %v not in [0,1]", ErrInvalidConfig, c.UnlabeledConfidence)
	}
	if !(c.Smoothing >= 0) {
		return fmt.Errorf("%w: smoothing %v must be >= 0", ErrInvalidConfig, c.Smoothing)
	}
	if c.InferMethod != Independent && c.LearnMethod == Independent {
		return fmt.Errorf("%w: %s inference needs a relational learn method", ErrInvalidConfig, c.InferMethod)
	}
	return nil
}

// Parameters are the fitted model parameters. They are replaced wholesale by
// Fit and never modified by inference.
type Parameters struct {
	// ClassLogPrior[y] = log P(Y=y).
	ClassLogPrior [2]float64
	// FeatureLogProb[y][x][j] = log P(X_j=x | Y=y).
	FeatureLogProb [2][2][]float64
	// NeighborLogProb[y][yn] = log P(neighbor label yn | Y=y). Nil when the
	// learn method is Independent.
	NeighborLogProb *[2][2]float64
	// LabeledRate is the positive rate of the Labeled nodes seen by Fit.
	LabeledRate float64
}

// baseCache holds the prior+feature logits of the last full inference call.
// It is valid for the Unlabeled node set in rows and the parameters that
// were current when it was written; Fit and InvalidateCache clear it.
type baseCache struct {
	rows   []int
	logits *mat.Dense
}

// Model is a relational naive Bayes classifier.
type Model struct {
	cfg    Config
	params *Parameters
	cache  *baseCache
}

// New creates an unfitted model.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{cfg: cfg}, nil
}

// Config returns the model options.
func (m *Model) Config() Config {
	return m.cfg
}

// Fitted reports whether Fit has completed successfully.
func (m *Model) Fitted() bool {
	return m.params != nil
}

// Params returns the fitted parameters, or nil before Fit. The returned
// value must be treated as read-only.
func (m *Model) Params() *Parameters {
	return m.params
}

// InvalidateCache drops the cached base logits. Callers must invalidate after
// changing Unlabeled features in place.
func (m *Model) InvalidateCache() {
	m.cache = nil
}
