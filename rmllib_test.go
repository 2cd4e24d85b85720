package rmllib

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohansaphal97/rmllib/network"
	"github.com/rohansaphal97/rmllib/rnb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var relationalIID = rnb.Config{
	LearnMethod:         rnb.RelationalIID,
	InferMethod:         rnb.RelationalIID,
	UnlabeledConfidence: 1,
}

// twoRings builds 20 nodes: 0-9 positive and 10-19 negative, each class a
// symmetric ring. One feature tracks the class except for nodes 0, 1 (0
// instead of 1) and 10, 11 (1 instead of 0).
func twoRings(t *testing.T, unlabeled ...int) *network.Dataset {
	t.Helper()
	const n = 20
	x := mat.NewDense(n, 1, nil)
	labels := make([]float64, n)
	for i := range 10 {
		labels[i] = 1
		x.Set(i, 0, 1)
	}
	x.Set(0, 0, 0)
	x.Set(1, 0, 0)
	x.Set(10, 0, 1)
	x.Set(11, 0, 1)

	e := mat.NewDense(n, n, nil)
	for base := 0; base < n; base += 10 {
		for i := range 10 {
			a, b := base+i, base+(i+1)%10
			e.Set(a, b, 1)
			e.Set(b, a, 1)
		}
	}

	labeled := make([]bool, n)
	for i := range labeled {
		labeled[i] = true
	}
	for _, u := range unlabeled {
		labeled[u] = false
		labels[u] = 0
	}
	ds, err := network.New(x, labels, e, labeled)
	require.NoError(t, err)
	return ds
}

func TestClassify(t *testing.T) {
	ds := twoRings(t, 4, 14)

	res, err := Classify(ds, relationalIID)
	require.NoError(t, err)
	assert.Equal(t, "relational-iid", res.LearnMethod)
	require.Len(t, res.Nodes, 2)

	assert.Equal(t, "4", res.Nodes[0].Node)
	assert.Equal(t, 1, res.Nodes[0].Label)
	assert.InDelta(t, 1.0, res.Nodes[0].Proba[1], 1e-12)
	assert.Equal(t, "14", res.Nodes[1].Node)
	assert.Equal(t, 0, res.Nodes[1].Label)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestClassifyIndeterminate(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		1, 1,
		1, 0,
		0, 0,
		1, 0,
		0, 1,
	})
	ds, err := network.New(x, []float64{1, 1, 0, 0, 0}, mat.NewDense(5, 5, nil),
		[]bool{true, true, true, true, false})
	require.NoError(t, err)

	res, err := Classify(ds, rnb.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)
	assert.True(t, res.Nodes[0].Indeterminate)
	assert.Equal(t, rnb.Indeterminate, res.Nodes[0].Label)
	assert.Nil(t, res.Nodes[0].Proba)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"indeterminate":true`)
}

func TestClassifyErrors(t *testing.T) {
	ds := twoRings(t)
	_, err := Classify(ds, rnb.DefaultConfig())
	assert.ErrorIs(t, err, rnb.ErrNoUnlabeled)

	_, err = Classify(ds, rnb.Config{InferMethod: rnb.RelationalJoint, UnlabeledConfidence: 1})
	assert.ErrorIs(t, err, rnb.ErrInvalidConfig)
}

func TestEvaluate(t *testing.T) {
	ds := twoRings(t)

	independent, err := Evaluate(ds, &EvalConfig{Folds: 5, Model: rnb.DefaultConfig()})
	require.NoError(t, err)
	assert.Equal(t, 20, independent.Total)
	assert.Equal(t, 16, independent.Correct)
	assert.InDelta(t, 0.8, independent.Accuracy, 1e-12)
	assert.Equal(t, [2][2]int{{8, 2}, {2, 8}}, independent.Confusion)
	assert.InDelta(t, 0.8, independent.Precision, 1e-12)
	assert.InDelta(t, 0.8, independent.Recall, 1e-12)
	assert.InDelta(t, 0.8, independent.F1, 1e-12)

	relational, err := Evaluate(ds, &EvalConfig{Folds: 5, Model: relationalIID})
	require.NoError(t, err)
	assert.Equal(t, 20, relational.Correct)
	assert.Equal(t, 1.0, relational.Accuracy)

	// The evaluation works on copies.
	assert.Len(t, ds.LabeledIndices(), 20)
}

func TestEvaluateRelationalJoint(t *testing.T) {
	ds := twoRings(t)
	res, err := Evaluate(ds, &EvalConfig{Folds: 5, Model: rnb.Config{
		LearnMethod:         rnb.RelationalJoint,
		InferMethod:         rnb.RelationalJoint,
		UnlabeledConfidence: 1,
	}})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Total)
	assert.Equal(t, 20, res.Correct)
}

func TestEvaluateErrors(t *testing.T) {
	ds := twoRings(t)
	_, err := Evaluate(ds, &EvalConfig{Folds: 1})
	assert.Error(t, err)

	// Folds of one node each leave both classes in training.
	res, err := Evaluate(ds, &EvalConfig{Folds: 100, Model: rnb.DefaultConfig()})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Total)
}

func TestKFold(t *testing.T) {
	assert.Equal(t, [][]int{{0, 3}, {1, 4}, {2}}, kFold(5, 3))
	assert.Equal(t, [][]int{{0}, {1}}, kFold(2, 10))
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.csv"), []byte("id,label,labeled,f\na,1,1,1\nb,0,1,0\nc,,0,1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edges.csv"), []byte("c,a\n"), 0644))

	ds, err := LoadDataset(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ds.Edges.At(0, 2))

	res, err := Classify(ds, rnb.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "c", res.Nodes[0].Node)

	_, err = LoadDataset(context.Background(), filepath.Join(dir, "nope"), false)
	assert.Error(t, err)
}
