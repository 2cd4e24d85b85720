package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func smallDataset(t *testing.T) *Dataset {
	t.Helper()
	x := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
		0, 0,
	})
	e := mat.NewDense(4, 4, nil)
	e.Set(0, 1, 1)
	e.Set(2, 0, 0.5)
	e.Set(3, 2, 2)
	ds, err := New(x, []float64{1, 0, 0.5, 0}, e, []bool{true, true, false, false})
	require.NoError(t, err)
	return ds
}

func TestIndex(t *testing.T) {
	idx := NewIndex()
	id0 := idx.Add("alice")
	id1 := idx.Add("bob")
	id2 := idx.Add("alice") // duplicate

	assert.Equal(t, []int{0, 1, 0}, []int{id0, id1, id2})
	assert.Equal(t, 2, idx.Size())
	assert.Equal(t, -1, idx.Get("carol"))
	assert.Equal(t, "bob", idx.Name(1))
	assert.Equal(t, "", idx.Name(5))

	seq := NewSequentialIndex(3)
	assert.Equal(t, []string{"0", "1", "2"}, seq.ToStr)
}

func TestPartition(t *testing.T) {
	ds := smallDataset(t)
	assert.Equal(t, 4, ds.N())
	assert.Equal(t, 2, ds.NumFeatures())
	assert.Equal(t, []int{0, 1}, ds.LabeledIndices())
	assert.Equal(t, []int{2, 3}, ds.UnlabeledIndices())
	assert.InDelta(t, 0.5, ds.LabeledRate(), 1e-12)

	all, err := ds.WithMask([]bool{false, false, false, false})
	require.NoError(t, err)
	assert.Empty(t, all.LabeledIndices())
	assert.NotNil(t, all.LabeledIndices())
	assert.True(t, math.IsNaN(all.LabeledRate()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Dataset)
		wantErr error
	}{
		{"non-binary feature", func(d *Dataset) { d.Features.Set(1, 1, 0.5) }, ErrNonBinary},
		{"labeled belief", func(d *Dataset) { d.Labels[0] = 0.3 }, ErrLabelRange},
		{"unlabeled belief above one", func(d *Dataset) { d.Labels[2] = 1.2 }, ErrLabelRange},
		{"unlabeled belief NaN", func(d *Dataset) { d.Labels[3] = math.NaN() }, ErrLabelRange},
		{"negative weight", func(d *Dataset) { d.Edges.Set(0, 3, -1) }, ErrNegativeWeight},
		{"infinite weight", func(d *Dataset) { d.Edges.Set(0, 3, math.Inf(1)) }, ErrNegativeWeight},
		{"short labels", func(d *Dataset) { d.Labels = d.Labels[:3] }, ErrShape},
		{"short mask", func(d *Dataset) { d.Labeled = d.Labeled[:2] }, ErrShape},
		{"edge shape", func(d *Dataset) { d.Edges = mat.NewDense(3, 3, nil) }, ErrShape},
		{"node names", func(d *Dataset) { d.Nodes.Add("extra") }, ErrShape},
		{"missing edges", func(d *Dataset) { d.Edges = nil }, ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := smallDataset(t)
			tt.mutate(ds)
			assert.ErrorIs(t, ds.Validate(), tt.wantErr)
		})
	}
}

func TestSetBelief(t *testing.T) {
	ds := smallDataset(t)

	require.NoError(t, ds.SetBelief(3, 0.25))
	assert.Equal(t, 0.25, ds.Labels[3])

	assert.ErrorIs(t, ds.SetBelief(0, 0.5), ErrLabeledNode)
	assert.ErrorIs(t, ds.SetBelief(2, 1.5), ErrLabelRange)
	assert.ErrorIs(t, ds.SetBelief(9, 0.5), ErrOutOfRange)
}

func TestSetBeliefs(t *testing.T) {
	ds := smallDataset(t)
	proba := mat.NewDense(2, 2, []float64{
		0.1, 0.9,
		math.NaN(), math.NaN(),
	})
	require.NoError(t, ds.SetBeliefs(proba))
	assert.Equal(t, 0.9, ds.Labels[2])
	assert.Equal(t, 0.0, ds.Labels[3], "indeterminate rows keep the previous belief")

	assert.ErrorIs(t, ds.SetBeliefs(mat.NewDense(3, 2, nil)), ErrShape)
}

func TestWithMaskCopiesLabels(t *testing.T) {
	ds := smallDataset(t)
	held, err := ds.WithMask([]bool{true, false, false, false})
	require.NoError(t, err)

	require.NoError(t, held.SetBelief(1, 0.7))
	assert.Equal(t, 0.0, ds.Labels[1])
	assert.Equal(t, []int{1, 2, 3}, held.UnlabeledIndices())

	_, err = ds.WithMask([]bool{true})
	assert.ErrorIs(t, err, ErrShape)
}

func TestSubmatrix(t *testing.T) {
	ds := smallDataset(t)

	sub := Submatrix(ds.Edges, []int{2, 3}, []int{0, 2})
	require.NotNil(t, sub)
	assert.True(t, mat.Equal(sub, mat.NewDense(2, 2, []float64{
		0.5, 0,
		0, 2,
	})))

	rows := Submatrix(ds.Features, []int{1}, nil)
	assert.True(t, mat.Equal(rows, mat.NewDense(1, 2, []float64{0, 1})))

	assert.Nil(t, Submatrix(ds.Edges, []int{}, nil))

	assert.Equal(t, []float64{0.5, 1}, Gather(ds.Labels, []int{2, 0}))
	all := Gather(ds.Labels, nil)
	all[0] = 9
	assert.Equal(t, 1.0, ds.Labels[0])
}
