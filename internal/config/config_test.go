package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rohansaphal97/rmllib/rnb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigOptions(t *testing.T) {
	opts, err := DefaultConfig().Model.Options()
	require.NoError(t, err)
	assert.Equal(t, rnb.DefaultConfig(), opts)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmllib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  learn_method: r_joint
  infer_method: relational-joint
  calibrate: true
  unlabeled_confidence: 0.4
dataset:
  symmetric: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Evaluate.Folds, "absent keys keep defaults")
	assert.True(t, cfg.Dataset.Symmetric)

	opts, err := cfg.Model.Options()
	require.NoError(t, err)
	assert.Equal(t, rnb.Config{
		LearnMethod:         rnb.RelationalJoint,
		InferMethod:         rnb.RelationalJoint,
		Calibrate:           true,
		UnlabeledConfidence: 0.4,
	}, opts)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestOptionsInvalid(t *testing.T) {
	tests := []ModelConfig{
		{LearnMethod: "bogus", InferMethod: "iid", UnlabeledConfidence: 1},
		{LearnMethod: "iid", InferMethod: "bogus", UnlabeledConfidence: 1},
		{LearnMethod: "iid", InferMethod: "r_iid", UnlabeledConfidence: 1},
		{LearnMethod: "r_iid", InferMethod: "r_iid", UnlabeledConfidence: 2},
	}
	for _, m := range tests {
		_, err := m.Options()
		assert.ErrorIs(t, err, rnb.ErrInvalidConfig, "%+v", m)
	}
}
