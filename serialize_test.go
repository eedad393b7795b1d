package reagent

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestPolicySaveLoad(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	policy := NewSoftmaxPolicy(c, 3, 5, 4)
	path := filepath.Join(t.TempDir(), "policy.bin")
	require.NoError(t, policy.Save(path))

	loaded, err := LoadSoftmaxPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.NumSlates)

	origWeights := policy.Net[0].(*anynet.FC).Weights.Vector
	loadedWeights := loaded.Net[0].(*anynet.FC).Weights.Vector
	assert.Equal(t, vecToFloats(origWeights), vecToFloats(loadedWeights))
}

func TestBaselineSaveLoad(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	baseline := NewFFBaseline(c, 3, 5)
	path := filepath.Join(t.TempDir(), "baseline.bin")
	require.NoError(t, baseline.Save(path))

	loaded, err := LoadFFBaseline(path)
	require.NoError(t, err)

	origWeights := baseline.Net[2].(*anynet.FC).Weights.Vector
	loadedWeights := loaded.Net[2].(*anynet.FC).Weights.Vector
	assert.Equal(t, vecToFloats(origWeights), vecToFloats(loadedWeights))
}
